package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/marketpulse/backend/internal/contracts"
	"github.com/marketpulse/backend/pkg/logger"
)

// IntegrationHandler handles ad-platform integration endpoints.
type IntegrationHandler struct {
	integrations contracts.IntegrationRepository
	logger       *logger.Logger
}

// NewIntegrationHandler creates an integration handler.
func NewIntegrationHandler(integrations contracts.IntegrationRepository, log *logger.Logger) *IntegrationHandler {
	return &IntegrationHandler{
		integrations: integrations,
		logger:       log,
	}
}

// List returns all integrations.
// GET /api/integrations
func (h *IntegrationHandler) List(w http.ResponseWriter, r *http.Request) {
	integrations, err := h.integrations.List(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list integrations")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve integrations")
		return
	}
	if integrations == nil {
		integrations = []contracts.Integration{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    integrations,
	})
}

// Create links a new platform.
// POST /api/integrations
func (h *IntegrationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var i contracts.Integration
	if !decodeBody(w, r, &i) {
		return
	}
	if i.Platform == "" {
		respondError(w, http.StatusBadRequest, "platform is required")
		return
	}

	created, err := h.integrations.Create(r.Context(), i)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create integration")
		respondError(w, http.StatusInternalServerError, "Failed to create integration")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    created,
	})
}

// Update changes link state or account.
// PUT /api/integrations/{id}
func (h *IntegrationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var updates contracts.IntegrationUpdate
	if !decodeBody(w, r, &updates) {
		return
	}

	updated, err := h.integrations.Update(r.Context(), id, updates)
	if err != nil {
		h.logger.WithError(err).WithField("integration_id", id).Error("Failed to update integration")
		respondError(w, http.StatusInternalServerError, "Failed to update integration")
		return
	}
	if updated == nil {
		respondError(w, http.StatusNotFound, "Integration not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    updated,
	})
}

// Delete unlinks a platform.
// DELETE /api/integrations/{id}
func (h *IntegrationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	existed, err := h.integrations.Delete(r.Context(), id)
	if err != nil {
		h.logger.WithError(err).WithField("integration_id", id).Error("Failed to delete integration")
		respondError(w, http.StatusInternalServerError, "Failed to delete integration")
		return
	}
	if !existed {
		respondError(w, http.StatusNotFound, "Integration not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}
