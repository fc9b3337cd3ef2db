package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/marketpulse/backend/internal/contracts"
	"github.com/marketpulse/backend/pkg/logger"
)

// CampaignHandler handles campaign CRUD endpoints.
type CampaignHandler struct {
	campaigns contracts.CampaignRepository
	logger    *logger.Logger
}

// NewCampaignHandler creates a campaign handler.
func NewCampaignHandler(campaigns contracts.CampaignRepository, log *logger.Logger) *CampaignHandler {
	return &CampaignHandler{
		campaigns: campaigns,
		logger:    log,
	}
}

// List returns all campaigns.
// GET /api/campaigns
func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.campaigns.List(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list campaigns")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve campaigns")
		return
	}
	if campaigns == nil {
		campaigns = []contracts.Campaign{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    campaigns,
	})
}

// Get returns one campaign.
// GET /api/campaigns/{id}
func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	c, err := h.campaigns.GetByID(r.Context(), id)
	if err != nil {
		h.logger.WithError(err).WithField("campaign_id", id).Error("Failed to get campaign")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve campaign")
		return
	}
	if c == nil {
		respondError(w, http.StatusNotFound, "Campaign not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    c,
	})
}

// Create stores a new campaign.
// POST /api/campaigns
func (h *CampaignHandler) Create(w http.ResponseWriter, r *http.Request) {
	var c contracts.Campaign
	if !decodeBody(w, r, &c) {
		return
	}
	if c.Name == "" {
		respondError(w, http.StatusBadRequest, "campaign name is required")
		return
	}

	created, err := h.campaigns.Create(r.Context(), c)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create campaign")
		respondError(w, http.StatusInternalServerError, "Failed to create campaign")
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"campaign_id": created.ID,
		"name":        created.Name,
	}).Info("Campaign created")

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    created,
	})
}

// Update applies a partial update.
// PUT /api/campaigns/{id}
func (h *CampaignHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var updates contracts.CampaignUpdate
	if !decodeBody(w, r, &updates) {
		return
	}

	updated, err := h.campaigns.Update(r.Context(), id, updates)
	if err != nil {
		h.logger.WithError(err).WithField("campaign_id", id).Error("Failed to update campaign")
		respondError(w, http.StatusInternalServerError, "Failed to update campaign")
		return
	}
	if updated == nil {
		respondError(w, http.StatusNotFound, "Campaign not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    updated,
	})
}

// Delete removes a campaign.
// DELETE /api/campaigns/{id}
func (h *CampaignHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	existed, err := h.campaigns.Delete(r.Context(), id)
	if err != nil {
		h.logger.WithError(err).WithField("campaign_id", id).Error("Failed to delete campaign")
		respondError(w, http.StatusInternalServerError, "Failed to delete campaign")
		return
	}
	if !existed {
		respondError(w, http.StatusNotFound, "Campaign not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}
