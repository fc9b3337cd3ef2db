package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/marketpulse/backend/internal/contracts"
	"github.com/marketpulse/backend/pkg/logger"
)

// NotificationHandler serves stored notifications and the read flag.
type NotificationHandler struct {
	notifications contracts.NotificationRepository
	logger        *logger.Logger
}

// NewNotificationHandler creates a notification handler.
func NewNotificationHandler(notifications contracts.NotificationRepository, log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		logger:        log,
	}
}

// List returns recent notifications.
// GET /api/notifications?limit=50
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	notifications, err := h.notifications.List(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list notifications")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve notifications")
		return
	}
	if notifications == nil {
		notifications = []contracts.Notification{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    notifications,
	})
}

// Unread returns all unread notifications.
// GET /api/notifications/unread
func (h *NotificationHandler) Unread(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.notifications.ListUnread(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list unread notifications")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve notifications")
		return
	}
	if notifications == nil {
		notifications = []contracts.Notification{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    notifications,
	})
}

// MarkRead flags one notification as read.
// POST /api/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.notifications.MarkRead(r.Context(), id); err != nil {
		h.logger.WithError(err).WithField("notification_id", id).Error("Failed to mark notification read")
		respondError(w, http.StatusInternalServerError, "Failed to update notification")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}
