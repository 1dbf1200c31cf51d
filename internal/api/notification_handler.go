package api

import (
	"net/http"

	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/store"
)

// NotificationHandler handles notification-related API requests.
// Notifications are scoped to the authenticated user: there is no way to
// read or mutate another user's notifications through this surface.
type NotificationHandler struct {
	notifications store.NotificationStore
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notifications store.NotificationStore) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
	}
}

// List handles GET /api/notifications.
// It returns every notification for the authenticated user, newest first.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	notifications, err := h.notifications.ListByRecipient(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, NewNotificationListResponse(notifications))
}

// MarkAllRead handles PATCH /api/notifications/mark-read.
// Repeat calls are harmless and report zero updates.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	updated, err := h.notifications.MarkAllRead(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, MarkAllReadResponse{Updated: updated})
}

// MarkRead handles PATCH /api/notifications/{id}/read.
// A notification that is missing, someone else's, or already read yields
// the same 404; the distinction is deliberately not exposed.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, notificationID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	notification, err := h.notifications.MarkRead(r.Context(), userID, notificationID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, NewNotificationResponse(notification))
}
