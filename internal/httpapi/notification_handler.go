package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nestsplit/nestsplit/internal/middleware"
	"github.com/nestsplit/nestsplit/internal/models"
)

type notificationResponse struct {
	ID          string `json:"id"`
	HouseholdID string `json:"household_id"`
	Kind        string `json:"kind"`
	Body        string `json:"body"`
	CreatedAt   int64  `json:"created_at"`
	ReadAt      int64  `json:"read_at,omitempty"`
}

func toNotificationResponse(n *models.Notification) notificationResponse {
	return notificationResponse{
		ID:          n.ID,
		HouseholdID: n.HouseholdID,
		Kind:        string(n.Kind),
		Body:        n.Body,
		CreatedAt:   n.CreatedAt,
		ReadAt:      n.ReadAt,
	}
}

func (h *Handler) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.notifications.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, toNotificationResponse(n))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	err := h.notifications.MarkRead(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "notificationID"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
