package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nestsplit/nestsplit/internal/middleware"
	"github.com/nestsplit/nestsplit/internal/models"
)

type subscriptionRequest struct {
	Description    string   `json:"description" validate:"required,max=200"`
	Category       string   `json:"category" validate:"max=100"`
	Amount         float64  `json:"amount" validate:"min=0"`
	PayerIDs       []string `json:"payer_ids" validate:"required,min=1"`
	BeneficiaryIDs []string `json:"beneficiary_ids"`
	Cadence        string   `json:"cadence" validate:"required,oneof=daily weekly monthly"`
	NextDueAt      int64    `json:"next_due_at"`
	Active         *bool    `json:"active"`
}

type subscriptionResponse struct {
	ID             string   `json:"id"`
	HouseholdID    string   `json:"household_id"`
	Description    string   `json:"description"`
	Category       string   `json:"category,omitempty"`
	Amount         float64  `json:"amount"`
	PayerIDs       []string `json:"payer_ids"`
	BeneficiaryIDs []string `json:"beneficiary_ids,omitempty"`
	Cadence        string   `json:"cadence"`
	NextDueAt      int64    `json:"next_due_at"`
	Active         bool     `json:"active"`
	CreatedBy      string   `json:"created_by"`
	CreatedAt      int64    `json:"created_at"`
}

func toSubscriptionResponse(s *models.Subscription) subscriptionResponse {
	return subscriptionResponse{
		ID:             s.ID,
		HouseholdID:    s.HouseholdID,
		Description:    s.Description,
		Category:       s.Category,
		Amount:         s.Amount,
		PayerIDs:       s.PayerIDs,
		BeneficiaryIDs: s.BeneficiaryIDs,
		Cadence:        string(s.Cadence),
		NextDueAt:      s.NextDueAt,
		Active:         s.Active,
		CreatedBy:      s.CreatedBy,
		CreatedAt:      s.CreatedAt,
	}
}

func (h *Handler) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req subscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, err)
		return
	}

	sub := &models.Subscription{
		HouseholdID:    chi.URLParam(r, "householdID"),
		Description:    req.Description,
		Category:       req.Category,
		Amount:         req.Amount,
		PayerIDs:       req.PayerIDs,
		BeneficiaryIDs: req.BeneficiaryIDs,
		Cadence:        models.Cadence(req.Cadence),
		NextDueAt:      req.NextDueAt,
	}
	if err := h.subscriptions.Create(r.Context(), middleware.GetUserID(r.Context()), sub); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSubscriptionResponse(sub))
}

func (h *Handler) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subscriptions.List(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "householdID"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]subscriptionResponse, 0, len(subs))
	for _, s := range subs {
		out = append(out, toSubscriptionResponse(s))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := h.subscriptions.Get(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "subscriptionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubscriptionResponse(sub))
}

func (h *Handler) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	var req subscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, err)
		return
	}

	sub := &models.Subscription{
		ID:             chi.URLParam(r, "subscriptionID"),
		Description:    req.Description,
		Category:       req.Category,
		Amount:         req.Amount,
		PayerIDs:       req.PayerIDs,
		BeneficiaryIDs: req.BeneficiaryIDs,
		Cadence:        models.Cadence(req.Cadence),
		Active:         req.Active == nil || *req.Active,
	}
	if err := h.subscriptions.Update(r.Context(), middleware.GetUserID(r.Context()), sub); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubscriptionResponse(sub))
}

func (h *Handler) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	err := h.subscriptions.Delete(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "subscriptionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
