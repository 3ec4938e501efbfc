package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nestsplit/nestsplit/internal/engine"
	"github.com/nestsplit/nestsplit/internal/middleware"
	"github.com/nestsplit/nestsplit/internal/models"
)

type entryRequest struct {
	Description    string   `json:"description" validate:"required,max=200"`
	Category       string   `json:"category" validate:"max=100"`
	Amount         float64  `json:"amount" validate:"min=0"`
	PayerIDs       []string `json:"payer_ids" validate:"required,min=1"`
	BeneficiaryIDs []string `json:"beneficiary_ids"`
	ReceiptPath    string   `json:"receipt_path"`
	EntryDate      int64    `json:"entry_date"`
}

type entryResponse struct {
	ID             string   `json:"id"`
	HouseholdID    string   `json:"household_id"`
	Description    string   `json:"description"`
	Category       string   `json:"category,omitempty"`
	Amount         float64  `json:"amount"`
	PayerIDs       []string `json:"payer_ids"`
	BeneficiaryIDs []string `json:"beneficiary_ids,omitempty"`
	ReceiptPath    string   `json:"receipt_path,omitempty"`
	SubscriptionID string   `json:"subscription_id,omitempty"`
	EntryDate      int64    `json:"entry_date"`
	CreatedBy      string   `json:"created_by"`
	CreatedAt      int64    `json:"created_at"`
}

type previewRequest struct {
	Amount         float64  `json:"amount"`
	PayerIDs       []string `json:"payer_ids"`
	BeneficiaryIDs []string `json:"beneficiary_ids"`
}

func toEntryResponse(e *models.ExpenseEntry) entryResponse {
	payers := e.PayerIDs
	if len(payers) == 0 && e.PaidBy != "" {
		payers = []string{e.PaidBy}
	}
	return entryResponse{
		ID:             e.ID,
		HouseholdID:    e.HouseholdID,
		Description:    e.Description,
		Category:       e.Category,
		Amount:         e.Amount,
		PayerIDs:       payers,
		BeneficiaryIDs: e.BeneficiaryIDs,
		ReceiptPath:    e.ReceiptPath,
		SubscriptionID: e.SubscriptionID,
		EntryDate:      e.EntryDate,
		CreatedBy:      e.CreatedBy,
		CreatedAt:      e.CreatedAt,
	}
}

func (h *Handler) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, err)
		return
	}

	entry := &models.ExpenseEntry{
		HouseholdID:    chi.URLParam(r, "householdID"),
		Description:    req.Description,
		Category:       req.Category,
		Amount:         req.Amount,
		PayerIDs:       req.PayerIDs,
		BeneficiaryIDs: req.BeneficiaryIDs,
		ReceiptPath:    req.ReceiptPath,
		EntryDate:      req.EntryDate,
	}
	if err := h.expenses.CreateEntry(r.Context(), middleware.GetUserID(r.Context()), entry); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryResponse(entry))
}

func (h *Handler) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.expenses.ListEntries(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "householdID"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.expenses.GetEntry(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "entryID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponse(entry))
}

func (h *Handler) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, err)
		return
	}

	entry := &models.ExpenseEntry{
		ID:             chi.URLParam(r, "entryID"),
		Description:    req.Description,
		Category:       req.Category,
		Amount:         req.Amount,
		PayerIDs:       req.PayerIDs,
		BeneficiaryIDs: req.BeneficiaryIDs,
		ReceiptPath:    req.ReceiptPath,
		EntryDate:      req.EntryDate,
	}
	if err := h.expenses.UpdateEntry(r.Context(), middleware.GetUserID(r.Context()), entry); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponse(entry))
}

func (h *Handler) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	err := h.expenses.DeleteEntry(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "entryID"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePreview is a pure calculation endpoint for draft entries; it
// never reads or writes the ledger, so degenerate input yields an
// empty list rather than an error.
func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	shares := h.expenses.Preview(req.Amount, req.PayerIDs, req.BeneficiaryIDs)
	if shares == nil {
		shares = []engine.Share{}
	}
	writeJSON(w, http.StatusOK, shares)
}

func (h *Handler) handleBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.expenses.Balances(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "householdID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balances)
}

func (h *Handler) handleSettlementPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.expenses.SettlementPlan(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "householdID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *Handler) handleSettlementCSV(w http.ResponseWriter, r *http.Request) {
	plan, err := h.expenses.SettlementPlan(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "householdID"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="settlement.csv"`)
	if err := h.expenses.WritePlanCSV(w, plan); err != nil {
		// Headers are already out; log and give up on the body.
		writeError(w, err)
	}
}
