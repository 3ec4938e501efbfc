package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nestsplit/nestsplit/internal/middleware"
	"github.com/nestsplit/nestsplit/internal/models"
)

type createHouseholdRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type householdResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
}

type memberResponse struct {
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	JoinedAt int64  `json:"joined_at"`
}

type addMemberRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"omitempty,oneof=owner member"`
}

type setRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=owner member"`
}

type auditResponse struct {
	ID        string `json:"id"`
	CreatedBy string `json:"created_by"`
	CreatedAt int64  `json:"created_at"`
}

func toHouseholdResponse(h *models.Household) householdResponse {
	return householdResponse{ID: h.ID, Name: h.Name, CreatedAt: h.CreatedAt}
}

func (h *Handler) handleCreateHousehold(w http.ResponseWriter, r *http.Request) {
	var req createHouseholdRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, err)
		return
	}

	household, err := h.households.Create(r.Context(), middleware.GetUserID(r.Context()), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toHouseholdResponse(household))
}

func (h *Handler) handleListHouseholds(w http.ResponseWriter, r *http.Request) {
	households, err := h.households.ListForUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]householdResponse, 0, len(households))
	for _, hh := range households {
		out = append(out, toHouseholdResponse(hh))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetHousehold(w http.ResponseWriter, r *http.Request) {
	household, err := h.households.Get(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "householdID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHouseholdResponse(household))
}

func (h *Handler) handleDissolveHousehold(w http.ResponseWriter, r *http.Request) {
	err := h.households.Dissolve(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "householdID"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.households.Members(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "householdID"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]memberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, memberResponse{UserID: m.UserID, Role: string(m.Role), JoinedAt: m.JoinedAt})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, err)
		return
	}
	role := models.Role(req.Role)
	if role == "" {
		role = models.RoleMember
	}

	err := h.households.AddMember(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "householdID"), req.UserID, role)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	err := h.households.RemoveMember(r.Context(), middleware.GetUserID(r.Context()),
		chi.URLParam(r, "householdID"), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetRole(w http.ResponseWriter, r *http.Request) {
	var req setRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, err)
		return
	}

	err := h.households.SetRole(r.Context(), middleware.GetUserID(r.Context()),
		chi.URLParam(r, "householdID"), chi.URLParam(r, "userID"), models.Role(req.Role))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleLeave(w http.ResponseWriter, r *http.Request) {
	err := h.households.Leave(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "householdID"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRecordAudit(w http.ResponseWriter, r *http.Request) {
	audit, err := h.households.RecordAudit(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "householdID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, auditResponse{ID: audit.ID, CreatedBy: audit.CreatedBy, CreatedAt: audit.CreatedAt})
}
