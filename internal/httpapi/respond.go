package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/nestsplit/nestsplit/internal/auth"
	"github.com/nestsplit/nestsplit/internal/engine"
	"github.com/nestsplit/nestsplit/internal/service"
	"github.com/nestsplit/nestsplit/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			slog.Error("Failed to encode response", "error", err)
		}
	}
}

type errorBody struct {
	Error string `json:"error"`
	// Kind carries the guard violation kind for 409 responses so
	// clients can branch without parsing messages.
	Kind string `json:"kind,omitempty"`
}

// writeError maps service, storage, auth and guard errors onto HTTP
// status codes. Anything unrecognized is a 500 with a generic body.
func writeError(w http.ResponseWriter, err error) {
	if v := engine.AsViolation(err); v != nil {
		writeJSON(w, http.StatusConflict, errorBody{Error: v.Message, Kind: string(v.Kind)})
		return
	}

	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: verrs.Error()})
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, auth.ErrWeakPassword):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
	case errors.Is(err, service.ErrNotMember),
		errors.Is(err, service.ErrNotOwner):
		writeJSON(w, http.StatusForbidden, errorBody{Error: err.Error()})
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, auth.ErrEmailExists):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	default:
		slog.Error("Request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}

// decodeJSON parses the request body into dst and rejects malformed or
// trailing input.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}
