package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Veraticus/envelope/internal/model"
	"github.com/Veraticus/envelope/internal/storage"
)

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeFailure maps a ledger error onto a status code. Persistence failures are
// logged and reported without detail.
func writeFailure(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case model.IsValidationError(err):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "not found")
	default:
		slog.Error(op+" failed", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
