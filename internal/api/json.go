package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/opdeck/opdeck/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeMutation reports a mutation result. Quota exhaustion gets its own
// status so clients can prompt the user to free space; per the optimistic
// update contract the in-memory change has already been applied, so the
// body still carries the result.
func writeMutation(w http.ResponseWriter, status int, v any, err error) {
	switch {
	case err == nil:
		writeJSON(w, status, v)
	case errors.Is(err, apperr.ErrQuotaExceeded):
		writeJSON(w, http.StatusInsufficientStorage, errorBody("storage quota exceeded"))
	default:
		slog.Error("mutation failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}
