package utils

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"floodwatch/internal/errs"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to write JSON", "error", err)
	}
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]any{
		"error":   http.StatusText(status),
		"message": msg,
	})
}

// StatusForError maps a classified pipeline error to the HTTP status the web
// layer reports: validation problems are the caller's fault, everything else
// is ours.
func StatusForError(err error) int {
	switch errs.KindOf(err) {
	case errs.Validation:
		return http.StatusBadRequest
	case errs.Network, errs.DataFormat, errs.IO, errs.Config:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
