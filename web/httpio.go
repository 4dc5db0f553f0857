package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/user/reviewboard-go/apperror"
)

// WriteJSON serializes data to JSON and writes it with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}

// WriteError writes a standardized JSON error response. An error that is
// not an *apperror.AppError is wrapped as an opaque InternalError so no
// detail leaks to the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("Internal Server Error", err)
	}
	if appErr.StatusCode() >= http.StatusInternalServerError {
		slog.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", appErr.Error()),
		)
	}
	WriteJSON(w, appErr.StatusCode(), appErr.ToResponse())
}
