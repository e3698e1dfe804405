package handler

import (
	"encoding/json"
	"net/http"

	"ga-bridge/pkg/errors"
	"ga-bridge/pkg/logger"
)

// envelope is the uniform response wrapper for every JSON endpoint.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *errorBody  `json:"error,omitempty"`
}

type errorBody struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

// writeError maps an AppError onto the envelope; anything else becomes
// an opaque internal error so upstream details never leak to clients.
func writeError(w http.ResponseWriter, log *logger.Logger, err error) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		log.WithError(err).Error("Unhandled error reached the HTTP boundary")
		appErr = errors.NewInternalError("internal server error", err)
	}

	if appErr.StatusCode >= http.StatusInternalServerError {
		log.WithError(err).Error(appErr.Message)
	} else {
		log.WithError(err).Warn(appErr.Message)
	}

	writeJSON(w, appErr.StatusCode, envelope{
		Success: false,
		Error: &errorBody{
			Type:    string(appErr.Type),
			Message: appErr.Message,
			Details: appErr.Details,
		},
	})
}
