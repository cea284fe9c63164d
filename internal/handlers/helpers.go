package handlers

import (
	"encoding/json"
	"net/http"

	"secdocs/internal/services"
)

// ErrorResponse is the JSON error shape for all endpoints. Only the
// client-safe failure message is exposed, never provider error text.
type ErrorResponse struct {
	Error string `json:"error"`
}

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func sendError(w http.ResponseWriter, status int, message string) {
	sendJSON(w, status, ErrorResponse{Error: message})
}

// sendFailure maps a service failure kind to its HTTP status and renders
// the client-safe message.
func sendFailure(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch services.FailureKindOf(err) {
	case services.FailureValidation:
		status = http.StatusBadRequest
	case services.FailureAuth:
		status = http.StatusForbidden
	case services.FailureNotFound:
		status = http.StatusNotFound
	}
	sendError(w, status, services.UserMessage(err))
}
