package handlers

import (
	"encoding/json"
	"net/http"

	"patient-activation/models"
	"patient-activation/utilities"
)

type errorResponse struct {
	Message string                  `json:"message"`
	Errors  []models.FieldViolation `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		utilities.LogError(err, "encoding response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

func writeValidationError(w http.ResponseWriter, verr *models.ValidationError) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Message: verr.Error(),
		Errors:  verr.Violations,
	})
}
