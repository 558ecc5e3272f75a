package server

import (
	"encoding/json"
	"net/http"

	"mandir/pkg/types"
)

// envelope is the uniform response contract for every endpoint: 201 carries
// message + transactionId, 400 carries the field issue list, 500 carries an
// opaque message only.
type envelope struct {
	Status        string             `json:"status"`
	Message       string             `json:"message"`
	TransactionID string             `json:"transactionId,omitempty"`
	Errors        []types.FieldIssue `json:"errors,omitempty"`
	Data          any                `json:"data,omitempty"`
}

func (s *Service) respondJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

func (s *Service) respondCreated(w http.ResponseWriter, message, transactionID string) {
	s.respondJSON(w, http.StatusCreated, envelope{
		Status:        "success",
		Message:       message,
		TransactionID: transactionID,
	})
}

func (s *Service) respondData(w http.ResponseWriter, data any) {
	s.respondJSON(w, http.StatusOK, envelope{
		Status: "success",
		Data:   data,
	})
}

func (s *Service) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, envelope{
		Status:  "error",
		Message: message,
	})
}

func (s *Service) respondValidationIssues(w http.ResponseWriter, issues []types.FieldIssue) {
	s.respondJSON(w, http.StatusBadRequest, envelope{
		Status:  "error",
		Message: "validation failed",
		Errors:  issues,
	})
}
