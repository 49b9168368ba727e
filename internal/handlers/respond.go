package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/repositories"
)

// apiResponse is the uniform success envelope.
type apiResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// apiErrorResponse is the uniform failure envelope.
type apiErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

// apiError is a request failure with its true HTTP status; handlers build
// these instead of collapsing everything to 500.
type apiError struct {
	Status  int
	Message string
	Details []string
}

func (e *apiError) Error() string { return e.Message }

func errBadRequest(message string, details ...string) *apiError {
	return &apiError{Status: http.StatusBadRequest, Message: message, Details: details}
}

func errUnauthorized(message string) *apiError {
	return &apiError{Status: http.StatusUnauthorized, Message: message}
}

func errForbidden(message string) *apiError {
	return &apiError{Status: http.StatusForbidden, Message: message}
}

func errNotFound(message string) *apiError {
	return &apiError{Status: http.StatusNotFound, Message: message}
}

func errConflict(message string) *apiError {
	return &apiError{Status: http.StatusConflict, Message: message}
}

func errInternal(message string) *apiError {
	return &apiError{Status: http.StatusInternalServerError, Message: message}
}

// storeError maps repository sentinels onto API error kinds.
func storeError(err error, notFoundMsg, conflictMsg string) *apiError {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return errNotFound(notFoundMsg)
	case errors.Is(err, repositories.ErrConflict):
		return errConflict(conflictMsg)
	default:
		return errInternal("something went wrong")
	}
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, data any, message string) {
	writeJSON(ctx, w, status, apiResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

func respondError(ctx context.Context, w http.ResponseWriter, apiErr *apiError) {
	details := apiErr.Details
	if details == nil {
		details = []string{}
	}
	writeJSON(ctx, w, apiErr.Status, apiErrorResponse{
		StatusCode: apiErr.Status,
		Message:    apiErr.Message,
		Success:    false,
		Errors:     details,
	})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}
