// Common helper functions for HTTP handlers.

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/turtacn/kcfgraph/pkg/errors"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// writeAppError maps an error to its HTTP status through the error code.
// Server-side failures are masked.
func writeAppError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	resp := ErrorResponse{Code: string(code), Message: err.Error()}
	var ae *errors.AppError
	if errors.As(err, &ae) {
		resp.Message = ae.Message
		resp.Detail = ae.Detail
	}
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		resp = ErrorResponse{Code: string(errors.ErrCodeInternal), Message: errors.DefaultMessageForCode(errors.ErrCodeInternal)}
	}
	writeJSON(w, status, resp)
}

//Personal.AI order the ending
