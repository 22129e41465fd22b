// Package httputil centralizes JSON response writing and domain error
// translation so every handler returns the same envelopes.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "janseva/pkg/domain-errors"
)

// errorBody is the stable JSON error envelope. The message is safe to render
// to the actor; validation and transition errors carry actionable detail.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteError maps a coded domain error onto an HTTP response. Uncoded errors
// collapse to a generic 500 without leaking internals.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := errorBody{Error: string(code)}
	if code != dErrors.CodeInternal {
		body.Message = err.Error()
	}
	WriteJSON(w, toHTTPStatus(code), body)
}

func toHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeValidation:
		return http.StatusUnprocessableEntity
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeInvalidTransition, dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeConfiguration:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
