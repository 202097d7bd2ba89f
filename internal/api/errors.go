package api

import (
	"fmt"
	"net/http"
)

// APIError is a structured failure returned by the CRM server. Reason is the
// server's human-readable rejection reason and is what reconciliation
// notifications show to the user.
type APIError struct {
	Status int
	Code   string
	Reason string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	if e.Code != "" {
		return fmt.Sprintf("%s (%d)", e.Code, e.Status)
	}
	return http.StatusText(e.Status)
}

// NotFound reports whether the failure is a missing-record rejection.
func (e *APIError) NotFound() bool { return e.Status == http.StatusNotFound }

// Validation reports whether the server rejected the request body.
func (e *APIError) Validation() bool {
	return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
}
