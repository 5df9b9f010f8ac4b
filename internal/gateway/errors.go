package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates a missing or duplicate title.
	ErrValidation = errors.New("validation error")

	// ErrQuotaExceeded indicates the plan limit is reached.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrNetwork covers transport failures and any non-2xx response.
	ErrNetwork = errors.New("network error")

	// ErrNotFound indicates the resume id is absent.
	ErrNotFound = errors.New("not found")
)

// Failure reasons carried by results.
const (
	ReasonLimitReached = "limit_reached"
	ReasonNetworkError = "network_error"
	ReasonNotFound     = "not_found"
	ReasonValidation   = "validation"
)

// StatusError is a non-2xx response.
type StatusError struct {
	Status        int
	Code          string
	Message       string
	SuggestedName string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend status %d: %s", e.Status, e.Code)
	}
	return fmt.Sprintf("backend status %d", e.Status)
}

// Unwrap maps the status onto the error taxonomy.
func (e *StatusError) Unwrap() error {
	switch {
	case e.Status == 402 || e.Code == ReasonLimitReached:
		return ErrQuotaExceeded
	case e.Status == 404:
		return ErrNotFound
	case e.Status == 400 || e.Status == 409:
		return ErrValidation
	default:
		return ErrNetwork
	}
}

// ReasonFor maps an error onto the result reason it is reported as.
func ReasonFor(err error) string {
	switch {
	case errors.Is(err, ErrQuotaExceeded):
		return ReasonLimitReached
	case errors.Is(err, ErrNotFound):
		return ReasonNotFound
	case errors.Is(err, ErrValidation):
		return ReasonValidation
	default:
		return ReasonNetworkError
	}
}
