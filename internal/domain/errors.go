package domain

import "fmt"

// Error types for consistent error handling across the dashboard.

// ErrNetwork indicates a transport failure or a non-success status from the
// dashboard data endpoint. Status is 0 when no response was received.
type ErrNetwork struct {
	Status int
	Err    error
}

func (e *ErrNetwork) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("dashboard data: HTTP %d", e.Status)
	}
	return fmt.Sprintf("dashboard data: %v", e.Err)
}

func (e *ErrNetwork) Unwrap() error {
	return e.Err
}

// ErrParse indicates a response body that is not a well-formed payload.
type ErrParse struct {
	Reason string
	Err    error
}

func (e *ErrParse) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed dashboard payload: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed dashboard payload: %s", e.Reason)
}

func (e *ErrParse) Unwrap() error {
	return e.Err
}

// ErrRender indicates a required page element or canvas is missing.
type ErrRender struct {
	Target string
}

func (e *ErrRender) Error() string {
	return fmt.Sprintf("render target missing: %s", e.Target)
}

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrUnauthorized indicates the acting principal could not be established.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}
