package contactform

import (
	"errors"
	"fmt"
)

var (
	ErrVerificationRequired = errors.New("contactform: verification required")
	ErrSubmitInProgress     = errors.New("contactform: submission already in progress")
	ErrRequiredField        = errors.New("contactform: required field missing")
	ErrUnknownField         = errors.New("contactform: unknown field")
	ErrFieldType            = errors.New("contactform: wrong value type for field")
)

// RejectedError is returned when the backend answers with a non-2xx status.
// Detail is the backend's own message, empty when none was sent.
type RejectedError struct {
	Status int
	Detail string
}

func (e *RejectedError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("contactform: rejected with status %d", e.Status)
	}
	return fmt.Sprintf("contactform: rejected with status %d: %s", e.Status, e.Detail)
}

// TransportError wraps a failure to reach the backend at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "contactform: transport: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }
