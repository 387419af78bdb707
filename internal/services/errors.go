package services

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrRelayFailed  = errors.New("could not deliver message")
)

// InputError carries a user-facing reason for rejecting input.
type InputError struct {
	Detail string
}

func (e *InputError) Error() string { return e.Detail }

func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

func invalid(detail string) error { return &InputError{Detail: detail} }
