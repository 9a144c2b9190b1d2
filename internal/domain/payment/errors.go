package payment

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("payment not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrForbidden       = errors.New("forbidden")
	ErrNotPending      = errors.New("booking is not awaiting payment")
	ErrBookingClosed   = errors.New("booking is closed for payments")
	ErrOverpayment     = errors.New("amount exceeds remaining balance")
	ErrAlreadyDecided  = errors.New("payment has already been reviewed")
)

// ValidationError carries per-field failures.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %v", e.Fields)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
