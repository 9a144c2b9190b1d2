package booking

import "errors"

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("booking not found")
	ErrForbidden         = errors.New("forbidden")
	ErrStudioUnavailable = errors.New("studio is not accepting bookings")
	ErrSlotConflict      = errors.New("time slot is already booked")
	ErrNotPending        = errors.New("booking is no longer pending")
	ErrTerminalState     = errors.New("booking is already completed or cancelled")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrBookingClosed     = errors.New("booking is closed for payments")
	ErrOverpayment       = errors.New("amount exceeds remaining balance")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
