package studio

import "errors"

var (
	ErrNotFound          = errors.New("studio not found")
	ErrForbidden         = errors.New("forbidden")
	ErrValidation        = errors.New("validation error")
	ErrHasActiveBookings = errors.New("studio has active bookings")
)
