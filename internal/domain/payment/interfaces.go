package payment

import (
	"context"

	"musicstudio/internal/domain/access"
	"musicstudio/internal/domain/booking"
)

// bookingLedger is the booking side of a payment: policy-checked reads and the
// balance update applied on verification.
type bookingLedger interface {
	Get(ctx context.Context, actor access.Actor, id int64) (*booking.Booking, error)
	ApplyPayment(ctx context.Context, ev booking.PaymentVerified) (*booking.Applied, error)
}

type transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier receives payment events after the change is committed.
type Notifier interface {
	PaymentSubmitted(ctx context.Context, p *Payment, b *booking.Booking)
	PaymentReviewed(ctx context.Context, p *Payment, b *booking.Booking, bookingPaid bool)
}

type Recorder interface {
	PaymentSubmitted()
	PaymentReviewed(result string)
	BookingStatusChanged(status string)
}

type nopRecorder struct{}

func (nopRecorder) PaymentSubmitted()           {}
func (nopRecorder) PaymentReviewed(string)      {}
func (nopRecorder) BookingStatusChanged(string) {}

// Notifiers fans an event out to several notifiers in order.
type Notifiers []Notifier

func (ns Notifiers) PaymentSubmitted(ctx context.Context, p *Payment, b *booking.Booking) {
	for _, n := range ns {
		n.PaymentSubmitted(ctx, p, b)
	}
}

func (ns Notifiers) PaymentReviewed(ctx context.Context, p *Payment, b *booking.Booking, bookingPaid bool) {
	for _, n := range ns {
		n.PaymentReviewed(ctx, p, b, bookingPaid)
	}
}
