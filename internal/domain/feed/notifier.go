package feed

import (
	"context"

	"musicstudio/internal/domain/booking"
	"musicstudio/internal/domain/payment"
)

func bookingPayload(b *booking.Booking) BookingPayload {
	return BookingPayload{
		BookingID:   b.ID,
		UserID:      b.UserID,
		StudioID:    b.StudioID,
		BookingDate: b.BookingDate,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		Status:      string(b.Status),
		TotalAmount: b.TotalAmount,
		PaidAmount:  b.PaidAmount,
	}
}

func (h *Hub) BookingCreated(_ context.Context, b *booking.Booking) {
	h.publish(b.UserID, Event{Type: EventBookingCreated, Payload: bookingPayload(b)})
}

func (h *Hub) BookingStatusChanged(_ context.Context, b *booking.Booking, from booking.Status) {
	p := bookingPayload(b)
	p.FromStatus = string(from)
	h.publish(b.UserID, Event{Type: EventBookingStatusChanged, Payload: p})
}

// Payment events are routed by the booking owner, which may differ from the
// submitter when an admin records a payment on a customer's behalf.
func (h *Hub) PaymentSubmitted(_ context.Context, p *payment.Payment, b *booking.Booking) {
	h.publish(paymentOwner(p, b), Event{Type: EventPaymentSubmitted, Payload: paymentPayload(p, b, false)})
}

func (h *Hub) PaymentReviewed(_ context.Context, p *payment.Payment, b *booking.Booking, bookingPaid bool) {
	h.publish(paymentOwner(p, b), Event{Type: EventPaymentReviewed, Payload: paymentPayload(p, b, bookingPaid)})
}

func paymentOwner(p *payment.Payment, b *booking.Booking) int64 {
	if b != nil {
		return b.UserID
	}
	return p.UserID
}

func paymentPayload(p *payment.Payment, b *booking.Booking, bookingPaid bool) PaymentPayload {
	out := PaymentPayload{
		PaymentID:   p.ID,
		BookingID:   p.BookingID,
		Amount:      p.Amount,
		Method:      string(p.PaymentMethod),
		Status:      string(p.Status),
		BookingPaid: bookingPaid,
	}
	if b != nil {
		out.BookingStatus = string(b.Status)
	}
	return out
}

var (
	_ booking.Notifier = (*Hub)(nil)
	_ payment.Notifier = (*Hub)(nil)
)
