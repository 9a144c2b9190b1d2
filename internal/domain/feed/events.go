package feed

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventBookingCreated       = "booking_created"
	EventBookingStatusChanged = "booking_status_changed"
	EventPaymentSubmitted     = "payment_submitted"
	EventPaymentReviewed      = "payment_reviewed"
	EventPong                 = "pong"
	EventError                = "error"
)

// Event is what clients receive on the feed.
type Event struct {
	Type    string    `json:"type"`
	At      time.Time `json:"at"`
	Payload any       `json:"payload,omitempty"`
}

type BookingPayload struct {
	BookingID   int64           `json:"booking_id"`
	UserID      int64           `json:"user_id"`
	StudioID    int64           `json:"studio_id"`
	BookingDate string          `json:"booking_date"`
	StartTime   string          `json:"start_time"`
	EndTime     string          `json:"end_time"`
	Status      string          `json:"status"`
	FromStatus  string          `json:"from_status,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
}

type PaymentPayload struct {
	PaymentID     int64           `json:"payment_id"`
	BookingID     int64           `json:"booking_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"payment_method"`
	Status        string          `json:"status"`
	BookingStatus string          `json:"booking_status,omitempty"`
	BookingPaid   bool            `json:"booking_paid"`
}

type clientMessage struct {
	Type string `json:"type"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
