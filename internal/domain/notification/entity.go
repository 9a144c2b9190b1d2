package notification

import "time"

type Type string

const (
	// customer inbox
	TypeBookingReceived  Type = "booking_received"
	TypeBookingPaid      Type = "booking_paid"
	TypeBookingCancelled Type = "booking_cancelled"
	TypeBookingCompleted Type = "booking_completed"
	TypePaymentVerified  Type = "payment_verified"
	TypePaymentRejected  Type = "payment_rejected"

	// admin inbox
	TypeNewBooking     Type = "new_booking"
	TypePaymentPending Type = "payment_pending"
)

// Notification is one entry in a user's inbox.
type Notification struct {
	ID        int64      `json:"id" gorm:"primaryKey"`
	UserID    int64      `json:"user_id" gorm:"not null;index:idx_notifications_user_unread,priority:1"`
	Type      Type       `json:"type" gorm:"size:40;not null"`
	Title     string     `json:"title" gorm:"size:255;not null"`
	Body      string     `json:"body,omitempty" gorm:"size:1000"`
	BookingID *int64     `json:"booking_id,omitempty"`
	PaymentID *int64     `json:"payment_id,omitempty"`
	IsRead    bool       `json:"is_read" gorm:"not null;default:false;index:idx_notifications_user_unread,priority:2"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
