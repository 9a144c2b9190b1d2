package booking

import (
	"time"

	"github.com/shopspring/decimal"

	"musicstudio/internal/domain/access"
	"musicstudio/internal/domain/studio"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

var transitions = map[Status][]Status{
	StatusPending: {StatusPaid, StatusCancelled},
	StatusPaid:    {StatusCompleted, StatusCancelled},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

const (
	MinDurationHours = 1
	MaxDurationHours = 12
	MaxNotesLength   = 1000
)

type Booking struct {
	ID                int64           `json:"id" gorm:"primaryKey"`
	UserID            int64           `json:"user_id" gorm:"not null;index"`
	StudioID          int64           `json:"studio_id" gorm:"not null;index:idx_bookings_studio_day,priority:1;uniqueIndex:idx_bookings_slot,priority:1,where:status <> 'cancelled'"`
	BookingDate       string          `json:"booking_date" gorm:"size:10;not null;index:idx_bookings_studio_day,priority:2;uniqueIndex:idx_bookings_slot,priority:2"`
	StartTime         string          `json:"start_time" gorm:"size:5;not null;uniqueIndex:idx_bookings_slot,priority:3"`
	EndTime           string          `json:"end_time" gorm:"size:5;not null"`
	DurationHours     int             `json:"duration_hours" gorm:"not null"`
	TotalAmount       decimal.Decimal `json:"total_amount" gorm:"type:decimal(8,2);not null"`
	PaidAmount        decimal.Decimal `json:"paid_amount" gorm:"type:decimal(8,2);not null;default:0"`
	Status            Status          `json:"status" gorm:"size:20;not null;default:pending;index"`
	Notes             string          `json:"notes,omitempty" gorm:"size:1000"`
	AdminNotes        string          `json:"admin_notes,omitempty" gorm:"size:1000"`
	PaymentProofPath  *string         `json:"payment_proof_path,omitempty" gorm:"size:255"`
	PaymentVerifiedAt *time.Time      `json:"payment_verified_at,omitempty"`
	VerifiedBy        *int64          `json:"verified_by,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	Studio *studio.Studio `json:"studio,omitempty" gorm:"foreignKey:StudioID;constraint:OnDelete:CASCADE"`
}

func (Booking) TableName() string { return "bookings" }

func (b *Booking) RemainingAmount() decimal.Decimal {
	return b.TotalAmount.Sub(b.PaidAmount)
}

func (b *Booking) IsFullyPaid() bool {
	return b.PaidAmount.GreaterThanOrEqual(b.TotalAmount)
}

func (b *Booking) Slot() (Slot, error) {
	start, err := ParseClock(b.StartTime)
	if err != nil {
		return Slot{}, err
	}
	end, err := ParseClock(b.EndTime)
	if err != nil {
		return Slot{}, err
	}
	return Slot{Start: start, End: end}, nil
}

// View is what the access policy needs to judge this booking.
func (b *Booking) View() access.BookingView {
	return access.BookingView{OwnerID: b.UserID, Status: string(b.Status)}
}

// setStatus is the single status mutation. Moving to paid with an admin stamps the
// verification fields.
func (b *Booking) setStatus(next Status, verifiedBy *int64, at time.Time) {
	b.Status = next
	if next == StatusPaid && verifiedBy != nil {
		id := *verifiedBy
		b.VerifiedBy = &id
		b.PaymentVerifiedAt = &at
	}
}

// Summary is the JSON shape of a booking with derived amounts.
type Summary struct {
	*Booking
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	FullyPaid       bool            `json:"is_fully_paid"`
}

func (b *Booking) Summary() Summary {
	return Summary{Booking: b, RemainingAmount: b.RemainingAmount(), FullyPaid: b.IsFullyPaid()}
}

// BookedSlot is a public view of an occupied slot, without customer data.
type BookedSlot struct {
	BookingID int64  `json:"booking_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Status    Status `json:"status"`
}
