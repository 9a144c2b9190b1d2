package payment

import (
	"time"

	"github.com/shopspring/decimal"

	"musicstudio/internal/domain/access"
	"musicstudio/internal/domain/booking"
)

type Method string

const (
	MethodBankTransfer Method = "bank_transfer"
	MethodQRCode       Method = "qr_code"
	MethodCash         Method = "cash"
	MethodCard         Method = "card"
)

func (m Method) Valid() bool {
	switch m {
	case MethodBankTransfer, MethodQRCode, MethodCash, MethodCard:
		return true
	}
	return false
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusRejected Status = "rejected"
)

// Decision is an admin's review outcome.
func (s Status) Decision() bool {
	return s == StatusVerified || s == StatusRejected
}

type Payment struct {
	ID              int64           `json:"id" gorm:"primaryKey"`
	BookingID       int64           `json:"booking_id" gorm:"not null;index"`
	UserID          int64           `json:"user_id" gorm:"not null;index"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:decimal(8,2);not null"`
	PaymentMethod   Method          `json:"payment_method" gorm:"size:20;not null"`
	Status          Status          `json:"status" gorm:"size:20;not null;default:pending;index"`
	ReferenceNumber string          `json:"reference_number,omitempty" gorm:"size:255"`
	Notes           string          `json:"notes,omitempty" gorm:"size:1000"`
	VerifiedBy      *int64          `json:"verified_by,omitempty"`
	VerifiedAt      *time.Time      `json:"verified_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Booking *booking.Booking `json:"booking,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE"`
}

func (Payment) TableName() string { return "payments" }

func (p *Payment) View() access.PaymentView {
	return access.PaymentView{OwnerID: p.UserID}
}

// decide records the admin's review. Only pending payments can be decided.
func (p *Payment) decide(status Status, adminID int64, at time.Time) error {
	if p.Status != StatusPending {
		return ErrAlreadyDecided
	}
	p.Status = status
	p.VerifiedBy = &adminID
	p.VerifiedAt = &at
	return nil
}
