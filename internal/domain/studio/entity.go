package studio

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive      Status = "active"
	StatusInactive    Status = "inactive"
	StatusMaintenance Status = "maintenance"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusMaintenance:
		return true
	}
	return false
}

// MaxHourlyPrice is the largest price a decimal(8,2) column holds in this schema.
var MaxHourlyPrice = decimal.RequireFromString("9999.99")

type Studio struct {
	ID          int64           `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"size:255;not null"`
	Location    string          `json:"location" gorm:"size:500;not null"`
	HourlyPrice decimal.Decimal `json:"hourly_price" gorm:"type:decimal(8,2);not null"`
	Status      Status          `json:"status" gorm:"size:20;not null;default:active;index"`
	Description string          `json:"description,omitempty" gorm:"size:1000"`
	Equipment   string          `json:"equipment,omitempty" gorm:"size:1000"`
	Capacity    int             `json:"capacity" gorm:"not null;default:1"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (Studio) TableName() string { return "studios" }

// AcceptsBookings reports whether new bookings may be placed or moved here.
func (s *Studio) AcceptsBookings() bool {
	return s.Status == StatusActive
}

// PriceFor returns hourly_price × hours rounded to cents.
func (s *Studio) PriceFor(hours int) decimal.Decimal {
	return s.HourlyPrice.Mul(decimal.NewFromInt(int64(hours))).Round(2)
}
