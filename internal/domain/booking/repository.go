package booking

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"musicstudio/internal/database"
)

// Filter narrows booking queries. Zero values mean "any".
type Filter struct {
	UserID       int64
	StudioID     int64
	Status       Status
	FromDate     string
	CreatedFrom  time.Time
	CreatedUntil time.Time
	NewestFirst  bool // order by creation instead of by slot
	Limit        int
	Offset       int
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, b *Booking) error {
	return database.Conn(ctx, r.db).Omit(clause.Associations).Create(b).Error
}

func (r *Repository) Save(ctx context.Context, b *Booking) error {
	return database.Conn(ctx, r.db).Omit(clause.Associations).Save(b).Error
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Booking, error) {
	var b Booking
	if err := database.Conn(ctx, r.db).Preload("Studio").First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// GetForUpdate loads and row-locks the booking for the surrounding transaction.
func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*Booking, error) {
	var b Booking
	err := database.Conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// ListActiveForDay returns the non-cancelled bookings of a studio on one date, ordered by start.
func (r *Repository) ListActiveForDay(ctx context.Context, studioID int64, date string) ([]Booking, error) {
	var out []Booking
	err := database.Conn(ctx, r.db).
		Where("studio_id = ? AND booking_date = ?", studioID, date).
		Where("status <> ?", StatusCancelled).
		Order("start_time ASC").
		Find(&out).Error
	return out, err
}

func (r *Repository) List(ctx context.Context, f Filter) ([]Booking, int64, error) {
	q := r.filtered(ctx, f)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "booking_date DESC, start_time DESC, id DESC"
	if f.NewestFirst {
		order = "created_at DESC, id DESC"
	}

	var out []Booking
	err := q.Preload("Studio").
		Order(order).
		Limit(f.Limit).Offset(f.Offset).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Upcoming lists a user's not-cancelled bookings from fromDate on, soonest first.
func (r *Repository) Upcoming(ctx context.Context, userID int64, fromDate string, limit int) ([]Booking, error) {
	var out []Booking
	err := database.Conn(ctx, r.db).
		Preload("Studio").
		Where("user_id = ? AND booking_date >= ? AND status <> ?", userID, fromDate, StatusCancelled).
		Order("booking_date ASC, start_time ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *Repository) Count(ctx context.Context, f Filter) (int64, error) {
	var n int64
	err := r.filtered(ctx, f).Count(&n).Error
	return n, err
}

// SumTotal adds up total_amount over the filtered bookings.
func (r *Repository) SumTotal(ctx context.Context, f Filter) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := r.filtered(ctx, f).Select("COALESCE(SUM(total_amount), 0) AS total").Scan(&row).Error
	return row.Total, err
}

func (r *Repository) filtered(ctx context.Context, f Filter) *gorm.DB {
	q := database.Conn(ctx, r.db).Model(&Booking{})
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.StudioID != 0 {
		q = q.Where("studio_id = ?", f.StudioID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.FromDate != "" {
		q = q.Where("booking_date >= ?", f.FromDate)
	}
	if !f.CreatedFrom.IsZero() {
		q = q.Where("created_at >= ?", f.CreatedFrom)
	}
	if !f.CreatedUntil.IsZero() {
		q = q.Where("created_at < ?", f.CreatedUntil)
	}
	return q
}
