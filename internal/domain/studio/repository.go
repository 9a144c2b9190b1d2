package studio

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"musicstudio/internal/database"
)

type ListFilter struct {
	ActiveOnly bool
	Status     Status
	Limit      int
	Offset     int
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, s *Studio) error {
	return database.Conn(ctx, r.db).Create(s).Error
}

func (r *Repository) Save(ctx context.Context, s *Studio) error {
	return database.Conn(ctx, r.db).Save(s).Error
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Studio, error) {
	var s Studio
	if err := database.Conn(ctx, r.db).First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// GetForUpdate loads the studio and locks its row until the surrounding transaction ends.
// Bookings for one studio are serialized on this lock.
func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*Studio, error) {
	var s Studio
	err := database.Conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&s, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repository) List(ctx context.Context, f ListFilter) ([]Studio, int64, error) {
	q := database.Conn(ctx, r.db).Model(&Studio{})
	switch {
	case f.ActiveOnly:
		q = q.Where("status = ?", StatusActive)
	case f.Status != "":
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var studios []Studio
	if err := q.Order("created_at DESC, id DESC").Limit(f.Limit).Offset(f.Offset).Find(&studios).Error; err != nil {
		return nil, 0, err
	}
	return studios, total, nil
}

// Delete removes the studio together with its closed bookings and their payments.
// sqlite does not enforce the foreign key cascade, so dependents go first.
// Must run inside a transaction.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	db := database.Conn(ctx, r.db)

	var open int64
	err := db.Table("bookings").
		Where("studio_id = ?", id).
		Where("status NOT IN ?", []string{"cancelled", "completed"}).
		Count(&open).Error
	if err != nil {
		return fmt.Errorf("count open bookings: %w", err)
	}
	if open > 0 {
		return ErrHasActiveBookings
	}

	for _, stmt := range []string{
		"DELETE FROM payment_proofs WHERE booking_id IN (SELECT id FROM bookings WHERE studio_id = ?)",
		"DELETE FROM payments WHERE booking_id IN (SELECT id FROM bookings WHERE studio_id = ?)",
		"DELETE FROM bookings WHERE studio_id = ?",
	} {
		if err := db.Exec(stmt, id).Error; err != nil {
			return fmt.Errorf("delete studio history: %w", err)
		}
	}

	res := db.Delete(&Studio{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) CountByStatus(ctx context.Context, status Status) (int64, error) {
	var n int64
	err := database.Conn(ctx, r.db).Model(&Studio{}).Where("status = ?", status).Count(&n).Error
	return n, err
}
