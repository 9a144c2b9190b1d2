package upload

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"musicstudio/internal/database"
)

type Repository interface {
	Create(ctx context.Context, u *Upload) error
	GetByPath(ctx context.Context, path string) (*Upload, error)
	Delete(ctx context.Context, id string) error
	ListByBooking(ctx context.Context, bookingID int64) ([]*Upload, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *Upload) error {
	return database.Conn(ctx, r.db).Create(u).Error
}

func (r *repository) GetByPath(ctx context.Context, path string) (*Upload, error) {
	var u Upload
	err := database.Conn(ctx, r.db).Where("file_path = ?", path).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUploadNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return database.Conn(ctx, r.db).Where("id = ?", id).Delete(&Upload{}).Error
}

func (r *repository) ListByBooking(ctx context.Context, bookingID int64) ([]*Upload, error) {
	var uploads []*Upload
	err := database.Conn(ctx, r.db).Where("booking_id = ?", bookingID).Order("created_at DESC").Find(&uploads).Error
	return uploads, err
}
