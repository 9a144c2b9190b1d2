package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"musicstudio/internal/database"
	"musicstudio/internal/domain/access"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, u *User) error {
	u.Email = normalizeEmail(u.Email)
	return database.Conn(ctx, r.db).Create(u).Error
}

func (r *Repository) Update(ctx context.Context, u *User) error {
	return database.Conn(ctx, r.db).Save(u).Error
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := database.Conn(ctx, r.db).Where("email = ?", normalizeEmail(email)).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	var u User
	if err := database.Conn(ctx, r.db).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int64
	err := database.Conn(ctx, r.db).Model(&User{}).Where("email = ?", normalizeEmail(email)).Count(&n).Error
	return n > 0, err
}

// RecordFailedLogin stores the attempt counter and an optional lock deadline.
func (r *Repository) RecordFailedLogin(ctx context.Context, id int64, attempts int, lockedUntil *time.Time) error {
	updates := map[string]any{"failed_login_attempts": attempts}
	if lockedUntil != nil {
		updates["locked_until"] = *lockedUntil
	}
	return database.Conn(ctx, r.db).Model(&User{}).Where("id = ?", id).Updates(updates).Error
}

func (r *Repository) ResetFailedLogins(ctx context.Context, id int64) error {
	return database.Conn(ctx, r.db).Model(&User{}).Where("id = ?", id).Updates(map[string]any{
		"failed_login_attempts": 0,
		"locked_until":          nil,
	}).Error
}

func (r *Repository) CountByRole(ctx context.Context, role access.Role) (int64, error) {
	var n int64
	err := database.Conn(ctx, r.db).Model(&User{}).Where("role = ?", role).Count(&n).Error
	return n, err
}

func (r *Repository) IDsByRole(ctx context.Context, role access.Role) ([]int64, error) {
	var ids []int64
	err := database.Conn(ctx, r.db).Model(&User{}).Where("role = ?", role).Order("id").Pluck("id", &ids).Error
	return ids, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
