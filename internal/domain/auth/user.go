package auth

import (
	"time"

	"musicstudio/internal/domain/access"
)

type User struct {
	ID                  int64       `json:"id" gorm:"primaryKey"`
	Email               string      `json:"email" gorm:"size:255;not null;uniqueIndex"`
	PasswordHash        string      `json:"-" gorm:"size:255;not null"`
	Name                string      `json:"name" gorm:"size:255;not null"`
	Phone               string      `json:"phone,omitempty" gorm:"size:32"`
	Role                access.Role `json:"role" gorm:"size:20;not null;default:customer;index"`
	FailedLoginAttempts int         `json:"-" gorm:"not null;default:0"`
	LockedUntil         *time.Time  `json:"-"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) Actor() access.Actor {
	return access.Actor{UserID: u.ID, Role: u.Role}
}

func (u *User) lockedAt(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}
