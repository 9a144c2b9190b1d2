package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"musicstudio/internal/database"
	"musicstudio/internal/domain/access"
)

const (
	maxFailedLoginAttempts = 5
	lockoutDuration        = 15 * time.Minute
)

type tokenIssuer interface {
	GenerateToken(userID int64, role string) (string, error)
	TTL() time.Duration
}

type Service struct {
	users   *Repository
	jwt     tokenIssuer
	loggerf func(format string, args ...interface{})
	now     func() time.Time
}

func NewService(users *Repository, jwt tokenIssuer, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{users: users, jwt: jwt, loggerf: loggerf, now: time.Now}
}

type LoginResult struct {
	User        *User  `json:"user"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Register creates a customer account. Admins are only created by the seeder.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Phone:        strings.TrimSpace(req.Phone),
		Role:         access.RoleCustomer,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.loggerf("level=info msg=user registered user_id=%d", u.ID)
	return u, nil
}

// Login checks the password and issues an access token. Five consecutive failures
// lock the account for fifteen minutes.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	now := s.now()
	if u.lockedAt(now) {
		return nil, ErrAccountLocked
	}

	if !CheckPassword(req.Password, u.PasswordHash) {
		attempts := u.FailedLoginAttempts + 1
		var until *time.Time
		if attempts >= maxFailedLoginAttempts {
			t := now.Add(lockoutDuration)
			until = &t
		}
		if err := s.users.RecordFailedLogin(ctx, u.ID, attempts, until); err != nil {
			return nil, fmt.Errorf("record failed login: %w", err)
		}
		if until != nil {
			s.loggerf("level=warn msg=account locked user_id=%d attempts=%d", u.ID, attempts)
			return nil, ErrAccountLocked
		}
		return nil, ErrInvalidCredentials
	}

	if u.FailedLoginAttempts > 0 || u.LockedUntil != nil {
		if err := s.users.ResetFailedLogins(ctx, u.ID); err != nil {
			return nil, fmt.Errorf("reset failed logins: %w", err)
		}
		u.FailedLoginAttempts = 0
		u.LockedUntil = nil
	}

	token, err := s.jwt.GenerateToken(u.ID, string(u.Role))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{User: u, AccessToken: token, ExpiresIn: int64(s.jwt.TTL().Seconds())}, nil
}

func (s *Service) GetCurrentUser(ctx context.Context, userID int64) (*User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		u.Name = name
	}
	if req.Phone != nil {
		u.Phone = strings.TrimSpace(*req.Phone)
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}
