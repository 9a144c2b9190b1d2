// Package dashboard aggregates booking, studio, user and payment counts for the
// admin and customer home screens.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"musicstudio/internal/domain/access"
	"musicstudio/internal/domain/booking"
	"musicstudio/internal/domain/payment"
	"musicstudio/internal/domain/studio"
)

const (
	adminRecentLimit    = 10
	customerRecentLimit = 5
	upcomingLimit       = 5
)

type bookingStats interface {
	Count(ctx context.Context, f booking.Filter) (int64, error)
	SumTotal(ctx context.Context, f booking.Filter) (decimal.Decimal, error)
	List(ctx context.Context, f booking.Filter) ([]booking.Booking, int64, error)
	Upcoming(ctx context.Context, userID int64, fromDate string, limit int) ([]booking.Booking, error)
}

type studioStats interface {
	CountByStatus(ctx context.Context, status studio.Status) (int64, error)
}

type userStats interface {
	CountByRole(ctx context.Context, role access.Role) (int64, error)
}

type paymentStats interface {
	Count(ctx context.Context, f payment.Filter) (int64, error)
	List(ctx context.Context, f payment.Filter) ([]payment.Payment, int64, error)
}

type AdminStats struct {
	TotalBookings   int64           `json:"total_bookings"`
	PendingBookings int64           `json:"pending_bookings"`
	ActiveStudios   int64           `json:"active_studios"`
	TotalCustomers  int64           `json:"total_customers"`
	MonthlyRevenue  decimal.Decimal `json:"monthly_revenue"`
	PendingPayments int64           `json:"pending_payments"`
}

type AdminDashboard struct {
	Stats           AdminStats        `json:"stats"`
	RecentBookings  []booking.Booking `json:"recent_bookings"`
	PendingPayments []payment.Payment `json:"pending_payments"`
}

type CustomerStats struct {
	TotalBookings     int64           `json:"total_bookings"`
	PendingBookings   int64           `json:"pending_bookings"`
	CompletedBookings int64           `json:"completed_bookings"`
	TotalSpent        decimal.Decimal `json:"total_spent"`
}

type CustomerDashboard struct {
	Stats            CustomerStats     `json:"stats"`
	RecentBookings   []booking.Booking `json:"recent_bookings"`
	UpcomingBookings []booking.Booking `json:"upcoming_bookings"`
}

type Service struct {
	bookings bookingStats
	studios  studioStats
	users    userStats
	payments paymentStats
	now      func() time.Time
}

func NewService(bookings bookingStats, studios studioStats, users userStats, payments paymentStats) *Service {
	return &Service{
		bookings: bookings,
		studios:  studios,
		users:    users,
		payments: payments,
		now:      time.Now,
	}
}

// Admin returns platform-wide figures. Monthly revenue counts completed bookings
// created in the current calendar month.
func (s *Service) Admin(ctx context.Context) (*AdminDashboard, error) {
	var (
		out AdminDashboard
		err error
	)

	if out.Stats.TotalBookings, err = s.bookings.Count(ctx, booking.Filter{}); err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}
	if out.Stats.PendingBookings, err = s.bookings.Count(ctx, booking.Filter{Status: booking.StatusPending}); err != nil {
		return nil, fmt.Errorf("count pending bookings: %w", err)
	}
	if out.Stats.ActiveStudios, err = s.studios.CountByStatus(ctx, studio.StatusActive); err != nil {
		return nil, fmt.Errorf("count active studios: %w", err)
	}
	if out.Stats.TotalCustomers, err = s.users.CountByRole(ctx, access.RoleCustomer); err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	out.Stats.MonthlyRevenue, err = s.bookings.SumTotal(ctx, booking.Filter{
		Status:       booking.StatusCompleted,
		CreatedFrom:  monthStart,
		CreatedUntil: monthStart.AddDate(0, 1, 0),
	})
	if err != nil {
		return nil, fmt.Errorf("sum monthly revenue: %w", err)
	}

	if out.Stats.PendingPayments, err = s.payments.Count(ctx, payment.Filter{Status: payment.StatusPending}); err != nil {
		return nil, fmt.Errorf("count pending payments: %w", err)
	}

	if out.RecentBookings, _, err = s.bookings.List(ctx, booking.Filter{NewestFirst: true, Limit: adminRecentLimit}); err != nil {
		return nil, fmt.Errorf("recent bookings: %w", err)
	}
	if out.PendingPayments, _, err = s.payments.List(ctx, payment.Filter{Status: payment.StatusPending, Limit: adminRecentLimit}); err != nil {
		return nil, fmt.Errorf("pending payments: %w", err)
	}

	return &out, nil
}

// Customer returns figures scoped to one user. Total spent counts completed bookings only.
func (s *Service) Customer(ctx context.Context, userID int64) (*CustomerDashboard, error) {
	var (
		out CustomerDashboard
		err error
	)

	own := booking.Filter{UserID: userID}
	if out.Stats.TotalBookings, err = s.bookings.Count(ctx, own); err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}

	pending := own
	pending.Status = booking.StatusPending
	if out.Stats.PendingBookings, err = s.bookings.Count(ctx, pending); err != nil {
		return nil, fmt.Errorf("count pending bookings: %w", err)
	}

	completed := own
	completed.Status = booking.StatusCompleted
	if out.Stats.CompletedBookings, err = s.bookings.Count(ctx, completed); err != nil {
		return nil, fmt.Errorf("count completed bookings: %w", err)
	}
	if out.Stats.TotalSpent, err = s.bookings.SumTotal(ctx, completed); err != nil {
		return nil, fmt.Errorf("sum spent: %w", err)
	}

	recent := own
	recent.NewestFirst = true
	recent.Limit = customerRecentLimit
	if out.RecentBookings, _, err = s.bookings.List(ctx, recent); err != nil {
		return nil, fmt.Errorf("recent bookings: %w", err)
	}

	today := s.now().Format(time.DateOnly)
	if out.UpcomingBookings, err = s.bookings.Upcoming(ctx, userID, today, upcomingLimit); err != nil {
		return nil, fmt.Errorf("upcoming bookings: %w", err)
	}

	return &out, nil
}

// For picks the admin or customer view for the actor.
func (s *Service) For(ctx context.Context, actor access.Actor) (any, error) {
	if actor.IsAdmin() {
		return s.Admin(ctx)
	}
	return s.Customer(ctx, actor.UserID)
}
