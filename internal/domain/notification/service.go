// Package notification keeps a per-user inbox of booking and payment updates.
// Customers are told about their own bookings; admins are told about work waiting for them.
package notification

import (
	"context"
	"fmt"
	"time"

	"musicstudio/internal/domain/access"
	"musicstudio/internal/domain/booking"
	"musicstudio/internal/domain/payment"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type adminDirectory interface {
	IDsByRole(ctx context.Context, role access.Role) ([]int64, error)
}

type Service struct {
	repo    *Repository
	admins  adminDirectory
	loggerf func(format string, args ...interface{})
	now     func() time.Time
}

func NewService(repo *Repository, admins adminDirectory, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{repo: repo, admins: admins, loggerf: loggerf, now: time.Now}
}

// Inbox is a page of notifications plus the unread count.
type Inbox struct {
	Items       []Notification `json:"items"`
	Total       int64          `json:"total"`
	UnreadCount int64          `json:"unread_count"`
	Limit       int            `json:"limit"`
	Offset      int            `json:"offset"`
}

func (s *Service) List(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) (*Inbox, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}

	items, total, err := s.repo.List(ctx, Filter{UserID: userID, UnreadOnly: unreadOnly, Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count unread: %w", err)
	}
	return &Inbox{Items: items, Total: total, UnreadCount: unread, Limit: limit, Offset: offset}, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, id int64) error {
	return s.repo.MarkRead(ctx, userID, id, s.now())
}

func (s *Service) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID, s.now())
}

// deliver stores the notifications. Failures are logged: the change that
// triggered them has already been committed.
func (s *Service) deliver(ctx context.Context, items []Notification) {
	if err := s.repo.CreateBatch(ctx, items); err != nil {
		s.loggerf("level=error msg=store notifications failed count=%d err=%v", len(items), err)
	}
}

func (s *Service) toAdmins(ctx context.Context, n Notification) []Notification {
	ids, err := s.admins.IDsByRole(ctx, access.RoleAdmin)
	if err != nil {
		s.loggerf("level=error msg=load admin ids failed err=%v", err)
		return nil
	}
	out := make([]Notification, 0, len(ids))
	for _, id := range ids {
		item := n
		item.UserID = id
		out = append(out, item)
	}
	return out
}

func slotText(b *booking.Booking) string {
	return fmt.Sprintf("%s %s-%s", b.BookingDate, b.StartTime, b.EndTime)
}

func (s *Service) BookingCreated(ctx context.Context, b *booking.Booking) {
	id := b.ID
	items := []Notification{{
		UserID:    b.UserID,
		Type:      TypeBookingReceived,
		Title:     "Booking received",
		Body:      fmt.Sprintf("Your booking for %s is pending payment of %s.", slotText(b), b.TotalAmount.StringFixed(2)),
		BookingID: &id,
	}}
	items = append(items, s.toAdmins(ctx, Notification{
		Type:      TypeNewBooking,
		Title:     "New booking",
		Body:      fmt.Sprintf("Booking #%d for %s.", b.ID, slotText(b)),
		BookingID: &id,
	})...)
	s.deliver(ctx, items)
}

func (s *Service) BookingStatusChanged(ctx context.Context, b *booking.Booking, _ booking.Status) {
	var (
		t     Type
		title string
	)
	switch b.Status {
	case booking.StatusPaid:
		t, title = TypeBookingPaid, "Booking paid"
	case booking.StatusCancelled:
		t, title = TypeBookingCancelled, "Booking cancelled"
	case booking.StatusCompleted:
		t, title = TypeBookingCompleted, "Booking completed"
	default:
		return
	}

	id := b.ID
	s.deliver(ctx, []Notification{{
		UserID:    b.UserID,
		Type:      t,
		Title:     title,
		Body:      fmt.Sprintf("Your booking for %s is now %s.", slotText(b), b.Status),
		BookingID: &id,
	}})
}

func (s *Service) PaymentSubmitted(ctx context.Context, p *payment.Payment, _ *booking.Booking) {
	pid, bid := p.ID, p.BookingID
	s.deliver(ctx, s.toAdmins(ctx, Notification{
		Type:      TypePaymentPending,
		Title:     "Payment awaiting review",
		Body:      fmt.Sprintf("Payment #%d of %s by %s for booking #%d.", p.ID, p.Amount.StringFixed(2), p.PaymentMethod, p.BookingID),
		BookingID: &bid,
		PaymentID: &pid,
	}))
}

func (s *Service) PaymentReviewed(ctx context.Context, p *payment.Payment, b *booking.Booking, _ bool) {
	owner := p.UserID
	if b != nil {
		owner = b.UserID
	}

	n := Notification{UserID: owner}
	switch p.Status {
	case payment.StatusVerified:
		n.Type, n.Title = TypePaymentVerified, "Payment verified"
		n.Body = fmt.Sprintf("Your payment of %s was verified.", p.Amount.StringFixed(2))
		if b != nil {
			n.Body += fmt.Sprintf(" Remaining balance: %s.", b.RemainingAmount().StringFixed(2))
		}
	case payment.StatusRejected:
		n.Type, n.Title = TypePaymentRejected, "Payment rejected"
		n.Body = fmt.Sprintf("Your payment of %s was rejected. Contact the studio if you believe this is a mistake.", p.Amount.StringFixed(2))
	default:
		return
	}

	pid, bid := p.ID, p.BookingID
	n.BookingID, n.PaymentID = &bid, &pid
	s.deliver(ctx, []Notification{n})
}

var (
	_ booking.Notifier = (*Service)(nil)
	_ payment.Notifier = (*Service)(nil)
)
