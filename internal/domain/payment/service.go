package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"musicstudio/internal/domain/access"
	"musicstudio/internal/domain/booking"
	"musicstudio/internal/pkg/validator"
)

// MaxAmount is the largest amount a decimal(8,2) column holds.
var MaxAmount = decimal.RequireFromString("999999.99")

type Service struct {
	repo     *Repository
	bookings bookingLedger
	tx       transactor
	notifier Notifier
	metrics  Recorder
	loggerf  func(format string, args ...interface{})
	now      func() time.Time
}

func NewService(repo *Repository, bookings bookingLedger, tx transactor, notifier Notifier, metrics Recorder, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &Service{
		repo:     repo,
		bookings: bookings,
		tx:       tx,
		notifier: notifier,
		metrics:  metrics,
		loggerf:  loggerf,
		now:      time.Now,
	}
}

// SubmitRequest reports a payment made against a booking.
type SubmitRequest struct {
	BookingID       int64           `json:"booking_id" validate:"required,gt=0"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethod   Method          `json:"payment_method" validate:"required,oneof=bank_transfer qr_code cash card"`
	ReferenceNumber string          `json:"reference_number" validate:"max=255"`
	Notes           string          `json:"notes" validate:"max=1000"`
}

func (r *SubmitRequest) validate() error {
	fields := validator.Validate(r)
	if !r.Amount.IsPositive() || r.Amount.GreaterThan(MaxAmount) || !r.Amount.Equal(r.Amount.Round(2)) {
		if fields == nil {
			fields = map[string]string{}
		}
		fields["amount"] = "range=0.01..999999.99"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Submit records a pending payment. The amount is checked against the balance
// again when the payment is verified.
func (s *Service) Submit(ctx context.Context, actor access.Actor, req SubmitRequest) (*Payment, error) {
	if actor.UserID == 0 {
		return nil, ErrForbidden
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	b, err := s.bookings.Get(ctx, actor, req.BookingID)
	if err != nil {
		return nil, mapBookingErr(err)
	}
	if b.Status != booking.StatusPending {
		return nil, ErrNotPending
	}
	if req.Amount.GreaterThan(b.RemainingAmount()) {
		return nil, ErrOverpayment
	}

	p := &Payment{
		BookingID:       b.ID,
		UserID:          actor.UserID,
		Amount:          req.Amount,
		PaymentMethod:   req.PaymentMethod,
		Status:          StatusPending,
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	s.metrics.PaymentSubmitted()
	s.loggerf("level=info msg=payment submitted payment_id=%d booking_id=%d user_id=%d amount=%s method=%s",
		p.ID, p.BookingID, p.UserID, p.Amount.StringFixed(2), p.PaymentMethod)
	if s.notifier != nil {
		s.notifier.PaymentSubmitted(ctx, p, b)
	}
	return p, nil
}

// Verify accepts a pending payment and applies its amount to the booking in the
// same transaction. The booking moves to paid once its total is covered.
func (s *Service) Verify(ctx context.Context, actor access.Actor, id int64) (*Payment, error) {
	if !access.CanManagePayment(actor) {
		return nil, ErrForbidden
	}

	var (
		p       *Payment
		applied *booking.Applied
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := p.decide(StatusVerified, actor.UserID, s.now()); err != nil {
			return err
		}
		if err := s.repo.Save(ctx, p); err != nil {
			return fmt.Errorf("save payment: %w", err)
		}

		applied, err = s.bookings.ApplyPayment(ctx, booking.PaymentVerified{
			BookingID: p.BookingID,
			Amount:    p.Amount,
			AdminID:   actor.UserID,
		})
		return mapBookingErr(err)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PaymentReviewed(string(StatusVerified))
	if applied.BecamePaid {
		s.metrics.BookingStatusChanged(string(booking.StatusPaid))
	}
	s.loggerf("level=info msg=payment verified payment_id=%d booking_id=%d admin_id=%d amount=%s booking_paid=%t",
		p.ID, p.BookingID, actor.UserID, p.Amount.StringFixed(2), applied.BecamePaid)

	p.Booking = applied.Booking
	if s.notifier != nil {
		s.notifier.PaymentReviewed(ctx, p, applied.Booking, applied.BecamePaid)
	}
	return p, nil
}

// Reject declines a pending payment. The booking is left as it is.
func (s *Service) Reject(ctx context.Context, actor access.Actor, id int64) (*Payment, error) {
	if !access.CanManagePayment(actor) {
		return nil, ErrForbidden
	}

	var p *Payment
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := p.decide(StatusRejected, actor.UserID, s.now()); err != nil {
			return err
		}
		return s.repo.Save(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PaymentReviewed(string(StatusRejected))
	s.loggerf("level=info msg=payment rejected payment_id=%d booking_id=%d admin_id=%d", p.ID, p.BookingID, actor.UserID)

	if s.notifier != nil {
		b, err := s.bookings.Get(ctx, actor, p.BookingID)
		if err != nil {
			s.loggerf("level=warn msg=load booking for payment event failed payment_id=%d err=%v", p.ID, err)
			return p, nil
		}
		p.Booking = b
		s.notifier.PaymentReviewed(ctx, p, b, false)
	}
	return p, nil
}

// Review dispatches an admin decision.
func (s *Service) Review(ctx context.Context, actor access.Actor, id int64, status Status) (*Payment, error) {
	switch status {
	case StatusVerified:
		return s.Verify(ctx, actor, id)
	case StatusRejected:
		return s.Reject(ctx, actor, id)
	}
	return nil, &ValidationError{Fields: map[string]string{"status": "oneof=verified rejected"}}
}

func (s *Service) Get(ctx context.Context, actor access.Actor, id int64) (*Payment, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanViewPayment(actor, p.View()) {
		return nil, ErrForbidden
	}
	return p, nil
}

// List returns all payments for admins and the actor's own submissions otherwise.
func (s *Service) List(ctx context.Context, actor access.Actor, f Filter) ([]Payment, int64, error) {
	if !actor.IsAdmin() {
		f.UserID = actor.UserID
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 15
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.List(ctx, f)
}

// ListForBooking returns every payment of a booking the actor may view.
func (s *Service) ListForBooking(ctx context.Context, actor access.Actor, bookingID int64) ([]Payment, error) {
	if _, err := s.bookings.Get(ctx, actor, bookingID); err != nil {
		return nil, mapBookingErr(err)
	}
	out, _, err := s.repo.List(ctx, Filter{BookingID: bookingID})
	return out, err
}

func mapBookingErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, booking.ErrNotFound):
		return ErrBookingNotFound
	case errors.Is(err, booking.ErrForbidden):
		return ErrForbidden
	case errors.Is(err, booking.ErrBookingClosed):
		return ErrBookingClosed
	case errors.Is(err, booking.ErrOverpayment):
		return ErrOverpayment
	}
	return err
}
