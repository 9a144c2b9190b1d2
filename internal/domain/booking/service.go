package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"musicstudio/internal/database"
	"musicstudio/internal/domain/access"
	"musicstudio/internal/domain/studio"
)

type Service struct {
	repo     *Repository
	studios  studioStore
	tx       transactor
	notifier Notifier
	metrics  Recorder
	loggerf  func(format string, args ...interface{})
	now      func() time.Time
}

func NewService(repo *Repository, studios studioStore, tx transactor, notifier Notifier, metrics Recorder, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &Service{
		repo:     repo,
		studios:  studios,
		tx:       tx,
		notifier: notifier,
		metrics:  metrics,
		loggerf:  loggerf,
		now:      time.Now,
	}
}

// SlotRequest describes where and when a booking should take place.
type SlotRequest struct {
	StudioID      int64  `json:"studio_id"`
	BookingDate   string `json:"booking_date"`
	StartTime     string `json:"start_time"`
	DurationHours int    `json:"duration_hours"`
	Notes         string `json:"notes"`
}

// normalized holds a validated SlotRequest.
type normalized struct {
	date  string
	slot  Slot
	hours int
	notes string
}

func (s *Service) validate(req SlotRequest) (normalized, error) {
	var n normalized
	if req.StudioID <= 0 {
		return n, invalid("studio_id", "is required")
	}
	if req.DurationHours < MinDurationHours || req.DurationHours > MaxDurationHours {
		return n, invalid("duration_hours", fmt.Sprintf("must be between %d and %d", MinDurationHours, MaxDurationHours))
	}
	if utf8.RuneCountInString(req.Notes) > MaxNotesLength {
		return n, invalid("notes", "must be at most 1000 characters")
	}

	day, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(req.BookingDate), time.Local)
	if err != nil {
		return n, invalid("booking_date", "must be a date in YYYY-MM-DD format")
	}
	today := s.now().Format(time.DateOnly)
	if day.Format(time.DateOnly) < today {
		return n, invalid("booking_date", "must be today or later")
	}

	start, err := ParseClock(req.StartTime)
	if err != nil || start >= endOfDay {
		return n, invalid("start_time", "must be a time in HH:MM format")
	}
	end, sameDay := start.Add(req.DurationHours)
	if !sameDay {
		return n, invalid("duration_hours", "booking must end by 24:00")
	}

	return normalized{
		date:  day.Format(time.DateOnly),
		slot:  Slot{Start: start, End: end},
		hours: req.DurationHours,
		notes: req.Notes,
	}, nil
}

// Create books a slot for the acting user.
func (s *Service) Create(ctx context.Context, actor access.Actor, req SlotRequest) (*Booking, error) {
	if actor.UserID == 0 {
		return nil, ErrForbidden
	}
	n, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	var b *Booking
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		st, err := s.lockStudio(ctx, req.StudioID, n, 0)
		if err != nil {
			return err
		}

		b = &Booking{
			UserID:        actor.UserID,
			StudioID:      st.ID,
			BookingDate:   n.date,
			StartTime:     n.slot.Start.String(),
			EndTime:       n.slot.End.String(),
			DurationHours: n.hours,
			TotalAmount:   st.PriceFor(n.hours),
			PaidAmount:    decimal.Zero,
			Status:        StatusPending,
			Notes:         n.notes,
		}
		if err := s.repo.Create(ctx, b); err != nil {
			if database.IsUniqueViolation(err) {
				return ErrSlotConflict
			}
			return fmt.Errorf("create booking: %w", err)
		}
		b.Studio = st
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSlotConflict) {
			s.metrics.SlotConflict()
		}
		return nil, err
	}

	s.metrics.BookingCreated()
	s.loggerf("level=info msg=booking created booking_id=%d user_id=%d studio_id=%d date=%s start=%s end=%s total=%s",
		b.ID, b.UserID, b.StudioID, b.BookingDate, b.StartTime, b.EndTime, b.TotalAmount.StringFixed(2))
	if s.notifier != nil {
		s.notifier.BookingCreated(ctx, b)
	}
	return b, nil
}

// Edit moves a pending booking to another slot, studio or duration and recomputes its price.
func (s *Service) Edit(ctx context.Context, actor access.Actor, id int64, req SlotRequest) (*Booking, error) {
	n, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	var b *Booking
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		// strangers get Forbidden; owners and admins learn why the booking is locked
		if !access.CanView(actor, b.View()) {
			return ErrForbidden
		}
		if b.Status != StatusPending {
			return ErrNotPending
		}
		if !access.CanUpdate(actor, b.View()) {
			return ErrForbidden
		}

		st, err := s.lockStudio(ctx, req.StudioID, n, b.ID)
		if err != nil {
			return err
		}

		b.StudioID = st.ID
		b.BookingDate = n.date
		b.StartTime = n.slot.Start.String()
		b.EndTime = n.slot.End.String()
		b.DurationHours = n.hours
		b.TotalAmount = st.PriceFor(n.hours)
		b.Notes = n.notes
		if err := s.repo.Save(ctx, b); err != nil {
			if database.IsUniqueViolation(err) {
				return ErrSlotConflict
			}
			return fmt.Errorf("update booking: %w", err)
		}
		b.Studio = st
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSlotConflict) {
			s.metrics.SlotConflict()
		}
		return nil, err
	}

	s.loggerf("level=info msg=booking edited booking_id=%d actor_id=%d date=%s start=%s end=%s total=%s",
		b.ID, actor.UserID, b.BookingDate, b.StartTime, b.EndTime, b.TotalAmount.StringFixed(2))
	return b, nil
}

// lockStudio serializes bookings of one studio on its row lock and checks the slot.
func (s *Service) lockStudio(ctx context.Context, studioID int64, n normalized, excludeID int64) (*studio.Studio, error) {
	st, err := s.studios.GetForUpdate(ctx, studioID)
	if err != nil {
		if errors.Is(err, studio.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load studio: %w", err)
	}
	if !st.AcceptsBookings() {
		return nil, ErrStudioUnavailable
	}

	existing, err := s.repo.ListActiveForDay(ctx, st.ID, n.date)
	if err != nil {
		return nil, fmt.Errorf("load day schedule: %w", err)
	}
	if !IsAvailable(existing, n.slot, excludeID) {
		return nil, ErrSlotConflict
	}
	return st, nil
}

// UpdateStatus is the admin path for status and admin notes. Requesting the current
// status only updates the notes.
func (s *Service) UpdateStatus(ctx context.Context, actor access.Actor, id int64, next Status, adminNotes *string) (*Booking, error) {
	if !access.CanManage(actor) {
		return nil, ErrForbidden
	}
	if !next.Valid() {
		return nil, invalid("status", "must be one of pending, paid, cancelled, completed")
	}
	if adminNotes != nil && utf8.RuneCountInString(*adminNotes) > MaxNotesLength {
		return nil, invalid("admin_notes", "must be at most 1000 characters")
	}

	var (
		b    *Booking
		from Status
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		from = b.Status

		if next != b.Status {
			if !b.Status.CanTransitionTo(next) {
				return ErrInvalidTransition
			}
			adminID := actor.UserID
			b.setStatus(next, &adminID, s.now())
		}
		if adminNotes != nil {
			b.AdminNotes = *adminNotes
		}
		return s.repo.Save(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	if from != b.Status {
		s.statusChanged(ctx, b, from, actor.UserID)
	}
	return b, nil
}

// Cancel moves the booking to cancelled. Completed and already cancelled bookings are final.
func (s *Service) Cancel(ctx context.Context, actor access.Actor, id int64) (*Booking, error) {
	var (
		b    *Booking
		from Status
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		// strangers get Forbidden; owners and admins learn why the booking is locked
		if !access.CanView(actor, b.View()) {
			return ErrForbidden
		}
		if b.Status.IsTerminal() {
			return ErrTerminalState
		}
		if !access.CanDelete(actor, b.View()) {
			return ErrForbidden
		}

		from = b.Status
		b.setStatus(StatusCancelled, nil, s.now())
		return s.repo.Save(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	s.statusChanged(ctx, b, from, actor.UserID)
	return b, nil
}

// AttachPaymentProof records where an uploaded proof was stored. Pending bookings only.
func (s *Service) AttachPaymentProof(ctx context.Context, actor access.Actor, id int64, path string) (*Booking, error) {
	if strings.TrimSpace(path) == "" {
		return nil, invalid("payment_proof", "is required")
	}

	var b *Booking
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		// strangers get Forbidden; owners and admins learn why the booking is locked
		if !access.CanView(actor, b.View()) {
			return ErrForbidden
		}
		if b.Status != StatusPending {
			return ErrNotPending
		}
		if !access.CanUpdate(actor, b.View()) {
			return ErrForbidden
		}

		p := path
		b.PaymentProofPath = &p
		return s.repo.Save(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	s.loggerf("level=info msg=payment proof attached booking_id=%d actor_id=%d path=%s", b.ID, actor.UserID, path)
	return b, nil
}

// CheckProofUpload tells whether actor may upload a proof for the booking right now,
// so files are not stored for requests that would be refused.
func (s *Service) CheckProofUpload(ctx context.Context, actor access.Actor, id int64) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !access.CanView(actor, b.View()) {
		return ErrForbidden
	}
	if b.Status != StatusPending {
		return ErrNotPending
	}
	return nil
}

// PaymentVerified is the event a verified payment applies to its booking.
type PaymentVerified struct {
	BookingID int64
	Amount    decimal.Decimal
	AdminID   int64
}

// Applied is the outcome of ApplyPayment.
type Applied struct {
	Booking    *Booking
	BecamePaid bool
}

// ApplyPayment adds a verified amount to the booking and moves it to paid once the total is
// covered. It joins the caller's transaction so the payment decision and the booking update
// commit together.
func (s *Service) ApplyPayment(ctx context.Context, ev PaymentVerified) (*Applied, error) {
	if !ev.Amount.IsPositive() {
		return nil, invalid("amount", "must be greater than zero")
	}

	var out Applied
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		b, err := s.repo.GetForUpdate(ctx, ev.BookingID)
		if err != nil {
			return err
		}
		if b.Status.IsTerminal() {
			return ErrBookingClosed
		}
		if ev.Amount.GreaterThan(b.RemainingAmount()) {
			return ErrOverpayment
		}

		b.PaidAmount = b.PaidAmount.Add(ev.Amount).Round(2)
		if b.IsFullyPaid() && b.Status == StatusPending {
			adminID := ev.AdminID
			b.setStatus(StatusPaid, &adminID, s.now())
			out.BecamePaid = true
		}
		if err := s.repo.Save(ctx, b); err != nil {
			return fmt.Errorf("apply payment: %w", err)
		}
		out.Booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.loggerf("level=info msg=payment applied booking_id=%d amount=%s paid=%s total=%s status=%s",
		out.Booking.ID, ev.Amount.StringFixed(2), out.Booking.PaidAmount.StringFixed(2), out.Booking.TotalAmount.StringFixed(2), out.Booking.Status)
	return &out, nil
}

// Get returns a booking the actor may view.
func (s *Service) Get(ctx context.Context, actor access.Actor, id int64) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanView(actor, b.View()) {
		return nil, ErrForbidden
	}
	return b, nil
}

// List returns all bookings for admins and the actor's own bookings otherwise.
func (s *Service) List(ctx context.Context, actor access.Actor, f Filter) ([]Booking, int64, error) {
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

// StudioDaySchedule lists the occupied slots of a studio on one date.
func (s *Service) StudioDaySchedule(ctx context.Context, studioID int64, date string) ([]BookedSlot, error) {
	day, err := time.Parse(time.DateOnly, strings.TrimSpace(date))
	if err != nil {
		return nil, invalid("date", "must be a date in YYYY-MM-DD format")
	}
	if _, err := s.studios.GetByID(ctx, studioID); err != nil {
		return nil, err
	}

	bookings, err := s.repo.ListActiveForDay(ctx, studioID, day.Format(time.DateOnly))
	if err != nil {
		return nil, err
	}

	slots := make([]BookedSlot, 0, len(bookings))
	for _, b := range bookings {
		slots = append(slots, BookedSlot{BookingID: b.ID, StartTime: b.StartTime, EndTime: b.EndTime, Status: b.Status})
	}
	return slots, nil
}

func (s *Service) statusChanged(ctx context.Context, b *Booking, from Status, actorID int64) {
	s.metrics.BookingStatusChanged(string(b.Status))
	s.loggerf("level=info msg=booking status changed booking_id=%d actor_id=%d from=%s to=%s", b.ID, actorID, from, b.Status)
	if s.notifier != nil {
		s.notifier.BookingStatusChanged(ctx, b, from)
	}
}
