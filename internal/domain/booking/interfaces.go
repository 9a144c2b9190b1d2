package booking

import (
	"context"

	"musicstudio/internal/domain/studio"
)

type studioStore interface {
	GetForUpdate(ctx context.Context, id int64) (*studio.Studio, error)
	GetByID(ctx context.Context, id int64) (*studio.Studio, error)
}

type transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier receives booking events after the change is committed.
type Notifier interface {
	BookingCreated(ctx context.Context, b *Booking)
	BookingStatusChanged(ctx context.Context, b *Booking, from Status)
}

// Recorder counts booking outcomes.
type Recorder interface {
	BookingCreated()
	SlotConflict()
	BookingStatusChanged(status string)
}

type nopRecorder struct{}

func (nopRecorder) BookingCreated()             {}
func (nopRecorder) SlotConflict()               {}
func (nopRecorder) BookingStatusChanged(string) {}

// Notifiers fans an event out to several notifiers in order.
type Notifiers []Notifier

func (ns Notifiers) BookingCreated(ctx context.Context, b *Booking) {
	for _, n := range ns {
		n.BookingCreated(ctx, b)
	}
}

func (ns Notifiers) BookingStatusChanged(ctx context.Context, b *Booking, from Status) {
	for _, n := range ns {
		n.BookingStatusChanged(ctx, b, from)
	}
}
