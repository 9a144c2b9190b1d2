// Package metrics exposes the service's prometheus collectors.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder counts booking and payment outcomes. A nil *Recorder is a no-op.
type Recorder struct {
	registry        *prometheus.Registry
	bookingsCreated prometheus.Counter
	slotConflicts   prometheus.Counter
	bookingStatus   *prometheus.CounterVec
	paymentsSubmit  prometheus.Counter
	paymentsReview  *prometheus.CounterVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		bookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "musicstudio",
			Name:      "bookings_created_total",
			Help:      "Bookings accepted.",
		}),
		slotConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "musicstudio",
			Name:      "booking_conflicts_total",
			Help:      "Booking requests rejected because the slot was taken.",
		}),
		bookingStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "musicstudio",
			Name:      "booking_status_changes_total",
			Help:      "Booking status transitions by target status.",
		}, []string{"status"}),
		paymentsSubmit: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "musicstudio",
			Name:      "payments_submitted_total",
			Help:      "Payments reported by customers or admins.",
		}),
		paymentsReview: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "musicstudio",
			Name:      "payments_reviewed_total",
			Help:      "Payments decided by an admin, by result.",
		}, []string{"result"}),
	}

	r.registry.MustRegister(
		r.bookingsCreated,
		r.slotConflicts,
		r.bookingStatus,
		r.paymentsSubmit,
		r.paymentsReview,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) BookingCreated() {
	if r == nil {
		return
	}
	r.bookingsCreated.Inc()
}

func (r *Recorder) SlotConflict() {
	if r == nil {
		return
	}
	r.slotConflicts.Inc()
}

func (r *Recorder) BookingStatusChanged(status string) {
	if r == nil {
		return
	}
	r.bookingStatus.WithLabelValues(status).Inc()
}

func (r *Recorder) PaymentSubmitted() {
	if r == nil {
		return
	}
	r.paymentsSubmit.Inc()
}

func (r *Recorder) PaymentReviewed(result string) {
	if r == nil {
		return
	}
	r.paymentsReview.WithLabelValues(result).Inc()
}

func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the prometheus text format.
func (r *Recorder) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
