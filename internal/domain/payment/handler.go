package payment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"musicstudio/internal/middleware"
	"musicstudio/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type reviewRequest struct {
	Status Status `json:"status" binding:"required"`
}

// List handles GET /api/v1/payments
func (h *Handler) List(c *gin.Context) {
	limit, offset := middleware.Pagination(c, 15)
	f := Filter{Limit: limit, Offset: offset, Status: Status(c.Query("status"))}
	if v := c.Query("booking_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.BookingID = id
		}
	}

	items, total, err := h.service.List(c.Request.Context(), middleware.CurrentActor(c), f)
	if err != nil {
		writeError(c, err)
		return
	}
	response.List(c, items, total, limit, offset)
}

// Submit handles POST /api/v1/payments
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}

	p, err := h.service.Submit(c.Request.Context(), middleware.CurrentActor(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p)
}

// Get handles GET /api/v1/payments/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	p, err := h.service.Get(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// ListForBooking handles GET /api/v1/bookings/:id/payments
func (h *Handler) ListForBooking(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	items, err := h.service.ListForBooking(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// Review handles PATCH /api/v1/payments/:id (admin), body {"status":"verified"|"rejected"}
func (h *Handler) Review(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}

	p, err := h.service.Review(c.Request.Context(), middleware.CurrentActor(c), id, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

func writeError(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payment data", verr.Fields)
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Payment not found")
	case errors.Is(err, ErrBookingNotFound):
		response.Error(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You are not allowed to do this")
	case errors.Is(err, ErrNotPending):
		response.Error(c, http.StatusConflict, "NOT_PENDING", "Booking is not awaiting payment")
	case errors.Is(err, ErrAlreadyDecided):
		response.Error(c, http.StatusConflict, "ALREADY_DECIDED", "Payment has already been reviewed")
	case errors.Is(err, ErrBookingClosed):
		response.Error(c, http.StatusConflict, "BOOKING_CLOSED", "Booking is completed or cancelled")
	case errors.Is(err, ErrOverpayment):
		response.Error(c, http.StatusUnprocessableEntity, "OVERPAYMENT", "Amount exceeds the remaining balance")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid ID")
		return 0, false
	}
	return id, true
}
