package booking

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"musicstudio/internal/domain/studio"
	"musicstudio/internal/domain/upload"
	"musicstudio/internal/middleware"
	"musicstudio/internal/pkg/response"
)

// ProofStore keeps uploaded payment-proof files.
type ProofStore interface {
	Save(ctx context.Context, userID, bookingID int64, fileHeader *multipart.FileHeader) (*upload.Upload, error)
	Discard(ctx context.Context, u *upload.Upload) error
	Resolve(relPath string) (string, error)
}

type Handler struct {
	service *Service
	proofs  ProofStore
	loggerf func(format string, args ...interface{})
}

func NewHandler(service *Service, proofs ProofStore, loggerf func(format string, args ...interface{})) *Handler {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Handler{service: service, proofs: proofs, loggerf: loggerf}
}

type updateStatusRequest struct {
	Status     Status  `json:"status" binding:"required"`
	AdminNotes *string `json:"admin_notes"`
}

// List handles GET /api/v1/bookings
func (h *Handler) List(c *gin.Context) {
	limit, offset := middleware.Pagination(c, 15)
	f := Filter{Limit: limit, Offset: offset, Status: Status(c.Query("status"))}
	if v := c.Query("studio_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.StudioID = id
		}
	}

	items, total, err := h.service.List(c.Request.Context(), middleware.CurrentActor(c), f)
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]Summary, 0, len(items))
	for i := range items {
		out = append(out, items[i].Summary())
	}
	response.List(c, out, total, limit, offset)
}

// Create handles POST /api/v1/bookings
func (h *Handler) Create(c *gin.Context) {
	var req SlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}

	b, err := h.service.Create(c.Request.Context(), middleware.CurrentActor(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, b.Summary())
}

// Get handles GET /api/v1/bookings/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	b, err := h.service.Get(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, b.Summary())
}

// Update handles PUT /api/v1/bookings/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req SlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}

	b, err := h.service.Edit(c.Request.Context(), middleware.CurrentActor(c), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, b.Summary())
}

// Cancel handles DELETE /api/v1/bookings/:id. Bookings are cancelled, never removed.
func (h *Handler) Cancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	b, err := h.service.Cancel(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, b.Summary())
}

// UpdateStatus handles PATCH /api/v1/bookings/:id/status (admin)
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}

	b, err := h.service.UpdateStatus(c.Request.Context(), middleware.CurrentActor(c), id, req.Status, req.AdminNotes)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, b.Summary())
}

// UploadProof handles POST /api/v1/bookings/:id/payment-proof (multipart field payment_proof)
func (h *Handler) UploadProof(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	actor := middleware.CurrentActor(c)
	ctx := c.Request.Context()

	if err := h.service.CheckProofUpload(ctx, actor, id); err != nil {
		h.writeError(c, err)
		return
	}

	fileHeader, err := c.FormFile("payment_proof")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "FILE_REQUIRED", "payment_proof file is required")
		return
	}

	stored, err := h.proofs.Save(ctx, actor.UserID, id, fileHeader)
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrEmptyFile), errors.Is(err, upload.ErrInvalidMimeType):
			response.Error(c, http.StatusBadRequest, "INVALID_FILE", "Payment proof must be a jpg, jpeg, png or pdf file")
		case errors.Is(err, upload.ErrFileTooLarge):
			response.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "Payment proof must not exceed 5MB")
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to store payment proof")
		}
		return
	}

	b, err := h.service.AttachPaymentProof(ctx, actor, id, stored.FilePath)
	if err != nil {
		if derr := h.proofs.Discard(ctx, stored); derr != nil {
			h.loggerf("level=error msg=discard payment proof failed booking_id=%d path=%s err=%v", id, stored.FilePath, derr)
		}
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, b.Summary())
}

// DownloadProof handles GET /api/v1/bookings/:id/payment-proof
func (h *Handler) DownloadProof(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	b, err := h.service.Get(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if b.PaymentProofPath == nil {
		response.Error(c, http.StatusNotFound, "PROOF_NOT_FOUND", "No payment proof uploaded")
		return
	}

	abs, err := h.proofs.Resolve(*b.PaymentProofPath)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}
	c.File(abs)
}

// StudioAvailability handles GET /api/v1/studios/:id/availability?date=YYYY-MM-DD
func (h *Handler) StudioAvailability(c *gin.Context) {
	studioID, ok := parseID(c)
	if !ok {
		return
	}
	date := c.Query("date")

	slots, err := h.service.StudioDaySchedule(c.Request.Context(), studioID, date)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"studio_id":    studioID,
		"date":         date,
		"booked_slots": slots,
	})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error(), gin.H{verr.Field: verr.Message})
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
	case errors.Is(err, studio.ErrNotFound):
		response.Error(c, http.StatusNotFound, "STUDIO_NOT_FOUND", "Studio not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You are not allowed to do this")
	case errors.Is(err, ErrStudioUnavailable):
		response.Error(c, http.StatusUnprocessableEntity, "STUDIO_UNAVAILABLE", "Studio is not available for booking")
	case errors.Is(err, ErrSlotConflict):
		response.Error(c, http.StatusConflict, "SLOT_CONFLICT", "Studio is not available for the selected time slot")
	case errors.Is(err, ErrNotPending):
		response.Error(c, http.StatusConflict, "NOT_PENDING", "Only pending bookings can be changed")
	case errors.Is(err, ErrTerminalState):
		response.Error(c, http.StatusConflict, "TERMINAL_STATE", "Booking is already completed or cancelled")
	case errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", "Status change is not allowed")
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
