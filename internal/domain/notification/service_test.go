package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"musicstudio/internal/database"
	"musicstudio/internal/domain/access"
	"musicstudio/internal/domain/booking"
	"musicstudio/internal/domain/payment"
	"musicstudio/internal/middleware"
	"musicstudio/internal/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	adminA   int64 = 1
	adminB   int64 = 2
	customer int64 = 10
)

type staticAdmins struct {
	ids []int64
	err error
}

func (s staticAdmins) IDsByRole(context.Context, access.Role) ([]int64, error) {
	return s.ids, s.err
}

func setupService(t *testing.T, admins adminDirectory) (*Service, *Repository) {
	t.Helper()
	dsn := fmt.Sprintf("file:notification_test_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := database.ConnectWithLogger(dsn, logger.Default.LogMode(logger.Silent))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Notification{}))

	repo := NewRepository(db)
	return NewService(repo, admins, nil), repo
}

func sampleBooking() *booking.Booking {
	return &booking.Booking{
		ID:          5,
		UserID:      customer,
		StudioID:    2,
		BookingDate: "2026-10-20",
		StartTime:   "10:00",
		EndTime:     "12:00",
		Status:      booking.StatusPending,
		TotalAmount: decimal.NewFromInt(200),
		PaidAmount:  decimal.Zero,
	}
}

func inbox(t *testing.T, svc *Service, userID int64) []Notification {
	t.Helper()
	out, err := svc.List(context.Background(), userID, false, 50, 0)
	require.NoError(t, err)
	return out.Items
}

func TestBookingEvents_ReachOwnerAndAdmins(t *testing.T) {
	svc, _ := setupService(t, staticAdmins{ids: []int64{adminA, adminB}})
	ctx := context.Background()
	b := sampleBooking()

	svc.BookingCreated(ctx, b)

	mine := inbox(t, svc, customer)
	require.Len(t, mine, 1)
	assert.Equal(t, TypeBookingReceived, mine[0].Type)
	assert.Contains(t, mine[0].Body, "2026-10-20 10:00-12:00")
	assert.Contains(t, mine[0].Body, "200.00")
	require.NotNil(t, mine[0].BookingID)
	assert.Equal(t, int64(5), *mine[0].BookingID)

	for _, id := range []int64{adminA, adminB} {
		items := inbox(t, svc, id)
		require.Len(t, items, 1)
		assert.Equal(t, TypeNewBooking, items[0].Type)
	}

	b.Status = booking.StatusCancelled
	svc.BookingStatusChanged(ctx, b, booking.StatusPending)
	mine = inbox(t, svc, customer)
	require.Len(t, mine, 2)
	assert.Equal(t, TypeBookingCancelled, mine[0].Type, "newest first")

	b.Status = booking.StatusPending
	svc.BookingStatusChanged(ctx, b, booking.StatusPending)
	assert.Len(t, inbox(t, svc, customer), 2, "no notification for a non-final status")
}

func TestPaymentEvents(t *testing.T) {
	svc, _ := setupService(t, staticAdmins{ids: []int64{adminA}})
	ctx := context.Background()
	b := sampleBooking()
	p := &payment.Payment{
		ID:            3,
		BookingID:     b.ID,
		UserID:        customer,
		Amount:        decimal.RequireFromString("150"),
		PaymentMethod: payment.MethodBankTransfer,
		Status:        payment.StatusPending,
	}

	svc.PaymentSubmitted(ctx, p, b)
	assert.Empty(t, inbox(t, svc, customer))
	adminItems := inbox(t, svc, adminA)
	require.Len(t, adminItems, 1)
	assert.Equal(t, TypePaymentPending, adminItems[0].Type)
	require.NotNil(t, adminItems[0].PaymentID)
	assert.Equal(t, int64(3), *adminItems[0].PaymentID)

	p.Status = payment.StatusVerified
	b.PaidAmount = decimal.NewFromInt(150)
	svc.PaymentReviewed(ctx, p, b, false)

	p2 := *p
	p2.ID = 4
	p2.Status = payment.StatusRejected
	svc.PaymentReviewed(ctx, &p2, b, false)

	mine := inbox(t, svc, customer)
	require.Len(t, mine, 2)
	assert.Equal(t, TypePaymentRejected, mine[0].Type)
	assert.Equal(t, TypePaymentVerified, mine[1].Type)
	assert.Contains(t, mine[1].Body, "Remaining balance: 50.00")
}

func TestAdminLookupFailureStillNotifiesOwner(t *testing.T) {
	var logged []string
	svc, _ := setupService(t, staticAdmins{err: errors.New("db down")})
	svc.loggerf = func(format string, args ...interface{}) { logged = append(logged, fmt.Sprintf(format, args...)) }

	svc.BookingCreated(context.Background(), sampleBooking())

	assert.Len(t, inbox(t, svc, customer), 1)
	require.NotEmpty(t, logged)
	assert.Contains(t, logged[0], "load admin ids failed")
}

func TestMarkRead(t *testing.T) {
	svc, _ := setupService(t, staticAdmins{})
	ctx := context.Background()
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	b := sampleBooking()
	svc.BookingCreated(ctx, b)
	b.Status = booking.StatusPaid
	svc.BookingStatusChanged(ctx, b, booking.StatusPending)

	items := inbox(t, svc, customer)
	require.Len(t, items, 2)

	assert.ErrorIs(t, svc.MarkRead(ctx, adminA, items[0].ID), ErrNotFound, "other users cannot touch the notification")
	require.NoError(t, svc.MarkRead(ctx, customer, items[0].ID))

	unread, err := svc.List(ctx, customer, true, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread.UnreadCount)
	assert.Equal(t, int64(1), unread.Total)
	assert.Equal(t, defaultLimit, unread.Limit)

	n, err := svc.MarkAllRead(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	count, err := svc.UnreadCount(ctx, customer)
	require.NoError(t, err)
	assert.Zero(t, count)

	for _, it := range inbox(t, svc, customer) {
		assert.True(t, it.IsRead)
		require.NotNil(t, it.ReadAt)
	}
}

func TestHandler_Inbox(t *testing.T) {
	svc, _ := setupService(t, staticAdmins{})
	svc.BookingCreated(context.Background(), sampleBooking())

	jwtService := jwt.New("notification-test-secret", time.Hour)
	r := gin.New()
	protected := r.Group("/api/v1", middleware.JWTAuth(jwtService))
	NewHandler(svc).RegisterRoutes(protected)

	token, err := jwtService.GenerateToken(customer, string(access.RoleCustomer))
	require.NoError(t, err)
	do := func(method, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do(http.MethodGet, "/api/v1/notifications")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data Inbox `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data.Items, 1)
	assert.Equal(t, int64(1), body.Data.UnreadCount)
	id := body.Data.Items[0].ID

	assert.Equal(t, http.StatusBadRequest, do(http.MethodPatch, "/api/v1/notifications/abc/read").Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodPatch, "/api/v1/notifications/999/read").Code)
	assert.Equal(t, http.StatusOK, do(http.MethodPatch, fmt.Sprintf("/api/v1/notifications/%d/read", id)).Code)

	w = do(http.MethodGet, "/api/v1/notifications/unread-count")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"unread_count":0`)

	assert.Equal(t, http.StatusOK, do(http.MethodPost, "/api/v1/notifications/read-all").Code)
}
