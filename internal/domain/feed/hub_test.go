package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"musicstudio/internal/domain/access"
	"musicstudio/internal/domain/booking"
	"musicstudio/internal/domain/payment"
	"musicstudio/internal/middleware"
	"musicstudio/internal/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var (
	admin = access.Actor{UserID: 1, Role: access.RoleAdmin}
	alice = access.Actor{UserID: 10, Role: access.RoleCustomer}
	bob   = access.Actor{UserID: 11, Role: access.RoleCustomer}
)

func attach(h *Hub, actor access.Actor, buffer int) *connection {
	c := &connection{actor: actor, send: make(chan []byte, buffer)}
	h.register(c)
	return c
}

func drain(t *testing.T, c *connection) []Event {
	t.Helper()
	var out []Event
	for {
		select {
		case data := <-c.send:
			var ev Event
			require.NoError(t, json.Unmarshal(data, &ev))
			out = append(out, ev)
		default:
			return out
		}
	}
}

func aliceBooking() *booking.Booking {
	return &booking.Booking{
		ID:          7,
		UserID:      alice.UserID,
		StudioID:    3,
		BookingDate: "2026-10-20",
		StartTime:   "10:00",
		EndTime:     "12:00",
		Status:      booking.StatusPending,
		TotalAmount: decimal.NewFromInt(200),
		PaidAmount:  decimal.Zero,
	}
}

func TestPublish_RoutesToAdminsAndOwner(t *testing.T) {
	h := NewHub(nil, nil)
	ctx := context.Background()

	adminConn := attach(h, admin, 8)
	aliceTab1 := attach(h, alice, 8)
	aliceTab2 := attach(h, alice, 8)
	bobConn := attach(h, bob, 8)
	assert.Equal(t, 4, h.Clients())

	b := aliceBooking()
	h.BookingCreated(ctx, b)

	b.Status = booking.StatusCancelled
	h.BookingStatusChanged(ctx, b, booking.StatusPending)

	for _, c := range []*connection{adminConn, aliceTab1, aliceTab2} {
		events := drain(t, c)
		require.Len(t, events, 2)
		assert.Equal(t, EventBookingCreated, events[0].Type)
		assert.Equal(t, EventBookingStatusChanged, events[1].Type)
		assert.False(t, events[0].At.IsZero())

		payload := events[1].Payload.(map[string]any)
		assert.Equal(t, "cancelled", payload["status"])
		assert.Equal(t, "pending", payload["from_status"])
		assert.Equal(t, "200", payload["total_amount"])
	}
	assert.Empty(t, drain(t, bobConn))
}

func TestPublish_PaymentEventsFollowBookingOwner(t *testing.T) {
	h := NewHub(nil, nil)
	ctx := context.Background()

	adminConn := attach(h, admin, 8)
	aliceConn := attach(h, alice, 8)

	b := aliceBooking()
	// recorded by the admin on alice's behalf
	p := &payment.Payment{
		ID:            4,
		BookingID:     b.ID,
		UserID:        admin.UserID,
		Amount:        decimal.NewFromInt(200),
		PaymentMethod: payment.MethodCash,
		Status:        payment.StatusPending,
	}
	h.PaymentSubmitted(ctx, p, b)

	p.Status = payment.StatusVerified
	b.Status = booking.StatusPaid
	h.PaymentReviewed(ctx, p, b, true)

	events := drain(t, aliceConn)
	require.Len(t, events, 2)
	assert.Equal(t, EventPaymentSubmitted, events[0].Type)
	assert.Equal(t, EventPaymentReviewed, events[1].Type)

	payload := events[1].Payload.(map[string]any)
	assert.Equal(t, "verified", payload["status"])
	assert.Equal(t, "paid", payload["booking_status"])
	assert.Equal(t, true, payload["booking_paid"])
	assert.Equal(t, "cash", payload["payment_method"])

	assert.Len(t, drain(t, adminConn), 2)
}

func TestPublish_SkipsSlowClients(t *testing.T) {
	h := NewHub(nil, nil)
	slow := attach(h, alice, 1)
	fast := attach(h, alice, 8)

	b := aliceBooking()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			h.BookingCreated(context.Background(), b)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full client buffer")
	}

	assert.Len(t, drain(t, slow), 1)
	assert.Len(t, drain(t, fast), 5)
}

func TestUnregister_ClosesSendOnce(t *testing.T) {
	h := NewHub(nil, nil)
	c := attach(h, alice, 1)

	h.unregister(c)
	h.unregister(c)

	_, ok := <-c.send
	assert.False(t, ok)
	assert.Zero(t, h.Clients())
}

func TestServeWS_EndToEnd(t *testing.T) {
	jwtService := jwt.New("feed-test-secret", time.Hour)
	hub := NewHub([]string{"https://studio.example.com"}, nil)

	r := gin.New()
	ws := r.Group("/api/v1/ws", middleware.QueryTokenAuth(jwtService))
	NewHandler(hub).RegisterRoutes(ws)

	srv := httptest.NewServer(r)
	defer srv.Close()

	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws/feed"

	_, resp, err := websocket.DefaultDialer.Dial(base, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := jwtService.GenerateToken(alice.UserID, string(alice.Role))
	require.NoError(t, err)

	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	_, resp, err = websocket.DefaultDialer.Dial(base+"?token="+token, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header = http.Header{"Origin": []string{"https://studio.example.com"}}
	conn, _, err := websocket.DefaultDialer.Dial(base+"?token="+token, header)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	var ev Event
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, EventPong, ev.Type)

	hub.BookingCreated(context.Background(), aliceBooking())
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, EventBookingCreated, ev.Type)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, EventError, ev.Type)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}
