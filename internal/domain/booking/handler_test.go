package booking

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"musicstudio/internal/domain/access"
	"musicstudio/internal/domain/studio"
	"musicstudio/internal/domain/upload"
	"musicstudio/internal/middleware"
	"musicstudio/internal/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

type apiHarness struct {
	env    *testEnv
	router *gin.Engine
	jwt    *jwt.Service
}

func setupAPI(t *testing.T) *apiHarness {
	t.Helper()
	env := setupEnv(t)
	require.NoError(t, env.db.AutoMigrate(&upload.Upload{}))

	proofs := upload.NewService(upload.NewRepository(env.db), t.TempDir(), 1024)
	h := NewHandler(env.svc, proofs, nil)
	jwtService := jwt.New("booking-handler-secret", time.Hour)

	r := gin.New()
	api := r.Group("/api/v1")
	h.RegisterPublicRoutes(api)

	protected := api.Group("")
	protected.Use(middleware.JWTAuth(jwtService))
	h.RegisterRoutes(protected, func(c *gin.Context) { c.Next() })

	admin := api.Group("/admin")
	admin.Use(middleware.JWTAuth(jwtService), middleware.AdminOnly())
	h.RegisterAdminRoutes(admin)

	return &apiHarness{env: env, router: r, jwt: jwtService}
}

func (a *apiHarness) token(t *testing.T, actor access.Actor) string {
	t.Helper()
	tok, err := a.jwt.GenerateToken(actor.UserID, string(actor.Role))
	require.NoError(t, err)
	return tok
}

func (a *apiHarness) do(t *testing.T, method, path string, actor *access.Actor, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		req.Header.Set("Authorization", "Bearer "+a.token(t, *actor))
	}
	return a.serve(t, req)
}

func (a *apiHarness) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if bytes.HasPrefix(bytes.TrimSpace(w.Body.Bytes()), []byte("{")) {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestHandler_CreateAndConflict(t *testing.T) {
	api := setupAPI(t)
	st := api.env.studio(t, "100.00", studio.StatusActive)

	body := gin.H{"studio_id": st.ID, "booking_date": day, "start_time": "10:00", "duration_hours": 2}
	w, env := api.do(t, http.MethodPost, "/api/v1/bookings", &alice, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID              int64  `json:"id"`
		EndTime         string `json:"end_time"`
		Status          string `json:"status"`
		TotalAmount     string `json:"total_amount"`
		RemainingAmount string `json:"remaining_amount"`
		FullyPaid       bool   `json:"is_fully_paid"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "12:00", created.EndTime)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, "200", created.TotalAmount)
	assert.Equal(t, "200", created.RemainingAmount)
	assert.False(t, created.FullyPaid)

	body["start_time"] = "12:00"
	body["duration_hours"] = 1
	w, env = api.do(t, http.MethodPost, "/api/v1/bookings", &bob, body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "SLOT_CONFLICT", env.Error.Code)

	body["duration_hours"] = 20
	w, env = api.do(t, http.MethodPost, "/api/v1/bookings", &bob, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "duration_hours")

	w, _ = api.do(t, http.MethodPost, "/api/v1/bookings", nil, body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_StudioErrors(t *testing.T) {
	api := setupAPI(t)
	closed := api.env.studio(t, "50.00", studio.StatusMaintenance)

	w, env := api.do(t, http.MethodPost, "/api/v1/bookings", &alice,
		gin.H{"studio_id": closed.ID, "booking_date": day, "start_time": "10:00", "duration_hours": 1})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "STUDIO_UNAVAILABLE", env.Error.Code)

	w, env = api.do(t, http.MethodPost, "/api/v1/bookings", &alice,
		gin.H{"studio_id": 9999, "booking_date": day, "start_time": "10:00", "duration_hours": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "STUDIO_NOT_FOUND", env.Error.Code)
}

func TestHandler_OwnershipAndCancel(t *testing.T) {
	api := setupAPI(t)
	st := api.env.studio(t, "100.00", studio.StatusActive)
	b := api.env.book(t, alice, st.ID, "10:00", 1)
	path := "/api/v1/bookings/" + itoa(b.ID)

	w, env := api.do(t, http.MethodGet, path, &bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	w, _ = api.do(t, http.MethodGet, path, &admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = api.do(t, http.MethodGet, "/api/v1/bookings/abc", &alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", env.Error.Code)

	w, _ = api.do(t, http.MethodDelete, path, &alice, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = api.do(t, http.MethodDelete, path, &alice, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "TERMINAL_STATE", env.Error.Code)
}

func TestHandler_ListScopesToOwner(t *testing.T) {
	api := setupAPI(t)
	st := api.env.studio(t, "100.00", studio.StatusActive)
	api.env.book(t, alice, st.ID, "08:00", 1)
	api.env.book(t, bob, st.ID, "12:00", 1)

	var page struct {
		Items []Summary `json:"items"`
		Total int64     `json:"total"`
		Limit int       `json:"limit"`
	}

	w, env := api.do(t, http.MethodGet, "/api/v1/bookings?limit=5", &alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 5, page.Limit)
	require.Len(t, page.Items, 1)
	assert.Equal(t, alice.UserID, page.Items[0].UserID)

	w, env = api.do(t, http.MethodGet, "/api/v1/bookings", &admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(2), page.Total)
}

func TestHandler_AdminStatus(t *testing.T) {
	api := setupAPI(t)
	st := api.env.studio(t, "100.00", studio.StatusActive)
	b := api.env.book(t, alice, st.ID, "10:00", 1)
	path := "/api/v1/admin/bookings/" + itoa(b.ID) + "/status"

	w, _ := api.do(t, http.MethodPatch, path, &alice, gin.H{"status": "paid"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := api.do(t, http.MethodPatch, path, &admin, gin.H{"status": "completed"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", env.Error.Code)

	w, env = api.do(t, http.MethodPatch, path, &admin, gin.H{"status": "paid", "admin_notes": "paid in cash"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got Summary
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, StatusPaid, got.Status)
	assert.Equal(t, "paid in cash", got.AdminNotes)
	require.NotNil(t, got.VerifiedBy)
	assert.Equal(t, admin.UserID, *got.VerifiedBy)

	w, env = api.do(t, http.MethodPut, "/api/v1/bookings/"+itoa(b.ID), &alice,
		gin.H{"studio_id": st.ID, "booking_date": day, "start_time": "15:00", "duration_hours": 1})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "NOT_PENDING", env.Error.Code)
}

func TestHandler_Availability(t *testing.T) {
	api := setupAPI(t)
	st := api.env.studio(t, "100.00", studio.StatusActive)
	api.env.book(t, alice, st.ID, "10:00", 2)

	w, env := api.do(t, http.MethodGet, "/api/v1/studios/"+itoa(st.ID)+"/availability?date="+day, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var out struct {
		StudioID int64        `json:"studio_id"`
		Date     string       `json:"date"`
		Slots    []BookedSlot `json:"booked_slots"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, st.ID, out.StudioID)
	require.Len(t, out.Slots, 1)
	assert.Equal(t, "10:00", out.Slots[0].StartTime)
	assert.Equal(t, "12:00", out.Slots[0].EndTime)
	assert.NotContains(t, w.Body.String(), "user_id")

	w, env = api.do(t, http.MethodGet, "/api/v1/studios/"+itoa(st.ID)+"/availability", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestHandler_PaymentProofUpload(t *testing.T) {
	api := setupAPI(t)
	st := api.env.studio(t, "100.00", studio.StatusActive)
	b := api.env.book(t, alice, st.ID, "10:00", 1)
	path := "/api/v1/bookings/" + itoa(b.ID) + "/payment-proof"

	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

	send := func(actor access.Actor, name string, content []byte) (*httptest.ResponseRecorder, envelope) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("payment_proof", name)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, path, &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+api.token(t, actor))
		return api.serve(t, req)
	}

	w, env := send(bob, "receipt.png", png)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	w, env = send(alice, "receipt.txt", []byte("just some plain text"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_FILE", env.Error.Code)

	w, env = send(alice, "big.png", append(png, bytes.Repeat([]byte{0}, 2048)...))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "FILE_TOO_LARGE", env.Error.Code)

	w, env = send(alice, "receipt.png", png)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got Summary
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.NotNil(t, got.PaymentProofPath)

	w, _ = api.do(t, http.MethodGet, path, &alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, png, w.Body.Bytes())

	w, env = api.do(t, http.MethodGet, path, &bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
