package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"musicstudio/internal/database"
	"musicstudio/internal/domain/access"
	"musicstudio/internal/middleware"
	"musicstudio/internal/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupService(t *testing.T) (*Service, *Repository, *jwt.Service) {
	t.Helper()
	dsn := fmt.Sprintf("file:auth_test_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := database.ConnectWithLogger(dsn, logger.Default.LogMode(logger.Silent))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&User{}))

	repo := NewRepository(db)
	jwtService := jwt.New("auth-test-secret", time.Hour)
	return NewService(repo, jwtService, nil), repo, jwtService
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, jwtService := setupService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterRequest{Name: " Jane Doe ", Email: "Jane@Example.com ", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", u.Email)
	assert.Equal(t, "Jane Doe", u.Name)
	assert.Equal(t, access.RoleCustomer, u.Role)
	assert.NotEqual(t, "s3cret-pass", u.PasswordHash)

	_, err = svc.Register(ctx, RegisterRequest{Name: "Other", Email: "JANE@example.com", Password: "another-pass"})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	res, err := svc.Login(ctx, LoginRequest{Email: "jane@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, int64(3600), res.ExpiresIn)

	claims, err := jwtService.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "customer", claims.Role)

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_LocksAfterRepeatedFailures(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, err := svc.Register(ctx, RegisterRequest{Name: "Sam", Email: "sam@example.com", Password: "right-password"})
	require.NoError(t, err)

	for i := 1; i < maxFailedLoginAttempts; i++ {
		_, err = svc.Login(ctx, LoginRequest{Email: "sam@example.com", Password: "wrong"})
		require.ErrorIs(t, err, ErrInvalidCredentials, "attempt %d", i)
	}
	_, err = svc.Login(ctx, LoginRequest{Email: "sam@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrAccountLocked)

	_, err = svc.Login(ctx, LoginRequest{Email: "sam@example.com", Password: "right-password"})
	assert.ErrorIs(t, err, ErrAccountLocked, "correct password is refused while locked")

	now = now.Add(lockoutDuration + time.Second)
	_, err = svc.Login(ctx, LoginRequest{Email: "sam@example.com", Password: "right-password"})
	require.NoError(t, err)

	u, err := repo.GetByEmail(ctx, "sam@example.com")
	require.NoError(t, err)
	assert.Zero(t, u.FailedLoginAttempts)
	assert.Nil(t, u.LockedUntil)
}

func TestUpdateProfileAndCount(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterRequest{Name: "Lee", Email: "lee@example.com", Password: "password-1"})
	require.NoError(t, err)

	phone := "+15550100"
	updated, err := svc.UpdateProfile(ctx, u.ID, UpdateProfileRequest{Name: "Lee Park", Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Lee Park", updated.Name)
	assert.Equal(t, phone, updated.Phone)

	_, err = svc.UpdateProfile(ctx, 999, UpdateProfileRequest{Name: "Ghost"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	n, err := repo.CountByRole(ctx, access.RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestHandler_RegisterLoginMe(t *testing.T) {
	svc, _, jwtService := setupService(t)
	h := NewHandler(svc)

	r := gin.New()
	api := r.Group("/api/v1")
	h.RegisterPublicRoutes(api, func(c *gin.Context) { c.Next() })
	protected := api.Group("", middleware.JWTAuth(jwtService))
	h.RegisterProtectedRoutes(protected)

	post := func(path string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
		req := httptest.NewRequest(http.MethodPost, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := post("/api/v1/auth/register", gin.H{"name": "Kim", "email": "not-an-email", "password": "password-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post("/api/v1/auth/register", gin.H{"name": "Kim", "email": "kim@example.com", "password": "password-1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password")

	w = post("/api/v1/auth/register", gin.H{"name": "Kim", "email": "kim@example.com", "password": "password-1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = post("/api/v1/auth/login", gin.H{"email": "kim@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = post("/api/v1/auth/login", gin.H{"email": "kim@example.com", "password": "password-1"})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Tokens struct {
				AccessToken string `json:"access_token"`
			} `json:"tokens"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data.Tokens.AccessToken)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+body.Data.Tokens.AccessToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "kim@example.com")
}
