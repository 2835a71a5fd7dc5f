package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"corail-backend/internal/models"
	"corail-backend/internal/store"
	"corail-backend/internal/utils"
)

type fakeVerifier map[string]store.Identity

func (f fakeVerifier) Identify(_ context.Context, raw string) (store.Identity, error) {
	if id, ok := f[raw]; ok {
		return id, nil
	}
	return store.Identity{}, errors.New("bad token")
}

type fakeUsers struct {
	users map[string]*models.User
}

func (f *fakeUsers) GetOrCreateUser(_ context.Context, id store.Identity) (*models.User, bool, error) {
	if u, ok := f.users[id.UID]; ok {
		return u, false, nil
	}
	u := &models.User{ID: id.UID, Email: id.Email, VerificationStatus: models.VerificationUnverified}
	f.users[id.UID] = u
	return u, true, nil
}

func newRouter(cfg AuthConfig, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{RequestID(), FirebaseAuth(cfg)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString(ContextUserID),
			"role":    c.GetString(ContextRole),
		})
	})
	r.GET("/me", handlers...)
	return r
}

func do(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestFirebaseAuth(t *testing.T) {
	users := &fakeUsers{users: map[string]*models.User{}}
	cfg := AuthConfig{
		Verifier:  fakeVerifier{"good": {UID: "uid-1", Email: "a@corail.fr"}},
		Users:     users,
		JWTSecret: "s3cret",
		Logger:    zap.NewNop(),
	}
	r := newRouter(cfg)

	w := do(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Token d'authentification manquant"}`, w.Body.String())

	w = do(r, "Token good")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Format du token invalide")

	w = do(r, "Bearer bad")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, "Bearer good")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"uid-1","role":"driver"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Contains(t, users.users, "uid-1")

	admin, err := utils.GenerateAdminJWT("s3cret", time.Hour)
	require.NoError(t, err)
	w = do(r, "Bearer "+admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"","role":"admin"}`, w.Body.String())
}

func TestTokenFromQuery(t *testing.T) {
	r := newRouter(AuthConfig{
		Verifier: fakeVerifier{"good": {UID: "uid-1"}},
		Users:    &fakeUsers{users: map[string]*models.User{}},
		Logger:   zap.NewNop(),
	})
	req := httptest.NewRequest(http.MethodGet, "/me?token=good", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDevFallback(t *testing.T) {
	r := newRouter(AuthConfig{
		Users:       &fakeUsers{users: map[string]*models.User{}},
		DevFallback: true,
		Logger:      zap.NewNop(),
	})
	w := do(r, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"dev-user-001","role":"driver"}`, w.Body.String())

	noDev := newRouter(AuthConfig{Users: &fakeUsers{users: map[string]*models.User{}}, Logger: zap.NewNop()})
	assert.Equal(t, http.StatusUnauthorized, do(noDev, "Bearer anything").Code)
}

func TestAdminOnlyAndRequireVerified(t *testing.T) {
	users := &fakeUsers{users: map[string]*models.User{
		"admin":    {ID: "admin", IsAdmin: true, VerificationStatus: models.VerificationVerified},
		"verified": {ID: "verified", VerificationStatus: models.VerificationVerified},
		"pending":  {ID: "pending", VerificationStatus: models.VerificationPending},
	}}
	cfg := AuthConfig{
		Verifier: fakeVerifier{
			"admin":    {UID: "admin"},
			"verified": {UID: "verified"},
			"pending":  {UID: "pending"},
		},
		Users:  users,
		Logger: zap.NewNop(),
	}

	adminOnly := newRouter(cfg, AdminOnly())
	assert.Equal(t, http.StatusOK, do(adminOnly, "Bearer admin").Code)
	w := do(adminOnly, "Bearer verified")
	assert.Equal(t, http.StatusForbidden, w.Code)

	gated := newRouter(cfg, RequireVerified(true))
	assert.Equal(t, http.StatusOK, do(gated, "Bearer verified").Code)
	w = do(gated, "Bearer pending")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Votre compte doit être vérifié"}`, w.Body.String())

	open := newRouter(cfg, RequireVerified(false))
	assert.Equal(t, http.StatusOK, do(open, "Bearer pending").Code)
}

func TestRequestIDPropagation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), RequestLogger(zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Body.String())
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
}

func TestPrometheusMiddlewareLabelsRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(PrometheusMiddleware())
	r.GET("/rides/:id", func(c *gin.Context) {
		c.Set(ContextRole, "driver")
		c.Status(http.StatusOK)
	})

	counter := RequestsTotal.WithLabelValues(http.MethodGet, "/rides/:id", "200", "driver")
	unmatched := RequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404", "anonymous")
	before, beforeUnmatched := promtest.ToFloat64(counter), promtest.ToFloat64(unmatched)

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/rides/"+id, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, before+2, promtest.ToFloat64(counter))
	assert.Equal(t, beforeUnmatched+1, promtest.ToFloat64(unmatched))
	assert.Zero(t, promtest.ToFloat64(RequestsInFlight))
}

func TestTrackRideEvent(t *testing.T) {
	before := promtest.ToFloat64(RideEventsTotal.WithLabelValues("claimed"))
	TrackRideEvent("claimed")
	assert.Equal(t, before+1, promtest.ToFloat64(RideEventsTotal.WithLabelValues("claimed")))
}
