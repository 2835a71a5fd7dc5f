package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"corail-backend/internal/cache"
	"corail-backend/internal/config"
	"corail-backend/internal/events"
	"corail-backend/internal/handlers"
	"corail-backend/internal/middleware"
	"corail-backend/internal/models"
	"corail-backend/internal/routes"
	"corail-backend/internal/services"
	"corail-backend/internal/store"
	"corail-backend/internal/testutil"
	"corail-backend/internal/websocket"
)

const jwtSecret = "test-secret"

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// fakeVerifier принимает любой токен как uid
type fakeVerifier struct{}

func (fakeVerifier) Identify(_ context.Context, raw string) (store.Identity, error) {
	return identity(raw), nil
}

func identity(uid string) store.Identity {
	return store.Identity{UID: uid, Email: uid + "@corail.test", FullName: "Chauffeur " + uid}
}

type recordingPusher struct {
	mu     sync.Mutex
	titles []string
	tokens []string
}

func (p *recordingPusher) SendToDevice(_ context.Context, token, title, _ string, _ map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens = append(p.tokens, token)
	p.titles = append(p.titles, title)
	return nil
}

func (p *recordingPusher) sent() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.titles...)
}

// received - токены устройств, получивших push с заголовком title
func (p *recordingPusher) received(title string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var tokens []string
	for i, t := range p.titles {
		if t == title {
			tokens = append(tokens, p.tokens[i])
		}
	}
	return tokens
}

type testEnv struct {
	router *gin.Engine
	deps   *handlers.Deps
	store  *store.Store
	pusher *recordingPusher
	redis  *miniredis.Miniredis
}

func newEnv(t *testing.T, welcomeBonus int) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	logger := zap.NewNop()

	st := store.New(testutil.NewDB(t),
		store.WithWelcomeBonus(welcomeBonus),
		store.WithClock(func() time.Time { return testNow }))
	require.NoError(t, st.Migrate(ctx))

	rdb, mr := testutil.NewRedis(t)
	pusher := &recordingPusher{}
	notifier := services.NewNotificationService(rdb, pusher, st, logger)
	badges := services.NewBadgeService(st, cache.New(rdb, time.Minute, true), logger)
	_, err := badges.Seed(ctx)
	require.NoError(t, err)

	deps := &handlers.Deps{
		Store:         st,
		Badges:        badges,
		Notifications: notifier,
		WhatsApp:      services.NewWhatsAppService("", "", "", logger),
		Hub:           websocket.NewManager(logger),
		Events:        events.Noop{},
		Redis:         rdb,
		Config: &config.Config{
			QuotesBaseURL:       "https://quotes.test/q/",
			UploadDir:           t.TempDir(),
			RequireVerification: true,
		},
		Logger: logger,
		Now:    func() time.Time { return testNow },
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/health", handlers.Health(deps))
	routes.SetupRoutes(r.Group("/api"), deps, middleware.FirebaseAuth(middleware.AuthConfig{
		Verifier:  fakeVerifier{},
		Users:     st,
		JWTSecret: jwtSecret,
		Logger:    logger,
	}))

	return &testEnv{router: r, deps: deps, store: st, pusher: pusher, redis: mr}
}

// do выполняет запрос от имени uid (пустой uid - без токена)
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// verified создает проверенного водителя
func (e *testEnv) verified(t *testing.T, uid string) {
	t.Helper()
	ctx := context.Background()
	_, _, err := e.store.GetOrCreateUser(ctx, identity(uid))
	require.NoError(t, err)
	_, err = e.store.SubmitVerification(ctx, uid, store.VerificationInput{
		FullName: "Chauffeur " + uid, Phone: "+33 6 12 34 56 78", ProfessionalCardNumber: "VTC-1", Siren: "123456789",
	})
	require.NoError(t, err)
	_, err = e.store.ReviewVerification(ctx, uid, models.VerificationVerified, "")
	require.NoError(t, err)
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decode(t, w, &body)
	return body.Error
}

func (e *testEnv) publish(t *testing.T, uid string, body gin.H) models.RideResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/rides", uid, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var ride models.RideResponse
	decode(t, w, &ride)
	return ride
}
