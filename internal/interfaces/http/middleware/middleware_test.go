package middleware_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/apperr"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestStatusOf(t *testing.T) {
	cases := map[apperr.Kind]int{
		apperr.KindNotAuthenticated:   http.StatusUnauthorized,
		apperr.KindNotAuthorized:      http.StatusForbidden,
		apperr.KindProductNotFound:    http.StatusNotFound,
		apperr.KindLineItemNotFound:   http.StatusNotFound,
		apperr.KindOrderNotFound:      http.StatusNotFound,
		apperr.KindInvalidInput:       http.StatusBadRequest,
		apperr.KindConflict:           http.StatusConflict,
		apperr.KindStorageUnavailable: http.StatusServiceUnavailable,
		apperr.KindBillingUnavailable: http.StatusBadGateway,
		apperr.KindInternal:           http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, middleware.StatusOf(kind), kind.String())
	}
}

func TestErrorResponse_HidesUnclassifiedErrors(t *testing.T) {
	status, body := middleware.ErrorResponse(errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", body["error"])

	status, body = middleware.ErrorResponse(apperr.Storage(errors.New("pq: connection refused"), "load cart"))
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "failed to load cart", body["error"])
	assert.Equal(t, "storage_unavailable", body["code"])
}

type stubAuthenticator struct {
	caller user.Caller
	err    error
}

func (s stubAuthenticator) Authenticate(ctx context.Context, token string) (user.Caller, *auth.Claims, error) {
	if s.err != nil {
		return user.Anonymous, nil, s.err
	}
	return s.caller, &auth.Claims{UserID: s.caller.UserID}, nil
}

func sessionEngine(authn middleware.Authenticator, guard gin.HandlerFunc) *gin.Engine {
	cfg := &config.Config{Session: config.SessionConfig{CookieName: "sid"}}
	engine := gin.New()
	engine.Use(middleware.Session(cfg, authn))
	handlers := []gin.HandlerFunc{}
	if guard != nil {
		handlers = append(handlers, guard)
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.String(http.StatusOK, middleware.CallerFrom(c).UserID)
	})
	engine.GET("/", handlers...)
	return engine
}

func TestSession(t *testing.T) {
	seller := user.Caller{UserID: "65f1c0a2b3c4d5e6f7a8b911", Role: user.RoleSeller}

	t.Run("cookie resolves the caller", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: "token"})
		rec := serve(sessionEngine(stubAuthenticator{caller: seller}, middleware.RequireSeller()), req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, seller.UserID, rec.Body.String())
	})

	t.Run("no token is anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := serve(sessionEngine(stubAuthenticator{caller: seller}, nil), req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("expired session is anonymous and guarded routes reject it", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer token")
		authn := stubAuthenticator{err: apperr.New(apperr.KindNotAuthenticated, "expired")}
		rec := serve(sessionEngine(authn, middleware.RequireAuth()), req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":"not_authenticated"`)
	})

	t.Run("customers are not sellers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer token")
		customer := user.Caller{UserID: "65f1c0a2b3c4d5e6f7a8b913", Role: user.RoleCustomer}
		rec := serve(sessionEngine(stubAuthenticator{caller: customer}, middleware.RequireSeller()), req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("session storage outage is a 503", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer token")
		authn := stubAuthenticator{err: apperr.Storage(errors.New("redis down"), "look up session")}
		rec := serve(sessionEngine(authn, nil), req)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestRequestID(t *testing.T) {
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := rec.Header().Get(middleware.RequestIDHeader)
	_, err := uuid.Parse(generated)
	require.NoError(t, err)
	assert.Equal(t, generated, rec.Body.String())

	given := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, given)
	assert.Equal(t, given, serve(engine, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, "<script>")
	assert.NotEqual(t, "<script>", serve(engine, req).Body.String())
}

func TestRequestSizeLimit(t *testing.T) {
	engine := gin.New()
	engine.Use(middleware.RequestSizeLimit(8))
	engine.POST("/", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	rec := serve(engine, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(engine, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("way too large")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestCORS(t *testing.T) {
	cfg := &config.Config{Security: config.SecurityConfig{
		CORSAllowedOrigins: []string{"http://localhost:5173", "*.example.com"},
		CORSAllowedMethods: []string{"GET", "POST"},
		CORSAllowedHeaders: []string{"Content-Type"},
	}}
	engine := gin.New()
	engine.Use(middleware.CORS(cfg))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	cases := map[string]bool{
		"http://localhost:5173":    true,
		"https://shop.example.com": true,
		"https://evilexample.com":  false,
		"https://attacker.test":    false,
	}
	for origin, allowed := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", origin)
		rec := serve(engine, req)
		if allowed {
			assert.Equal(t, origin, rec.Header().Get("Access-Control-Allow-Origin"), origin)
			assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		} else {
			assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"), origin)
		}
	}

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	assert.Equal(t, http.StatusNoContent, serve(engine, req).Code)
}

type memoryCounter struct {
	mu   sync.Mutex
	hits map[string]int64
	err  error
}

func (m *memoryCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits[key]++
	return m.hits[key], nil
}

func TestRateLimit(t *testing.T) {
	log, hook := test.NewNullLogger()
	counter := &memoryCounter{hits: map[string]int64{}}

	engine := gin.New()
	engine.Use(middleware.RateLimit(counter, 2, log))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		rec := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	counter.err = errors.New("redis down")
	rec = serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestTimeout(t *testing.T) {
	engine := gin.New()
	engine.Use(middleware.Timeout(10 * time.Millisecond))
	engine.GET("/slow", func(c *gin.Context) { <-c.Request.Context().Done() })
	engine.GET("/fast", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusGatewayTimeout, serve(engine, httptest.NewRequest(http.MethodGet, "/slow", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(engine, httptest.NewRequest(http.MethodGet, "/fast", nil)).Code)
}
