package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"civicsync-web/models"
	"civicsync-web/services"
	"civicsync-web/session"
)

var testCookies = CookieSettings{Name: "civicsync_session", MaxAge: 3600}

// tokenAuth resolves bearer tokens to users from a fixed table.
type tokenAuth map[string]models.User

func (a tokenAuth) Login(_ context.Context, email, _ string) (string, error) {
	for token, u := range a {
		if u.Email == email {
			return token, nil
		}
	}
	return "", &services.APIError{Status: http.StatusBadRequest, Message: "Invalid credentials"}
}

func (a tokenAuth) Me(ctx context.Context) (*models.User, error) {
	u, ok := a[services.TokenFromContext(ctx)]
	if !ok {
		return nil, &services.APIError{Status: http.StatusUnauthorized, Message: "Token is not valid"}
	}
	return &u, nil
}

func (a tokenAuth) UpdateProfile(context.Context, models.ProfileUpdate) (*models.User, error) {
	return nil, nil
}

func (a tokenAuth) ChangePassword(context.Context, models.PasswordChange) error { return nil }

func newManager() *session.Manager {
	auth := tokenAuth{
		"user-token":  {ID: "u1", Name: "Ada", Email: "ada@example.com", Role: models.RoleUser},
		"admin-token": {ID: "a1", Name: "Grace", Email: "grace@example.com", Role: models.RoleAdmin},
	}
	return session.NewManager(session.NewMemoryStore(), auth, time.Hour, zap.NewNop())
}

func login(t *testing.T, m *session.Manager, email string) string {
	t.Helper()
	s, err := m.Login(context.Background(), email, "Secret1")
	require.NoError(t, err)
	return s.ID
}

func guardedRouter(m *session.Manager, adminOnly bool) *gin.Engine {
	r := gin.New()
	r.GET("/private", AuthMiddleware(m, testCookies, adminOnly), func(c *gin.Context) {
		s := CurrentSession(c)
		c.JSON(http.StatusOK, gin.H{
			"user":  s.UserID(),
			"token": services.TokenFromContext(c.Request.Context()),
		})
	})
	return r
}

func get(r http.Handler, path, sessionID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: testCookies.Name, Value: sessionID})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := guardedRouter(newManager(), false)

	w := get(r, "/private", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Empty(t, w.Header().Get("Set-Cookie"))
}

func TestAuthMiddlewareUnknownSessionClearsCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := guardedRouter(newManager(), false)

	w := get(r, "/private", "not-a-session")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestAuthMiddlewareAuthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := newManager()
	r := guardedRouter(m, false)

	w := get(r, "/private", login(t, m, "ada@example.com"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"u1","token":"user-token"}`, w.Body.String())
}

func TestAuthMiddlewareAdminOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := newManager()
	r := guardedRouter(m, true)

	w := get(r, "/private", login(t, m, "ada@example.com"))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = get(r, "/private", login(t, m, "grace@example.com"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddlewareAfterLogout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := newManager()
	r := guardedRouter(m, false)

	id := login(t, m, "ada@example.com")
	require.NoError(t, m.Logout(context.Background(), id))

	w := get(r, "/private", id)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestSessionCookieAttributes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	SetSessionCookie(c, CookieSettings{Name: "sid", Secure: true, MaxAge: 60}, "abc")

	cookie := w.Result().Cookies()[0]
	assert.Equal(t, "sid", cookie.Name)
	assert.Equal(t, "abc", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
}

func TestReportRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	m := newManager()
	r := gin.New()
	guard := AuthMiddleware(m, testCookies, false)
	r.POST("/report", guard, ReportRateLimiter(client, "report_limit", 2, zap.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	id := login(t, m, "ada@example.com")
	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/report", nil)
		req.AddCookie(&http.Cookie{Name: testCookies.Name, Value: id})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusCreated, post().Code)
	assert.Equal(t, http.StatusCreated, post().Code)

	w := post()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "86400", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "retry_after")

	assert.Equal(t, "3", mustGet(t, mr, "report_limit:u1"))
	assert.Equal(t, 24*time.Hour, mr.TTL("report_limit:u1"))
}

func TestReportRateLimiterRedisDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	m := newManager()
	r := gin.New()
	r.POST("/report", AuthMiddleware(m, testCookies, false), ReportRateLimiter(client, "report_limit", 2, zap.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/report", nil)
	req.AddCookie(&http.Cookie{Name: testCookies.Name, Value: login(t, m, "ada@example.com")})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	v, err := mr.Get(key)
	require.NoError(t, err)
	return v
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), AccessLog(zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := get(r, "/ping", "")
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 27)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "upstream-id", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "upstream-id", w.Body.String())
}
