package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"civicsync-web/services"
	"civicsync-web/session"
)

const sessionKey = "session"

// CookieSettings describes the browser session cookie.
type CookieSettings struct {
	Name   string
	Domain string
	Secure bool
	MaxAge int
}

// SetSessionCookie stores the session id in the browser.
func SetSessionCookie(c *gin.Context, cs CookieSettings, sessionID string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cs.Name,
		Value:    sessionID,
		MaxAge:   cs.MaxAge,
		Path:     "/",
		Domain:   cs.Domain,
		Secure:   cs.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context, cs CookieSettings) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cs.Name,
		Value:    "",
		MaxAge:   -1,
		Path:     "/",
		Domain:   cs.Domain,
		Secure:   cs.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionID returns the raw session cookie value, or "".
func SessionID(c *gin.Context, cs CookieSettings) string {
	id, err := c.Cookie(cs.Name)
	if err != nil {
		return ""
	}
	return id
}

// CurrentSession returns the session the guard attached to c. Handlers
// outside a guarded group get nil.
func CurrentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*session.Session)
	return s
}

// AuthMiddleware verifies the session with the API on every request. Anonymous
// visitors, and non-admins on admin-only routes, are redirected to /login.
// On success the session is stored on the gin context and its token on the
// request context, where the API client picks it up.
func AuthMiddleware(sessions *session.Manager, cs CookieSettings, adminOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Init(c.Request.Context(), SessionID(c, cs))
		if !s.Authenticated() {
			if s.ID != "" {
				ClearSessionCookie(c, cs)
			}
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		if adminOnly && !s.IsAdmin() {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		c.Set(sessionKey, s)
		c.Request = c.Request.WithContext(services.WithToken(c.Request.Context(), s.Token))
		c.Next()
	}
}
