package controllers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"civicsync-web/middlewares"
	"civicsync-web/services"
)

// page builds the template data shared by every page: title, current user and
// any message carried over a redirect.
func page(c *gin.Context, title string, data gin.H) gin.H {
	h := gin.H{
		"Title":  title,
		"Error":  c.Query("error"),
		"Notice": c.Query("notice"),
	}
	if s := middlewares.CurrentSession(c); s.Authenticated() {
		h["User"] = s.User
	}
	for k, v := range data {
		h[k] = v
	}
	return h
}

// sanitizeRedirectTarget only lets local paths through.
func sanitizeRedirectTarget(raw, fallback string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fallback
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.IsAbs() || parsed.Host != "" {
		return fallback
	}
	if !strings.HasPrefix(parsed.Path, "/") || strings.HasPrefix(parsed.Path, "//") {
		return fallback
	}
	return parsed.RequestURI()
}

// redirectWithMessage redirects to target with a single error or notice
// query parameter, replacing any earlier one.
func redirectWithMessage(c *gin.Context, target, key, value string) {
	parsed, err := url.Parse(sanitizeRedirectTarget(target, "/"))
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	query := parsed.Query()
	query.Del("error")
	query.Del("notice")
	query.Set(key, value)
	parsed.RawQuery = query.Encode()
	c.Redirect(http.StatusSeeOther, parsed.RequestURI())
}

// self is the current request URI without carried-over messages.
func self(c *gin.Context) string {
	u := *c.Request.URL
	query := u.Query()
	query.Del("error")
	query.Del("notice")
	u.RawQuery = query.Encode()
	return u.RequestURI()
}

// unauthorized handles an API refusal of the caller's credentials by sending
// the browser to /login. It reports whether it did so.
func unauthorized(c *gin.Context, err error) bool {
	if !services.IsUnauthorized(err) {
		return false
	}
	c.Redirect(http.StatusFound, "/login")
	c.Abort()
	return true
}

// logAPIError records an upstream failure that is shown to the user inline.
func logAPIError(log *zap.Logger, c *gin.Context, msg string, err error) {
	log.Warn(msg,
		zap.Error(err),
		zap.Int("upstream_status", services.StatusCode(err)),
		zap.String("request_id", middlewares.GetRequestID(c)),
	)
}
