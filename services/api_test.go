package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api/", 5*time.Second)
}

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth, gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"_id":"u1","name":"Ada","email":"ada@example.com","role":"user"}`))
	})

	user, err := NewAuthService(client).Me(WithToken(context.Background(), "tok-123"))
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "/api/auth/me", gotPath)
	assert.Equal(t, "Ada", user.Name)
}

func TestClientOmitsAuthorizationWithoutToken(t *testing.T) {
	var hadHeader bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, hadHeader = r.Header["Authorization"]
		_, _ = w.Write([]byte(`{"msg":"ok"}`))
	})

	_, err := NewAuthService(client).ForgotPassword(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.False(t, hadHeader)
}

func TestClientErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"validator errors", http.StatusBadRequest, `{"errors":[{"msg":"Email already registered"},{"msg":"second"}]}`, "Email already registered"},
		{"msg", http.StatusUnauthorized, `{"msg":"Invalid credentials"}`, "Invalid credentials"},
		{"message", http.StatusNotFound, `{"message":"Report not found"}`, "Report not found"},
		{"error", http.StatusTooManyRequests, `{"error":"rate limit exceeded"}`, "rate limit exceeded"},
		{"not json", http.StatusInternalServerError, `<html>oops</html>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := NewReportService(client).Get(context.Background(), "r1")
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.want, apiErr.Message)
			assert.Equal(t, tt.status, StatusCode(err))

			fallback := Message(err, "fallback")
			if tt.want == "" {
				assert.Equal(t, "fallback", fallback)
			} else {
				assert.Equal(t, tt.want, fallback)
			}
		})
	}
}

func TestIsUnauthorized(t *testing.T) {
	assert.True(t, IsUnauthorized(&APIError{Status: http.StatusUnauthorized}))
	assert.True(t, IsUnauthorized(&APIError{Status: http.StatusForbidden}))
	assert.False(t, IsUnauthorized(&APIError{Status: http.StatusNotFound}))
	assert.False(t, IsUnauthorized(errors.New("network down")))
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := NewReportService(client).List(context.Background(), "", "")

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.MethodGet, te.Method)
	assert.Equal(t, "/reports", te.Path)
	assert.Zero(t, StatusCode(err))
}

func TestLoginRequiresToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := NewAuthService(client).Login(context.Background(), "ada@example.com", "Secret1")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, StatusCode(err))
}
