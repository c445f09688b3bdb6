package services

import (
	"context"
	"net/http"
	"net/url"

	"civicsync-web/models"
)

// AuthService wraps the /auth endpoints.
type AuthService struct {
	client *Client
}

func NewAuthService(client *Client) *AuthService {
	return &AuthService{client: client}
}

type emailBody struct {
	Email string `json:"email"`
}

// MessageResponse is the body of endpoints that only acknowledge.
type MessageResponse struct {
	Msg string `json:"msg"`
}

func (s *AuthService) Register(ctx context.Context, reg models.Registration) (MessageResponse, error) {
	var out MessageResponse
	err := s.client.send(ctx, http.MethodPost, "/auth/register", reg, &out)
	return out, err
}

func (s *AuthService) VerifyEmail(ctx context.Context, token string) (MessageResponse, error) {
	var out MessageResponse
	err := s.client.get(ctx, "/auth/verify-email", url.Values{"token": {token}}, &out)
	return out, err
}

// Login exchanges credentials for an auth token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := s.client.send(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", &APIError{Status: http.StatusBadGateway, Message: "login response carried no token"}
	}
	return out.Token, nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) (MessageResponse, error) {
	var out MessageResponse
	err := s.client.send(ctx, http.MethodPost, "/auth/forgot-password", emailBody{Email: email}, &out)
	return out, err
}

func (s *AuthService) ResetPassword(ctx context.Context, token, password string) (MessageResponse, error) {
	var out MessageResponse
	err := s.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/reset-password",
		Query:  url.Values{"token": {token}},
		JSON:   map[string]string{"password": password},
	}, &out)
	return out, err
}

func (s *AuthService) ResendVerification(ctx context.Context, email string) (MessageResponse, error) {
	var out MessageResponse
	err := s.client.send(ctx, http.MethodPost, "/auth/resend-verification", emailBody{Email: email}, &out)
	return out, err
}

// Me is the "who am I" call used to verify a session.
func (s *AuthService) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := s.client.get(ctx, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error) {
	var user models.User
	if err := s.client.send(ctx, http.MethodPut, "/auth/me", update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, change models.PasswordChange) error {
	return s.client.send(ctx, http.MethodPost, "/auth/change-password", change, nil)
}
