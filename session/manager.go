package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"civicsync-web/models"
	"civicsync-web/services"
	"civicsync-web/utils"
)

// Authenticator is the subset of the auth service the manager relies on.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
	Me(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error)
	ChangePassword(ctx context.Context, change models.PasswordChange) error
}

// Session is the per-request view of a browser session. A nil User means the
// session is anonymous.
type Session struct {
	ID    string
	Token string
	User  *models.User
}

func (s *Session) Authenticated() bool {
	return s != nil && s.User != nil
}

func (s *Session) IsAdmin() bool {
	return s.Authenticated() && s.User.IsAdmin()
}

// UserID returns the authenticated user's id, or "".
func (s *Session) UserID() string {
	if !s.Authenticated() {
		return ""
	}
	return s.User.ID
}

// Manager owns the session lifecycle: Init verifies a session against the API
// on every protected request, Login creates one, Logout tears it down.
type Manager struct {
	store         Store
	auth          Authenticator
	ttl           time.Duration
	verifyTimeout time.Duration
	onEnd         []func(sessionID string)
	now           func() time.Time
	calls         singleflight.Group
	log           *zap.Logger
}

// DefaultVerifyTimeout bounds a shared "who am I" call.
const DefaultVerifyTimeout = 10 * time.Second

type ManagerOption func(*Manager)

// WithVerifyTimeout bounds the upstream call shared by concurrent Init calls.
func WithVerifyTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) { m.verifyTimeout = d }
}

// OnSessionEnd registers fn to run whenever a session is logged out or discarded.
func OnSessionEnd(fn func(sessionID string)) ManagerOption {
	return func(m *Manager) { m.onEnd = append(m.onEnd, fn) }
}

func NewManager(store Store, auth Authenticator, ttl time.Duration, log *zap.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{store: store, auth: auth, ttl: ttl, verifyTimeout: DefaultVerifyTimeout, now: time.Now, log: log}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init resolves sessionID into a Session. Anything short of a confirmed
// "who am I" answer yields an anonymous session and discards the stored token,
// except when ctx itself ended first: the record is then left alone.
func (m *Manager) Init(ctx context.Context, sessionID string) *Session {
	anonymous := &Session{ID: sessionID}
	if sessionID == "" {
		return anonymous
	}

	key := storageKey(sessionID)
	rec, err := m.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.log.Error("session lookup failed", zap.Error(err))
		}
		return anonymous
	}
	if rec.Token == "" {
		return anonymous
	}

	if utils.TokenExpired(rec.Token, m.now()) {
		m.discard(ctx, sessionID)
		return anonymous
	}

	user, err := m.whoAmI(ctx, rec.Token)
	if err != nil {
		if ctx.Err() != nil {
			return anonymous
		}
		if !services.IsUnauthorized(err) {
			m.log.Warn("session verification failed", zap.Error(err))
		}
		m.discard(ctx, sessionID)
		return anonymous
	}

	rec.User = user
	if err := m.store.Save(ctx, key, rec, m.remaining(rec)); err != nil {
		m.log.Warn("session refresh failed", zap.Error(err))
	}
	return &Session{ID: sessionID, Token: rec.Token, User: user}
}

// whoAmI shares one upstream call between concurrent requests carrying the
// same token. The shared call ignores any single caller's cancellation and is
// bounded by verifyTimeout instead.
func (m *Manager) whoAmI(ctx context.Context, token string) (*models.User, error) {
	ch := m.calls.DoChan(storageKey(token), func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.verifyTimeout)
		defer cancel()
		return m.auth.Me(services.WithToken(callCtx, token))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.User), nil
	}
}

// Login authenticates against the API and stores a new session.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	token, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	user, err := m.auth.Me(services.WithToken(ctx, token))
	if err != nil {
		return nil, err
	}

	now := m.now()
	rec := &Record{Token: token, User: user, CreatedAt: now, ExpiresAt: now.Add(m.ttl)}
	if exp, ok := utils.TokenExpiry(token); ok && exp.Before(rec.ExpiresAt) {
		rec.ExpiresAt = exp
	}

	sessionID := uuid.NewString()
	if err := m.store.Save(ctx, storageKey(sessionID), rec, rec.ExpiresAt.Sub(now)); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return &Session{ID: sessionID, Token: token, User: user}, nil
}

// Logout discards the session's token.
func (m *Manager) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	m.ended(sessionID)
	return m.store.Delete(ctx, storageKey(sessionID))
}

// UpdateProfile saves the profile upstream and replaces the cached user.
func (m *Manager) UpdateProfile(ctx context.Context, s *Session, update models.ProfileUpdate) (*models.User, error) {
	user, err := m.auth.UpdateProfile(services.WithToken(ctx, s.Token), update)
	if err != nil {
		return nil, err
	}

	key := storageKey(s.ID)
	rec, err := m.store.Get(ctx, key)
	if err == nil {
		rec.User = user
		if err := m.store.Save(ctx, key, rec, m.remaining(rec)); err != nil {
			m.log.Warn("session profile refresh failed", zap.Error(err))
		}
	}
	s.User = user
	return user, nil
}

func (m *Manager) ChangePassword(ctx context.Context, s *Session, change models.PasswordChange) error {
	return m.auth.ChangePassword(services.WithToken(ctx, s.Token), change)
}

func (m *Manager) discard(ctx context.Context, sessionID string) {
	m.ended(sessionID)
	if err := m.store.Delete(ctx, storageKey(sessionID)); err != nil {
		m.log.Warn("session discard failed", zap.Error(err))
	}
}

func (m *Manager) ended(sessionID string) {
	for _, fn := range m.onEnd {
		fn(sessionID)
	}
}

func (m *Manager) remaining(rec *Record) time.Duration {
	if rec.ExpiresAt.IsZero() {
		return m.ttl
	}
	left := rec.ExpiresAt.Sub(m.now())
	if left <= 0 {
		return time.Second
	}
	return left
}
