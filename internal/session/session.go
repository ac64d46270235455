// Package session owns the authenticated session: acquiring it, persisting
// it, supplying its bearer token and discarding it when the API rejects it.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/schoolpay/internal/model"
	"github.com/Veraticus/schoolpay/internal/service"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Session errors.
var (
	ErrNoSession       = errors.New("not logged in")
	ErrSessionExpired  = errors.New("session expired")
	ErrReauthRequired  = errors.New("re-authentication required: run login")
	ErrNoAuthenticator = errors.New("session manager has no authenticator")
)

// State is the lifecycle state of the manager.
type State int

// Session states.
const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Authenticator performs the login and registration calls.
type Authenticator interface {
	Login(ctx context.Context, creds model.Credentials) (*model.AuthResult, error)
	Register(ctx context.Context, reg model.Registration) (*model.AuthResult, error)
}

// Manager holds the current session and implements oauth2.TokenSource for
// the API client.
type Manager struct {
	store   service.SessionStore
	auth    Authenticator
	reauth  Reauthenticator
	current *model.Session
	logger  *slog.Logger
	now     func() time.Time
	state   State
	mu      sync.Mutex
}

var _ oauth2.TokenSource = (*Manager)(nil)

// Option configures a Manager.
type Option func(*Manager)

// WithReauthenticator sets the source of credentials used by Refresh.
func WithReauthenticator(r Reauthenticator) Option {
	return func(m *Manager) { m.reauth = r }
}

// WithAuthenticator sets the login/register backend.
func WithAuthenticator(a Authenticator) Option {
	return func(m *Manager) { m.auth = a }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a manager persisting to store.
func NewManager(store service.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetAuthenticator binds the login backend after construction. The API
// client needs the manager as its token source, so the two are wired in
// two steps.
func (m *Manager) SetAuthenticator(a Authenticator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auth = a
}

// Load restores the persisted session, if any.
func (m *Manager) Load(ctx context.Context) error {
	sess, err := m.store.LoadSession(ctx)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = sess
	m.state = StateUnauthenticated
	if sess != nil && sess.Token != "" {
		m.state = StateAuthenticated
	}
	return nil
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Current returns a copy of the current session, or nil.
func (m *Manager) Current() *model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil
	}
	sess := *m.current
	if sess.User != nil {
		user := *sess.User
		sess.User = &user
	}
	return &sess
}

// IsAuthenticated reports whether a non-expired token is held.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateAuthenticated && m.current.Usable(m.now())
}

// Token implements oauth2.TokenSource.
func (m *Manager) Token() (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil || m.current.Token == "" {
		return nil, ErrNoSession
	}
	if m.current.Expired(m.now()) {
		return nil, ErrSessionExpired
	}
	return &oauth2.Token{
		AccessToken: m.current.Token,
		TokenType:   "Bearer",
		Expiry:      m.current.ExpiresAt,
	}, nil
}

// Login authenticates with creds and persists the resulting session. On
// failure the previous session, in memory and in the store, is kept and the
// server error returned.
func (m *Manager) Login(ctx context.Context, creds model.Credentials) (*model.Session, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	return m.authenticate(ctx, func(a Authenticator) (*model.AuthResult, error) {
		return a.Login(ctx, creds)
	})
}

// Register creates an account and persists its session.
func (m *Manager) Register(ctx context.Context, reg model.Registration) (*model.Session, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return m.authenticate(ctx, func(a Authenticator) (*model.AuthResult, error) {
		return a.Register(ctx, reg)
	})
}

func (m *Manager) authenticate(ctx context.Context, call func(Authenticator) (*model.AuthResult, error)) (*model.Session, error) {
	m.mu.Lock()
	auth := m.auth
	if auth == nil {
		m.mu.Unlock()
		return nil, ErrNoAuthenticator
	}
	m.state = StateAuthenticating
	m.mu.Unlock()

	result, err := call(auth)
	if err != nil {
		m.restore()
		return nil, err
	}

	sess := m.newSession(result)
	if err := m.store.SaveSession(ctx, sess); err != nil {
		m.restore()
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	m.mu.Lock()
	m.current = sess
	m.state = StateAuthenticated
	m.mu.Unlock()

	m.logger.Info("Logged in", "user", sess.User.DisplayName(), "expires_at", sess.ExpiresAt)
	return sess, nil
}

// restore settles the state after a failed login. A 401 handled meanwhile
// has already reset the manager and is left alone.
func (m *Manager) restore() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAuthenticating {
		return
	}
	if m.current.Usable(m.now()) {
		m.state = StateAuthenticated
		return
	}
	m.state = StateUnauthenticated
}

func (m *Manager) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	m.state = StateUnauthenticated
}

func (m *Manager) newSession(result *model.AuthResult) *model.Session {
	sess := &model.Session{
		Token:     result.Token,
		User:      result.User,
		CreatedAt: m.now(),
	}
	if exp, ok := TokenExpiry(result.Token); ok {
		sess.ExpiresAt = exp
	}
	return sess
}

// Logout discards the session locally and in the store.
func (m *Manager) Logout(ctx context.Context) error {
	m.reset()
	if err := m.store.ClearSession(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// HandleUnauthorized is called by the API client on any 401 response. It
// clears the stored token and user so no stale session is left behind.
func (m *Manager) HandleUnauthorized(ctx context.Context) {
	m.reset()
	if err := m.store.ClearSession(ctx); err != nil {
		m.logger.Error("Failed to clear session after unauthorized response", "error", err)
	}
}

// Refresh makes sure a usable session exists. A valid session is left
// alone; otherwise the configured reauthenticator is asked for credentials
// once and a new login is performed.
func (m *Manager) Refresh(ctx context.Context) (*model.Session, error) {
	if m.IsAuthenticated() {
		return m.Current(), nil
	}

	m.mu.Lock()
	reauth := m.reauth
	m.mu.Unlock()

	if reauth == nil {
		return nil, ErrReauthRequired
	}

	creds, err := reauth.Credentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReauthRequired, err)
	}

	m.logger.Info("Session missing or expired, re-authenticating", "email", creds.Email)
	return m.Login(ctx, creds)
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
