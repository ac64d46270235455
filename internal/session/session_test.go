package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/schoolpay/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeAuth struct {
	err        error
	token      string
	lastCreds  model.Credentials
	loginCalls int
}

func (f *fakeAuth) Login(_ context.Context, creds model.Credentials) (*model.AuthResult, error) {
	f.loginCalls++
	f.lastCreds = creds
	if f.err != nil {
		return nil, f.err
	}
	return &model.AuthResult{Token: f.token, User: &model.User{Email: creds.Email, Name: "Admin"}}, nil
}

func (f *fakeAuth) Register(_ context.Context, reg model.Registration) (*model.AuthResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.AuthResult{Token: f.token, User: &model.User{Email: reg.Email, Name: reg.Name}}, nil
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func newManager(t *testing.T, auth Authenticator, opts ...Option) (*Manager, *FileStore) {
	t.Helper()
	store := NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	opts = append([]Option{WithAuthenticator(auth), WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewManager(store, opts...), store
}

var validCreds = model.Credentials{Email: "admin@school.edu", Password: "secret"}

func TestManager_Login(t *testing.T) {
	exp := fixedNow.Add(time.Hour)
	auth := &fakeAuth{token: signedToken(t, exp)}
	m, store := newManager(t, auth)
	ctx := context.Background()

	assert.Equal(t, StateUnauthenticated, m.State())
	_, err := m.Token()
	assert.ErrorIs(t, err, ErrNoSession)

	sess, err := m.Login(ctx, validCreds)
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, m.State())
	assert.True(t, m.IsAuthenticated())
	assert.True(t, sess.ExpiresAt.Equal(exp.Truncate(time.Second)))

	tok, err := m.Token()
	require.NoError(t, err)
	assert.Equal(t, auth.token, tok.AccessToken)
	assert.Equal(t, "Bearer", tok.TokenType)

	stored, err := store.LoadSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, auth.token, stored.Token)
	assert.Equal(t, "admin@school.edu", stored.User.Email)
}

func TestManager_LoginFailure(t *testing.T) {
	serverErr := errors.New("Invalid credentials")
	m, store := newManager(t, &fakeAuth{err: serverErr})

	_, err := m.Login(context.Background(), validCreds)
	assert.ErrorIs(t, err, serverErr)
	assert.Equal(t, StateUnauthenticated, m.State())
	assert.Nil(t, m.Current())

	stored, err := store.LoadSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestManager_LoginValidation(t *testing.T) {
	auth := &fakeAuth{token: "t"}
	m, _ := newManager(t, auth)

	_, err := m.Login(context.Background(), model.Credentials{Email: "not-an-email", Password: "x"})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	assert.Zero(t, auth.loginCalls)

	_, err = m.Register(context.Background(), model.Registration{Name: "A", Email: "a@b.co", Password: "secret1", ConfirmPassword: "other"})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	assert.Contains(t, err.Error(), "Passwords do not match")
}

func TestManager_NoAuthenticator(t *testing.T) {
	m := NewManager(NewFileStore(filepath.Join(t.TempDir(), "s.json")))
	_, err := m.Login(context.Background(), validCreds)
	assert.ErrorIs(t, err, ErrNoAuthenticator)

	m.SetAuthenticator(&fakeAuth{token: "opaque"})
	_, err = m.Login(context.Background(), validCreds)
	assert.NoError(t, err)
}

func TestManager_Register(t *testing.T) {
	m, _ := newManager(t, &fakeAuth{token: "opaque-token"})

	sess, err := m.Register(context.Background(), model.Registration{
		Name: "New Admin", Email: "new@school.edu", Password: "secret1", ConfirmPassword: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "New Admin", sess.User.Name)
	assert.True(t, sess.ExpiresAt.IsZero())
	assert.True(t, m.IsAuthenticated())
}

func TestManager_ExpiredToken(t *testing.T) {
	m, _ := newManager(t, &fakeAuth{token: signedToken(t, fixedNow.Add(-time.Minute))})

	_, err := m.Login(context.Background(), validCreds)
	require.NoError(t, err)

	assert.False(t, m.IsAuthenticated())
	_, err = m.Token()
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestManager_LoginFailureKeepsSession(t *testing.T) {
	ctx := context.Background()
	auth := &fakeAuth{token: "first"}
	m, store := newManager(t, auth)

	_, err := m.Login(ctx, validCreds)
	require.NoError(t, err)

	auth.err = errors.New("service unavailable")
	_, err = m.Login(ctx, validCreds)
	require.ErrorIs(t, err, auth.err)

	assert.Equal(t, StateAuthenticated, m.State())
	require.NotNil(t, m.Current())
	assert.Equal(t, "first", m.Current().Token)

	stored, err := store.LoadSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "first", stored.Token, "memory and store agree")
}

func TestManager_HandleUnauthorized(t *testing.T) {
	m, store := newManager(t, &fakeAuth{token: "opaque"})
	ctx := context.Background()

	_, err := m.Login(ctx, validCreds)
	require.NoError(t, err)

	m.HandleUnauthorized(ctx)

	assert.Equal(t, StateUnauthenticated, m.State())
	assert.Nil(t, m.Current())
	_, err = m.Token()
	assert.ErrorIs(t, err, ErrNoSession)
	_, statErr := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestManager_LoadAndLogout(t *testing.T) {
	ctx := context.Background()
	m, store := newManager(t, &fakeAuth{})
	require.NoError(t, store.SaveSession(ctx, &model.Session{Token: "persisted", User: &model.User{Email: "a@b.co"}}))

	require.NoError(t, m.Load(ctx))
	assert.True(t, m.IsAuthenticated())
	assert.Equal(t, "persisted", m.Current().Token)

	require.NoError(t, m.Logout(ctx))
	assert.False(t, m.IsAuthenticated())

	stored, err := store.LoadSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestManager_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("valid session is a no-op", func(t *testing.T) {
		auth := &fakeAuth{token: "opaque"}
		calls := 0
		m, _ := newManager(t, auth, WithReauthenticator(ReauthFunc(func(context.Context) (model.Credentials, error) {
			calls++
			return validCreds, nil
		})))
		_, err := m.Login(ctx, validCreds)
		require.NoError(t, err)

		_, err = m.Refresh(ctx)
		require.NoError(t, err)
		assert.Zero(t, calls)
		assert.Equal(t, 1, auth.loginCalls)
	})

	t.Run("no reauthenticator", func(t *testing.T) {
		m, _ := newManager(t, &fakeAuth{token: "opaque"})
		_, err := m.Refresh(ctx)
		assert.ErrorIs(t, err, ErrReauthRequired)
	})

	t.Run("configured guest credentials", func(t *testing.T) {
		auth := &fakeAuth{token: "guest-token"}
		guest := StaticCredentials{Email: "demo@school.edu", Password: "demo-pass"}
		m, _ := newManager(t, auth, WithReauthenticator(guest))

		sess, err := m.Refresh(ctx)
		require.NoError(t, err)
		assert.Equal(t, "guest-token", sess.Token)
		assert.Equal(t, "demo@school.edu", auth.lastCreds.Email)
	})

	t.Run("single attempt on failure", func(t *testing.T) {
		auth := &fakeAuth{err: errors.New("denied")}
		m, _ := newManager(t, auth, WithReauthenticator(StaticCredentials(validCreds)))

		_, err := m.Refresh(ctx)
		assert.Error(t, err)
		assert.Equal(t, 1, auth.loginCalls)
		assert.Equal(t, StateUnauthenticated, m.State())
	})

	t.Run("reauthenticator declines", func(t *testing.T) {
		m, _ := newManager(t, &fakeAuth{}, WithReauthenticator(Chain{nil, StaticCredentials{}}))
		_, err := m.Refresh(ctx)
		assert.ErrorIs(t, err, ErrReauthRequired)
		assert.ErrorIs(t, err, ErrNoCredentials)
	})
}

func TestChain(t *testing.T) {
	declined := errors.New("cancelled")
	chain := Chain{
		ReauthFunc(func(context.Context) (model.Credentials, error) { return model.Credentials{}, declined }),
		StaticCredentials(validCreds),
	}

	creds, err := chain.Credentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, validCreds, creds)

	_, err = Chain{}.Credentials(context.Background())
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestTokenExpiry(t *testing.T) {
	exp := fixedNow.Add(2 * time.Hour)
	got, ok := TokenExpiry(signedToken(t, exp))
	require.True(t, ok)
	assert.Equal(t, exp.Unix(), got.Unix())

	_, ok = TokenExpiry("opaque-token")
	assert.False(t, ok)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x"}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, ok = TokenExpiry(noExp)
	assert.False(t, ok)
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path)

	sess, err := store.LoadSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)

	require.NoError(t, store.SaveSession(ctx, &model.Session{Token: "abc", User: &model.User{Email: "a@b.co"}}))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	sess, err = store.LoadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", sess.Token)

	require.NoError(t, store.ClearSession(ctx))
	require.NoError(t, store.ClearSession(ctx))

	assert.Error(t, store.SaveSession(ctx, nil))
}

func TestFileStore_CorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"token": "abc", "user": [1,2`), 0o600))

	sess, err := NewFileStore(path).LoadSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "unauthenticated", StateUnauthenticated.String())
	assert.Equal(t, "authenticating", StateAuthenticating.String())
	assert.Equal(t, "authenticated", StateAuthenticated.String())
}
