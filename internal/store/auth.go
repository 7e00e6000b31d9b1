package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"taskfuss/internal/api"
	"taskfuss/internal/storage"
)

// Field and code reported when the password confirmation does not match.
const (
	ConfirmPasswordField = "confirm_password"
	CodePasswordMismatch = "PASSWORD_MISMATCH"
)

var errMissingToken = errors.New("server response carried no auth token")

// RegisterForm is the input to AuthStore.Register.
type RegisterForm struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Session is a point-in-time copy of the auth state.
type Session struct {
	User      *api.User
	Token     string
	ExpiresAt time.Time
}

// AuthStore owns the current user and bearer token. The token is mirrored
// into a storage.Store so a session survives restarts.
type AuthStore struct {
	client AuthAPI
	kv     storage.Store
	log    zerolog.Logger
	group  singleflight.Group

	mu      sync.RWMutex
	user    *api.User
	token   string
	expires time.Time
	loading bool
	err     error
}

// NewAuthStore creates an AuthStore and restores any token found in kv.
// A restored session has a token but no user until FetchProfile runs.
func NewAuthStore(client AuthAPI, kv storage.Store, log zerolog.Logger) (*AuthStore, error) {
	s := &AuthStore{client: client, kv: kv, log: log}

	token, ok, err := kv.Get(storage.TokenKey)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	if token = strings.TrimSpace(token); ok && token != "" {
		s.token = token
		s.expires = tokenExpiry(token)
		log.Debug().Msg("restored session token")
	}
	return s, nil
}

// Register creates an account and starts a session for it.
func (s *AuthStore) Register(ctx context.Context, form RegisterForm) error {
	if form.ConfirmPassword != form.Password {
		err := &api.ValidationError{
			Code:    api.CodeValidationFailed,
			Message: "Validation failed",
			Fields: []api.FieldError{{
				Field:   ConfirmPasswordField,
				Code:    CodePasswordMismatch,
				Message: "Passwords do not match",
			}},
		}
		s.setErr(err)
		return err
	}

	s.setLoading(true)
	defer s.setLoading(false)

	resp, err := s.client.Register(ctx, api.RegisterRequest{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		return s.fail("register", err)
	}
	return s.establish(resp)
}

// Login starts a session, replacing any existing one.
func (s *AuthStore) Login(ctx context.Context, email, password string) error {
	s.setLoading(true)
	defer s.setLoading(false)

	resp, err := s.client.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return s.fail("login", err)
	}
	return s.establish(resp)
}

// Logout ends the session locally. It never calls the server and is safe
// to call without a session.
func (s *AuthStore) Logout() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.expires = time.Time{}
	s.err = nil
	s.mu.Unlock()

	if err := s.kv.Remove(storage.TokenKey); err != nil {
		s.log.Error().Err(err).Msg("failed to remove stored token")
	}
}

// FetchProfile refreshes the user from the server. Concurrent calls share
// one request, which keeps running when a caller's ctx ends.
func (s *AuthStore) FetchProfile(ctx context.Context) error {
	token := s.Token()
	if token == "" {
		s.setErr(ErrNoToken)
		return ErrNoToken
	}

	ch := s.group.DoChan("profile", func() (any, error) {
		return nil, s.fetchProfile(context.WithoutCancel(ctx), token)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *AuthStore) fetchProfile(ctx context.Context, token string) error {
	s.setLoading(true)
	defer s.setLoading(false)

	u, err := s.client.Profile(ctx, token)
	if err != nil {
		return s.fail("fetch profile", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A logout or new login while the request was in flight wins.
	if s.token != token {
		return ErrSessionChanged
	}
	user := *u
	s.user = &user
	s.err = nil
	return nil
}

// IsAuthenticated reports whether a token is held.
func (s *AuthStore) IsAuthenticated() bool {
	return s.Token() != ""
}

// Token returns the bearer token, or "" without a session.
func (s *AuthStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the current user, or nil.
func (s *AuthStore) User() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Loading reports whether an action is in flight.
func (s *AuthStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the error recorded by the last failed action.
func (s *AuthStore) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// ExpiresAt returns when the token expires, or the zero time if unknown.
func (s *AuthStore) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expires
}

// Session returns a consistent snapshot of the auth state.
func (s *AuthStore) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess := Session{Token: s.token, ExpiresAt: s.expires}
	if s.user != nil {
		u := *s.user
		sess.User = &u
	}
	return sess
}

// establish persists the token and then publishes the new session.
func (s *AuthStore) establish(resp *api.AuthResponse) error {
	if resp.AuthToken == "" {
		s.setErr(errMissingToken)
		return errMissingToken
	}
	if err := s.kv.Set(storage.TokenKey, resp.AuthToken); err != nil {
		err = fmt.Errorf("failed to save token: %w", err)
		s.setErr(err)
		return err
	}

	expires := tokenExpiry(resp.AuthToken)
	if resp.ExpiresAt > 0 {
		expires = time.Unix(resp.ExpiresAt, 0)
	}

	user := resp.User
	s.mu.Lock()
	s.user = &user
	s.token = resp.AuthToken
	s.expires = expires
	s.err = nil
	s.mu.Unlock()

	s.log.Debug().Str("user", user.Username).Msg("session established")
	return nil
}

// fail records err and logs it at a level matching its kind.
func (s *AuthStore) fail(op string, err error) error {
	s.setErr(err)

	kind := api.KindOf(err)
	ev := s.log.Warn()
	if kind == api.KindValidation || kind == api.KindDuplicate {
		ev = s.log.Info()
	}
	ev.Str("op", op).Str("kind", kind.String()).Err(err).Msg("auth action failed")
	return err
}

func (s *AuthStore) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *AuthStore) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// tokenExpiry reads the exp claim of a JWT without verifying it. Opaque
// tokens yield the zero time.
func tokenExpiry(token string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
