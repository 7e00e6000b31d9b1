package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"taskfuss/internal/api"
	"taskfuss/internal/router"
)

// TaskStore holds the current user's tasks.
type TaskStore struct {
	client TasksAPI
	auth   *AuthStore
	nav    Navigator
	log    zerolog.Logger
	group  singleflight.Group

	mu      sync.RWMutex
	tasks   []api.Task
	loading bool
	err     error
}

// NewTaskStore creates a TaskStore. nav may be nil, in which case no
// redirects are issued.
func NewTaskStore(client TasksAPI, auth *AuthStore, nav Navigator, log zerolog.Logger) *TaskStore {
	return &TaskStore{client: client, auth: auth, nav: nav, log: log}
}

// FetchTasks replaces the collection with the server's list. Without a
// session, or when the server rejects the token, it ends the session and
// redirects to the login route.
//
// Concurrent calls share one request. The request outlives a caller whose
// ctx ends; that caller alone returns ctx.Err().
func (s *TaskStore) FetchTasks(ctx context.Context) error {
	token := s.auth.Token()
	if token == "" {
		s.setErr(ErrNoToken)
		s.redirectToLogin(ctx)
		return ErrNoToken
	}

	ch := s.group.DoChan("tasks", func() (any, error) {
		return nil, s.fetch(context.WithoutCancel(ctx), token)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *TaskStore) fetch(ctx context.Context, token string) error {
	s.setLoading(true)
	defer s.setLoading(false)

	tasks, err := s.client.Tasks(ctx, token)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			// A rejection of an already replaced token must not end the
			// newer session.
			if s.auth.Token() != token {
				return fmt.Errorf("%w: %w", ErrSessionChanged, err)
			}
			s.log.Warn().Err(err).Msg("server rejected session, logging out")
			s.auth.Logout()

			err = fmt.Errorf("%w: %w", ErrSessionExpired, err)
			s.mu.Lock()
			s.tasks = nil
			s.err = err
			s.mu.Unlock()

			s.redirectToLogin(ctx)
			return err
		}
		s.log.Warn().Str("kind", api.KindOf(err).String()).Err(err).Msg("fetch tasks failed")
		s.setErr(err)
		return err
	}

	// Drop results that belong to a session ended while in flight.
	if s.auth.Token() != token {
		return ErrSessionChanged
	}

	s.mu.Lock()
	s.tasks = tasks
	s.err = nil
	s.mu.Unlock()
	s.log.Debug().Int("count", len(tasks)).Msg("fetched tasks")
	return nil
}

// Tasks returns a copy of the collection in server order.
func (s *TaskStore) Tasks() []api.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]api.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Loading reports whether a fetch is in flight.
func (s *TaskStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the error recorded by the last failed fetch.
func (s *TaskStore) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *TaskStore) redirectToLogin(ctx context.Context) {
	if s.nav == nil {
		return
	}
	if err := s.nav.Redirect(ctx, router.LoginRoute); err != nil {
		s.log.Warn().Err(err).Msg("redirect to login failed")
	}
}

func (s *TaskStore) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *TaskStore) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}
