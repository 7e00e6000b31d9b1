// Package store holds the client-side session and task state and the
// actions that change it.
package store

import (
	"context"
	"errors"

	"taskfuss/internal/api"
)

var (
	// ErrNoToken is returned by actions that need a session when none exists.
	ErrNoToken = errors.New("not logged in")

	// ErrSessionExpired is returned when the server rejected the stored
	// token. It wraps the underlying API error.
	ErrSessionExpired = errors.New("session expired")

	// ErrSessionChanged is returned when the session ended or was replaced
	// while a request for it was in flight. The response is discarded.
	ErrSessionChanged = errors.New("session changed during request")
)

// AuthAPI is the part of the API client the auth store needs.
type AuthAPI interface {
	Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error)
	Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error)
	Profile(ctx context.Context, token string) (*api.User, error)
}

// TasksAPI is the part of the API client the task store needs.
type TasksAPI interface {
	Tasks(ctx context.Context, token string) ([]api.Task, error)
}

// Navigator moves the presentation layer to a named route.
type Navigator interface {
	Redirect(ctx context.Context, name string) error
}
