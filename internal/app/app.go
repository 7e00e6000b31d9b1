// Package app wires the API client, storage, stores and router into one
// value that commands run against.
package app

import (
	"fmt"

	"github.com/rs/zerolog"

	"taskfuss/internal/api"
	"taskfuss/internal/config"
	"taskfuss/internal/router"
	"taskfuss/internal/storage"
	"taskfuss/internal/store"
)

// App is the client application: one session, one task list, one router.
type App struct {
	Config *config.Config
	Log    zerolog.Logger

	Client  *api.Client
	Storage storage.Store
	Auth    *store.AuthStore
	Tasks   *store.TaskStore
	Router  *router.Router
}

// Option customises construction.
type Option func(*options)

type options struct {
	storage    storage.Store
	clientOpts []api.Option
}

// WithStorage replaces the file-backed token storage.
func WithStorage(s storage.Store) Option {
	return func(o *options) { o.storage = s }
}

// WithClientOptions passes extra options to the API client.
func WithClientOptions(opts ...api.Option) Option {
	return func(o *options) { o.clientOpts = append(o.clientOpts, opts...) }
}

// New builds the application from cfg. routes are registered on the
// router; a login route is added when routes lacks one. The auth guard is
// installed before New returns, so no navigation can bypass it.
func New(cfg *config.Config, log zerolog.Logger, routes []router.Route, opts ...Option) (*App, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.storage == nil {
		o.storage = storage.NewFileStore(cfg.Dir)
	}

	clientOpts := []api.Option{
		api.WithTimeout(cfg.Timeout),
		api.WithRateLimit(cfg.RateLimit),
		api.WithLogger(log.With().Str("component", "api").Logger()),
	}
	client, err := api.New(cfg.ServerURL, append(clientOpts, o.clientOpts...)...)
	if err != nil {
		return nil, err
	}

	auth, err := store.NewAuthStore(client, o.storage, log.With().Str("component", "auth").Logger())
	if err != nil {
		return nil, err
	}

	r, err := newRouter(routes)
	if err != nil {
		return nil, err
	}
	r.BeforeEach(router.RequireAuth(auth))
	r.AfterEach(func(to, from router.Route) {
		log.Debug().Str("from", from.Name).Str("to", to.Name).Msg("navigate")
	})

	return &App{
		Config:  cfg,
		Log:     log,
		Client:  client,
		Storage: o.storage,
		Auth:    auth,
		Tasks:   store.NewTaskStore(client, auth, r, log.With().Str("component", "tasks").Logger()),
		Router:  r,
	}, nil
}

func newRouter(routes []router.Route) (*router.Router, error) {
	r, err := router.New(routes...)
	if err != nil {
		return nil, fmt.Errorf("invalid route table: %w", err)
	}
	if _, ok := r.Lookup(router.LoginRoute); !ok {
		if err := r.Add(router.Route{Name: router.LoginRoute}); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Close releases network resources.
func (a *App) Close() {
	a.Client.Close()
}
