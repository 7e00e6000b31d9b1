// Package router resolves named routes and runs navigation guards before
// a transition is committed.
package router

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
)

// LoginRoute is the route unauthenticated navigations are sent to.
const LoginRoute = "login"

// maxRedirects bounds guard redirect chains.
const maxRedirects = 8

var (
	// ErrUnknownRoute is returned when navigating to an unregistered name.
	ErrUnknownRoute = errors.New("unknown route")

	// ErrDuplicateRoute is returned when a route name is registered twice.
	ErrDuplicateRoute = errors.New("route already registered")

	// ErrRedirectLoop is returned when guards keep redirecting.
	ErrRedirectLoop = errors.New("too many redirects")

	// ErrNavigationAborted is returned when the context ends before the
	// transition is committed. The current route is left unchanged.
	ErrNavigationAborted = errors.New("navigation aborted")
)

// Route is a named destination.
type Route struct {
	Name string
	Path string

	// RequiresAuth marks routes only an authenticated session may enter.
	RequiresAuth bool
}

// Decision is a guard's verdict on a transition.
type Decision struct {
	redirect string
}

// Allow lets the navigation proceed unchanged.
var Allow = Decision{}

// RedirectTo sends the navigation to the named route instead.
func RedirectTo(name string) Decision {
	return Decision{redirect: name}
}

// Redirect returns the redirect target, if any.
func (d Decision) Redirect() (string, bool) {
	return d.redirect, d.redirect != ""
}

// Guard is evaluated before every transition. Guards run without the
// router lock held, so they may read the router, but they must not navigate.
type Guard func(ctx context.Context, to, from Route) (Decision, error)

// Hook observes committed transitions.
type Hook func(to, from Route)

// Router holds the route table and the current route.
type Router struct {
	mu      sync.Mutex
	routes  map[string]Route
	guards  []Guard
	after   []Hook
	current Route
}

// New creates a router with the given routes.
func New(routes ...Route) (*Router, error) {
	r := &Router{routes: make(map[string]Route)}
	for _, rt := range routes {
		if err := r.Add(rt); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add registers a route.
func (r *Router) Add(rt Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rt.Name == "" {
		return fmt.Errorf("%w: empty name", ErrUnknownRoute)
	}
	if _, exists := r.routes[rt.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateRoute, rt.Name)
	}
	if rt.Path == "" {
		rt.Path = "/" + rt.Name
	}
	r.routes[rt.Name] = rt
	return nil
}

// Lookup returns the route registered under name.
func (r *Router) Lookup(name string) (Route, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.routes[name]
	return rt, ok
}

// Routes returns all routes sorted by name.
func (r *Router) Routes() []Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Route, 0, len(r.routes))
	for _, rt := range r.routes {
		out = append(out, rt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// BeforeEach adds a guard. Guards run in registration order.
func (r *Router) BeforeEach(g Guard) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.guards = append(r.guards, g)
}

// AfterEach adds a hook run after every committed transition.
func (r *Router) AfterEach(h Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.after = append(r.after, h)
}

// Current returns the current route. It is the zero Route before the
// first navigation.
func (r *Router) Current() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Push navigates to the named route and returns the route actually
// entered, which differs from name when a guard redirected. The current
// route only changes once every guard has agreed, so the target is never
// entered before the decision is made.
func (r *Router) Push(ctx context.Context, name string) (Route, error) {
	r.mu.Lock()
	from := r.current
	snap := snapshot{routes: maps.Clone(r.routes), guards: slices.Clone(r.guards)}
	r.mu.Unlock()

	target, err := snap.resolve(ctx, name, from)
	if err != nil {
		return Route{}, err
	}

	r.mu.Lock()
	r.current = target
	hooks := slices.Clone(r.after)
	r.mu.Unlock()

	for _, h := range hooks {
		h(target, from)
	}
	return target, nil
}

// Redirect navigates to name, discarding the resolved route.
func (r *Router) Redirect(ctx context.Context, name string) error {
	_, err := r.Push(ctx, name)
	return err
}

// snapshot is the route table and guard list a single navigation resolves
// against.
type snapshot struct {
	routes map[string]Route
	guards []Guard
}

func (s snapshot) resolve(ctx context.Context, name string, from Route) (Route, error) {
	target, ok := s.routes[name]
	if !ok {
		return Route{}, fmt.Errorf("%w: %s", ErrUnknownRoute, name)
	}

	for hops := 0; ; hops++ {
		if hops > maxRedirects {
			return Route{}, fmt.Errorf("%w: last target %s", ErrRedirectLoop, target.Name)
		}

		next, redirected, err := s.runGuards(ctx, target, from)
		if err != nil {
			return Route{}, err
		}
		if !redirected {
			break
		}
		target = next
	}

	if err := ctx.Err(); err != nil {
		return Route{}, fmt.Errorf("%w: %w", ErrNavigationAborted, err)
	}
	return target, nil
}

// runGuards evaluates guards for target. It stops at the first redirect
// and returns the new target.
func (s snapshot) runGuards(ctx context.Context, target, from Route) (Route, bool, error) {
	for _, g := range s.guards {
		if err := ctx.Err(); err != nil {
			return Route{}, false, fmt.Errorf("%w: %w", ErrNavigationAborted, err)
		}
		d, err := g(ctx, target, from)
		if err != nil {
			return Route{}, false, fmt.Errorf("navigation to %s: %w", target.Name, err)
		}
		to, ok := d.Redirect()
		if !ok || to == target.Name {
			continue
		}
		next, ok := s.routes[to]
		if !ok {
			return Route{}, false, fmt.Errorf("%w: %s", ErrUnknownRoute, to)
		}
		return next, true, nil
	}
	return target, false, nil
}
