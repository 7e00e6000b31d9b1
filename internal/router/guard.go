package router

import "context"

// Authenticator reports whether a session is present.
type Authenticator interface {
	IsAuthenticated() bool
}

// RequireAuth redirects navigations to routes marked RequiresAuth to the
// login route while auth reports no session. The check is presence only;
// token expiry is left to the server.
func RequireAuth(auth Authenticator) Guard {
	return func(ctx context.Context, to, from Route) (Decision, error) {
		if to.RequiresAuth && !auth.IsAuthenticated() {
			return RedirectTo(LoginRoute), nil
		}
		return Allow, nil
	}
}
