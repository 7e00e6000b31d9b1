// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, rejected fields, user exists).
	UserError = 1

	// AuthError indicates an auth/config error (not logged in, session
	// expired, server URL missing).
	AuthError = 2

	// BackendError indicates a backend/API/network error.
	BackendError = 3
)
