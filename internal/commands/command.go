// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"taskfuss/internal/app"
)

// Command defines the interface for CLI commands. Each command is also a
// route; NeedsAuth marks it as protected by the auth guard.
type Command interface {
	// Name returns the primary command name, also used as the route name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires a session.
	// Commands like register, login, logout and status return false.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// a is nil for Standalone commands.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, a *app.App, args []string, out, errOut io.Writer) int
}

// Standalone is implemented by commands that run without configuration
// or an app, such as help and version.
type Standalone interface {
	Standalone() bool
}

// IsStandalone reports whether c runs without an app.
func IsStandalone(c Command) bool {
	s, ok := c.(Standalone)
	return ok && s.Standalone()
}
