package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"taskfuss/internal/app"
	"taskfuss/internal/exitcode"
)

func init() {
	Register(&StatusCmd{})
}

// StatusCmd reports server reachability and the stored session.
type StatusCmd struct {
	// now is overridden in tests.
	now func() time.Time
}

// SetClock sets the time source (for testing).
func (c *StatusCmd) SetClock(now func() time.Time) {
	c.now = now
}

func (c *StatusCmd) Name() string      { return "status" }
func (c *StatusCmd) Aliases() []string { return nil }
func (c *StatusCmd) Synopsis() string  { return "Check the server and session" }
func (c *StatusCmd) Usage() string     { return "taskfuss status [common flags]" }
func (c *StatusCmd) NeedsAuth() bool   { return false }

func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatusCmd) Run(ctx context.Context, a *app.App, args []string, out, errOut io.Writer) int {
	code := exitcode.Success
	server := a.Client.BaseURL()
	if err := a.Client.Ping(ctx); err != nil {
		fmt.Fprintf(out, "server:  %s (unreachable)\n", server)
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		code = exitcode.BackendError
	} else {
		fmt.Fprintf(out, "server:  %s (ok)\n", server)
	}

	sess := a.Auth.Session()
	switch {
	case sess.Token == "":
		fmt.Fprintln(out, "session: not logged in")
	case sess.ExpiresAt.IsZero():
		fmt.Fprintln(out, "session: logged in")
	case sess.ExpiresAt.Before(c.clock()):
		fmt.Fprintf(out, "session: expired %s %s\n", sess.ExpiresAt.Format(time.DateTime), loginHint)
	default:
		fmt.Fprintf(out, "session: logged in, expires %s\n", sess.ExpiresAt.Format(time.DateTime))
	}
	return code
}

func (c *StatusCmd) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}
