package commands

import (
	"context"
	"flag"
	"io"

	"taskfuss/internal/app"
	"taskfuss/internal/exitcode"
	"taskfuss/internal/output"
)

func init() {
	Register(&ProfileCmd{})
}

// ProfileCmd implements the profile command.
type ProfileCmd struct{}

func (c *ProfileCmd) Name() string      { return "profile" }
func (c *ProfileCmd) Aliases() []string { return []string{"whoami"} }
func (c *ProfileCmd) Synopsis() string  { return "Show the logged-in user" }
func (c *ProfileCmd) Usage() string     { return "taskfuss profile [common flags]" }
func (c *ProfileCmd) NeedsAuth() bool   { return true }

func (c *ProfileCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ProfileCmd) Run(ctx context.Context, a *app.App, args []string, out, errOut io.Writer) int {
	if err := a.Auth.FetchProfile(ctx); err != nil {
		return reportError(errOut, err)
	}
	output.FormatUser(out, a.Auth.User())
	return exitcode.Success
}
