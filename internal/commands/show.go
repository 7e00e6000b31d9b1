package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskfuss/internal/app"
	"taskfuss/internal/exitcode"
	"taskfuss/internal/output"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd prints every field of one task, addressed by its number in the
// tasks listing.
type ShowCmd struct{}

func (c *ShowCmd) Name() string      { return "show" }
func (c *ShowCmd) Aliases() []string { return nil }
func (c *ShowCmd) Synopsis() string  { return "Show one task in detail" }
func (c *ShowCmd) Usage() string     { return "taskfuss show [common flags] <n>" }
func (c *ShowCmd) NeedsAuth() bool   { return true }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, a *app.App, args []string, out, errOut io.Writer) int {
	n, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if err := a.Tasks.FetchTasks(ctx); err != nil {
		return reportError(errOut, err)
	}

	task, err := TaskAt(a.Tasks.Tasks(), n)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	output.FormatTaskDetail(out, task)
	return exitcode.Success
}
