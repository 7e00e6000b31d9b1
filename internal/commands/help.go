package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskfuss/internal/app"
	"taskfuss/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskfuss help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }
func (c *HelpCmd) Standalone() bool  { return true }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, a *app.App, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  taskfuss                                    List your tasks
  taskfuss tasks [common flags]               List your tasks
  taskfuss show [common flags] <n>            Show task number n in detail
  taskfuss profile [common flags]             Show the logged-in user
  taskfuss register [common flags] --username <name> --email <email>
                    --password <pw> [--confirm <pw>]
  taskfuss login [common flags] --email <email> [--password <pw>]
  taskfuss logout [common flags]
  taskfuss status [common flags]
  taskfuss help
  taskfuss version

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Environment:
  TASKFUSS_SERVER_URL   API base URL (required)
  TASKFUSS_PASSWORD     Password for login/register when --password is omitted
  TASKFUSS_TIMEOUT      Per-request timeout, e.g. 5s (default 10s)
  TASKFUSS_RATE_LIMIT   Max requests per second (default unlimited)
  LOG_LEVEL             Log level: debug, info, warn, error (default warn)
`
