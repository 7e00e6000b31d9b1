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
	Register(&TasksCmd{})
}

// TasksCmd implements the tasks command, which is also what a bare
// `taskfuss` runs.
type TasksCmd struct{}

func (c *TasksCmd) Name() string      { return "tasks" }
func (c *TasksCmd) Aliases() []string { return []string{"list", "ls"} }
func (c *TasksCmd) Synopsis() string  { return "List your tasks" }
func (c *TasksCmd) Usage() string     { return "taskfuss tasks [common flags]" }
func (c *TasksCmd) NeedsAuth() bool   { return true }

func (c *TasksCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TasksCmd) Run(ctx context.Context, a *app.App, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	if err := a.Tasks.FetchTasks(ctx); err != nil {
		return reportError(errOut, err)
	}

	tasks := a.Tasks.Tasks()
	if len(tasks) == 0 {
		if !a.Config.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	for i, task := range tasks {
		output.FormatTask(out, i+1, task)
	}
	return exitcode.Success
}
