package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"taskfuss/internal/app"
	"taskfuss/internal/exitcode"
)

// PasswordEnv supplies the password when --password is omitted, so it
// need not appear in shell history.
const PasswordEnv = "TASKFUSS_PASSWORD"

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	email    string
	password string
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Log in with email and password" }
func (c *LoginCmd) Usage() string     { return "taskfuss login --email <email> [--password <pw>]" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, a *app.App, args []string, out, errOut io.Writer) int {
	email := strings.TrimSpace(c.email)
	if email == "" {
		fmt.Fprintln(errOut, "error: email required")
		return exitcode.UserError
	}

	password := c.password
	if password == "" {
		password = os.Getenv(PasswordEnv)
	}
	if password == "" {
		fmt.Fprintf(errOut, "error: password required (use --password or %s)\n", PasswordEnv)
		return exitcode.UserError
	}

	if err := a.Auth.Login(ctx, email, password); err != nil {
		return reportError(errOut, err)
	}

	if !a.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
