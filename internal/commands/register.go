package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"taskfuss/internal/app"
	"taskfuss/internal/exitcode"
	"taskfuss/internal/store"
)

func init() {
	Register(&RegisterCmd{})
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	username string
	email    string
	password string
	confirm  string
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account and log in" }
func (c *RegisterCmd) Usage() string {
	return "taskfuss register --username <name> --email <email> --password <pw> [--confirm <pw>]"
}
func (c *RegisterCmd) NeedsAuth() bool { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.username, "username", "", "")
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.confirm, "confirm", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, a *app.App, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	password := c.password
	if password == "" {
		password = os.Getenv(PasswordEnv)
	}
	// Without --confirm the password is taken as confirmed.
	confirm := c.confirm
	if confirm == "" {
		confirm = password
	}

	err := a.Auth.Register(ctx, store.RegisterForm{
		Username:        c.username,
		Email:           c.email,
		Password:        password,
		ConfirmPassword: confirm,
	})
	if err != nil {
		return reportError(errOut, err)
	}

	if !a.Config.Quiet {
		fmt.Fprintf(out, "registered %s\n", a.Auth.User().Username)
	}
	return exitcode.Success
}
