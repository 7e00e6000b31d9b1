package commands

import (
	"errors"
	"fmt"
	"io"

	"taskfuss/internal/api"
	"taskfuss/internal/exitcode"
	"taskfuss/internal/output"
	"taskfuss/internal/store"
)

// loginHint is printed whenever a command needs a fresh session.
const loginHint = "(run: taskfuss login)"

// reportError prints err the way every command reports store failures and
// returns the matching exit code.
func reportError(errOut io.Writer, err error) int {
	switch {
	case errors.Is(err, store.ErrNoToken):
		fmt.Fprintf(errOut, "error: not logged in %s\n", loginHint)
		return exitcode.AuthError
	case errors.Is(err, store.ErrSessionExpired):
		fmt.Fprintf(errOut, "error: session expired %s\n", loginHint)
		return exitcode.AuthError
	case errors.Is(err, store.ErrSessionChanged):
		fmt.Fprintln(errOut, "error: session changed during request, try again")
		return exitcode.AuthError
	}

	switch api.KindOf(err) {
	case api.KindValidation:
		var ve *api.ValidationError
		errors.As(err, &ve)
		fmt.Fprintf(errOut, "error: %s\n", ve.Message)
		output.FormatFieldErrors(errOut, ve.Fields)
		return exitcode.UserError
	case api.KindDuplicate:
		fmt.Fprintln(errOut, "error: user already exists")
		return exitcode.UserError
	case api.KindAPI:
		var ae *api.Error
		errors.As(err, &ae)
		if errors.Is(err, api.ErrUnauthorized) {
			fmt.Fprintf(errOut, "error: auth error: %s\n", ae.Message)
			return exitcode.AuthError
		}
		fmt.Fprintf(errOut, "error: backend error: %s\n", ae.Message)
		return exitcode.BackendError
	}

	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}
