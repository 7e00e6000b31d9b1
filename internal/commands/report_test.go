package commands

import (
	"bytes"
	"fmt"
	"testing"

	"taskfuss/internal/exitcode"
	"taskfuss/internal/store"
)

func TestReportError_SessionChanged(t *testing.T) {
	var buf bytes.Buffer
	code := reportError(&buf, fmt.Errorf("wrapped: %w", store.ErrSessionChanged))

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if buf.String() != "error: session changed during request, try again\n" {
		t.Errorf("unexpected stderr %q", buf.String())
	}
}
