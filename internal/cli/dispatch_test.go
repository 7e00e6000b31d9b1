package cli_test

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"taskfuss/internal/app"
	"taskfuss/internal/cli"
	"taskfuss/internal/commands"
	"taskfuss/internal/config"
	"taskfuss/internal/exitcode"
	"taskfuss/internal/logging"
	"taskfuss/internal/router"
	"taskfuss/internal/storage"
	"taskfuss/internal/testutil"
)

// harness runs the dispatcher against a fake backend with in-memory token
// storage shared across runs, so consecutive runs see one session.
type harness struct {
	fake  *testutil.FakeAPI
	kv    *storage.MemoryStore
	built int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fake := testutil.NewFakeAPI()
	t.Cleanup(fake.Close)

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(config.ServerURLEnv, fake.URL())
	t.Setenv(config.TimeoutEnv, "")
	t.Setenv(config.RateLimitEnv, "")
	t.Setenv(commands.PasswordEnv, "")
	t.Setenv(logging.LevelEnv, "error")

	return &harness{fake: fake, kv: storage.NewMemoryStore()}
}

func (h *harness) factory(cfg *config.Config, log zerolog.Logger, routes []router.Route) (*app.App, error) {
	h.built++
	return app.New(cfg, log, routes, app.WithStorage(h.kv))
}

func (h *harness) run(args ...string) (stdout, stderr string, code int) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, h.factory)

	var outBuf, errBuf bytes.Buffer
	code = dispatcher.Run(context.Background(), args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	h.fake.AddUser("alice", "alice@example.com", "password123")
	if _, stderr, code := h.run("login", "--email", "alice@example.com", "--password", "password123"); code != exitcode.Success {
		t.Fatalf("login failed: %d %s", code, stderr)
	}
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	h := newHarness(t)

	_, stderr, code := h.run("unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	h := newHarness(t)

	_, stderr, code := h.run("--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	h := newHarness(t)

	_, stderr, code := h.run("help", "--unknown")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: -unknown\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagNeedsArgument(t *testing.T) {
	h := newHarness(t)

	_, stderr, code := h.run("login", "--email")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: flag needs an argument: -email\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpWithoutConfiguration(t *testing.T) {
	h := newHarness(t)
	t.Setenv(config.ServerURLEnv, "")

	stdout, stderr, code := h.run("help")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
	if h.built != 0 {
		t.Errorf("expected no app to be built, got %d", h.built)
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	h := newHarness(t)

	stdout, _, code := h.run("version")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "taskfuss 0.1.0\n" {
		t.Errorf("expected 'taskfuss 0.1.0\\n', got %q", stdout)
	}
}

func TestDispatcher_MissingServerURLStopsBeforeApp(t *testing.T) {
	h := newHarness(t)
	t.Setenv(config.ServerURLEnv, "")

	_, stderr, code := h.run("login", "--email", "a@b.c", "--password", "password123")

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	expected := "error: TASKFUSS_SERVER_URL is not set\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
	if h.built != 0 {
		t.Errorf("expected no app to be built, got %d", h.built)
	}
	if h.fake.TotalCalls() != 0 {
		t.Errorf("expected no API calls, got %d", h.fake.TotalCalls())
	}
}

func TestDispatcher_NoArgsWithoutSessionRedirectsToLogin(t *testing.T) {
	h := newHarness(t)

	stdout, stderr, code := h.run()

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	expected := "error: not logged in (run: taskfuss login)\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
	if h.fake.TotalCalls() != 0 {
		t.Errorf("expected no API calls, got %d", h.fake.TotalCalls())
	}
}

func TestDispatcher_LoginThenListTasks(t *testing.T) {
	h := newHarness(t)
	h.fake.AddUser("alice", "alice@example.com", "password123")
	h.fake.AddTask("alice@example.com", 1, "x")

	stdout, stderr, code := h.run("login", "--email", "alice@example.com", "--password", "password123")
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}

	stdout, stderr, code = h.run()
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "   1  x\n" {
		t.Errorf("expected task listing, got %q", stdout)
	}
}

func TestDispatcher_LoginQuiet(t *testing.T) {
	h := newHarness(t)
	h.fake.AddUser("alice", "alice@example.com", "password123")

	stdout, _, code := h.run("login", "--quiet", "--email", "alice@example.com", "--password", "password123")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout in quiet mode, got %q", stdout)
	}
}

func TestDispatcher_LoginPasswordFromEnv(t *testing.T) {
	h := newHarness(t)
	h.fake.AddUser("alice", "alice@example.com", "password123")
	t.Setenv(commands.PasswordEnv, "password123")

	_, stderr, code := h.run("login", "--email", "alice@example.com")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
}

func TestDispatcher_LoginInvalidCredentials(t *testing.T) {
	h := newHarness(t)
	h.fake.AddUser("alice", "alice@example.com", "password123")

	_, stderr, code := h.run("login", "--email", "alice@example.com", "--password", "nope")

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	expected := "error: auth error: Invalid email or password\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_RegisterPasswordMismatch(t *testing.T) {
	h := newHarness(t)

	_, stderr, code := h.run("register", "--username", "alice", "--email", "alice@example.com",
		"--password", "password123", "--confirm", "password124")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: Validation failed\n  confirm_password: Passwords do not match\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
	if h.fake.TotalCalls() != 0 {
		t.Errorf("expected no API calls, got %d", h.fake.TotalCalls())
	}
}

func TestDispatcher_RegisterServerValidation(t *testing.T) {
	h := newHarness(t)

	_, stderr, code := h.run("register", "--username", "alice", "--email", "alice", "--password", "password123")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: Validation failed\n  Email: Email should be vaild\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_RegisterDuplicate(t *testing.T) {
	h := newHarness(t)
	h.fake.AddUser("alice", "alice@example.com", "password123")

	_, stderr, code := h.run("register", "--username", "alice", "--email", "alice@example.com", "--password", "password123")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: user already exists\n" {
		t.Errorf("expected duplicate error, got %q", stderr)
	}
}

func TestDispatcher_RegisterStartsSession(t *testing.T) {
	h := newHarness(t)

	stdout, stderr, code := h.run("register", "--username", "alice", "--email", "alice@example.com", "--password", "password123")
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "registered alice\n" {
		t.Errorf("expected 'registered alice\\n', got %q", stdout)
	}

	if _, ok, _ := h.kv.Get(storage.TokenKey); !ok {
		t.Error("expected token to be stored")
	}
}

func TestDispatcher_SessionExpired(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.fake.RevokeTokens()

	_, stderr, code := h.run("tasks")

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	expected := "error: session expired (run: taskfuss login)\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
	if _, ok, _ := h.kv.Get(storage.TokenKey); ok {
		t.Error("expected stored token to be removed")
	}
}

func TestDispatcher_BackendError(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.fake.Fail(http.MethodGet, "/tasks", http.StatusInternalServerError, `{"code":"INTERNAL","message":"boom"}`)

	_, stderr, code := h.run("tasks")

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: backend error: boom\n" {
		t.Errorf("expected backend error, got %q", stderr)
	}
}

func TestDispatcher_LogoutThenProtectedCommand(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	stdout, _, code := h.run("logout")
	if code != exitcode.Success || stdout != "ok\n" {
		t.Fatalf("logout: code %d, stdout %q", code, stdout)
	}

	_, stderr, code := h.run("whoami")
	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: not logged in (run: taskfuss login)\n" {
		t.Errorf("expected not logged in, got %q", stderr)
	}
}

func TestDispatcher_WhoamiAlias(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	stdout, stderr, code := h.run("whoami")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if !strings.HasPrefix(stdout, "Username:     alice\n") {
		t.Errorf("expected profile output, got %q", stdout)
	}
}

func TestDispatcher_StatusWithoutSession(t *testing.T) {
	h := newHarness(t)

	stdout, _, code := h.run("status")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "server:  " + h.fake.URL() + " (ok)\nsession: not logged in\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}
