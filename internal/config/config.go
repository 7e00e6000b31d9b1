// Package config handles the XDG configuration directory and the
// environment settings the client needs at startup.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// AppName is the application directory name.
	AppName = "taskfuss"

	// EnvFile is the optional dotenv file read from the config dir and the
	// working directory.
	EnvFile = ".env"

	// ServerURLEnv names the required API base URL setting.
	ServerURLEnv = "TASKFUSS_SERVER_URL"

	// TimeoutEnv overrides the per-request timeout (Go duration syntax).
	TimeoutEnv = "TASKFUSS_TIMEOUT"

	// RateLimitEnv caps outgoing requests per second. Zero disables it.
	RateLimitEnv = "TASKFUSS_RATE_LIMIT"

	// DefaultTimeout bounds every API call.
	DefaultTimeout = 10 * time.Second
)

// ErrServerURLNotSet is returned when TASKFUSS_SERVER_URL is missing.
var ErrServerURLNotSet = errors.New(ServerURLEnv + " is not set")

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// ServerURL is the base URL of the task-fuss API.
	ServerURL string

	// Timeout bounds a single API request.
	Timeout time.Duration

	// RateLimit is the max requests per second, 0 for unlimited.
	RateLimit float64

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// New creates a new Config with the default or specified config directory
// and reads the environment settings. If configDir is empty, uses
// XDG_CONFIG_HOME/taskfuss or $HOME/.config/taskfuss.
//
// A missing server URL is fatal: New returns ErrServerURLNotSet and no
// config, so nothing downstream can be built without it.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}

	// Values already in the environment win over dotenv files.
	if err := loadEnvFiles(filepath.Join(dir, EnvFile), EnvFile); err != nil {
		return nil, err
	}

	cfg := &Config{
		Dir:     dir,
		Timeout: DefaultTimeout,
	}

	serverURL := os.Getenv(ServerURLEnv)
	if serverURL == "" {
		return nil, ErrServerURLNotSet
	}
	if u, err := url.Parse(serverURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid %s: %q", ServerURLEnv, serverURL)
	}
	cfg.ServerURL = serverURL

	if v := os.Getenv(TimeoutEnv); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid %s: %q", TimeoutEnv, v)
		}
		cfg.Timeout = d
	}

	if v := os.Getenv(RateLimitEnv); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r < 0 {
			return nil, fmt.Errorf("invalid %s: %q", RateLimitEnv, v)
		}
		cfg.RateLimit = r
	}

	return cfg, nil
}

// loadEnvFiles loads the dotenv files that exist, skipping the rest.
func loadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}
