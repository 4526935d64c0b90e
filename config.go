package sqltx

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultDriver is the driver used when a target does not name one.
const DefaultDriver = "sqlite"

// DefaultCommandTimeout bounds command execution when neither the
// configuration nor the command sets a timeout.
const DefaultCommandTimeout = 180 * time.Second

var validate = validator.New()

// Target is a named connection destination: a driver registered with
// database/sql plus the data source name it opens.
type Target struct {
	Driver string `yaml:"driver" validate:"required"`
	DSN    string `yaml:"dsn" validate:"required"`
}

// Config carries everything a Conn needs. The zero value is not usable;
// start from DefaultConfig or LoadConfig and fill in a DSN or Targets.
type Config struct {
	// Driver and DSN describe the default connection target. Driver falls
	// back to DefaultDriver when empty.
	Driver string
	DSN    string

	// Targets holds named connection targets, typically loaded from a
	// config file. DefaultTarget selects which one New uses when the
	// caller does not pick one with WithTarget.
	Targets       map[string]Target `validate:"omitempty,dive"`
	DefaultTarget string

	// CommandTimeout bounds each command execution. Zero means
	// DefaultCommandTimeout; negative disables the bound.
	CommandTimeout time.Duration

	// Logger receives debug-level lifecycle events. Nil discards them.
	Logger *slog.Logger `validate:"-"`

	// Metrics, when non-nil, records connection and command counters.
	// Build one with NewMetrics and share it across connections.
	Metrics *Metrics `validate:"-"`
}

// DefaultConfig returns a Config with the built-in driver and timeout.
func DefaultConfig() Config {
	return Config{
		Driver:         DefaultDriver,
		CommandTimeout: DefaultCommandTimeout,
	}
}

// LoadConfig reads configuration from environment variables, falling
// back to defaults for any unset values.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("SQLTX_DRIVER"); v != "" {
		cfg.Driver = v
	}
	if v := os.Getenv("SQLTX_DSN"); v != "" {
		cfg.DSN = v
	}
	if v := os.Getenv("SQLTX_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CommandTimeout = time.Duration(n) * time.Second
		}
	}

	return cfg
}

// fileConfig is the on-disk YAML shape. Timeouts are plain seconds so
// config files stay tool-agnostic.
type fileConfig struct {
	Driver                string            `yaml:"driver"`
	DSN                   string            `yaml:"dsn"`
	Targets               map[string]Target `yaml:"targets"`
	DefaultTarget         string            `yaml:"default_target"`
	CommandTimeoutSeconds int               `yaml:"command_timeout_seconds"`
}

// LoadConfigFile reads a YAML config file and merges it over the
// defaults. Fields absent from the file keep their default values.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if fc.Driver != "" {
		cfg.Driver = fc.Driver
	}
	if fc.DSN != "" {
		cfg.DSN = fc.DSN
	}
	if len(fc.Targets) > 0 {
		cfg.Targets = fc.Targets
	}
	if fc.DefaultTarget != "" {
		cfg.DefaultTarget = fc.DefaultTarget
	}
	if fc.CommandTimeoutSeconds > 0 {
		cfg.CommandTimeout = time.Duration(fc.CommandTimeoutSeconds) * time.Second
	}
	return cfg, nil
}

// validateConfig checks structural constraints before a Conn is built.
func validateConfig(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.DefaultTarget != "" {
		if _, ok := cfg.Targets[cfg.DefaultTarget]; !ok {
			return fmt.Errorf("invalid config: default target %q not defined", cfg.DefaultTarget)
		}
	}
	return nil
}

// resolveTarget picks the connection target for a new Conn. A non-empty
// ref names a configured target, or is taken as a raw DSN when no
// target by that name exists.
func (c Config) resolveTarget(ref string) (Target, error) {
	driver := c.Driver
	if driver == "" {
		driver = DefaultDriver
	}

	switch {
	case ref != "":
		if t, ok := c.Targets[ref]; ok {
			return t, nil
		}
		return Target{Driver: driver, DSN: ref}, nil
	case c.DefaultTarget != "":
		return c.Targets[c.DefaultTarget], nil
	case c.DSN != "":
		return Target{Driver: driver, DSN: c.DSN}, nil
	}
	return Target{}, fmt.Errorf("%w: no connection target configured", ErrConnection)
}

// commandTimeout returns the effective default timeout for commands on
// this connection.
func (c Config) commandTimeout() time.Duration {
	switch {
	case c.CommandTimeout > 0:
		return c.CommandTimeout
	case c.CommandTimeout < 0:
		return 0
	}
	return DefaultCommandTimeout
}

// logger returns the configured logger, or one that discards everything.
func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
