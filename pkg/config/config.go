package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/rhobs/simple-mcp/pkg/runner"
)

// Mode selects which transports start alongside the HTTP listener.
type Mode string

const (
	// ModeDevelopment serves stdio in addition to HTTP.
	ModeDevelopment Mode = "development"
	// ModeProduction serves HTTP only.
	ModeProduction Mode = "production"
)

const (
	DefaultPort     = 3000
	DefaultLogLevel = "info"
)

// ParseMode validates and converts a string to Mode
func ParseMode(mode string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(mode))) {
	case ModeDevelopment:
		return ModeDevelopment, nil
	case ModeProduction:
		return ModeProduction, nil
	default:
		return "", fmt.Errorf("invalid mode: %s (valid options: development, production)", mode)
	}
}

// Duration is a time.Duration read from strings such as "30s".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config holds simple-mcp server configuration
type Config struct {
	// Port is the HTTP listening port.
	// Default: 3000
	Port int `toml:"port,omitempty"`

	// Mode controls whether the stdio transport starts with the HTTP listener.
	// Valid values: "development" (default, HTTP and stdio), "production" (HTTP only).
	Mode Mode `toml:"mode,omitempty"`

	// Interpreter runs the tool scripts.
	// Default: "python3"
	Interpreter string `toml:"interpreter,omitempty"`

	// ScriptDir holds calculator.py and text_analyzer.py.
	// Default: "python_scripts"
	ScriptDir string `toml:"script_dir,omitempty"`

	// ExecTimeout bounds a single script run. Zero disables the limit.
	ExecTimeout Duration `toml:"exec_timeout,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level,omitempty"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Port:        DefaultPort,
		Mode:        ModeDevelopment,
		Interpreter: runner.DefaultInterpreter,
		ScriptDir:   runner.DefaultScriptDir,
		LogLevel:    DefaultLogLevel,
	}
}

// Load returns the defaults overlaid with the TOML file at path, if any,
// and then with the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the TOML file at path. Unknown keys are rejected.
func (c *Config) LoadFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys in config file %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// ApplyEnv overlays PORT, MCP_MODE, MCP_INTERPRETER, MCP_SCRIPT_DIR and
// MCP_EXEC_TIMEOUT when they are set. Without MCP_MODE, NODE_ENV=production
// selects production and any other NODE_ENV value selects development.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Port = port
	}
	if v := getenv("MCP_MODE"); v != "" {
		mode, err := ParseMode(v)
		if err != nil {
			return err
		}
		c.Mode = mode
	} else if v := getenv("NODE_ENV"); v != "" {
		// deployments carried over from the Node server only distinguish production
		c.Mode = ModeDevelopment
		if v == string(ModeProduction) {
			c.Mode = ModeProduction
		}
	}
	if v := getenv("MCP_INTERPRETER"); v != "" {
		c.Interpreter = v
	}
	if v := getenv("MCP_SCRIPT_DIR"); v != "" {
		c.ScriptDir = v
	}
	if v := getenv("MCP_EXEC_TIMEOUT"); v != "" {
		if err := c.ExecTimeout.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("invalid MCP_EXEC_TIMEOUT %q: %w", v, err)
		}
	}
	return nil
}

// Validate checks that the configuration values are valid.
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %d", c.Port))
	}
	if _, err := ParseMode(string(c.Mode)); err != nil {
		errs = append(errs, err)
	}
	if c.Interpreter == "" {
		errs = append(errs, errors.New("interpreter must not be empty"))
	}
	if c.ExecTimeout < 0 {
		errs = append(errs, fmt.Errorf("exec_timeout must not be negative, got %s", time.Duration(c.ExecTimeout)))
	}
	return errors.Join(errs...)
}

// StdioEnabled reports whether the mode starts the stdio transport.
func (c *Config) StdioEnabled() bool {
	return c.Mode != ModeProduction
}

// ListenAddr is the HTTP listen address for Port.
func (c *Config) ListenAddr() string {
	return ":" + strconv.Itoa(c.Port)
}

// NewRunner builds the process runner described by the configuration.
func (c *Config) NewRunner() *runner.ProcessRunner {
	r := runner.NewProcessRunner(c.Interpreter, c.ScriptDir)
	r.Timeout = time.Duration(c.ExecTimeout)
	return r
}
