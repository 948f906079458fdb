package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/axsnap/cmd/axsnap/internal/logging"
)

// FileName is the optional per-directory configuration file.
const FileName = "axsnap.yaml"

// Environment overrides.
const (
	EnvLogLevel  = "AXSNAP_LOG_LEVEL"
	EnvLogFormat = "AXSNAP_LOG_FORMAT"
	EnvOutput    = "AXSNAP_OUTPUT"
)

// Output formats.
const (
	OutputJSON = "json"
	OutputTree = "tree"
)

// Config represents the optional axsnap.yaml configuration.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Output OutputConfig `yaml:"output"`
	Render RenderConfig `yaml:"render"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// OutputConfig selects how trees are printed.
type OutputConfig struct {
	Format string `yaml:"format,omitempty"`
}

// RenderConfig contains inspector defaults.
type RenderConfig struct {
	Scale float64 `yaml:"scale,omitempty"`
}

// Overrides carries command-line values. Zero values mean "not set".
type Overrides struct {
	LogLevel  string
	LogFormat string
	Output    string
	Scale     float64
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root      string
	LogLevel  slog.Level
	LogFormat string
	Output    string
	Scale     float64
}

// LoadOptional reads axsnap.yaml if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	return &cfg, nil
}

// LoadDotEnv loads dir/.env into the process environment if it exists.
// Variables already set in the environment win.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Resolve loads .env and axsnap.yaml from dir (both optional) and applies
// precedence: flags > environment > axsnap.yaml > defaults.
func Resolve(dir string, flags Overrides) (*Resolved, error) {
	if err := LoadDotEnv(dir); err != nil {
		return nil, err
	}
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}

	levelName := pick(flags.LogLevel, os.Getenv(EnvLogLevel), cfg.Log.Level, "info")
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}

	logFormat := strings.ToLower(pick(flags.LogFormat, os.Getenv(EnvLogFormat), cfg.Log.Format, logging.FormatText))
	if logFormat != logging.FormatText && logFormat != logging.FormatJSON {
		return nil, fmt.Errorf("unknown log format %q (want text or json)", logFormat)
	}

	output := strings.ToLower(pick(flags.Output, os.Getenv(EnvOutput), cfg.Output.Format, OutputTree))
	if output != OutputJSON && output != OutputTree {
		return nil, fmt.Errorf("unknown output format %q (want json or tree)", output)
	}

	scale := cfg.Render.Scale
	if flags.Scale != 0 {
		scale = flags.Scale
	}
	if scale == 0 {
		scale = 1
	}
	if scale < 0 {
		return nil, fmt.Errorf("render scale must be positive, got %g", scale)
	}

	return &Resolved{
		Root:      dir,
		LogLevel:  level,
		LogFormat: logFormat,
		Output:    output,
		Scale:     scale,
	}, nil
}

// pick returns the first non-blank value.
func pick(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
