// Package config resolves ganttboard settings from defaults, an optional
// YAML file, .env files and GANTTBOARD_* environment variables, in that
// order of increasing precedence. Command-line flags are applied on top by
// the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/joshharrison/ganttboard/internal/analysis"
	"github.com/joshharrison/ganttboard/internal/gantt"
	"github.com/joshharrison/ganttboard/internal/model"
)

// EnvPrefix prefixes every environment variable the config reads.
const EnvPrefix = "GANTTBOARD_"

// Config is the resolved configuration.
type Config struct {
	Addr            string        `yaml:"addr" validate:"required"`
	DataFile        string        `yaml:"data_file"`
	DSN             string        `yaml:"dsn"`
	WindowStart     string        `yaml:"window_start" validate:"required,datetime=2006-01-02"`
	WindowEnd       string        `yaml:"window_end" validate:"required,datetime=2006-01-02"`
	AsOf            string        `yaml:"as_of" validate:"required,datetime=2006-01-02"`
	CriticalSource  string        `yaml:"critical_source"`
	DeadlineHorizon int           `yaml:"deadline_horizon" validate:"min=0"`
	RateLimit       float64       `yaml:"rate_limit" validate:"gte=0"`
	RateBurst       int           `yaml:"rate_burst" validate:"gte=1"`
	SessionSecret   string        `yaml:"session_secret"`
	SessionTTL      time.Duration `yaml:"session_ttl" validate:"gte=0"`
	DefaultUser     string        `yaml:"default_user" validate:"required"`
	DefaultRole     string        `yaml:"default_role"`
	LogLevel        string        `yaml:"log_level" validate:"oneof=trace debug info warn error"`
	LogFormat       string        `yaml:"log_format" validate:"oneof=text json"`
	StateDir        string        `yaml:"state_dir" validate:"required"`
}

// Default returns the built-in configuration: fixture data, the January 2024
// reference window and computed critical paths.
func Default() Config {
	return Config{
		Addr:            ":8080",
		WindowStart:     "2024-01-01",
		WindowEnd:       "2024-01-31",
		AsOf:            "2024-01-09",
		CriticalSource:  string(analysis.SourceComputed),
		DeadlineHorizon: 7,
		RateLimit:       10,
		RateBurst:       20,
		SessionTTL:      24 * time.Hour,
		DefaultUser:     "guest",
		DefaultRole:     "viewer",
		LogLevel:        "info",
		LogFormat:       "text",
		StateDir:        ".ganttboard",
	}
}

// Load resolves the configuration. path names an optional YAML file; an
// empty path skips it. envFiles are loaded with godotenv when they exist and
// never override variables already set in the environment.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from GANTTBOARD_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	str("ADDR", &c.Addr)
	str("DATA_FILE", &c.DataFile)
	str("DSN", &c.DSN)
	str("WINDOW_START", &c.WindowStart)
	str("WINDOW_END", &c.WindowEnd)
	str("AS_OF", &c.AsOf)
	str("CRITICAL_SOURCE", &c.CriticalSource)
	str("SESSION_SECRET", &c.SessionSecret)
	str("DEFAULT_USER", &c.DefaultUser)
	str("DEFAULT_ROLE", &c.DefaultRole)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	str("STATE_DIR", &c.StateDir)

	if v, ok := lookup(EnvPrefix + "DEADLINE_HORIZON"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sDEADLINE_HORIZON: %w", EnvPrefix, err)
		}
		c.DeadlineHorizon = n
	}
	if v, ok := lookup(EnvPrefix + "RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("%sRATE_LIMIT: %w", EnvPrefix, err)
		}
		c.RateLimit = f
	}
	if v, ok := lookup(EnvPrefix + "RATE_BURST"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sRATE_BURST: %w", EnvPrefix, err)
		}
		c.RateBurst = n
	}
	if v, ok := lookup(EnvPrefix + "SESSION_TTL"); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sSESSION_TTL: %w", EnvPrefix, err)
		}
		c.SessionTTL = d
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and that the window is not inverted.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := analysis.ParseSource(c.CriticalSource); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	w, err := c.Window()
	if err != nil {
		return err
	}
	if w.End.Before(w.Start) {
		return fmt.Errorf("invalid config: window ends %s before it starts %s", w.End, w.Start)
	}
	return nil
}

// Window is the configured reference window.
func (c Config) Window() (gantt.Window, error) {
	start, err := model.ParseDate(c.WindowStart)
	if err != nil {
		return gantt.Window{}, fmt.Errorf("window start: %w", err)
	}
	end, err := model.ParseDate(c.WindowEnd)
	if err != nil {
		return gantt.Window{}, fmt.Errorf("window end: %w", err)
	}
	return gantt.Window{Start: start, End: end}, nil
}

// AsOfDate is the reference "today" used for risk, deadlines and stats.
func (c Config) AsOfDate() (model.Date, error) {
	return model.ParseDate(c.AsOf)
}

// Source is the configured critical source. An unset or invalid value
// means computed; Validate reports the invalid case.
func (c Config) Source() analysis.CriticalSource {
	src, err := analysis.ParseSource(c.CriticalSource)
	if err != nil {
		return analysis.SourceComputed
	}
	return src
}
