package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/joshharrison/ganttboard/internal/analysis"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	w, err := cfg.Window()
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if w.Days() != 30 {
		t.Errorf("expected a 30 day window, got %.0f", w.Days())
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ganttboard.yaml")
	yml := "addr: \":9000\"\ncritical_source: flag\nrate_burst: 5\nsession_ttl: 2h\nlog_format: json\n"
	if err := os.WriteFile(path, []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvPrefix+"ADDR", ":9100")

	cfg, err := Load(path, filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9100" {
		t.Errorf("expected env to override file addr, got %s", cfg.Addr)
	}
	if cfg.CriticalSource != "flag" || cfg.RateBurst != 5 || cfg.LogFormat != "json" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("expected 2h ttl, got %s", cfg.SessionTTL)
	}
	if cfg.WindowStart != "2024-01-01" {
		t.Errorf("expected default window start kept, got %s", cfg.WindowStart)
	}
}

func TestLoad_DotenvDoesNotOverrideEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := EnvPrefix + "DEFAULT_USER=dotenv-user\n" + EnvPrefix + "DEFAULT_ROLE=dotenv-role\n"
	if err := os.WriteFile(envFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvPrefix+"DEFAULT_USER", "shell-user")
	// t.Setenv restores the variable afterwards; the dotenv one must be
	// cleared by hand.
	t.Cleanup(func() { os.Unsetenv(EnvPrefix + "DEFAULT_ROLE") })

	cfg, err := Load("", envFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultUser != "shell-user" {
		t.Errorf("expected shell env to win, got %s", cfg.DefaultUser)
	}
	if cfg.DefaultRole != "dotenv-role" {
		t.Errorf("expected .env value, got %s", cfg.DefaultRole)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestApplyEnv_Numbers(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		EnvPrefix + "RATE_LIMIT":       "2.5",
		EnvPrefix + "RATE_BURST":       "3",
		EnvPrefix + "DEADLINE_HORIZON": "14",
		EnvPrefix + "SESSION_TTL":      "30m",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.RateLimit != 2.5 || cfg.RateBurst != 3 || cfg.DeadlineHorizon != 14 || cfg.SessionTTL != 30*time.Minute {
		t.Errorf("numeric env not applied: %+v", cfg)
	}

	if err := cfg.ApplyEnv(envMap(map[string]string{EnvPrefix + "RATE_BURST": "lots"})); err == nil {
		t.Error("expected error for non-numeric burst")
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"bad source":      func(c *Config) { c.CriticalSource = "guess" },
		"bad date":        func(c *Config) { c.AsOf = "09/01/2024" },
		"inverted window": func(c *Config) { c.WindowStart, c.WindowEnd = "2024-02-01", "2024-01-01" },
		"zero burst":      func(c *Config) { c.RateBurst = 0 },
		"bad log level":   func(c *Config) { c.LogLevel = "loud" },
		"no user":         func(c *Config) { c.DefaultUser = "" },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestLogger(t *testing.T) {
	cfg := Default()
	cfg.LogFormat = "json"
	cfg.LogLevel = "warn"

	var buf bytes.Buffer
	log, err := cfg.Logger(&buf)
	if err != nil {
		t.Fatalf("Logger: %v", err)
	}
	if log.GetLevel() != logrus.WarnLevel {
		t.Errorf("expected warn level, got %s", log.GetLevel())
	}
	log.Info("dropped")
	log.WithField("component", "test").Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Error("info line should be filtered at warn level")
	}
	if !strings.Contains(out, `"component":"test"`) {
		t.Errorf("expected JSON field in output, got %q", out)
	}
}

func TestSource(t *testing.T) {
	cfg := Default()
	for in, want := range map[string]analysis.CriticalSource{
		"":         analysis.SourceComputed,
		"computed": analysis.SourceComputed,
		"flag":     analysis.SourceFlag,
	} {
		cfg.CriticalSource = in
		if got := cfg.Source(); got != want {
			t.Errorf("Source(%q) = %s, want %s", in, got, want)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("%q: unexpected validation error: %v", in, err)
		}
	}
}
