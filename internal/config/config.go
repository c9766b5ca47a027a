// Package config loads savemoney settings from TOML, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Config holds all savemoney configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Budget     BudgetConfig     `toml:"budget"`
	Display    DisplayConfig    `toml:"display"`
	Appearance AppearanceConfig `toml:"appearance"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Log        LogConfig        `toml:"log"`
}

// GeneralConfig holds storage and listing preferences.
type GeneralConfig struct {
	Backend     string `toml:"backend"`
	DBPath      string `toml:"db_path,omitempty"`
	RecentLimit int    `toml:"recent_limit"`
}

// BudgetConfig holds defaults applied when the ledger is first created.
type BudgetConfig struct {
	DefaultMonthlyTarget decimal.Decimal `toml:"default_monthly_target"`
}

// DisplayConfig controls how money and days are rendered.
type DisplayConfig struct {
	CurrencySymbol string `toml:"currency_symbol"`
	ThousandsSep   string `toml:"thousands_sep"`
	DecimalSep     string `toml:"decimal_sep"`
	TodayLabel     string `toml:"today_label"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DaemonConfig holds local API settings.
type DaemonConfig struct {
	Addr         string `toml:"addr"`
	IntervalSec  int    `toml:"interval_sec"`
	EventsBuffer int    `toml:"events_buffer"`
}

// LogConfig controls logrus output.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Interval returns the daemon poll interval.
func (d DaemonConfig) Interval() time.Duration {
	return time.Duration(d.IntervalSec) * time.Second
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Backend:     "sqlite",
			RecentLimit: 5,
		},
		Budget: BudgetConfig{
			DefaultMonthlyTarget: decimal.NewFromInt(1_000_000),
		},
		Display: DisplayConfig{
			CurrencySymbol: "Rp",
			ThousandsSep:   ".",
			DecimalSep:     ",",
			TodayLabel:     "Today",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8787",
			IntervalSec:  15,
			EventsBuffer: 200,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "savemoney")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "savemoney")
}

// ConfigPath returns the full path to the config file. SAVEMONEY_CONFIG
// overrides the XDG location.
func ConfigPath() string {
	if p := os.Getenv("SAVEMONEY_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "savemoney")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "savemoney")
}

// DBPath returns the configured database path or the default under DataDir.
func (c Config) DBPath() string {
	if c.General.DBPath != "" {
		return c.General.DBPath
	}
	return filepath.Join(DataDir(), "ledger.db")
}

// LoadDotEnv loads a .env file from the working directory if one exists.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied on top.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	ApplyEnv(&cfg)
	return cfg, nil
}

// ApplyEnv overlays SAVEMONEY_* environment variables onto cfg.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("SAVEMONEY_DB"); v != "" {
		cfg.General.DBPath = v
	}
	if v := os.Getenv("SAVEMONEY_BACKEND"); v != "" {
		cfg.General.Backend = v
	}
	if v := os.Getenv("SAVEMONEY_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SAVEMONEY_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("SAVEMONEY_DAEMON_ADDR"); v != "" {
		cfg.Daemon.Addr = v
	}
	if v := os.Getenv("SAVEMONEY_THEME"); v != "" {
		cfg.Appearance.Theme = v
	}
	if v, err := strconv.Atoi(os.Getenv("SAVEMONEY_DAEMON_INTERVAL_SEC")); err == nil {
		cfg.Daemon.IntervalSec = v
	}
}

// Save writes the config to disk.
func Save(cfg Config) error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return toml.NewEncoder(f).Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

var (
	validBackends = []string{"sqlite", "memory"}
	validFormats  = []string{"text", "json"}
)

// Validate reports every problem with cfg in a single error.
func (c Config) Validate() error {
	var problems []string

	if !contains(validBackends, c.General.Backend) {
		problems = append(problems, fmt.Sprintf("invalid backend %q: must be one of %v", c.General.Backend, validBackends))
	}
	if c.General.RecentLimit < 1 {
		problems = append(problems, fmt.Sprintf("invalid recent_limit %d: must be at least 1", c.General.RecentLimit))
	}
	if c.Budget.DefaultMonthlyTarget.IsNegative() {
		problems = append(problems, "default_monthly_target must not be negative")
	}
	if utf8.RuneCountInString(c.Display.ThousandsSep) > 1 {
		problems = append(problems, fmt.Sprintf("invalid thousands_sep %q: must be a single character", c.Display.ThousandsSep))
	}
	if utf8.RuneCountInString(c.Display.DecimalSep) > 1 {
		problems = append(problems, fmt.Sprintf("invalid decimal_sep %q: must be a single character", c.Display.DecimalSep))
	}
	if c.Display.ThousandsSep != "" && c.Display.ThousandsSep == c.Display.DecimalSep {
		problems = append(problems, "thousands_sep and decimal_sep must differ")
	}
	if _, _, err := net.SplitHostPort(c.Daemon.Addr); err != nil {
		problems = append(problems, fmt.Sprintf("invalid daemon addr %q: %v", c.Daemon.Addr, err))
	}
	if c.Daemon.IntervalSec < 1 {
		problems = append(problems, fmt.Sprintf("invalid daemon interval_sec %d: must be at least 1", c.Daemon.IntervalSec))
	}
	if c.Daemon.EventsBuffer < 1 {
		problems = append(problems, fmt.Sprintf("invalid daemon events_buffer %d: must be at least 1", c.Daemon.EventsBuffer))
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, fmt.Sprintf("invalid log level %q", c.Log.Level))
	}
	if !contains(validFormats, c.Log.Format) {
		problems = append(problems, fmt.Sprintf("invalid log format %q: must be one of %v", c.Log.Format, validFormats))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
