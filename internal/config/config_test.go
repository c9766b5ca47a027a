package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func useTempConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("SAVEMONEY_CONFIG", path)
	for _, k := range []string{"SAVEMONEY_DB", "SAVEMONEY_BACKEND", "SAVEMONEY_LOG_LEVEL", "SAVEMONEY_LOG_FORMAT", "SAVEMONEY_DAEMON_ADDR", "SAVEMONEY_THEME", "SAVEMONEY_DAEMON_INTERVAL_SEC"} {
		t.Setenv(k, "")
	}
	return path
}

func TestLoadMissingReturnsDefaults(t *testing.T) {
	useTempConfig(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if Exists() {
		t.Fatal("Exists = true before Save")
	}
	if cfg.General.RecentLimit != 5 {
		t.Fatalf("RecentLimit = %d, want 5", cfg.General.RecentLimit)
	}
	if !cfg.Budget.DefaultMonthlyTarget.Equal(decimal.NewFromInt(1_000_000)) {
		t.Fatalf("DefaultMonthlyTarget = %s, want 1000000", cfg.Budget.DefaultMonthlyTarget)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := useTempConfig(t)

	cfg := DefaultConfig()
	cfg.Budget.DefaultMonthlyTarget = decimal.NewFromInt(2_500_000)
	cfg.Display.TodayLabel = "Hari ini"
	cfg.General.DBPath = "/tmp/ledger.db"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("perm = %o, want 600", perm)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.Budget.DefaultMonthlyTarget.Equal(decimal.NewFromInt(2_500_000)) {
		t.Fatalf("DefaultMonthlyTarget = %s, want 2500000", got.Budget.DefaultMonthlyTarget)
	}
	if got.Display.TodayLabel != "Hari ini" {
		t.Fatalf("TodayLabel = %q, want Hari ini", got.Display.TodayLabel)
	}
	if got.DBPath() != "/tmp/ledger.db" {
		t.Fatalf("DBPath = %q, want /tmp/ledger.db", got.DBPath())
	}
}

func TestEnvOverrides(t *testing.T) {
	useTempConfig(t)
	t.Setenv("SAVEMONEY_DB", "/data/env.db")
	t.Setenv("SAVEMONEY_LOG_LEVEL", "debug")
	t.Setenv("SAVEMONEY_DAEMON_INTERVAL_SEC", "60")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath() != "/data/env.db" {
		t.Fatalf("DBPath = %q, want /data/env.db", cfg.DBPath())
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Daemon.IntervalSec != 60 {
		t.Fatalf("IntervalSec = %d, want 60", cfg.Daemon.IntervalSec)
	}
}

func TestValidateAggregatesProblems(t *testing.T) {
	cfg := DefaultConfig()
	cfg.General.Backend = "postgres"
	cfg.General.RecentLimit = 0
	cfg.Log.Level = "loud"
	cfg.Display.DecimalSep = "."

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate = nil, want error")
	}
	msg := err.Error()
	for _, want := range []string{"backend", "recent_limit", "log level", "thousands_sep"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}

func TestValidateSeparators(t *testing.T) {
	tests := []struct {
		thousands, decimal string
		wantErr            string
	}{
		{".", ",", ""},
		{"", ".", ""},
		{"\u00a0", ",", ""},
		{"..", ",", "thousands_sep"},
		{".", ", ", "decimal_sep"},
		{",", ",", "must differ"},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Display.ThousandsSep = tt.thousands
		cfg.Display.DecimalSep = tt.decimal
		err := cfg.Validate()
		if tt.wantErr == "" {
			if err != nil {
				t.Errorf("Validate(%q, %q) = %v, want nil", tt.thousands, tt.decimal, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("Validate(%q, %q) = %v, want error mentioning %q", tt.thousands, tt.decimal, err, tt.wantErr)
		}
	}
}
