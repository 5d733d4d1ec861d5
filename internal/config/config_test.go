package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
env = "dev"

[thresholds]
price_arb_pct = 25
expiry_window = "2h"

[baseline]
backend = "postgres"
dsn = "postgres://qw:qw@localhost/qw"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Env != "dev" {
		t.Fatalf("env = %s", cfg.Env)
	}
	if cfg.Thresholds.PriceArbPct != 25 {
		t.Fatalf("price_arb_pct = %v", cfg.Thresholds.PriceArbPct)
	}
	if cfg.Thresholds.ExpiryWindow.Duration != 2*time.Hour {
		t.Fatalf("expiry_window = %v", cfg.Thresholds.ExpiryWindow.Duration)
	}
	// Untouched settings keep their defaults.
	if cfg.Thresholds.IVArbPoints != 8 {
		t.Fatalf("iv_arb_points = %v", cfg.Thresholds.IVArbPoints)
	}
	if cfg.Baseline.Backend != "postgres" {
		t.Fatalf("backend = %s", cfg.Baseline.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("QW_ENV", "dev")
	t.Setenv("QW_THRESHOLDS_PERP_BASIS_BPS", "9")
	t.Setenv("QW_BASELINE_MAX_AGE", "6h")
	t.Setenv("QW_NOTIFY_ONLY_CRITICAL", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Env != "dev" || cfg.Thresholds.PerpBasisBps != 9 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Baseline.MaxAge.Duration != 6*time.Hour {
		t.Fatalf("max_age = %v", cfg.Baseline.MaxAge.Duration)
	}
	if !cfg.Notify.OnlyCritical {
		t.Fatal("only_critical override missing")
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Env = "staging"
	cfg.Baseline.Backend = "dynamo"
	cfg.Thresholds.CritMultiplier = 1.0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation failure")
	}
	for _, frag := range []string{"unknown env", "unknown backend", "crit_multiplier"} {
		if !strings.Contains(err.Error(), frag) {
			t.Fatalf("error %q missing %q", err, frag)
		}
	}
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Redis.Password = "hunter2"
	cfg.Notify.TelegramToken = "123:abc"

	red := RedactedConfig(&cfg)
	if red.Redis.Password != "***" || red.Notify.TelegramToken != "***" {
		t.Fatalf("redacted = %+v", red)
	}
	// The original is untouched.
	if cfg.Redis.Password != "hunter2" {
		t.Fatal("redaction mutated the source config")
	}
	// Empty secrets stay empty rather than becoming placeholders.
	if red.S3.SecretKey != "" {
		t.Fatalf("secret_key = %q", red.S3.SecretKey)
	}
}
