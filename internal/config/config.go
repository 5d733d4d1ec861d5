// Package config defines the top-level configuration for the quotewatch
// engine and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/vivirisk/quotewatch/internal/venues"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by QW_* environment variables.
type Config struct {
	Venues     VenuesConfig     `toml:"venues"`
	Thresholds ThresholdsConfig `toml:"thresholds"`
	Fees       FeesConfig       `toml:"fees"`
	Baseline   BaselineConfig   `toml:"baseline"`
	Redis      RedisConfig      `toml:"redis"`
	S3         S3Config         `toml:"s3"`
	Notify     NotifyConfig     `toml:"notify"`

	// Env selects the primary venue API cluster, "prod" or "dev". It also
	// tags persisted baselines, archived reports, and outgoing digests.
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
}

// VenuesConfig selects which reference venues run and which assets each one
// is asked for.
type VenuesConfig struct {
	// References lists the enabled reference venues by identifier.
	References []string `toml:"references"`
	// Assets maps a venue identifier to the underlyings fetched from it.
	Assets map[string][]string `toml:"assets"`
}

// ThresholdsConfig holds every detection tunable.
type ThresholdsConfig struct {
	WarnMultiplier float64 `toml:"warn_multiplier"`
	CritMultiplier float64 `toml:"crit_multiplier"`
	DefaultWidePct float64 `toml:"default_wide_pct"`

	PriceArbPct  float64 `toml:"price_arb_pct"`
	IVArbPoints  float64 `toml:"iv_arb_points"`
	MinRefVolume float64 `toml:"min_ref_volume"`
	MinRefOI     float64 `toml:"min_ref_oi"`
	MinOptionMid float64 `toml:"min_option_mid"`
	MinTenorDays float64 `toml:"min_tenor_days"`

	PerpBasisBps float64 `toml:"perp_basis_bps"`
	FundingBps   float64 `toml:"funding_bps"`

	MinNetEdgeUSD   float64  `toml:"min_net_edge_usd"`
	MinOpenInterest float64  `toml:"min_open_interest"`
	NearMoneyPct    float64  `toml:"near_money_pct"`
	ExpiryWindow    duration `toml:"expiry_window"`
	MinConfidence   float64  `toml:"min_confidence"`
	HealthTolerance float64  `toml:"health_tolerance"`
}

// FeesConfig holds the execution cost model.
type FeesConfig struct {
	// Taker maps a venue identifier to its taker fee fraction.
	Taker        map[string]float64 `toml:"taker"`
	DefaultTaker float64            `toml:"default_taker"`
	Slippage     float64            `toml:"slippage"`
}

// BaselineConfig selects and tunes the baseline store.
type BaselineConfig struct {
	// Backend is "file" or "postgres".
	Backend string   `toml:"backend"`
	Path    string   `toml:"path"`
	DSN     string   `toml:"dsn"`
	MaxAge  duration `toml:"max_age"`
}

// RedisConfig holds the optional alert-cooldown backend.
type RedisConfig struct {
	Enabled  bool     `toml:"enabled"`
	Addr     string   `toml:"addr"`
	Password string   `toml:"password"`
	DB       int      `toml:"db"`
	Cooldown duration `toml:"cooldown"`
}

// S3Config holds the optional report archive.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// NotifyConfig holds notification channel credentials and delivery policy.
type NotifyConfig struct {
	SlackWebhookURL string `toml:"slack_webhook_url"`
	TelegramToken   string `toml:"telegram_token"`
	TelegramChatID  string `toml:"telegram_chat_id"`
	OnlyCritical    bool   `toml:"only_critical"`
	DryRun          bool   `toml:"dry_run"`
}

// duration wraps time.Duration for TOML text encoding ("4h", "90s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with the values the engine was tuned
// on. These match config.example.toml.
func Defaults() Config {
	return Config{
		Venues: VenuesConfig{
			References: []string{
				venues.VenueDeribit,
				venues.VenueOKX,
				venues.VenueBybit,
				venues.VenueCoinCall,
			},
			Assets: map[string][]string{
				venues.VenueDeribit:  {"BTC", "ETH", "SOL"},
				venues.VenueOKX:      {"BTC", "ETH"},
				venues.VenueBybit:    {"BTC", "ETH", "SOL"},
				venues.VenueCoinCall: {"BTC", "ETH", "SOL"},
			},
		},
		Thresholds: ThresholdsConfig{
			WarnMultiplier:  1.5,
			CritMultiplier:  3.0,
			DefaultWidePct:  50,
			PriceArbPct:     20,
			IVArbPoints:     8,
			MinRefVolume:    50000,
			MinRefOI:        5,
			MinOptionMid:    1.0,
			MinTenorDays:    2,
			PerpBasisBps:    5,
			FundingBps:      6,
			MinNetEdgeUSD:   10,
			MinOpenInterest: 100,
			NearMoneyPct:    0.10,
			ExpiryWindow:    duration{4 * time.Hour},
			MinConfidence:   50,
			HealthTolerance: 2.0,
		},
		Fees: FeesConfig{
			Taker: map[string]float64{
				venues.VenuePowerTrade: 0.0005,
				venues.VenueDeribit:    0.0003,
				venues.VenueOKX:        0.0003,
				venues.VenueBybit:      0.0004,
				venues.VenueCoinCall:   0.0004,
			},
			DefaultTaker: 0.0005,
			Slippage:     0.005,
		},
		Baseline: BaselineConfig{
			Backend: "file",
			Path:    "baseline.json",
			MaxAge:  duration{12 * time.Hour},
		},
		Redis: RedisConfig{
			Enabled:  false,
			Addr:     "localhost:6379",
			Cooldown: duration{time.Hour},
		},
		S3: S3Config{
			Enabled:        false,
			Region:         "us-east-1",
			Bucket:         "quotewatch-reports",
			ForcePathStyle: true,
		},
		Notify:   NotifyConfig{},
		Env:      "prod",
		LogLevel: "info",
	}
}

// validEnvs enumerates the accepted values for Config.Env.
var validEnvs = map[string]bool{
	"prod": true,
	"dev":  true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var knownVenues = map[string]bool{
	venues.VenueDeribit:  true,
	venues.VenueOKX:      true,
	venues.VenueBybit:    true,
	venues.VenueCoinCall: true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validEnvs[strings.ToLower(c.Env)] {
		errs = append(errs, fmt.Sprintf("unknown env %q (valid: prod, dev)", c.Env))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	for _, v := range c.Venues.References {
		if !knownVenues[v] {
			errs = append(errs, fmt.Sprintf("venues: unknown reference venue %q", v))
		}
		if len(c.Venues.Assets[v]) == 0 {
			errs = append(errs, fmt.Sprintf("venues: no assets configured for %q", v))
		}
	}

	t := c.Thresholds
	if t.WarnMultiplier <= 1 {
		errs = append(errs, "thresholds: warn_multiplier must be > 1")
	}
	if t.CritMultiplier <= t.WarnMultiplier {
		errs = append(errs, "thresholds: crit_multiplier must exceed warn_multiplier")
	}
	if t.PriceArbPct <= 0 {
		errs = append(errs, "thresholds: price_arb_pct must be > 0")
	}
	if t.IVArbPoints <= 0 {
		errs = append(errs, "thresholds: iv_arb_points must be > 0")
	}
	if t.ExpiryWindow.Duration <= 0 {
		errs = append(errs, "thresholds: expiry_window must be > 0")
	}
	if t.MinConfidence < 0 || t.MinConfidence > 100 {
		errs = append(errs, "thresholds: min_confidence must be 0-100")
	}
	if t.HealthTolerance < 1 {
		errs = append(errs, "thresholds: health_tolerance must be >= 1")
	}

	if c.Fees.Slippage < 0 || c.Fees.Slippage >= 1 {
		errs = append(errs, "fees: slippage must be a fraction in [0, 1)")
	}
	if c.Fees.DefaultTaker < 0 {
		errs = append(errs, "fees: default_taker must be >= 0")
	}

	switch c.Baseline.Backend {
	case "file":
		if c.Baseline.Path == "" {
			errs = append(errs, "baseline: path must not be empty for the file backend")
		}
	case "postgres":
		if strings.TrimSpace(c.Baseline.DSN) == "" {
			errs = append(errs, "baseline: dsn must not be empty for the postgres backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("baseline: unknown backend %q (valid: file, postgres)", c.Baseline.Backend))
	}
	if c.Baseline.MaxAge.Duration <= 0 {
		errs = append(errs, "baseline: max_age must be > 0")
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty when enabled")
	}
	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty when enabled")
		}
	}
	if c.Notify.TelegramToken != "" && c.Notify.TelegramChatID == "" {
		errs = append(errs, "notify: telegram_chat_id is required when telegram_token is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
