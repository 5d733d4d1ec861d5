package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies QW_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load. An empty path skips the
// file and uses defaults plus environment only.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known QW_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Env, "QW_ENV")
	setStr(&cfg.LogLevel, "QW_LOG_LEVEL")

	setStringSlice(&cfg.Venues.References, "QW_VENUES_REFERENCES")

	setFloat64(&cfg.Thresholds.WarnMultiplier, "QW_THRESHOLDS_WARN_MULTIPLIER")
	setFloat64(&cfg.Thresholds.CritMultiplier, "QW_THRESHOLDS_CRIT_MULTIPLIER")
	setFloat64(&cfg.Thresholds.DefaultWidePct, "QW_THRESHOLDS_DEFAULT_WIDE_PCT")
	setFloat64(&cfg.Thresholds.PriceArbPct, "QW_THRESHOLDS_PRICE_ARB_PCT")
	setFloat64(&cfg.Thresholds.IVArbPoints, "QW_THRESHOLDS_IV_ARB_POINTS")
	setFloat64(&cfg.Thresholds.MinRefVolume, "QW_THRESHOLDS_MIN_REF_VOLUME")
	setFloat64(&cfg.Thresholds.MinRefOI, "QW_THRESHOLDS_MIN_REF_OI")
	setFloat64(&cfg.Thresholds.MinOptionMid, "QW_THRESHOLDS_MIN_OPTION_MID")
	setFloat64(&cfg.Thresholds.MinTenorDays, "QW_THRESHOLDS_MIN_TENOR_DAYS")
	setFloat64(&cfg.Thresholds.PerpBasisBps, "QW_THRESHOLDS_PERP_BASIS_BPS")
	setFloat64(&cfg.Thresholds.FundingBps, "QW_THRESHOLDS_FUNDING_BPS")
	setFloat64(&cfg.Thresholds.MinNetEdgeUSD, "QW_THRESHOLDS_MIN_NET_EDGE_USD")
	setFloat64(&cfg.Thresholds.MinOpenInterest, "QW_THRESHOLDS_MIN_OPEN_INTEREST")
	setFloat64(&cfg.Thresholds.NearMoneyPct, "QW_THRESHOLDS_NEAR_MONEY_PCT")
	setDuration(&cfg.Thresholds.ExpiryWindow, "QW_THRESHOLDS_EXPIRY_WINDOW")
	setFloat64(&cfg.Thresholds.MinConfidence, "QW_THRESHOLDS_MIN_CONFIDENCE")
	setFloat64(&cfg.Thresholds.HealthTolerance, "QW_THRESHOLDS_HEALTH_TOLERANCE")

	setFloat64(&cfg.Fees.DefaultTaker, "QW_FEES_DEFAULT_TAKER")
	setFloat64(&cfg.Fees.Slippage, "QW_FEES_SLIPPAGE")

	setStr(&cfg.Baseline.Backend, "QW_BASELINE_BACKEND")
	setStr(&cfg.Baseline.Path, "QW_BASELINE_PATH")
	setStr(&cfg.Baseline.DSN, "QW_BASELINE_DSN")
	setDuration(&cfg.Baseline.MaxAge, "QW_BASELINE_MAX_AGE")

	setBool(&cfg.Redis.Enabled, "QW_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "QW_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "QW_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "QW_REDIS_DB")
	setDuration(&cfg.Redis.Cooldown, "QW_REDIS_COOLDOWN")

	setBool(&cfg.S3.Enabled, "QW_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "QW_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "QW_S3_REGION")
	setStr(&cfg.S3.Bucket, "QW_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "QW_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "QW_S3_SECRET_KEY")
	setBool(&cfg.S3.ForcePathStyle, "QW_S3_FORCE_PATH_STYLE")

	setStr(&cfg.Notify.SlackWebhookURL, "QW_NOTIFY_SLACK_WEBHOOK_URL")
	setStr(&cfg.Notify.TelegramToken, "QW_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "QW_NOTIFY_TELEGRAM_CHAT_ID")
	setBool(&cfg.Notify.OnlyCritical, "QW_NOTIFY_ONLY_CRITICAL")
	setBool(&cfg.Notify.DryRun, "QW_NOTIFY_DRY_RUN")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
