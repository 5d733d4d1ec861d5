package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vivirisk/quotewatch/internal/baseline"
	s3blob "github.com/vivirisk/quotewatch/internal/blob/s3"
	"github.com/vivirisk/quotewatch/internal/cache/redis"
	"github.com/vivirisk/quotewatch/internal/config"
	"github.com/vivirisk/quotewatch/internal/detect"
	"github.com/vivirisk/quotewatch/internal/notify"
	"github.com/vivirisk/quotewatch/internal/venues"
)

// Dependencies bundles everything one run needs. It is constructed by Wire
// and torn down by the returned cleanup function.
type Dependencies struct {
	Primary    venues.Client
	References []venues.Client

	BaselineStore baseline.Store
	Notifier      *notify.Notifier
	Archiver      *s3blob.Archiver
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		Primary: venues.NewPowerTrade(cfg.Env),
	}
	for _, name := range cfg.Venues.References {
		client, err := referenceClient(name)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		if assets := cfg.Venues.Assets[name]; len(assets) > 0 {
			client = venues.WithAssets(client, assets)
		}
		deps.References = append(deps.References, client)
	}

	// --- Baseline store ---
	switch cfg.Baseline.Backend {
	case "postgres":
		store, err := baseline.NewPostgresStore(ctx, cfg.Baseline.DSN, cfg.Env)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("app: baseline store: %w", err)
		}
		closers = append(closers, store.Close)
		deps.BaselineStore = store
	default:
		deps.BaselineStore = baseline.NewFileStore(cfg.Baseline.Path)
	}

	// --- Alert cooldown ---
	var cooldown notify.Cooldown
	if cfg.Redis.Enabled {
		client, err := redis.New(ctx, redis.ClientConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("app: redis: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })
		cooldown = redis.NewCooldown(client, cfg.Redis.Cooldown.Duration)
	} else {
		cooldown = notify.NewMemoryCooldown(cfg.Redis.Cooldown.Duration)
	}

	// --- Notification channels ---
	var senders []notify.Sender
	if cfg.Notify.SlackWebhookURL != "" {
		senders = append(senders, notify.NewSlackSender(cfg.Notify.SlackWebhookURL))
	}
	if cfg.Notify.TelegramToken != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	deps.Notifier = notify.NewNotifier(senders, cooldown, notify.Options{
		OnlyCritical: cfg.Notify.OnlyCritical,
		DryRun:       cfg.Notify.DryRun,
	}, logger)

	// --- Report archive ---
	if cfg.S3.Enabled {
		client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("app: s3: %w", err)
		}
		deps.Archiver = s3blob.NewArchiver(client, cfg.Env)
	}

	return deps, cleanup, nil
}

func referenceClient(name string) (venues.Client, error) {
	switch name {
	case venues.VenueDeribit:
		return venues.NewDeribit(), nil
	case venues.VenueOKX:
		return venues.NewOKX(), nil
	case venues.VenueBybit:
		return venues.NewBybit(), nil
	case venues.VenueCoinCall:
		return venues.NewCoinCall(), nil
	default:
		return nil, fmt.Errorf("app: unknown reference venue %q", name)
	}
}

// params maps the configuration onto the detection tunables.
func params(cfg *config.Config) detect.Params {
	t := cfg.Thresholds
	return detect.Params{
		PrimaryVenue:    venues.VenuePowerTrade,
		WarnMultiplier:  t.WarnMultiplier,
		CritMultiplier:  t.CritMultiplier,
		PriceArbPct:     t.PriceArbPct,
		IVArbPoints:     t.IVArbPoints,
		MinRefVolume:    t.MinRefVolume,
		MinRefOI:        t.MinRefOI,
		MinOptionMid:    t.MinOptionMid,
		MinTenorDays:    t.MinTenorDays,
		PerpBasisBps:    t.PerpBasisBps,
		FundingBps:      t.FundingBps,
		Slippage:        cfg.Fees.Slippage,
		TakerFees:       cfg.Fees.Taker,
		DefaultTakerFee: cfg.Fees.DefaultTaker,
		MinNetEdgeUSD:   t.MinNetEdgeUSD,
		MinOpenInterest: t.MinOpenInterest,
		NearMoneyPct:    t.NearMoneyPct,
		ExpiryWindow:    t.ExpiryWindow.Duration,
		MinConfidence:   t.MinConfidence,
		HealthTolerance: t.HealthTolerance,
	}
}
