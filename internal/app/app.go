// Package app orchestrates one engine run: load the baseline, fetch every
// venue, classify, detect, notify, archive. The process exits when Run
// returns; all scheduling lives outside the binary.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/vivirisk/quotewatch/internal/baseline"
	"github.com/vivirisk/quotewatch/internal/config"
	"github.com/vivirisk/quotewatch/internal/detect"
	"github.com/vivirisk/quotewatch/internal/domain"
	"github.com/vivirisk/quotewatch/internal/health"
	"github.com/vivirisk/quotewatch/internal/notify"
	"github.com/vivirisk/quotewatch/internal/venues"
)

// App holds the wired dependencies for one run.
type App struct {
	cfg    *config.Config
	deps   *Dependencies
	logger *slog.Logger
}

// New creates an App from already-wired dependencies.
func New(cfg *config.Config, deps *Dependencies, logger *slog.Logger) *App {
	return &App{cfg: cfg, deps: deps, logger: logger}
}

// Run executes one full monitoring cycle. Only a primary-venue failure or
// an infrastructure failure is fatal; a failed notification or archive
// upload is logged and the run still counts.
func (a *App) Run(ctx context.Context) error {
	now := time.Now().UTC()
	start := time.Now()

	bl, err := baseline.LoadUsable(ctx, a.deps.BaselineStore, now, a.cfg.Baseline.MaxAge.Duration)
	if err != nil {
		return fmt.Errorf("app: load baseline: %w", err)
	}
	if bl == nil {
		a.logger.InfoContext(ctx, "no usable baseline, bootstrapping this run")
	}

	primary, refs, err := venues.FetchAll(ctx, a.deps.Primary, a.deps.References, a.assets(), a.logger)
	if err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "snapshot fetched",
		slog.Int("primary_options", len(primary.Options)),
		slog.Int("primary_perps", len(primary.Perps)),
		slog.Int("reference_venues", len(refs)))

	var refOpts []domain.OptionQuote
	var refPerps []domain.PerpQuote
	for _, snap := range refs {
		refOpts = append(refOpts, snap.Options...)
		refPerps = append(refPerps, snap.Perps...)
	}

	th := health.Thresholds{
		WarnMultiplier: a.cfg.Thresholds.WarnMultiplier,
		DefaultWidePct: a.cfg.Thresholds.DefaultWidePct,
	}
	items := health.Classify(primary.Options, bl, th, now)

	// Bootstrap: seed a baseline from this snapshot, then reclassify so the
	// rest of the run uses the thresholds it implies.
	if bl == nil {
		bl = baseline.Build(items, now)
		if err := a.deps.BaselineStore.Save(ctx, bl); err != nil {
			a.logger.WarnContext(ctx, "baseline save failed", slog.Any("error", err))
		}
		items = health.Classify(primary.Options, bl, th, now)
	}

	report := detect.Run(detect.Input{
		Now:      now,
		Items:    items,
		Perps:    primary.Perps,
		RefOpts:  refOpts,
		RefPerps: refPerps,
		Baseline: bl,
	}, params(a.cfg))

	digest := notify.Digest{
		Env:     a.cfg.Env,
		Summary: a.summary(primary, bl, report.Stats, now),
		Alerts:  report.Alerts,
	}
	if err := a.deps.Notifier.Dispatch(ctx, digest); err != nil {
		a.logger.ErrorContext(ctx, "dispatch failed", slog.Any("error", err))
	}

	if a.deps.Archiver != nil {
		key, err := a.deps.Archiver.Archive(ctx, report, now)
		if err != nil {
			a.logger.ErrorContext(ctx, "archive failed", slog.Any("error", err))
		} else {
			a.logger.InfoContext(ctx, "report archived", slog.String("key", key))
		}
	}

	a.logger.InfoContext(ctx, "run complete",
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("alerts", len(report.Alerts)),
		slog.Int("critical", report.Stats.Critical),
		slog.Int("suppressed", report.Stats.Suppressed),
		slog.Float64("coverage_pct", report.Stats.CoveragePct),
		slog.Float64("health_pct", report.Stats.HealthPct))
	return nil
}

// assets returns the union of every configured venue's underlyings, sorted
// for deterministic fetch requests.
func (a *App) assets() []string {
	seen := make(map[string]bool)
	for _, list := range a.cfg.Venues.Assets {
		for _, asset := range list {
			seen[asset] = true
		}
	}
	out := make([]string, 0, len(seen))
	for asset := range seen {
		out = append(out, asset)
	}
	sort.Strings(out)
	return out
}

// summary builds the one-line digest header: spot prices, book size,
// baseline age, and alert counts.
func (a *App) summary(primary domain.Snapshot, bl *domain.Baseline, stats domain.RunStats, now time.Time) string {
	assets := make([]string, 0, len(primary.Spots))
	for asset := range primary.Spots {
		assets = append(assets, asset)
	}
	sort.Strings(assets)

	spots := make([]string, 0, len(assets))
	for _, asset := range assets {
		spots = append(spots, fmt.Sprintf("%s $%.0f", asset, primary.Spots[asset]))
	}

	parts := []string{
		strings.Join(spots, " · "),
		fmt.Sprintf("%d PT opts", len(primary.Options)),
		fmt.Sprintf("Baseline: %.1fh old", bl.Age(now).Hours()),
		fmt.Sprintf("%d crit · %d warn · %d actionable", stats.Critical, stats.Warning, stats.Actionable),
	}
	return strings.Join(parts, " | ")
}
