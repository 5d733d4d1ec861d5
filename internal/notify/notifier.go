// Package notify delivers the reduced alert digest to the configured
// channels. Senders are independent: one channel failing never blocks
// delivery to the others.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vivirisk/quotewatch/internal/domain"
)

// Digest is one run's outgoing notification payload.
type Digest struct {
	Env     string
	Summary string
	Alerts  []domain.Alert
}

// Sender is one delivery channel.
type Sender interface {
	Send(ctx context.Context, d Digest) error
	Name() string
}

// Cooldown suppresses re-delivery of an alert that already went out
// recently. Allow records the key as delivered when it returns true.
type Cooldown interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Options tune dispatch behavior.
type Options struct {
	// OnlyCritical drops warning-tier alerts before delivery.
	OnlyCritical bool
	// DryRun logs the digest instead of delivering it.
	DryRun bool
}

// Notifier applies the delivery policy and fans the digest out to every
// sender.
type Notifier struct {
	senders  []Sender
	cooldown Cooldown
	opts     Options
	logger   *slog.Logger
}

// NewNotifier creates a Notifier. cooldown may be nil to disable
// suppression entirely.
func NewNotifier(senders []Sender, cooldown Cooldown, opts Options, logger *slog.Logger) *Notifier {
	return &Notifier{
		senders:  senders,
		cooldown: cooldown,
		opts:     opts,
		logger:   logger.With(slog.String("component", "notifier")),
	}
}

// Dispatch filters the digest per the delivery policy and sends it. An empty
// post-filter digest is silently skipped.
func (n *Notifier) Dispatch(ctx context.Context, d Digest) error {
	d.Alerts = n.filter(ctx, d.Alerts)
	if len(d.Alerts) == 0 {
		n.logger.InfoContext(ctx, "no alerts to dispatch")
		return nil
	}

	if n.opts.DryRun {
		for _, a := range d.Alerts {
			n.logger.InfoContext(ctx, "dry run alert",
				slog.String("severity", string(a.Severity)),
				slog.String("category", string(a.Category)),
				slog.String("asset", a.Asset),
				slog.String("title", a.Title),
				slog.String("message", a.Message),
			)
		}
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, d); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
			continue
		}
		n.logger.InfoContext(ctx, "digest delivered",
			slog.String("sender", s.Name()),
			slog.Int("alerts", len(d.Alerts)),
		)
	}
	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}

func (n *Notifier) filter(ctx context.Context, alerts []domain.Alert) []domain.Alert {
	var out []domain.Alert
	for _, a := range alerts {
		if n.opts.OnlyCritical && a.Severity != domain.SevCritical {
			continue
		}
		if n.cooldown != nil {
			ok, err := n.cooldown.Allow(ctx, cooldownKey(a))
			if err != nil {
				// Suppression is best effort; deliver rather than lose the alert.
				n.logger.WarnContext(ctx, "cooldown check failed",
					slog.String("error", err.Error()))
			} else if !ok {
				n.logger.DebugContext(ctx, "alert cooled down",
					slog.String("title", a.Title))
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

// cooldownKey identifies a recurring condition, not a specific run: the
// alert ID is a fresh uuid each run and deliberately excluded.
func cooldownKey(a domain.Alert) string {
	return strings.Join([]string{string(a.Category), string(a.Severity), a.Asset, a.Title}, ":")
}
