// Package health classifies the quoting state of every primary-venue option
// against a dynamic spread threshold. Classification is a pure function of
// the snapshot, the (possibly absent) baseline, and the thresholds; it runs
// twice on bootstrap runs — once with fallback thresholds to seed a fresh
// baseline, then again with the baseline-derived thresholds.
package health

import (
	"time"

	"github.com/vivirisk/quotewatch/internal/domain"
	"github.com/vivirisk/quotewatch/internal/vol"
)

// Thresholds holds the classifier tunables.
type Thresholds struct {
	// WarnMultiplier scales a bucket's baseline p95 spread into the WIDE
	// threshold for instruments in that bucket.
	WarnMultiplier float64
	// DefaultWidePct is the threshold used when a baseline exists but the
	// instrument's bucket has no spread sample.
	DefaultWidePct float64
}

// Item is one primary-venue option annotated with its classification.
type Item struct {
	domain.OptionQuote

	Status domain.QuoteStatus
	// Spread is the bid-ask spread percent; valid only when HasSpread.
	Spread    float64
	HasSpread bool
	// Threshold is the WIDE cutoff that was applied to this instrument.
	Threshold float64
	// TTE is the year fraction to expiry at classification time.
	TTE float64
	// IV is the solved implied vol of the mid price; zero when unsolvable.
	IV float64
}

// Classify labels every option quote. With a valid baseline the WIDE
// threshold is the instrument's bucket p95 times the warn multiplier; with
// no baseline a static moneyness/tenor table applies. Mid implied vol is
// solved here once so every downstream detector shares the same figure.
func Classify(opts []domain.OptionQuote, bl *domain.Baseline, th Thresholds, now time.Time) []Item {
	items := make([]Item, 0, len(opts))
	for _, q := range opts {
		it := Item{
			OptionQuote: q,
			TTE:         q.TimeToExpiry(now),
		}
		it.Spread, it.HasSpread = q.SpreadPct()
		it.Threshold = WideThreshold(q, bl, th, now)

		switch {
		case q.TwoSided():
			if it.HasSpread && it.Spread >= it.Threshold {
				it.Status = domain.StatusWide
			} else {
				it.Status = domain.StatusQuoted
			}
		case q.OneSided():
			it.Status = domain.StatusOneSided
		default:
			it.Status = domain.StatusEmpty
		}

		if q.Mid > 0 && q.Spot > 0 && it.TTE > 1e-6 {
			if iv, ok := vol.Implied(q.Mid, q.Spot, q.Strike, it.TTE, 0, q.Type); ok {
				it.IV = iv
			}
		}

		items = append(items, it)
	}
	return items
}

// WideThreshold returns the spread percentage at or above which an
// instrument counts as WIDE.
func WideThreshold(q domain.OptionQuote, bl *domain.Baseline, th Thresholds, now time.Time) float64 {
	days := q.DaysToExpiry(now)
	if bl == nil {
		return fallbackThreshold(q.Moneyness(), days)
	}
	p95, ok := bl.BucketP95(domain.BucketKey(q, days))
	if !ok {
		return th.DefaultWidePct
	}
	return p95 * th.WarnMultiplier
}

// fallbackThreshold is the static table used before any baseline exists.
// Near-term and far out-of-the-money books tolerate wider spreads than
// near-the-money, longer-dated ones.
func fallbackThreshold(moneyness, days float64) float64 {
	switch {
	case days < 1:
		return 60
	case days < 3:
		return 45
	case days < 7:
		switch {
		case moneyness < 0.05:
			return 10
		case moneyness < 0.15:
			return 18
		default:
			return 38
		}
	default:
		switch {
		case moneyness < 0.05:
			return 12
		case moneyness < 0.15:
			return 20
		default:
			return 35
		}
	}
}
