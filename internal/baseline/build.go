// Package baseline builds and persists the rolling statistical picture of
// the primary venue's quoting behavior. Exactly one baseline exists at a
// time; a run either compares against a valid one or captures a fresh one
// and immediately re-compares against that.
package baseline

import (
	"sort"
	"time"

	"github.com/vivirisk/quotewatch/internal/domain"
	"github.com/vivirisk/quotewatch/internal/health"
)

// Build captures a baseline from a set of already-classified items. Each
// statistics bucket records its instrument counts and the sorted spreads of
// QUOTED instruments, from which the nearest-rank p95 and median are
// derived. The full per-instrument status map is kept alongside so later
// runs can detect pulls and blow-outs per instrument, not just per bucket.
func Build(items []health.Item, now time.Time) *domain.Baseline {
	bl := &domain.Baseline{
		Timestamp:  now,
		Buckets:    make(map[string]domain.BucketStats),
		Options:    make(map[string]domain.OptionRecord),
		TotalCount: len(items),
	}

	for _, it := range items {
		key := domain.BucketKey(it.OptionQuote, it.TTE*365)
		b := bl.Buckets[key]
		b.Total++
		if it.Status == domain.StatusQuoted && it.HasSpread {
			b.Quoted++
			b.Spreads = append(b.Spreads, it.Spread)
		}
		bl.Buckets[key] = b
	}

	for key, b := range bl.Buckets {
		sort.Float64s(b.Spreads)
		if n := len(b.Spreads); n > 0 {
			b.P95 = b.Spreads[int(float64(n)*0.95)]
			b.Median = b.Spreads[n/2]
		}
		bl.Buckets[key] = b
	}

	for _, it := range items {
		bl.Options[it.Instrument] = domain.OptionRecord{
			Status: it.Status,
			Spread: it.Spread,
			Mid:    it.Mid,
		}
		if it.Status.WasQuoted() {
			bl.QuotedCount++
		}
	}

	return bl
}
