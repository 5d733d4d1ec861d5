package domain

import "time"

// QuoteStatus labels the quoting health of a single instrument.
type QuoteStatus string

const (
	StatusQuoted   QuoteStatus = "QUOTED"
	StatusWide     QuoteStatus = "WIDE"
	StatusOneSided QuoteStatus = "ONE_SIDED"
	StatusEmpty    QuoteStatus = "EMPTY"
)

// WasQuoted reports whether the status counts as a live two-sided quote.
// WIDE still counts: the market maker was present, just expensive.
func (s QuoteStatus) WasQuoted() bool {
	return s == StatusQuoted || s == StatusWide
}

// BucketStats summarizes observed spreads for one statistics bucket.
// Spreads holds the sorted spread percentages of QUOTED instruments; P95 and
// Median are derived from it at build time (nearest rank). A zero P95 means
// the bucket had no usable sample.
type BucketStats struct {
	Spreads []float64 `json:"spreads"`
	Quoted  int       `json:"quoted"`
	Total   int       `json:"total"`
	P95     float64   `json:"p95"`
	Median  float64   `json:"median"`
}

// OptionRecord is the per-instrument state persisted with a baseline, keyed
// by the venue's raw instrument identifier.
type OptionRecord struct {
	Status QuoteStatus `json:"status"`
	Spread float64     `json:"spread"` // percent; meaningful only when Status was two-sided
	Mid    float64     `json:"mid"`
}

// Baseline is the statistical picture of "normal" quoting on the primary
// venue, captured in one run and compared against in subsequent runs. It is
// the only entity that survives across runs.
type Baseline struct {
	Timestamp   time.Time               `json:"timestamp"`
	Buckets     map[string]BucketStats  `json:"buckets"`
	Options     map[string]OptionRecord `json:"options"`
	QuotedCount int                     `json:"quoted_count"`
	TotalCount  int                     `json:"total_count"`
}

// Age returns how long ago the baseline was captured.
func (b *Baseline) Age(now time.Time) time.Duration {
	return now.Sub(b.Timestamp)
}

// Expired reports whether the baseline is too old to compare against. The
// boundary is exclusive on the too-old side: a baseline aged exactly maxAge
// is still valid.
func (b *Baseline) Expired(now time.Time, maxAge time.Duration) bool {
	return b.Age(now) > maxAge
}

// Record returns the persisted record for a raw instrument id, if any.
func (b *Baseline) Record(instrument string) (OptionRecord, bool) {
	rec, ok := b.Options[instrument]
	return rec, ok
}

// BucketP95 returns the p95 spread for a bucket key, or false when the bucket
// is absent or had no sample.
func (b *Baseline) BucketP95(key string) (float64, bool) {
	s, ok := b.Buckets[key]
	if !ok || s.P95 <= 0 {
		return 0, false
	}
	return s.P95, true
}
