// Package domain defines the core entities shared across the quotewatch
// engine: normalized venue quotes, the persisted quoting baseline, bucket
// keys, and alerts. All values are immutable per run; detectors receive them
// and produce new values rather than mutating shared state.
package domain

import (
	"strconv"
	"time"
)

// OptionType distinguishes calls from puts.
type OptionType string

const (
	Call OptionType = "C"
	Put  OptionType = "P"
)

// OptionQuote is a normalized option top-of-book quote from one venue.
//
// Prices are in the quote currency (USD). A zero Bid or Ask means that side
// is absent; Mid falls back to whichever of bid/ask/last is available at the
// fetch boundary. MarkIV is the venue-reported mark implied volatility as a
// decimal (0.65 = 65%); zero means the venue does not publish one.
type OptionQuote struct {
	Venue      string
	Asset      string
	Strike     float64
	Expiry     string    // canonical label, e.g. "28MAR26"
	ExpiryDate time.Time // settlement instant (08:00 UTC)
	Type       OptionType

	Bid  float64
	Ask  float64
	Mid  float64
	Last float64

	Spot   float64 // underlying index at fetch time
	MarkIV float64

	Volume24h    float64
	OpenInterest float64

	// Instrument is the venue's original identifier, the stable join key
	// between a live snapshot and a persisted baseline.
	Instrument string
}

// TwoSided reports whether both sides of the book are present.
func (q OptionQuote) TwoSided() bool { return q.Bid > 0 && q.Ask > 0 }

// OneSided reports whether exactly one side of the book is present.
func (q OptionQuote) OneSided() bool { return (q.Bid > 0) != (q.Ask > 0) }

// SpreadPct returns the bid-ask spread as a percentage of mid. The second
// return value is false when the quote is not two-sided or has no usable mid;
// the spread is undefined in that case.
func (q OptionQuote) SpreadPct() (float64, bool) {
	if !q.TwoSided() || q.Mid <= 0 {
		return 0, false
	}
	return (q.Ask - q.Bid) / q.Mid * 100, true
}

// TimeToExpiry returns the year fraction remaining until settlement, floored
// at zero. It is always derived from ExpiryDate so the figure cannot drift
// from the calendar date it was parsed from.
func (q OptionQuote) TimeToExpiry(now time.Time) float64 {
	return yearsBetween(now, q.ExpiryDate)
}

// DaysToExpiry returns the days remaining until settlement, floored at zero.
func (q OptionQuote) DaysToExpiry(now time.Time) float64 {
	return yearsBetween(now, q.ExpiryDate) * 365
}

// Moneyness returns the absolute distance of strike from spot as a fraction
// of spot. When spot is unknown it returns 0.5, which lands the instrument in
// the DEEP band rather than faking an at-the-money reading.
func (q OptionQuote) Moneyness() float64 {
	if q.Spot <= 0 {
		return 0.5
	}
	d := q.Strike - q.Spot
	if d < 0 {
		d = -d
	}
	return d / q.Spot
}

// MatchKey returns the cross-venue matching key. Two quotes arb against each
// other only on an exact (asset, strike, expiry label, type) match; there is
// no interpolation across neighboring strikes or expiries.
func (q OptionQuote) MatchKey() string {
	return q.Asset + "-" + formatStrike(q.Strike) + "-" + q.Expiry + "-" + string(q.Type)
}

// PerpQuote is a normalized perpetual-future quote from one venue.
type PerpQuote struct {
	Venue      string
	Asset      string
	Instrument string

	Mark float64
	Bid  float64
	Ask  float64
	Spot float64 // index price

	// Funding is the current funding rate as a decimal; nil when the venue
	// did not report one.
	Funding *float64

	// BasisPct is the percentage deviation of mark from index.
	BasisPct float64

	Volume24h    float64
	OpenInterest float64
}

// Snapshot is one venue-agnostic capture of a venue's books, produced by the
// fetch layer. Quotes with unparseable identifiers never reach a Snapshot.
type Snapshot struct {
	Venue   string
	Options []OptionQuote
	Perps   []PerpQuote
	Spots   map[string]float64 // asset -> index price
}

func yearsBetween(now, t time.Time) float64 {
	d := t.Sub(now)
	if d < 0 {
		return 0
	}
	return d.Hours() / 24 / 365
}

func formatStrike(k float64) string {
	// Strikes are whole currency units on every venue we watch.
	return strconv.FormatFloat(k, 'f', -1, 64)
}
