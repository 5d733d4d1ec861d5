// Package detect turns one classified snapshot plus a baseline into raw
// signals, and reduces those signals into the final ranked alert list. Every
// detector is a pure transformation of the run input; nothing here touches
// the network, clocks, or shared state.
package detect

import (
	"time"

	"github.com/vivirisk/quotewatch/internal/domain"
	"github.com/vivirisk/quotewatch/internal/health"
)

// Params holds every detection and reduction tunable for one run. It is
// immutable once built; detectors receive it by value.
type Params struct {
	PrimaryVenue string

	// Spread deviation multipliers against the baseline spread.
	WarnMultiplier float64 // DRIFTED above this ratio
	CritMultiplier float64 // BLOWN above this ratio

	// Cross-venue option thresholds.
	PriceArbPct  float64 // min |mid diff| percent to flag price dislocation
	IVArbPoints  float64 // min implied-vol gap in vol points
	MinRefVolume float64 // reference-venue liquidity gate, 24h notional
	MinRefOI     float64 // reference-venue liquidity gate, contracts
	MinOptionMid float64 // ignore near-worthless contracts below this mid
	MinTenorDays float64 // ignore contracts closer to expiry than this

	// Perp thresholds in basis points.
	PerpBasisBps float64
	FundingBps   float64

	// Execution cost model.
	Slippage        float64            // per-leg, as a fraction (0.005 = 0.5%)
	TakerFees       map[string]float64 // venue -> taker fee fraction
	DefaultTakerFee float64
	MinNetEdgeUSD   float64 // below this a positive edge is not actionable

	// Reduction.
	MinOpenInterest float64       // pull materiality floor
	NearMoneyPct    float64       // pulls this close to spot are always material
	ExpiryWindow    time.Duration // near-expiry alert lookahead
	MinConfidence   float64       // global confidence cutoff
	HealthTolerance float64       // spread-vs-p95 multiple for the health score
}

// TakerFee returns the taker fee fraction for a venue.
func (p Params) TakerFee(venue string) float64 {
	if f, ok := p.TakerFees[venue]; ok {
		return f
	}
	return p.DefaultTakerFee
}

// Input is everything one run's detectors see.
type Input struct {
	Now      time.Time
	Items    []health.Item // classified primary-venue options
	Perps    []domain.PerpQuote
	RefOpts  []domain.OptionQuote
	RefPerps []domain.PerpQuote
	Baseline *domain.Baseline
}

// Kind tags a signal with the condition that produced it, so the reducer
// can apply per-kind materiality and grouping without re-deriving it.
type Kind string

const (
	KindPull    Kind = "pull"
	KindExpiry  Kind = "expiry"
	KindSpread  Kind = "spread"
	KindIV      Kind = "iv"
	KindPrice   Kind = "price"
	KindBasis   Kind = "basis"
	KindFunding Kind = "funding"
)

// Signal is one raw finding before reduction. It carries the instrument
// metadata the reducer needs for materiality filtering and grouping; only
// the Alert-shaped subset survives into the output.
type Signal struct {
	Kind       Kind
	Category   domain.AlertCategory
	Severity   domain.Severity
	Asset      string
	Instrument string
	Message    string
	Confidence float64

	Net        float64
	HasNet     bool
	Profitable bool

	OpenInterest float64
	Strike       float64
	Expiry       string
	Moneyness    float64
}

// groupable reports whether signals of this kind merge per asset/category
// instead of surfacing individually.
func (s Signal) groupable() bool {
	return s.Kind == KindPull || s.Kind == KindExpiry || s.Kind == KindSpread
}

// Detector inspects the run input and emits zero or more raw signals.
type Detector interface {
	Name() string
	Detect(in Input) []Signal
}

// Detectors returns the standard pipeline in evaluation order.
func Detectors(p Params) []Detector {
	return []Detector{
		NewDeviation(p),
		NewExpiry(p),
		NewOptionsArb(p),
		NewPerpArb(p),
	}
}

// Run executes every detector and reduces the combined signals into the
// final report.
func Run(in Input, p Params) domain.Report {
	var signals []Signal
	for _, d := range Detectors(p) {
		signals = append(signals, d.Detect(in)...)
	}
	return Reduce(signals, in, p)
}

// escalate returns critical when value is at or beyond twice the warning
// threshold, the shared severity rule across detectors.
func escalate(value, threshold float64) domain.Severity {
	if value >= threshold*2 {
		return domain.SevCritical
	}
	return domain.SevWarning
}
