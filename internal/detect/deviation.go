package detect

import (
	"fmt"

	"github.com/vivirisk/quotewatch/internal/domain"
)

// Deviation compares each instrument's current quoting state against its
// baseline record and flags withdrawn quotes and spread blow-outs.
type Deviation struct {
	p Params
}

// NewDeviation creates the baseline-deviation detector.
func NewDeviation(p Params) *Deviation {
	return &Deviation{p: p}
}

// Name returns the detector identifier.
func (d *Deviation) Name() string { return "deviation" }

// Detect emits PULLED, BLOWN, and DRIFTED signals. Instruments absent from
// the baseline, or that were never quoted when it was captured, emit
// nothing: there is no deviation from a quote that never existed.
func (d *Deviation) Detect(in Input) []Signal {
	if in.Baseline == nil {
		return nil
	}

	var out []Signal
	for _, it := range in.Items {
		rec, ok := in.Baseline.Record(it.Instrument)
		if !ok || !rec.Status.WasQuoted() {
			continue
		}

		if it.Status == domain.StatusEmpty || it.Status == domain.StatusOneSided {
			out = append(out, Signal{
				Kind:         KindPull,
				Category:     domain.CatStale,
				Severity:     domain.SevCritical,
				Asset:        it.Asset,
				Instrument:   it.Instrument,
				Confidence:   85,
				Message:      fmt.Sprintf("quote pulled: was live at baseline, now %s", it.Status),
				OpenInterest: it.OpenInterest,
				Strike:       it.Strike,
				Expiry:       it.Expiry,
				Moneyness:    it.Moneyness(),
			})
			continue
		}

		if !it.HasSpread || rec.Spread <= 0 {
			continue
		}
		ratio := it.Spread / rec.Spread
		var sev domain.Severity
		var conf float64
		var label string
		switch {
		case ratio > d.p.CritMultiplier:
			sev, conf, label = domain.SevCritical, 75, "blown"
		case ratio > d.p.WarnMultiplier:
			sev, conf, label = domain.SevWarning, 50, "drifted"
		default:
			continue
		}
		out = append(out, Signal{
			Kind:       KindSpread,
			Category:   domain.CatWide,
			Severity:   sev,
			Asset:      it.Asset,
			Instrument: it.Instrument,
			Confidence: conf,
			Message: fmt.Sprintf("spread %s %.1f%% (baseline %.1f%%, %.1fx)",
				label, it.Spread, rec.Spread, ratio),
			OpenInterest: it.OpenInterest,
			Strike:       it.Strike,
			Expiry:       it.Expiry,
			Moneyness:    it.Moneyness(),
		})
	}
	return out
}

// Expiry flags instruments rolling into settlement with open interest still
// outstanding, inside a short lookahead window.
type Expiry struct {
	p Params
}

// NewExpiry creates the near-expiry detector.
func NewExpiry(p Params) *Expiry {
	return &Expiry{p: p}
}

// Name returns the detector identifier.
func (e *Expiry) Name() string { return "expiry" }

// Detect emits a critical stale signal for every live instrument settling
// within the lookahead window that still carries open interest.
func (e *Expiry) Detect(in Input) []Signal {
	windowHours := e.p.ExpiryWindow.Hours()
	var out []Signal
	for _, it := range in.Items {
		hrs := it.TTE * 365 * 24
		if hrs <= 0 || hrs > windowHours {
			continue
		}
		if it.OpenInterest <= 0 || it.Status == domain.StatusEmpty {
			continue
		}
		out = append(out, Signal{
			Kind:         KindExpiry,
			Category:     domain.CatStale,
			Severity:     domain.SevCritical,
			Asset:        it.Asset,
			Instrument:   it.Instrument,
			Confidence:   90,
			Message:      fmt.Sprintf("expiring in %.1fh with OI %.0f", hrs, it.OpenInterest),
			OpenInterest: it.OpenInterest,
			Strike:       it.Strike,
			Expiry:       it.Expiry,
			Moneyness:    it.Moneyness(),
		})
	}
	return out
}
