package detect

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/vivirisk/quotewatch/internal/domain"
	"github.com/vivirisk/quotewatch/internal/health"
)

// Reduce filters raw signals for materiality and confidence, merges the
// groupable kinds per asset, category, and severity, and produces the final
// ranked report with run statistics.
func Reduce(signals []Signal, in Input, p Params) domain.Report {
	var (
		kept       []Signal
		suppressed int
	)
	for _, s := range signals {
		if s.Confidence < p.MinConfidence {
			suppressed++
			continue
		}
		if s.Kind == KindPull && !pullMaterial(s, p) {
			suppressed++
			continue
		}
		kept = append(kept, s)
	}

	var alerts []domain.Alert
	groups := make(map[groupKey][]Signal)
	for _, s := range kept {
		if s.groupable() {
			k := groupKey{s.Asset, s.Category, s.Severity}
			groups[k] = append(groups[k], s)
			continue
		}
		alerts = append(alerts, toAlert(s))
	}
	for _, members := range groups {
		alerts = append(alerts, mergeGroup(members))
	}

	// Critical first, then confidence; title breaks ties so output order is
	// stable across runs with identical inputs.
	sort.Slice(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		if a.Severity != b.Severity {
			return a.Severity == domain.SevCritical
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return a.Title < b.Title
	})

	stats := buildStats(alerts, in, p)
	stats.Suppressed = suppressed
	return domain.Report{Alerts: alerts, Stats: stats}
}

// pullMaterial reports whether a pulled quote is worth surfacing: someone
// holds it, or it sits close enough to spot that quoting is expected.
func pullMaterial(s Signal, p Params) bool {
	return s.OpenInterest >= p.MinOpenInterest || s.Moneyness < p.NearMoneyPct
}

type groupKey struct {
	Asset    string
	Category domain.AlertCategory
	Severity domain.Severity
}

func toAlert(s Signal) domain.Alert {
	return domain.Alert{
		ID:         uuid.NewString(),
		Category:   s.Category,
		Severity:   s.Severity,
		Asset:      s.Asset,
		Title:      s.Instrument,
		Message:    s.Message,
		Confidence: s.Confidence,
		Net:        s.Net,
		Profitable: s.Profitable,
	}
}

// mergeGroup collapses same-asset same-severity signals of one category into
// a single alert summarizing the affected strikes, expiries, and open
// interest. A group of one keeps its original per-instrument message.
func mergeGroup(members []Signal) domain.Alert {
	if len(members) == 1 {
		return toAlert(members[0])
	}

	first := members[0]
	var (
		totalOI  float64
		loStrike = first.Strike
		hiStrike = first.Strike
		conf     = first.Confidence
		expiries = make(map[string]struct{})
	)
	for _, s := range members {
		totalOI += s.OpenInterest
		if s.Strike < loStrike {
			loStrike = s.Strike
		}
		if s.Strike > hiStrike {
			hiStrike = s.Strike
		}
		if s.Confidence > conf {
			conf = s.Confidence
		}
		if s.Expiry != "" {
			expiries[s.Expiry] = struct{}{}
		}
	}

	return domain.Alert{
		ID:         uuid.NewString(),
		Category:   first.Category,
		Severity:   first.Severity,
		Asset:      first.Asset,
		Title:      fmt.Sprintf("%s %s x%d", first.Asset, first.Category, len(members)),
		Confidence: conf,
		Message: fmt.Sprintf("%d instruments, strikes %.0f-%.0f across %d expiries, total OI %.0f",
			len(members), loStrike, hiStrike, len(expiries), totalOI),
	}
}

// buildStats derives the coverage and health figures for one run. Coverage
// is the share of listed instruments currently QUOTED. Health narrows to
// instruments the baseline saw quoted: each counts healthy when it is
// currently QUOTED with a spread inside tolerance of its bucket's baseline
// p95. Without a baseline the health figure falls back to coverage.
func buildStats(alerts []domain.Alert, in Input, p Params) domain.RunStats {
	var st domain.RunStats
	st.Total = len(in.Items)
	for _, it := range in.Items {
		switch it.Status {
		case domain.StatusQuoted:
			st.Quoted++
		case domain.StatusWide:
			st.Wide++
		case domain.StatusOneSided:
			st.OneSided++
		default:
			st.Empty++
		}
	}
	if st.Total > 0 {
		st.CoveragePct = float64(st.Quoted) / float64(st.Total) * 100
	}

	st.HealthPct = healthPct(in, p, st.CoveragePct)

	for _, a := range alerts {
		if a.Severity == domain.SevCritical {
			st.Critical++
		} else {
			st.Warning++
		}
		if a.Profitable {
			st.Actionable++
		}
	}
	return st
}

func healthPct(in Input, p Params, coverage float64) float64 {
	bl := in.Baseline
	if bl == nil {
		return coverage
	}

	current := make(map[string]health.Item, len(in.Items))
	for _, it := range in.Items {
		current[it.Instrument] = it
	}

	var tracked, healthy int
	for id, rec := range bl.Options {
		if !rec.Status.WasQuoted() {
			continue
		}
		tracked++
		it, ok := current[id]
		if !ok || it.Status != domain.StatusQuoted {
			continue
		}
		key := domain.BucketKey(it.OptionQuote, it.TTE*365)
		p95, has := bl.BucketP95(key)
		if !has {
			healthy++
			continue
		}
		if it.HasSpread && it.Spread <= p.HealthTolerance*p95 {
			healthy++
		}
	}
	if tracked == 0 {
		return 100
	}
	return float64(healthy) / float64(tracked) * 100
}
