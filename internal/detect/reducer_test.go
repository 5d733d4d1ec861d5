package detect

import (
	"strings"
	"testing"
	"time"

	"github.com/vivirisk/quotewatch/internal/domain"
	"github.com/vivirisk/quotewatch/internal/health"
)

func TestReduceOrdering(t *testing.T) {
	signals := []Signal{
		{Kind: KindIV, Category: domain.CatIVDisloc, Severity: domain.SevWarning, Asset: "BTC", Instrument: "b", Confidence: 60},
		{Kind: KindPrice, Category: domain.CatCheap, Severity: domain.SevCritical, Asset: "BTC", Instrument: "a", Confidence: 65},
		{Kind: KindBasis, Category: domain.CatPerpArb, Severity: domain.SevCritical, Asset: "ETH", Instrument: "c", Confidence: 70},
		{Kind: KindFunding, Category: domain.CatFundingArb, Severity: domain.SevWarning, Asset: "ETH", Instrument: "d", Confidence: 60},
	}
	rep := Reduce(signals, Input{Now: testNow}, testParams())
	if len(rep.Alerts) != 4 {
		t.Fatalf("got %d alerts, want 4", len(rep.Alerts))
	}

	// Criticals lead, ordered by confidence; warnings follow with title
	// breaking the confidence tie.
	wantTitles := []string{"c", "a", "b", "d"}
	for i, want := range wantTitles {
		if rep.Alerts[i].Title != want {
			t.Fatalf("alert[%d] = %q, want %q", i, rep.Alerts[i].Title, want)
		}
	}
	for _, a := range rep.Alerts {
		if a.ID == "" {
			t.Fatal("alert missing id")
		}
	}
	if rep.Stats.Critical != 2 || rep.Stats.Warning != 2 {
		t.Fatalf("stats critical=%d warning=%d", rep.Stats.Critical, rep.Stats.Warning)
	}
}

func TestReducePullMateriality(t *testing.T) {
	mk := func(oi, moneyness float64) Signal {
		return Signal{
			Kind: KindPull, Category: domain.CatStale, Severity: domain.SevCritical,
			Asset: "BTC", Instrument: "BTC-X", Confidence: 85,
			OpenInterest: oi, Moneyness: moneyness,
		}
	}
	tests := []struct {
		name string
		sig  Signal
		kept bool
	}{
		{"deep no holders", mk(0, 0.4), false},
		{"held", mk(150, 0.4), true},
		{"near money", mk(0, 0.05), true},
		{"oi at floor", mk(100, 0.4), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := Reduce([]Signal{tt.sig}, Input{Now: testNow}, testParams())
			if got := len(rep.Alerts) == 1; got != tt.kept {
				t.Fatalf("kept = %v, want %v", got, tt.kept)
			}
			if !tt.kept && rep.Stats.Suppressed != 1 {
				t.Fatalf("suppressed = %d, want 1", rep.Stats.Suppressed)
			}
		})
	}
}

func TestReduceConfidenceFloor(t *testing.T) {
	signals := []Signal{
		{Kind: KindIV, Category: domain.CatIVDisloc, Severity: domain.SevWarning, Asset: "BTC", Instrument: "a", Confidence: 49},
		{Kind: KindIV, Category: domain.CatIVDisloc, Severity: domain.SevWarning, Asset: "BTC", Instrument: "b", Confidence: 50},
	}
	rep := Reduce(signals, Input{Now: testNow}, testParams())
	if len(rep.Alerts) != 1 || rep.Alerts[0].Title != "b" {
		t.Fatalf("alerts = %+v", rep.Alerts)
	}
	if rep.Stats.Suppressed != 1 {
		t.Fatalf("suppressed = %d, want 1", rep.Stats.Suppressed)
	}
}

func TestReduceGroupsPulls(t *testing.T) {
	mk := func(inst string, strike, oi float64, expiry string) Signal {
		return Signal{
			Kind: KindPull, Category: domain.CatStale, Severity: domain.SevCritical,
			Asset: "BTC", Instrument: inst, Confidence: 85,
			OpenInterest: oi, Moneyness: 0.02, Strike: strike, Expiry: expiry,
		}
	}
	signals := []Signal{
		mk("BTC-1", 60000, 10, "27MAR26"),
		mk("BTC-2", 70000, 25, "27MAR26"),
		mk("BTC-3", 80000, 5, "26JUN26"),
	}
	rep := Reduce(signals, Input{Now: testNow}, testParams())
	if len(rep.Alerts) != 1 {
		t.Fatalf("got %d alerts, want 1 merged", len(rep.Alerts))
	}
	a := rep.Alerts[0]
	if a.Category != domain.CatStale || a.Severity != domain.SevCritical || a.Confidence != 85 {
		t.Fatalf("merged alert = %+v", a)
	}
	for _, frag := range []string{"3 instruments", "60000-80000", "2 expiries", "OI 40"} {
		if !strings.Contains(a.Message, frag) {
			t.Fatalf("message %q missing %q", a.Message, frag)
		}
	}
}

func TestReduceStatsCoverageAndHealth(t *testing.T) {
	exp := testNow.Add(20 * 24 * time.Hour)

	mkItem := func(inst string, status domain.QuoteStatus, spread float64) health.Item {
		q := btcOption(inst, 65500, exp) // ATM bucket
		return classifiedItem(q, status, spread)
	}

	items := []health.Item{
		mkItem("BTC-A", domain.StatusQuoted, 5),
		mkItem("BTC-B", domain.StatusQuoted, 25), // outside 2x tolerance of p95 10
		mkItem("BTC-C", domain.StatusWide, 40),
		mkItem("BTC-D", domain.StatusEmpty, 0),
	}

	bl := baselineWith(map[string]domain.OptionRecord{
		"BTC-A": {Status: domain.StatusQuoted, Spread: 5},
		"BTC-B": {Status: domain.StatusQuoted, Spread: 6},
		"BTC-C": {Status: domain.StatusWide, Spread: 12},
		"BTC-D": {Status: domain.StatusQuoted, Spread: 7},
		"BTC-E": {Status: domain.StatusEmpty},
	})
	bl.Buckets["BTC-ATM-7-30D"] = domain.BucketStats{P95: 10, Median: 6, Quoted: 4, Total: 5}

	rep := Reduce(nil, Input{Now: testNow, Items: items, Baseline: bl}, testParams())
	st := rep.Stats

	if st.Total != 4 || st.Quoted != 2 || st.Wide != 1 || st.Empty != 1 {
		t.Fatalf("counts = %+v", st)
	}
	if st.CoveragePct != 50 {
		t.Fatalf("coverage = %v, want 50", st.CoveragePct)
	}

	// Tracked: A, B, C, D (baseline-quoted, WIDE counts). Healthy: only A,
	// QUOTED with spread 5 <= 2*10. B exceeds tolerance, C is WIDE now,
	// D vanished from the book.
	if st.HealthPct != 25 {
		t.Fatalf("health = %v, want 25", st.HealthPct)
	}
}

func TestReduceHealthWithoutBaseline(t *testing.T) {
	exp := testNow.Add(30 * 24 * time.Hour)
	items := []health.Item{
		classifiedItem(btcOption("BTC-A", 65500, exp), domain.StatusQuoted, 5),
		classifiedItem(btcOption("BTC-B", 65500, exp), domain.StatusEmpty, 0),
	}
	rep := Reduce(nil, Input{Now: testNow, Items: items}, testParams())
	if rep.Stats.HealthPct != rep.Stats.CoveragePct {
		t.Fatalf("health %v should track coverage %v without a baseline",
			rep.Stats.HealthPct, rep.Stats.CoveragePct)
	}
}
