package health

import (
	"testing"
	"time"

	"github.com/vivirisk/quotewatch/internal/domain"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func option(bid, ask, mid float64, daysOut float64) domain.OptionQuote {
	return domain.OptionQuote{
		Venue:      "powertrade",
		Asset:      "BTC",
		Strike:     65500,
		Type:       domain.Call,
		ExpiryDate: now.Add(time.Duration(daysOut * 24 * float64(time.Hour))),
		Bid:        bid,
		Ask:        ask,
		Mid:        mid,
		Spot:       65000,
		Instrument: "BTC-TEST",
	}
}

func TestClassifyStatuses(t *testing.T) {
	th := Thresholds{WarnMultiplier: 1.5, DefaultWidePct: 50}

	tests := []struct {
		name string
		q    domain.OptionQuote
		want domain.QuoteStatus
	}{
		{"tight two-sided", option(99, 101, 100, 20), domain.StatusQuoted},
		{"wide two-sided", option(80, 120, 100, 20), domain.StatusWide}, // 40% vs fallback 12
		{"bid only", option(99, 0, 99, 20), domain.StatusOneSided},
		{"ask only", option(0, 101, 101, 20), domain.StatusOneSided},
		{"empty", option(0, 0, 0, 20), domain.StatusEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := Classify([]domain.OptionQuote{tt.q}, nil, th, now)
			if len(items) != 1 {
				t.Fatalf("got %d items", len(items))
			}
			if items[0].Status != tt.want {
				t.Fatalf("status = %s, want %s", items[0].Status, tt.want)
			}
		})
	}
}

func TestClassifySolvesMidIV(t *testing.T) {
	th := Thresholds{WarnMultiplier: 1.5, DefaultWidePct: 50}

	q := option(2500, 2700, 2600, 90)
	items := Classify([]domain.OptionQuote{q}, nil, th, now)
	if items[0].IV <= 0 {
		t.Fatal("expected a solved mid IV for a liquid near-money option")
	}

	// No spot means no vol surface to solve on.
	q.Spot = 0
	items = Classify([]domain.OptionQuote{q}, nil, th, now)
	if items[0].IV != 0 {
		t.Fatalf("IV = %v, want 0 without a spot price", items[0].IV)
	}
}

func TestWideThresholdFallbackTable(t *testing.T) {
	tests := []struct {
		name      string
		moneyness float64
		days      float64
		want      float64
	}{
		{"same day", 0.02, 0.5, 60},
		{"short dated", 0.02, 2, 45},
		{"week atm", 0.02, 5, 10},
		{"week near", 0.08, 5, 18},
		{"week deep", 0.30, 5, 38},
		{"monthly atm", 0.02, 40, 12},
		{"monthly near", 0.08, 40, 20},
		{"monthly deep", 0.30, 40, 35},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := domain.OptionQuote{
				Asset:      "BTC",
				Spot:       100,
				Strike:     100 * (1 + tt.moneyness),
				ExpiryDate: now.Add(time.Duration(tt.days * 24 * float64(time.Hour))),
			}
			got := WideThreshold(q, nil, Thresholds{}, now)
			if got != tt.want {
				t.Fatalf("threshold = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWideThresholdFromBaseline(t *testing.T) {
	th := Thresholds{WarnMultiplier: 1.5, DefaultWidePct: 50}
	q := option(99, 101, 100, 20)

	bl := &domain.Baseline{
		Timestamp: now.Add(-time.Hour),
		Buckets: map[string]domain.BucketStats{
			"BTC-ATM-7-30D": {P95: 8, Quoted: 10, Total: 12},
		},
	}
	if got := WideThreshold(q, bl, th, now); got != 12 {
		t.Fatalf("threshold = %v, want p95*multiplier = 12", got)
	}

	// Bucket with no sample falls back to the default width.
	bl.Buckets = map[string]domain.BucketStats{}
	if got := WideThreshold(q, bl, th, now); got != 50 {
		t.Fatalf("threshold = %v, want default 50", got)
	}
}
