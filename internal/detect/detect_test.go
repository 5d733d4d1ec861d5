package detect

import (
	"time"

	"github.com/vivirisk/quotewatch/internal/domain"
	"github.com/vivirisk/quotewatch/internal/health"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func testParams() Params {
	return Params{
		PrimaryVenue:    "powertrade",
		WarnMultiplier:  1.5,
		CritMultiplier:  3.0,
		PriceArbPct:     20,
		IVArbPoints:     8,
		MinRefVolume:    50000,
		MinRefOI:        5,
		MinOptionMid:    1.0,
		MinTenorDays:    2,
		PerpBasisBps:    5,
		FundingBps:      6,
		Slippage:        0.005,
		TakerFees:       map[string]float64{},
		DefaultTakerFee: 0.0005,
		MinNetEdgeUSD:   10,
		MinOpenInterest: 100,
		NearMoneyPct:    0.10,
		ExpiryWindow:    4 * time.Hour,
		MinConfidence:   50,
		HealthTolerance: 2.0,
	}
}

func btcOption(instrument string, strike float64, expiry time.Time) domain.OptionQuote {
	return domain.OptionQuote{
		Venue:      "powertrade",
		Asset:      "BTC",
		Strike:     strike,
		Expiry:     expiry.Format("2Jan06"),
		ExpiryDate: expiry,
		Type:       domain.Call,
		Spot:       65000,
		Instrument: instrument,
	}
}

func classifiedItem(q domain.OptionQuote, status domain.QuoteStatus, spread float64) health.Item {
	it := health.Item{
		OptionQuote: q,
		Status:      status,
		TTE:         q.TimeToExpiry(testNow),
	}
	if spread > 0 {
		it.Spread = spread
		it.HasSpread = true
	}
	return it
}

func baselineWith(records map[string]domain.OptionRecord) *domain.Baseline {
	return &domain.Baseline{
		Timestamp: testNow.Add(-time.Hour),
		Buckets:   map[string]domain.BucketStats{},
		Options:   records,
	}
}
