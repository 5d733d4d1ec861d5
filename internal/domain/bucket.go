package domain

import "fmt"

// Moneyness band cut points, as a fraction of spot.
const (
	atmBand  = 0.05
	nearBand = 0.15
)

// tenorBands partitions days-to-expiry into labeled ranges. The cut points
// are tuning data, not structure: a baseline bucket captured with one table
// stays addressable as long as the table is unchanged between capture and
// comparison.
var tenorBands = []struct {
	maxDays float64
	label   string
}{
	{1, "0D"},
	{3, "1-3D"},
	{7, "3-7D"},
	{30, "7-30D"},
	{90, "30-90D"},
}

const tenorBandMax = "90D+"

// MoneynessBand returns the band label for a strike's distance from spot.
func MoneynessBand(moneyness float64) string {
	switch {
	case moneyness < atmBand:
		return "ATM"
	case moneyness < nearBand:
		return "NEAR"
	default:
		return "DEEP"
	}
}

// TenorBand returns the band label for a days-to-expiry figure.
func TenorBand(days float64) string {
	for _, b := range tenorBands {
		if days < b.maxDays {
			return b.label
		}
	}
	return tenorBandMax
}

// BucketKey returns the deterministic statistics bucket for an option quote.
// Equal inputs always map to the same key, so a baseline captured in one run
// is addressable in the next.
func BucketKey(q OptionQuote, days float64) string {
	return fmt.Sprintf("%s-%s-%s", q.Asset, MoneynessBand(q.Moneyness()), TenorBand(days))
}
