package detect

import (
	"fmt"
	"math"

	"github.com/vivirisk/quotewatch/internal/domain"
)

// PerpArb compares the primary venue's perpetual basis and funding rate
// against every reference venue listing the same asset.
type PerpArb struct {
	p Params
}

// NewPerpArb creates the perpetual basis/funding detector.
func NewPerpArb(p Params) *PerpArb {
	return &PerpArb{p: p}
}

// Name returns the detector identifier.
func (d *PerpArb) Name() string { return "perp_arb" }

// Detect emits basis-divergence and funding-divergence signals per asset and
// reference venue. The two checks are independent: venues that report no
// funding rate still participate in basis comparison.
func (d *PerpArb) Detect(in Input) []Signal {
	byAsset := make(map[string]map[string]domain.PerpQuote)
	add := func(p domain.PerpQuote) {
		if byAsset[p.Asset] == nil {
			byAsset[p.Asset] = make(map[string]domain.PerpQuote)
		}
		byAsset[p.Asset][p.Venue] = p
	}
	for _, p := range in.Perps {
		add(p)
	}
	for _, p := range in.RefPerps {
		add(p)
	}

	var out []Signal
	for asset, venues := range byAsset {
		primary, ok := venues[d.p.PrimaryVenue]
		if !ok {
			continue
		}
		for venue, ref := range venues {
			if venue == d.p.PrimaryVenue {
				continue
			}

			// BasisPct is in percent; one percent of basis is 100 bps.
			basisBps := math.Abs(primary.BasisPct-ref.BasisPct) * 100
			if basisBps >= d.p.PerpBasisBps {
				fees := (primary.Mark + ref.Mark) / 2 *
					(d.p.TakerFee(d.p.PrimaryVenue) + d.p.TakerFee(venue))
				net := math.Abs(primary.Mark-ref.Mark) - fees
				out = append(out, Signal{
					Kind:       KindBasis,
					Category:   domain.CatPerpArb,
					Severity:   escalate(basisBps, d.p.PerpBasisBps),
					Asset:      asset,
					Instrument: fmt.Sprintf("%s PERP %s/%s", asset, d.p.PrimaryVenue, venue),
					Confidence: 70,
					Net:        net,
					HasNet:     true,
					Profitable: net > 0 && net >= d.p.MinNetEdgeUSD,
					Message: fmt.Sprintf("basis gap %.1fbps: $%.2f vs %s $%.2f, net $%.2f",
						basisBps, primary.Mark, venue, ref.Mark, net),
				})
			}

			if primary.Funding == nil || ref.Funding == nil {
				continue
			}
			fundBps := math.Abs(*primary.Funding-*ref.Funding) * 10000
			if fundBps >= d.p.FundingBps {
				out = append(out, Signal{
					Kind:       KindFunding,
					Category:   domain.CatFundingArb,
					Severity:   escalate(fundBps, d.p.FundingBps),
					Asset:      asset,
					Instrument: fmt.Sprintf("%s FUNDING %s/%s", asset, d.p.PrimaryVenue, venue),
					Confidence: 60,
					Profitable: fundBps > 3,
					Message: fmt.Sprintf("funding gap %.2fbps: %.2fbps vs %s %.2fbps",
						fundBps, *primary.Funding*10000, venue, *ref.Funding*10000),
				})
			}
		}
	}
	return out
}
