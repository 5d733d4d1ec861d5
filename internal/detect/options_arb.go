package detect

import (
	"fmt"
	"math"

	"github.com/vivirisk/quotewatch/internal/domain"
)

// OptionsArb matches primary-venue options to equivalent reference-venue
// listings and flags implied-vol dislocations and executable price-level
// arbitrage net of fees and slippage.
type OptionsArb struct {
	p Params
}

// NewOptionsArb creates the cross-venue options detector.
func NewOptionsArb(p Params) *OptionsArb {
	return &OptionsArb{p: p}
}

// Name returns the detector identifier.
func (o *OptionsArb) Name() string { return "options_arb" }

// Detect walks the primary book and compares each contract against every
// liquid reference listing with the same (asset, strike, expiry, type).
// Contracts without a reference match are simply skipped; they never block
// processing of the rest.
func (o *OptionsArb) Detect(in Input) []Signal {
	minTenor := o.p.MinTenorDays / 365

	// Exact-key index of usable reference quotes.
	refByKey := make(map[string][]domain.OptionQuote)
	for _, r := range in.RefOpts {
		if r.TimeToExpiry(in.Now) < minTenor || r.Mid <= 0 {
			continue
		}
		k := r.MatchKey()
		refByKey[k] = append(refByKey[k], r)
	}

	var out []Signal
	for _, it := range in.Items {
		if it.Mid <= 0 || it.TTE < minTenor || it.Mid < o.p.MinOptionMid {
			continue
		}
		liquid := filterLiquid(refByKey[it.MatchKey()], o.p)
		if len(liquid) == 0 {
			continue
		}

		// Implied-vol dislocation is independent of price-level materiality.
		if it.IV > 0 {
			for _, r := range liquid {
				if r.MarkIV <= 0 {
					continue
				}
				diff := (it.IV - r.MarkIV) * 100
				if math.Abs(diff) < o.p.IVArbPoints {
					continue
				}
				out = append(out, Signal{
					Kind:       KindIV,
					Category:   domain.CatIVDisloc,
					Severity:   escalate(math.Abs(diff), o.p.IVArbPoints),
					Asset:      it.Asset,
					Instrument: it.Instrument,
					Confidence: 60,
					Message: fmt.Sprintf("mid IV %.1f%% vs %s mark IV %.1f%% (%+.1f vol pts)",
						it.IV*100, r.Venue, r.MarkIV*100, diff),
				})
			}
		}

		out = append(out, o.priceSignal(it.Instrument, it.Asset, it.Bid, it.Ask, it.Mid, liquid)...)
	}
	return out
}

// priceSignal compares the primary mid against the liquid reference mean and,
// past the materiality threshold, prices the executable round trip.
func (o *OptionsArb) priceSignal(instrument, asset string, bid, ask, mid float64, liquid []domain.OptionQuote) []Signal {
	var sum float64
	for _, r := range liquid {
		sum += r.Mid
	}
	refMid := sum / float64(len(liquid))
	pctDiff := (mid - refMid) / refMid * 100
	if math.Abs(pctDiff) < o.p.PriceArbPct {
		return nil
	}

	primaryFee := o.p.TakerFee(o.p.PrimaryVenue)

	if pctDiff < 0 && ask > 0 {
		// Primary is cheap: lift the primary ask, hit the best reference bid.
		best := bestBid(liquid)
		if best == nil || best.Bid <= 0 {
			return nil
		}
		gross := best.Bid*(1-o.p.Slippage) - ask*(1+o.p.Slippage)
		fees := ask*primaryFee + best.Bid*o.p.TakerFee(best.Venue)
		net := gross - fees
		return []Signal{{
			Kind:       KindPrice,
			Category:   domain.CatCheap,
			Severity:   escalate(math.Abs(pctDiff), o.p.PriceArbPct),
			Asset:      asset,
			Instrument: instrument,
			Confidence: 65,
			Net:        net,
			HasNet:     true,
			Profitable: net > 0 && net >= o.p.MinNetEdgeUSD,
			Message: fmt.Sprintf("mid $%.2f vs market $%.2f (%.1f%%): buy @%.2f, sell %s @%.2f, net $%.2f",
				mid, refMid, pctDiff, ask, best.Venue, best.Bid, net),
		}}
	}

	if pctDiff > 0 && bid > 0 {
		// Primary is rich: hit the primary bid, lift the best reference ask.
		best := bestAsk(liquid)
		if best == nil || best.Ask <= 0 {
			return nil
		}
		gross := bid*(1-o.p.Slippage) - best.Ask*(1+o.p.Slippage)
		fees := bid*primaryFee + best.Ask*o.p.TakerFee(best.Venue)
		net := gross - fees
		return []Signal{{
			Kind:       KindPrice,
			Category:   domain.CatRich,
			Severity:   escalate(math.Abs(pctDiff), o.p.PriceArbPct),
			Asset:      asset,
			Instrument: instrument,
			Confidence: 65,
			Net:        net,
			HasNet:     true,
			Profitable: net > 0 && net >= o.p.MinNetEdgeUSD,
			Message: fmt.Sprintf("mid $%.2f vs market $%.2f (+%.1f%%): sell @%.2f, buy %s @%.2f, net $%.2f",
				mid, refMid, pctDiff, bid, best.Venue, best.Ask, net),
		}}
	}

	return nil
}

// filterLiquid keeps only reference quotes a trader could actually execute
// against: two-sided, with minimum 24h volume and open interest.
func filterLiquid(refs []domain.OptionQuote, p Params) []domain.OptionQuote {
	var out []domain.OptionQuote
	for _, r := range refs {
		if r.Bid > 0 && r.Ask > 0 && r.Volume24h >= p.MinRefVolume && r.OpenInterest >= p.MinRefOI {
			out = append(out, r)
		}
	}
	return out
}

func bestBid(refs []domain.OptionQuote) *domain.OptionQuote {
	var best *domain.OptionQuote
	for i := range refs {
		if best == nil || refs[i].Bid > best.Bid {
			best = &refs[i]
		}
	}
	return best
}

func bestAsk(refs []domain.OptionQuote) *domain.OptionQuote {
	var best *domain.OptionQuote
	for i := range refs {
		if refs[i].Ask <= 0 {
			continue
		}
		if best == nil || refs[i].Ask < best.Ask {
			best = &refs[i]
		}
	}
	return best
}
