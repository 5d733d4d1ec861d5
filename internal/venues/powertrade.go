package venues

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/vivirisk/quotewatch/internal/domain"
)

// VenuePowerTrade is the primary venue identifier used across the engine.
const VenuePowerTrade = "powertrade"

// PowerTrade fetches the full tradeable-entity summary from the PowerTrade
// REST API. One call returns every option, perpetual, and index product, so
// Fetch ignores the asset list and filters nothing server-side.
type PowerTrade struct {
	baseURL string
}

// NewPowerTrade creates the primary-venue client. env selects the API
// cluster, "prod" or "dev".
func NewPowerTrade(env string) *PowerTrade {
	return &PowerTrade{baseURL: fmt.Sprintf("https://api.rest.%s.power.trade", env)}
}

// Name returns the venue identifier.
func (p *PowerTrade) Name() string { return VenuePowerTrade }

// ptEntity mirrors one row of the summary payload. PowerTrade serializes
// every numeric field as a string.
type ptEntity struct {
	Symbol       string `json:"symbol"`
	ProductType  string `json:"product_type"`
	BestBid      string `json:"best_bid"`
	BestAsk      string `json:"best_ask"`
	LastPrice    string `json:"last_price"`
	IndexPrice   string `json:"index_price"`
	Volume       string `json:"volume"`
	OpenInterest string `json:"open_interest"`
	FundingRate  string `json:"funding_rate"`
}

// Fetch downloads and normalizes the whole book.
func (p *PowerTrade) Fetch(ctx context.Context, _ []string) (domain.Snapshot, error) {
	var entities []ptEntity
	url := p.baseURL + "/v1/market_data/tradeable_entity/all/summary"
	if err := getJSON(ctx, url, &entities); err != nil {
		return domain.Snapshot{}, fmt.Errorf("powertrade: summary: %w", err)
	}

	snap := domain.Snapshot{Venue: VenuePowerTrade, Spots: make(map[string]float64)}
	for _, t := range entities {
		bid, ask := num(t.BestBid), num(t.BestAsk)
		last, idx := num(t.LastPrice), num(t.IndexPrice)

		switch t.ProductType {
		case "option":
			parsed, ok := ParsePowerTrade(t.Symbol)
			if !ok {
				continue
			}
			var mid float64
			if bid > 0 && ask > 0 {
				mid = (bid + ask) / 2
			} else {
				mid = firstPositive(bid, ask, last)
			}
			snap.Options = append(snap.Options, domain.OptionQuote{
				Venue:        VenuePowerTrade,
				Asset:        parsed.Asset,
				Strike:       parsed.Strike,
				Expiry:       parsed.Label,
				ExpiryDate:   parsed.Expiry,
				Type:         parsed.Type,
				Bid:          bid,
				Ask:          ask,
				Mid:          mid,
				Last:         last,
				Spot:         idx,
				Volume24h:    num(t.Volume),
				OpenInterest: num(t.OpenInterest),
				Instrument:   t.Symbol,
			})
			if idx > 0 {
				snap.Spots[parsed.Asset] = idx
			}

		case "perpetual_future":
			asset := strings.SplitN(t.Symbol, "-", 2)[0]
			mark := last
			if mark <= 0 {
				mark = (bid + ask) / 2
			}
			perp := domain.PerpQuote{
				Venue:      VenuePowerTrade,
				Asset:      asset,
				Instrument: t.Symbol,
				Mark:       mark,
				Bid:        bid,
				Ask:        ask,
				Spot:       idx,
			}
			if idx > 0 {
				perp.BasisPct = (mark - idx) / idx * 100
				snap.Spots[asset] = idx
			}
			if t.FundingRate != "" {
				if f, err := strconv.ParseFloat(t.FundingRate, 64); err == nil {
					perp.Funding = &f
				}
			}
			snap.Perps = append(snap.Perps, perp)

		case "index":
			if idx > 0 {
				snap.Spots[strings.SplitN(t.Symbol, "-", 2)[0]] = idx
			}
		}
	}
	return snap, nil
}

// num parses a venue numeric string, treating absent or malformed values
// as zero.
func num(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// firstPositive returns the first strictly positive value.
func firstPositive(vals ...float64) float64 {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}
