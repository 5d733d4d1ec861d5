package venues

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/vivirisk/quotewatch/internal/domain"
)

// VenueBybit is the venue identifier for Bybit.
const VenueBybit = "bybit"

// Bybit fetches option and linear-perp tickers from the public Bybit v5
// API. Option symbols follow the Deribit scheme and prices are already in
// USD terms.
type Bybit struct {
	baseURL string
}

// NewBybit creates a Bybit reference client.
func NewBybit() *Bybit {
	return &Bybit{baseURL: "https://api.bybit.com/v5"}
}

// Name returns the venue identifier.
func (b *Bybit) Name() string { return VenueBybit }

type bybitTicker struct {
	Symbol          string `json:"symbol"`
	Bid1Price       string `json:"bid1Price"`
	Ask1Price       string `json:"ask1Price"`
	MarkPrice       string `json:"markPrice"`
	LastPrice       string `json:"lastPrice"`
	IndexPrice      string `json:"indexPrice"`
	UnderlyingPrice string `json:"underlyingPrice"`
	MarkIV          string `json:"markIv"`
	Volume24h       string `json:"volume24h"`
	OpenInterest    string `json:"openInterest"`
	FundingRate     string `json:"fundingRate"`
}

type bybitResponse struct {
	Result struct {
		List []bybitTicker `json:"list"`
	} `json:"result"`
}

// Fetch downloads option and perp tickers for every asset.
func (b *Bybit) Fetch(ctx context.Context, assets []string) (domain.Snapshot, error) {
	snaps := make([]domain.Snapshot, len(assets))
	g, gctx := errgroup.WithContext(ctx)
	for i, asset := range assets {
		i, asset := i, asset
		g.Go(func() error {
			snap, err := b.fetchAsset(gctx, asset)
			if err != nil {
				return err
			}
			snaps[i] = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Snapshot{}, err
	}
	return mergeSnapshots(VenueBybit, snaps), nil
}

func (b *Bybit) fetchAsset(ctx context.Context, asset string) (domain.Snapshot, error) {
	snap := domain.Snapshot{Venue: VenueBybit, Spots: make(map[string]float64)}

	var options bybitResponse
	if err := getJSON(ctx, b.baseURL+"/market/tickers?category=option&baseCoin="+asset, &options); err != nil {
		return domain.Snapshot{}, fmt.Errorf("bybit: %s options: %w", asset, err)
	}
	for _, t := range options.Result.List {
		parsed, ok := ParseDeribit(t.Symbol)
		if !ok {
			continue
		}
		spot := num(t.UnderlyingPrice)
		if spot <= 0 {
			continue
		}
		bid, ask, mark := num(t.Bid1Price), num(t.Ask1Price), num(t.MarkPrice)
		mid := mark
		if bid > 0 && ask > 0 {
			mid = (bid + ask) / 2
		}
		snap.Options = append(snap.Options, domain.OptionQuote{
			Venue:        VenueBybit,
			Asset:        parsed.Asset,
			Strike:       parsed.Strike,
			Expiry:       parsed.Label,
			ExpiryDate:   parsed.Expiry,
			Type:         parsed.Type,
			Bid:          bid,
			Ask:          ask,
			Mid:          mid,
			Spot:         spot,
			MarkIV:       num(t.MarkIV) / 100,
			Volume24h:    num(t.Volume24h),
			OpenInterest: num(t.OpenInterest),
			Instrument:   t.Symbol,
		})
		snap.Spots[parsed.Asset] = spot
	}

	var linear bybitResponse
	if err := getJSON(ctx, b.baseURL+"/market/tickers?category=linear&symbol="+asset+"USDT", &linear); err != nil {
		return domain.Snapshot{}, fmt.Errorf("bybit: %s linear: %w", asset, err)
	}
	for _, t := range linear.Result.List {
		mark := num(t.MarkPrice)
		if mark <= 0 {
			mark = num(t.LastPrice)
		}
		spot := num(t.IndexPrice)
		if spot <= 0 {
			spot = mark
		}
		perp := domain.PerpQuote{
			Venue:      VenueBybit,
			Asset:      asset,
			Instrument: t.Symbol,
			Mark:       mark,
			Spot:       spot,
		}
		if spot > 0 {
			perp.BasisPct = (mark - spot) / spot * 100
		}
		if t.FundingRate != "" {
			if f, err := strconv.ParseFloat(t.FundingRate, 64); err == nil {
				perp.Funding = &f
			}
		}
		snap.Perps = append(snap.Perps, perp)
	}
	return snap, nil
}
