package venues

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vivirisk/quotewatch/internal/domain"
)

// VenueCoinCall is the venue identifier for CoinCall.
const VenueCoinCall = "coincall"

// CoinCall fetches the option chain and perp symbol info from the public
// CoinCall API. The chain groups each strike row into a call side and a
// put side; both are flattened here.
type CoinCall struct {
	baseURL string
}

// NewCoinCall creates a CoinCall reference client.
func NewCoinCall() *CoinCall {
	return &CoinCall{baseURL: "https://api.coincall.com/open"}
}

// Name returns the venue identifier.
func (c *CoinCall) Name() string { return VenueCoinCall }

type coinCallOption struct {
	Symbol          string  `json:"symbol"`
	UnderlyingPrice float64 `json:"underlyingPrice"`
	Bid             float64 `json:"bid"`
	Ask             float64 `json:"ask"`
	MarkPrice       float64 `json:"markPrice"`
	MarkIV          float64 `json:"markIv"`
	Volume          float64 `json:"volume"`
	OpenInterest    float64 `json:"openInterest"`
}

type coinCallChainResponse struct {
	Data []struct {
		CallOption *coinCallOption `json:"callOption"`
		PutOption  *coinCallOption `json:"putOption"`
	} `json:"data"`
}

type coinCallSymbolResponse struct {
	Data []struct {
		Symbol      string `json:"symbol"`
		DisplayName string `json:"displayName"`
		MarkPrice   string `json:"markPrice"`
		Price       string `json:"price"`
		IndexPrice  string `json:"indexPrice"`
	} `json:"data"`
}

type coinCallFundingResponse struct {
	Data struct {
		FundingRate *float64 `json:"fundingRate"`
	} `json:"data"`
}

// Fetch downloads the chain and perp info for every asset.
func (c *CoinCall) Fetch(ctx context.Context, assets []string) (domain.Snapshot, error) {
	snaps := make([]domain.Snapshot, len(assets))
	g, gctx := errgroup.WithContext(ctx)
	for i, asset := range assets {
		i, asset := i, asset
		g.Go(func() error {
			snap, err := c.fetchAsset(gctx, asset)
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
	return mergeSnapshots(VenueCoinCall, snaps), nil
}

func (c *CoinCall) fetchAsset(ctx context.Context, asset string) (domain.Snapshot, error) {
	snap := domain.Snapshot{Venue: VenueCoinCall, Spots: make(map[string]float64)}
	index := asset + "USD"

	var chain coinCallChainResponse
	if err := getJSON(ctx, c.baseURL+"/option/getOptionChain/v1/"+index, &chain); err != nil {
		return domain.Snapshot{}, fmt.Errorf("coincall: %s chain: %w", asset, err)
	}
	for _, row := range chain.Data {
		for _, o := range []*coinCallOption{row.CallOption, row.PutOption} {
			if o == nil || o.Symbol == "" {
				continue
			}
			parsed, ok := ParseCoinCall(o.Symbol)
			if !ok || o.UnderlyingPrice <= 0 {
				continue
			}
			mid := o.MarkPrice
			if o.Bid > 0 && o.Ask > 0 {
				mid = (o.Bid + o.Ask) / 2
			}
			snap.Options = append(snap.Options, domain.OptionQuote{
				Venue:        VenueCoinCall,
				Asset:        parsed.Asset,
				Strike:       parsed.Strike,
				Expiry:       parsed.Label,
				ExpiryDate:   parsed.Expiry,
				Type:         parsed.Type,
				Bid:          o.Bid,
				Ask:          o.Ask,
				Mid:          mid,
				Spot:         o.UnderlyingPrice,
				MarkIV:       o.MarkIV / 100,
				Volume24h:    o.Volume,
				OpenInterest: o.OpenInterest,
				Instrument:   o.Symbol,
			})
			snap.Spots[parsed.Asset] = o.UnderlyingPrice
		}
	}

	var symbols coinCallSymbolResponse
	if err := getJSON(ctx, c.baseURL+"/futures/market/getSymbolInfo/v1", &symbols); err != nil {
		return domain.Snapshot{}, fmt.Errorf("coincall: symbol info: %w", err)
	}
	var funding coinCallFundingResponse
	if err := getJSON(ctx, c.baseURL+"/public/fundingRate/v1/"+index, &funding); err != nil {
		// Funding is supplementary; a missing rate never drops the perp.
		funding.Data.FundingRate = nil
	}

	for _, f := range symbols.Data {
		if f.Symbol != index {
			continue
		}
		mark := num(f.MarkPrice)
		if mark <= 0 {
			mark = num(f.Price)
		}
		spot := num(f.IndexPrice)
		if spot <= 0 {
			spot = mark
		}
		instrument := f.DisplayName
		if instrument == "" {
			instrument = asset + "-PERP"
		}
		perp := domain.PerpQuote{
			Venue:      VenueCoinCall,
			Asset:      asset,
			Instrument: instrument,
			Mark:       mark,
			Spot:       spot,
			Funding:    funding.Data.FundingRate,
		}
		if spot > 0 {
			perp.BasisPct = (mark - spot) / spot * 100
			snap.Spots[asset] = spot
		}
		snap.Perps = append(snap.Perps, perp)
	}
	return snap, nil
}
