package venues

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vivirisk/quotewatch/internal/domain"
)

// VenueOKX is the venue identifier for OKX.
const VenueOKX = "okx"

// OKX fetches option and swap tickers from the public OKX v5 API. OKX
// quotes option prices in units of the underlying and publishes no per-row
// underlying, so the instrument family's index price converts them to USD.
type OKX struct {
	baseURL string
}

// NewOKX creates an OKX reference client.
func NewOKX() *OKX {
	return &OKX{baseURL: "https://www.okx.com/api/v5"}
}

// Name returns the venue identifier.
func (o *OKX) Name() string { return VenueOKX }

type okxTicker struct {
	InstID      string `json:"instId"`
	BidPx       string `json:"bidPx"`
	AskPx       string `json:"askPx"`
	Last        string `json:"last"`
	VolCcy24h   string `json:"volCcy24h"`
	OI          string `json:"oi"`
	FundingRate string `json:"fundingRate"`
	IdxPx       string `json:"idxPx"`
}

type okxResponse struct {
	Data []okxTicker `json:"data"`
}

// Fetch downloads option, swap, and index tickers for every asset.
func (o *OKX) Fetch(ctx context.Context, assets []string) (domain.Snapshot, error) {
	snaps := make([]domain.Snapshot, len(assets))
	g, gctx := errgroup.WithContext(ctx)
	for i, asset := range assets {
		i, asset := i, asset
		g.Go(func() error {
			snap, err := o.fetchAsset(gctx, asset)
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
	return mergeSnapshots(VenueOKX, snaps), nil
}

func (o *OKX) fetchAsset(ctx context.Context, asset string) (domain.Snapshot, error) {
	snap := domain.Snapshot{Venue: VenueOKX, Spots: make(map[string]float64)}
	family := asset + "-USD"

	var index okxResponse
	if err := getJSON(ctx, o.baseURL+"/market/index-tickers?instId="+family, &index); err != nil {
		return domain.Snapshot{}, fmt.Errorf("okx: %s index: %w", asset, err)
	}
	var spot float64
	if len(index.Data) > 0 {
		spot = num(index.Data[0].IdxPx)
	}
	if spot <= 0 {
		// Without an index there is no USD conversion for this family.
		return snap, nil
	}
	snap.Spots[asset] = spot

	var options okxResponse
	if err := getJSON(ctx, o.baseURL+"/market/tickers?instType=OPTION&instFamily="+family, &options); err != nil {
		return domain.Snapshot{}, fmt.Errorf("okx: %s options: %w", asset, err)
	}
	for _, t := range options.Data {
		parsed, ok := ParseOKX(t.InstID)
		if !ok {
			continue
		}
		bid, ask := num(t.BidPx)*spot, num(t.AskPx)*spot
		var mid float64
		if bid > 0 && ask > 0 {
			mid = (bid + ask) / 2
		}
		snap.Options = append(snap.Options, domain.OptionQuote{
			Venue:        VenueOKX,
			Asset:        parsed.Asset,
			Strike:       parsed.Strike,
			Expiry:       parsed.Label,
			ExpiryDate:   parsed.Expiry,
			Type:         parsed.Type,
			Bid:          bid,
			Ask:          ask,
			Mid:          mid,
			Spot:         spot,
			Volume24h:    num(t.VolCcy24h),
			OpenInterest: num(t.OI),
			Instrument:   t.InstID,
		})
	}

	var swaps okxResponse
	if err := getJSON(ctx, o.baseURL+"/market/tickers?instType=SWAP&instFamily="+family, &swaps); err != nil {
		return domain.Snapshot{}, fmt.Errorf("okx: %s swaps: %w", asset, err)
	}
	for _, t := range swaps.Data {
		if !strings.Contains(t.InstID, asset) {
			continue
		}
		mark := num(t.Last)
		perp := domain.PerpQuote{
			Venue:      VenueOKX,
			Asset:      asset,
			Instrument: t.InstID,
			Mark:       mark,
			Spot:       spot,
			BasisPct:   (mark - spot) / spot * 100,
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
