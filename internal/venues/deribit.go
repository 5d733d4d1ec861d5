package venues

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vivirisk/quotewatch/internal/domain"
)

// VenueDeribit is the venue identifier for Deribit.
const VenueDeribit = "deribit"

// Deribit fetches option and future book summaries from the public Deribit
// API. Deribit quotes option prices in units of the underlying; they are
// converted to USD here using the underlying price on each row.
type Deribit struct {
	baseURL string
}

// NewDeribit creates a Deribit reference client.
func NewDeribit() *Deribit {
	return &Deribit{baseURL: "https://www.deribit.com/api/v2"}
}

// Name returns the venue identifier.
func (d *Deribit) Name() string { return VenueDeribit }

type deribitBookSummary struct {
	InstrumentName  string   `json:"instrument_name"`
	UnderlyingPrice float64  `json:"underlying_price"`
	BidPrice        float64  `json:"bid_price"`
	AskPrice        float64  `json:"ask_price"`
	MarkPrice       float64  `json:"mark_price"`
	MarkIV          float64  `json:"mark_iv"`
	Volume          float64  `json:"volume"`
	OpenInterest    float64  `json:"open_interest"`
	CurrentFunding  *float64 `json:"current_funding"`
}

type deribitResponse struct {
	Result []deribitBookSummary `json:"result"`
}

// Fetch downloads the option and future summaries for every asset in
// parallel and merges them into one snapshot.
func (d *Deribit) Fetch(ctx context.Context, assets []string) (domain.Snapshot, error) {
	snaps := make([]domain.Snapshot, len(assets))
	g, gctx := errgroup.WithContext(ctx)
	for i, asset := range assets {
		i, asset := i, asset
		g.Go(func() error {
			snap, err := d.fetchAsset(gctx, asset)
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
	return mergeSnapshots(VenueDeribit, snaps), nil
}

func (d *Deribit) fetchAsset(ctx context.Context, asset string) (domain.Snapshot, error) {
	snap := domain.Snapshot{Venue: VenueDeribit, Spots: make(map[string]float64)}

	var options deribitResponse
	if err := getJSON(ctx, d.bookURL(asset, "option"), &options); err != nil {
		return domain.Snapshot{}, fmt.Errorf("deribit: %s options: %w", asset, err)
	}
	for _, o := range options.Result {
		parsed, ok := ParseDeribit(o.InstrumentName)
		if !ok || o.UnderlyingPrice <= 0 {
			continue
		}
		spot := o.UnderlyingPrice
		bid, ask, mark := o.BidPrice*spot, o.AskPrice*spot, o.MarkPrice*spot
		mid := mark
		if bid > 0 && ask > 0 {
			mid = (bid + ask) / 2
		}
		snap.Options = append(snap.Options, domain.OptionQuote{
			Venue:        VenueDeribit,
			Asset:        parsed.Asset,
			Strike:       parsed.Strike,
			Expiry:       parsed.Label,
			ExpiryDate:   parsed.Expiry,
			Type:         parsed.Type,
			Bid:          bid,
			Ask:          ask,
			Mid:          mid,
			Spot:         spot,
			MarkIV:       o.MarkIV / 100,
			Volume24h:    o.Volume,
			OpenInterest: o.OpenInterest,
			Instrument:   o.InstrumentName,
		})
		snap.Spots[parsed.Asset] = spot
	}

	var futures deribitResponse
	if err := getJSON(ctx, d.bookURL(asset, "future"), &futures); err != nil {
		return domain.Snapshot{}, fmt.Errorf("deribit: %s futures: %w", asset, err)
	}
	for _, f := range futures.Result {
		if !strings.Contains(f.InstrumentName, "PERPETUAL") || f.UnderlyingPrice <= 0 {
			continue
		}
		spot := f.UnderlyingPrice
		snap.Perps = append(snap.Perps, domain.PerpQuote{
			Venue:      VenueDeribit,
			Asset:      asset,
			Instrument: f.InstrumentName,
			Mark:       f.MarkPrice,
			Spot:       spot,
			Funding:    f.CurrentFunding,
			BasisPct:   (f.MarkPrice - spot) / spot * 100,
		})
	}
	return snap, nil
}

func (d *Deribit) bookURL(asset, kind string) string {
	return fmt.Sprintf("%s/public/get_book_summary_by_currency?currency=%s&kind=%s",
		d.baseURL, url.QueryEscape(asset), kind)
}

// mergeSnapshots folds per-asset snapshots into one per-venue snapshot.
func mergeSnapshots(venue string, snaps []domain.Snapshot) domain.Snapshot {
	out := domain.Snapshot{Venue: venue, Spots: make(map[string]float64)}
	for _, s := range snaps {
		out.Options = append(out.Options, s.Options...)
		out.Perps = append(out.Perps, s.Perps...)
		for k, v := range s.Spots {
			out.Spots[k] = v
		}
	}
	return out
}
