// Package venues fetches and normalizes option and perpetual books from the
// primary venue and every configured reference venue. Each client maps its
// venue's REST payloads into domain quotes; instruments whose identifiers
// fail to parse are dropped at this boundary and never reach the engine.
package venues

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/vivirisk/quotewatch/internal/domain"
)

// Client fetches one venue's full snapshot for a set of underlying assets.
type Client interface {
	Name() string
	Fetch(ctx context.Context, assets []string) (domain.Snapshot, error)
}

// WithAssets pins a client to a fixed underlying list, overriding whatever
// list FetchAll passes. Venues do not all cover the same underlyings.
func WithAssets(c Client, assets []string) Client {
	return scopedClient{Client: c, assets: assets}
}

type scopedClient struct {
	Client
	assets []string
}

func (s scopedClient) Fetch(ctx context.Context, _ []string) (domain.Snapshot, error) {
	return s.Client.Fetch(ctx, s.assets)
}

// FetchAll fans out one fetch per venue. The primary venue is mandatory:
// its failure aborts the run with domain.ErrPrimaryUnavailable. Reference
// venues degrade individually; a failed reference is logged and skipped so
// one flaky venue cannot blind the whole comparison.
func FetchAll(ctx context.Context, primary Client, refs []Client, assets []string, log *slog.Logger) (domain.Snapshot, []domain.Snapshot, error) {
	var primarySnap domain.Snapshot
	refSnaps := make([]domain.Snapshot, len(refs))
	refErrs := make([]error, len(refs))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		snap, err := primary.Fetch(gctx, assets)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrPrimaryUnavailable, primary.Name(), err)
		}
		primarySnap = snap
		return nil
	})

	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			snap, err := ref.Fetch(gctx, assets)
			if err != nil {
				refErrs[i] = err
				return nil
			}
			refSnaps[i] = snap
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.Snapshot{}, nil, err
	}

	var out []domain.Snapshot
	for i, snap := range refSnaps {
		if refErrs[i] != nil {
			log.Warn("reference venue unavailable", "venue", refs[i].Name(), "error", refErrs[i])
			continue
		}
		log.Debug("venue fetched", "venue", snap.Venue, "options", len(snap.Options), "perps", len(snap.Perps))
		out = append(out, snap)
	}
	return primarySnap, out, nil
}
