package baseline

import (
	"context"
	"errors"
	"time"

	"github.com/vivirisk/quotewatch/internal/domain"
)

// Store persists one baseline between runs. Runs are scheduled
// non-overlapping, so implementations need no locking discipline; if two
// runs ever race, the last writer wins.
type Store interface {
	// Load returns the persisted baseline. It reports
	// domain.ErrBaselineMissing when none exists and
	// domain.ErrBaselineCorrupt when one exists but cannot be decoded.
	Load(ctx context.Context) (*domain.Baseline, error)
	// Save replaces the persisted baseline.
	Save(ctx context.Context, bl *domain.Baseline) error
}

// LoadUsable loads the baseline and applies the expiry policy: a missing,
// corrupt, or expired baseline comes back as (nil, nil) so the caller runs
// in degraded mode with fallback thresholds. Only infrastructure failures
// (an unreachable database, an unreadable directory) surface as errors.
func LoadUsable(ctx context.Context, s Store, now time.Time, maxAge time.Duration) (*domain.Baseline, error) {
	bl, err := s.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrBaselineMissing) || errors.Is(err, domain.ErrBaselineCorrupt) {
			return nil, nil
		}
		return nil, err
	}
	if bl.Expired(now, maxAge) {
		return nil, nil
	}
	return bl, nil
}
