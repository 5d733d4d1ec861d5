package baseline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vivirisk/quotewatch/internal/domain"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.json")
	s := NewFileStore(path)
	ctx := context.Background()

	bl := &domain.Baseline{
		Timestamp: now,
		Buckets: map[string]domain.BucketStats{
			"BTC-ATM-7-30D": {Spreads: []float64{4, 6, 8}, Quoted: 3, Total: 5, P95: 8, Median: 6},
		},
		Options: map[string]domain.OptionRecord{
			"BTC-X": {Status: domain.StatusQuoted, Spread: 4, Mid: 1000},
		},
		QuotedCount: 3,
		TotalCount:  5,
	}
	if err := s.Save(ctx, bl); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.Timestamp.Equal(bl.Timestamp) || got.QuotedCount != 3 || got.TotalCount != 5 {
		t.Fatalf("got %+v", got)
	}
	if rec, ok := got.Record("BTC-X"); !ok || rec.Spread != 4 {
		t.Fatalf("record = %+v ok=%v", rec, ok)
	}
	if p95, ok := got.BucketP95("BTC-ATM-7-30D"); !ok || p95 != 8 {
		t.Fatalf("p95 = %v ok=%v", p95, ok)
	}
}

func TestFileStoreMissing(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "nope.json"))
	_, err := s.Load(context.Background())
	if !errors.Is(err, domain.ErrBaselineMissing) {
		t.Fatalf("err = %v, want ErrBaselineMissing", err)
	}
}

func TestFileStoreCorrupt(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "{truncated"},
		{"no timestamp", `{"buckets":{},"options":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "baseline.json")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := NewFileStore(path).Load(context.Background())
			if !errors.Is(err, domain.ErrBaselineCorrupt) {
				t.Fatalf("err = %v, want ErrBaselineCorrupt", err)
			}
		})
	}
}

func TestLoadUsablePolicy(t *testing.T) {
	ctx := context.Background()
	maxAge := 12 * time.Hour
	dir := t.TempDir()

	save := func(ts time.Time) Store {
		s := NewFileStore(filepath.Join(dir, ts.Format("150405")+".json"))
		if err := s.Save(ctx, &domain.Baseline{Timestamp: ts}); err != nil {
			t.Fatal(err)
		}
		return s
	}

	// Missing and corrupt degrade silently.
	if bl, err := LoadUsable(ctx, NewFileStore(filepath.Join(dir, "none.json")), now, maxAge); bl != nil || err != nil {
		t.Fatalf("missing: bl=%v err=%v", bl, err)
	}

	// A baseline aged exactly maxAge is still usable.
	if bl, err := LoadUsable(ctx, save(now.Add(-maxAge)), now, maxAge); bl == nil || err != nil {
		t.Fatalf("boundary: bl=%v err=%v", bl, err)
	}

	// One second past the boundary is not.
	if bl, err := LoadUsable(ctx, save(now.Add(-maxAge-time.Second)), now, maxAge); bl != nil || err != nil {
		t.Fatalf("expired: bl=%v err=%v", bl, err)
	}
}

func TestSaveOverwritesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.json")
	s := NewFileStore(path)
	ctx := context.Background()

	if err := s.Save(ctx, &domain.Baseline{Timestamp: now.Add(-time.Hour)}); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, &domain.Baseline{Timestamp: now}); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Timestamp.Equal(now) {
		t.Fatalf("timestamp = %v, want latest write", got.Timestamp)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("leftover files: %v", entries)
	}
}
