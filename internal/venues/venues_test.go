package venues

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/vivirisk/quotewatch/internal/domain"
)

type fakeClient struct {
	name string
	snap domain.Snapshot
	err  error
}

func (f *fakeClient) Name() string { return f.name }

func (f *fakeClient) Fetch(context.Context, []string) (domain.Snapshot, error) {
	return f.snap, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetchAllPrimaryFailureIsFatal(t *testing.T) {
	primary := &fakeClient{name: "powertrade", err: errors.New("dial timeout")}
	ref := &fakeClient{name: "deribit", snap: domain.Snapshot{Venue: "deribit"}}

	_, _, err := FetchAll(context.Background(), primary, []Client{ref}, []string{"BTC"}, discardLogger())
	if !errors.Is(err, domain.ErrPrimaryUnavailable) {
		t.Fatalf("err = %v, want ErrPrimaryUnavailable", err)
	}
}

func TestFetchAllReferenceFailureDegrades(t *testing.T) {
	primary := &fakeClient{name: "powertrade", snap: domain.Snapshot{Venue: "powertrade"}}
	refs := []Client{
		&fakeClient{name: "deribit", err: errors.New("503")},
		&fakeClient{name: "okx", snap: domain.Snapshot{Venue: "okx"}},
	}

	snap, refSnaps, err := FetchAll(context.Background(), primary, refs, []string{"BTC"}, discardLogger())
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if snap.Venue != "powertrade" {
		t.Fatalf("primary = %+v", snap)
	}
	if len(refSnaps) != 1 || refSnaps[0].Venue != "okx" {
		t.Fatalf("refs = %+v", refSnaps)
	}
}
