package domain

import (
	"testing"
	"time"
)

func TestSpreadPct(t *testing.T) {
	tests := []struct {
		name     string
		bid, ask float64
		mid      float64
		want     float64
		ok       bool
	}{
		{"two sided", 95, 105, 100, 10, true},
		{"bid only", 95, 0, 95, 0, false},
		{"ask only", 0, 105, 105, 0, false},
		{"empty", 0, 0, 0, 0, false},
		{"no mid", 95, 105, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := OptionQuote{Bid: tt.bid, Ask: tt.ask, Mid: tt.mid}
			got, ok := q.SpreadPct()
			if ok != tt.ok || got != tt.want {
				t.Fatalf("got %v/%v, want %v/%v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestTimeToExpiryFloorsAtZero(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	q := OptionQuote{ExpiryDate: now.Add(-time.Hour)}
	if tte := q.TimeToExpiry(now); tte != 0 {
		t.Fatalf("tte = %v, want 0 for settled contracts", tte)
	}
	q.ExpiryDate = now.Add(365 * 24 * time.Hour)
	if tte := q.TimeToExpiry(now); tte != 1 {
		t.Fatalf("tte = %v, want 1", tte)
	}
}

func TestMatchKeyExact(t *testing.T) {
	a := OptionQuote{Venue: "powertrade", Asset: "BTC", Strike: 70000, Expiry: "27MAR26", Type: Call}
	b := OptionQuote{Venue: "deribit", Asset: "BTC", Strike: 70000, Expiry: "27MAR26", Type: Call}
	if a.MatchKey() != b.MatchKey() {
		t.Fatalf("same contract on two venues must share a key: %s vs %s", a.MatchKey(), b.MatchKey())
	}

	variants := []OptionQuote{
		{Asset: "ETH", Strike: 70000, Expiry: "27MAR26", Type: Call},
		{Asset: "BTC", Strike: 71000, Expiry: "27MAR26", Type: Call},
		{Asset: "BTC", Strike: 70000, Expiry: "26JUN26", Type: Call},
		{Asset: "BTC", Strike: 70000, Expiry: "27MAR26", Type: Put},
	}
	for _, v := range variants {
		if v.MatchKey() == a.MatchKey() {
			t.Fatalf("distinct contract collides: %+v", v)
		}
	}
}

func TestBaselineExpiredBoundary(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	maxAge := 12 * time.Hour

	bl := &Baseline{Timestamp: now.Add(-maxAge)}
	if bl.Expired(now, maxAge) {
		t.Fatal("a baseline aged exactly maxAge is still valid")
	}
	bl.Timestamp = now.Add(-maxAge - time.Nanosecond)
	if !bl.Expired(now, maxAge) {
		t.Fatal("past the boundary the baseline must expire")
	}
}
