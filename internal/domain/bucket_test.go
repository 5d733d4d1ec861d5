package domain

import "testing"

func TestMoneynessBand(t *testing.T) {
	tests := []struct {
		moneyness float64
		want      string
	}{
		{0, "ATM"},
		{0.049, "ATM"},
		{0.05, "NEAR"},
		{0.149, "NEAR"},
		{0.15, "DEEP"},
		{0.5, "DEEP"},
	}
	for _, tt := range tests {
		if got := MoneynessBand(tt.moneyness); got != tt.want {
			t.Errorf("MoneynessBand(%v) = %s, want %s", tt.moneyness, got, tt.want)
		}
	}
}

func TestTenorBand(t *testing.T) {
	tests := []struct {
		days float64
		want string
	}{
		{0, "0D"},
		{0.9, "0D"},
		{1, "1-3D"},
		{2.9, "1-3D"},
		{3, "3-7D"},
		{7, "7-30D"},
		{29.9, "7-30D"},
		{30, "30-90D"},
		{90, "90D+"},
		{400, "90D+"},
	}
	for _, tt := range tests {
		if got := TenorBand(tt.days); got != tt.want {
			t.Errorf("TenorBand(%v) = %s, want %s", tt.days, got, tt.want)
		}
	}
}

func TestBucketKeyDeterministic(t *testing.T) {
	q := OptionQuote{Asset: "BTC", Strike: 70000, Spot: 65000}
	k1 := BucketKey(q, 12)
	k2 := BucketKey(q, 12)
	if k1 != k2 {
		t.Fatalf("keys differ: %s vs %s", k1, k2)
	}
	if k1 != "BTC-NEAR-7-30D" {
		t.Fatalf("key = %s", k1)
	}
}

func TestBucketKeyUnknownSpot(t *testing.T) {
	// Without a spot price moneyness defaults deep, never at-the-money.
	q := OptionQuote{Asset: "ETH", Strike: 3200}
	if got := BucketKey(q, 2); got != "ETH-DEEP-1-3D" {
		t.Fatalf("key = %s", got)
	}
}
