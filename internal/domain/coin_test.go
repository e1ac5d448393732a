package domain

import (
	"testing"
	"time"
)

func TestCoin_LastUpdatedAt(t *testing.T) {
	t.Run("ISO timestamp from API", func(t *testing.T) {
		c := Coin{LastUpdated: "2024-03-01T12:34:56.789Z"}
		ts, err := c.LastUpdatedAt()
		if err != nil {
			t.Fatalf("LastUpdatedAt failed: %v", err)
		}
		want := time.Date(2024, 3, 1, 12, 34, 56, 789_000_000, time.UTC)
		if !ts.Equal(want) {
			t.Errorf("Expected %s, got %s", want, ts)
		}
	})

	t.Run("Empty timestamp is an error", func(t *testing.T) {
		if _, err := (Coin{}).LastUpdatedAt(); err == nil {
			t.Error("Expected error for empty timestamp")
		}
	})
}

func TestParseTimestamp_Layouts(t *testing.T) {
	want := time.Date(2024, 3, 1, 12, 34, 56, 0, time.UTC)
	for _, in := range []string{"2024-03-01T12:34:56Z", " 2024-03-01 12:34:56 ", "1709296496"} {
		ts, err := ParseTimestamp(in)
		if err != nil {
			t.Errorf("ParseTimestamp(%q) failed: %v", in, err)
			continue
		}
		if !ts.Equal(want) {
			t.Errorf("ParseTimestamp(%q) = %s, want %s", in, ts, want)
		}
	}
}

func TestLatestUpdate(t *testing.T) {
	coins := []Coin{
		{ID: "a", LastUpdated: "2024-03-01T12:00:00Z"},
		{ID: "b", LastUpdated: "not a date"},
		{ID: "c", LastUpdated: "2024-03-01T12:05:00Z"},
		{ID: "d"},
	}
	ts, ok := LatestUpdate(coins)
	if !ok {
		t.Fatal("Expected a timestamp")
	}
	if want := time.Date(2024, 3, 1, 12, 5, 0, 0, time.UTC); !ts.Equal(want) {
		t.Errorf("LatestUpdate = %s, want %s", ts, want)
	}

	if _, ok := LatestUpdate([]Coin{{ID: "d"}}); ok {
		t.Error("Coins without timestamps should report no update time")
	}
}

func TestNewHighlightCoin(t *testing.T) {
	c := Coin{
		ID:                       "bitcoin",
		Symbol:                   "BTC",
		Name:                     "Bitcoin",
		Image:                    "https://img/btc.png",
		CurrentPrice:             65000,
		MarketCap:                1.2e12,
		MarketCapRank:            1,
		TotalVolume:              3e10,
		PriceChangePercentage24h: 2.5,
	}

	h := NewHighlightCoin(c)
	want := HighlightCoin{
		ID:                       "bitcoin",
		Name:                     "Bitcoin",
		Symbol:                   "BTC",
		Image:                    "https://img/btc.png",
		CurrentPrice:             65000,
		PriceChangePercentage24h: 2.5,
		MarketCapRank:            1,
	}
	if h != want {
		t.Errorf("NewHighlightCoin mismatch. Got %+v, Want %+v", h, want)
	}
	if !h.HasPrice() || !h.HasChange() {
		t.Error("Projection of a priced coin should display both sub-fields")
	}
}

func TestHighlightCoin_ZeroMeansNoData(t *testing.T) {
	h := HighlightCoin{ID: "pepe", CurrentPrice: 0, PriceChangePercentage24h: 0}
	if h.HasPrice() {
		t.Error("Zero price should be suppressed")
	}
	if h.HasChange() {
		t.Error("Zero change should be suppressed")
	}
}
