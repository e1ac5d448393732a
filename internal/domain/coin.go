package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Coin is the normalized view model for one row of the market table.
// Numeric fields are never absent: missing upstream values are stored as 0.
type Coin struct {
	ID                       string    `json:"id"`
	Symbol                   string    `json:"symbol"` // Always uppercase
	Name                     string    `json:"name"`
	Image                    string    `json:"image"`
	CurrentPrice             float64   `json:"current_price"`
	MarketCap                float64   `json:"market_cap"`
	MarketCapRank            int       `json:"market_cap_rank"`
	TotalVolume              float64   `json:"total_volume"`
	PriceChange24h           float64   `json:"price_change_24h"`
	PriceChangePercentage24h float64   `json:"price_change_percentage_24h"`
	Sparkline                []float64 `json:"sparkline,omitempty"` // nil when the source had none
	LastUpdated              string    `json:"last_updated"`
}

// ParseTimestamp reads an API timestamp. The API sends ISO-8601, but any common layout is accepted.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	// Zone-less layouts are read as UTC
	return dateparse.ParseIn(s, time.UTC)
}

// LastUpdatedAt parses LastUpdated.
func (c Coin) LastUpdatedAt() (time.Time, error) {
	return ParseTimestamp(c.LastUpdated)
}

// LatestUpdate returns the newest parseable LastUpdated among coins.
func LatestUpdate(coins []Coin) (time.Time, bool) {
	var latest time.Time
	for _, c := range coins {
		if ts, err := c.LastUpdatedAt(); err == nil && ts.After(latest) {
			latest = ts
		}
	}
	return latest, !latest.IsZero()
}

// HighlightCoin is the reduced projection shown in the trending/gainers/losers panels.
// A zero CurrentPrice or PriceChangePercentage24h means "no data" (trending feed has no prices).
type HighlightCoin struct {
	ID                       string  `json:"id"`
	Name                     string  `json:"name"`
	Symbol                   string  `json:"symbol"`
	Image                    string  `json:"image"`
	CurrentPrice             float64 `json:"current_price"`
	PriceChangePercentage24h float64 `json:"price_change_percentage_24h"`
	MarketCapRank            int     `json:"market_cap_rank"`
}

// NewHighlightCoin projects a full Coin onto a HighlightCoin.
func NewHighlightCoin(c Coin) HighlightCoin {
	return HighlightCoin{
		ID:                       c.ID,
		Name:                     c.Name,
		Symbol:                   c.Symbol,
		Image:                    c.Image,
		CurrentPrice:             c.CurrentPrice,
		PriceChangePercentage24h: c.PriceChangePercentage24h,
		MarketCapRank:            c.MarketCapRank,
	}
}

// HasPrice reports whether the price sub-field should be displayed.
func (h HighlightCoin) HasPrice() bool { return h.CurrentPrice != 0 }

// HasChange reports whether the 24h change sub-field should be displayed.
func (h HighlightCoin) HasChange() bool { return h.PriceChangePercentage24h != 0 }
