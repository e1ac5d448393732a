package domain

import "time"

// CoinDetails is the detail-view model built from /coins/{id}.
// Market figures are in the currency the caller asked for.
type CoinDetails struct {
	ID          string `json:"id"`
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Homepage    string `json:"homepage"`
	GenesisDate string `json:"genesis_date"`
	Image       string `json:"image"`

	Currency                 string  `json:"currency"`
	MarketCapRank            int     `json:"market_cap_rank"`
	CurrentPrice             float64 `json:"current_price"`
	MarketCap                float64 `json:"market_cap"`
	TotalVolume              float64 `json:"total_volume"`
	High24h                  float64 `json:"high_24h"`
	Low24h                   float64 `json:"low_24h"`
	PriceChange24h           float64 `json:"price_change_24h"`
	PriceChangePercentage24h float64 `json:"price_change_percentage_24h"`
	ATH                      float64 `json:"ath"`
	ATL                      float64 `json:"atl"`
	CirculatingSupply        float64 `json:"circulating_supply"`
	LastUpdated              string  `json:"last_updated"`
}

// LastUpdatedAt parses LastUpdated.
func (d CoinDetails) LastUpdatedAt() (time.Time, error) {
	return ParseTimestamp(d.LastUpdated)
}

// SearchResult is one coin hit from the remote search endpoint.
type SearchResult struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank int    `json:"market_cap_rank"`
	Thumb         string `json:"thumb"`
}
