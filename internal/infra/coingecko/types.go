package coingecko

import (
	null "gopkg.in/guregu/null.v4"
)

// =====================================================
// CoinGecko wire types (as returned by the REST API)
// =====================================================

// MarketRecord is one element of GET /coins/markets.
type MarketRecord struct {
	ID                       string     `json:"id"`
	Symbol                   string     `json:"symbol"`
	Name                     string     `json:"name"`
	Image                    string     `json:"image"`
	CurrentPrice             float64    `json:"current_price"`
	MarketCap                float64    `json:"market_cap"`
	MarketCapRank            int        `json:"market_cap_rank"`
	TotalVolume              float64    `json:"total_volume"`
	High24h                  null.Float `json:"high_24h"`
	Low24h                   null.Float `json:"low_24h"`
	PriceChange24h           null.Float `json:"price_change_24h"`
	PriceChangePercentage24h null.Float `json:"price_change_percentage_24h"`
	CirculatingSupply        null.Float `json:"circulating_supply"`
	ATH                      null.Float `json:"ath"`
	ATL                      null.Float `json:"atl"`
	LastUpdated              string     `json:"last_updated"`
	SparklineIn7d            *Sparkline `json:"sparkline_in_7d,omitempty"`
}

// Sparkline holds the 7-day price series.
type Sparkline struct {
	Price []float64 `json:"price"`
}

// TrendingSnapshot is the body of GET /search/trending.
type TrendingSnapshot struct {
	Coins []TrendingEntry `json:"coins"`
}

// TrendingEntry wraps each trending coin in an "item" object.
type TrendingEntry struct {
	Item TrendingItem `json:"item"`
}

// TrendingItem carries no fiat price; PriceBTC is the only price information.
type TrendingItem struct {
	ID            string     `json:"id"`
	CoinID        int        `json:"coin_id"`
	Name          string     `json:"name"`
	Symbol        string     `json:"symbol"`
	Thumb         string     `json:"thumb"`
	Large         string     `json:"large"`
	MarketCapRank null.Int   `json:"market_cap_rank"`
	PriceBTC      null.Float `json:"price_btc"`
	Score         int        `json:"score"`
}
