package coingecko

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"coinboard/internal/domain"
)

// GetCoinDetails fetches GET /coins/{id} and extracts the detail view for currency.
// The payload is large and loosely typed, so fields are picked with gjson paths
// instead of a full struct.
func (c *Client) GetCoinDetails(ctx context.Context, id, currency string) (*domain.CoinDetails, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("coin id is required")
	}

	params := url.Values{}
	params.Set("localization", "false")
	params.Set("tickers", "false")
	params.Set("market_data", "true")
	params.Set("community_data", "false")
	params.Set("developer_data", "false")
	params.Set("sparkline", "false")

	body, err := c.fetchWithRetry(ctx, c.buildURL("/coins/"+url.PathEscape(id), params))
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON in /coins/%s response", id)
	}
	return parseCoinDetails(gjson.ParseBytes(body), currency), nil
}

func parseCoinDetails(doc gjson.Result, currency string) *domain.CoinDetails {
	cur := strings.ToLower(currency)
	if cur == "" {
		cur = "usd"
	}
	md := doc.Get("market_data")
	inCur := func(field string) float64 {
		return md.Get(field + "." + cur).Float()
	}

	return &domain.CoinDetails{
		ID:          doc.Get("id").String(),
		Symbol:      strings.ToUpper(doc.Get("symbol").String()),
		Name:        doc.Get("name").String(),
		Description: strings.TrimSpace(doc.Get("description.en").String()),
		Homepage:    firstNonEmpty(doc.Get("links.homepage").Array()),
		GenesisDate: doc.Get("genesis_date").String(),
		Image:       doc.Get("image.large").String(),

		Currency:                 cur,
		MarketCapRank:            int(doc.Get("market_cap_rank").Int()),
		CurrentPrice:             inCur("current_price"),
		MarketCap:                inCur("market_cap"),
		TotalVolume:              inCur("total_volume"),
		High24h:                  inCur("high_24h"),
		Low24h:                   inCur("low_24h"),
		PriceChange24h:           inCur("price_change_24h_in_currency"),
		PriceChangePercentage24h: inCur("price_change_percentage_24h_in_currency"),
		ATH:                      inCur("ath"),
		ATL:                      inCur("atl"),
		CirculatingSupply:        md.Get("circulating_supply").Float(),
		LastUpdated:              doc.Get("last_updated").String(),
	}
}

func firstNonEmpty(values []gjson.Result) string {
	for _, v := range values {
		if s := strings.TrimSpace(v.String()); s != "" {
			return s
		}
	}
	return ""
}

// SearchCoins queries GET /search. This is the only path that searches the full
// remote dataset; table filtering never calls it.
func (c *Client) SearchCoins(ctx context.Context, query string) ([]domain.SearchResult, error) {
	params := url.Values{}
	params.Set("query", strings.TrimSpace(query))

	body, err := c.fetchWithRetry(ctx, c.buildURL("/search", params))
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.New("invalid JSON in /search response")
	}

	hits := gjson.GetBytes(body, "coins").Array()
	results := make([]domain.SearchResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, domain.SearchResult{
			ID:            h.Get("id").String(),
			Name:          h.Get("name").String(),
			Symbol:        strings.ToUpper(h.Get("symbol").String()),
			MarketCapRank: int(h.Get("market_cap_rank").Int()),
			Thumb:         h.Get("thumb").String(),
		})
	}
	return results, nil
}
