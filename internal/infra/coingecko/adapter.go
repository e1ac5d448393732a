package coingecko

import (
	"strings"

	"coinboard/internal/domain"
)

// AdaptMarketRecord normalizes a raw market record into a domain.Coin.
// Null price changes become 0; the sparkline stays nil when the API sent none.
func AdaptMarketRecord(r MarketRecord) domain.Coin {
	c := domain.Coin{
		ID:                       r.ID,
		Symbol:                   strings.ToUpper(r.Symbol),
		Name:                     r.Name,
		Image:                    r.Image,
		CurrentPrice:             r.CurrentPrice,
		MarketCap:                r.MarketCap,
		MarketCapRank:            r.MarketCapRank,
		TotalVolume:              r.TotalVolume,
		PriceChange24h:           r.PriceChange24h.ValueOrZero(),
		PriceChangePercentage24h: r.PriceChangePercentage24h.ValueOrZero(),
		LastUpdated:              r.LastUpdated,
	}
	if r.SparklineIn7d != nil && r.SparklineIn7d.Price != nil {
		c.Sparkline = r.SparklineIn7d.Price
	}
	return c
}

// AdaptMarketRecords maps a whole page.
func AdaptMarketRecords(records []MarketRecord) []domain.Coin {
	coins := make([]domain.Coin, len(records))
	for i, r := range records {
		coins[i] = AdaptMarketRecord(r)
	}
	return coins
}

// AdaptTrendingItem projects a trending item. The trending feed has no fiat
// price, so CurrentPrice and PriceChangePercentage24h are always 0.
func AdaptTrendingItem(item TrendingItem) domain.HighlightCoin {
	return domain.HighlightCoin{
		ID:                       item.ID,
		Name:                     item.Name,
		Symbol:                   strings.ToUpper(item.Symbol),
		Image:                    item.Large,
		CurrentPrice:             0,
		PriceChangePercentage24h: 0,
		MarketCapRank:            int(item.MarketCapRank.ValueOrZero()),
	}
}

// AdaptTrending projects the first limit trending items (all of them when limit <= 0).
func AdaptTrending(snap *TrendingSnapshot, limit int) []domain.HighlightCoin {
	if snap == nil {
		return nil
	}
	entries := snap.Coins
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	out := make([]domain.HighlightCoin, len(entries))
	for i, e := range entries {
		out[i] = AdaptTrendingItem(e.Item)
	}
	return out
}
