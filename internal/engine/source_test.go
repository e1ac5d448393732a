package engine

import (
	"context"
	"fmt"
	"sync"

	"coinboard/internal/infra/coingecko"

	null "gopkg.in/guregu/null.v4"
)

// marketCall records the arguments of one GetMarketData call.
type marketCall struct {
	Page     int
	PerPage  int
	Currency string
	Order    string
}

// fakeSource is a scriptable MarketSource / HighlightsSource.
type fakeSource struct {
	mu sync.Mutex

	marketFn   func(call marketCall) ([]coingecko.MarketRecord, error)
	trendingFn func() (*coingecko.TrendingSnapshot, error)

	calls         []marketCall
	trendingCalls int
}

func (f *fakeSource) GetMarketData(ctx context.Context, page, perPage int, currency, order string) ([]coingecko.MarketRecord, error) {
	call := marketCall{Page: page, PerPage: perPage, Currency: currency, Order: order}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	fn := f.marketFn
	f.mu.Unlock()

	if fn == nil {
		return nil, nil
	}
	return fn(call)
}

func (f *fakeSource) GetTrending(ctx context.Context) (*coingecko.TrendingSnapshot, error) {
	f.mu.Lock()
	f.trendingCalls++
	fn := f.trendingFn
	f.mu.Unlock()

	if fn == nil {
		return &coingecko.TrendingSnapshot{}, nil
	}
	return fn()
}

func (f *fakeSource) Calls() []marketCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]marketCall(nil), f.calls...)
}

// makeRecords builds n records ranked from firstRank onwards.
func makeRecords(n, firstRank int) []coingecko.MarketRecord {
	out := make([]coingecko.MarketRecord, n)
	for i := range out {
		rank := firstRank + i
		out[i] = coingecko.MarketRecord{
			ID:            fmt.Sprintf("coin-%d", rank),
			Symbol:        fmt.Sprintf("c%d", rank),
			Name:          fmt.Sprintf("Coin %d", rank),
			CurrentPrice:  float64(1000 - rank),
			MarketCapRank: rank,
			TotalVolume:   float64(rank * 10),
		}
	}
	return out
}

func recordWithChange(id string, change float64, volume float64) coingecko.MarketRecord {
	return coingecko.MarketRecord{
		ID:                       id,
		Symbol:                   id,
		Name:                     id,
		CurrentPrice:             1,
		TotalVolume:              volume,
		PriceChangePercentage24h: null.FloatFrom(change),
	}
}
