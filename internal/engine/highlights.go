package engine

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"coinboard/internal/domain"
	"coinboard/internal/infra/coingecko"
)

const (
	DefaultHighlightsSnapshot = 100
	DefaultHighlightsLimit    = 10

	highlightsErrorMessage = "Failed to fetch highlights"
	highlightsOrder        = "market_cap_desc"
)

// HighlightsSource supplies both feeds the highlights panels are built from.
type HighlightsSource interface {
	MarketSource
	GetTrending(ctx context.Context) (*coingecko.TrendingSnapshot, error)
}

// HighlightsState is the snapshot of the three panels.
type HighlightsState struct {
	Trending []domain.HighlightCoin
	Gainers  []domain.HighlightCoin
	Losers   []domain.HighlightCoin
	Status   Status
	Loading  bool
	Error    string
}

// HighlightsOptions configures Highlights. Zero values use the defaults.
type HighlightsOptions struct {
	Currency     string
	SnapshotSize int
	Limit        int
	OnChange     func(HighlightsState)
}

// Highlights derives trending, top gainers and top losers from one market
// snapshot plus the trending feed.
type Highlights struct {
	source   HighlightsSource
	currency string
	snapshot int
	limit    int
	onChange func(HighlightsState)

	mu       sync.Mutex
	trending []domain.HighlightCoin
	gainers  []domain.HighlightCoin
	losers   []domain.HighlightCoin
	status   Status
	errMsg   string
	gen      uint64
}

// NewHighlights creates an idle highlights controller.
func NewHighlights(source HighlightsSource, opts HighlightsOptions) *Highlights {
	if opts.Currency == "" {
		opts.Currency = "usd"
	}
	if opts.SnapshotSize <= 0 {
		opts.SnapshotSize = DefaultHighlightsSnapshot
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultHighlightsLimit
	}
	return &Highlights{
		source:   source,
		currency: strings.ToLower(opts.Currency),
		snapshot: opts.SnapshotSize,
		limit:    opts.Limit,
		onChange: opts.OnChange,
		status:   StatusIdle,
	}
}

// Load fetches both feeds concurrently and publishes once both are done.
// A trending failure only empties the trending feed; a market failure fails the whole view.
func (h *Highlights) Load(ctx context.Context) error {
	h.mu.Lock()
	h.gen++
	gen := h.gen
	h.status = StatusLoading
	h.errMsg = ""
	h.mu.Unlock()
	h.notify()

	var (
		records  []coingecko.MarketRecord
		trending *coingecko.TrendingSnapshot
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = h.source.GetMarketData(gctx, 1, h.snapshot, h.currency, highlightsOrder)
		return err
	})
	g.Go(func() error {
		snap, err := h.source.GetTrending(gctx)
		if err != nil {
			slog.Warn("Trending feed unavailable, falling back to volume", slog.Any("error", err))
			return nil
		}
		trending = snap
		return nil
	})
	err := g.Wait()

	h.mu.Lock()
	if gen != h.gen {
		h.mu.Unlock()
		slog.Debug("Discarding stale highlights", slog.Uint64("gen", gen))
		return nil
	}

	if err != nil {
		h.status = StatusError
		h.errMsg = errorMessage(err, highlightsErrorMessage)
		h.mu.Unlock()
		slog.Error("Failed to fetch highlights", slog.Any("error", err))
		h.notify()
		return err
	}

	coins := coingecko.AdaptMarketRecords(records)
	h.trending = TrendingOrVolume(coingecko.AdaptTrending(trending, h.limit), coins, h.limit)
	h.gainers = TopGainers(coins, h.limit)
	h.losers = TopLosers(coins, h.limit)
	h.status = StatusLoaded
	h.mu.Unlock()

	slog.Debug("Highlights loaded",
		slog.Int("snapshot", len(coins)),
		slog.Bool("trending_feed", trending != nil && len(trending.Coins) > 0))
	h.notify()
	return nil
}

// Retry reloads both feeds.
func (h *Highlights) Retry(ctx context.Context) error {
	return h.Load(ctx)
}

// State returns a snapshot of the panels.
func (h *Highlights) State() HighlightsState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return HighlightsState{
		Trending: append([]domain.HighlightCoin(nil), h.trending...),
		Gainers:  append([]domain.HighlightCoin(nil), h.gainers...),
		Losers:   append([]domain.HighlightCoin(nil), h.losers...),
		Status:   h.status,
		Loading:  h.status == StatusLoading,
		Error:    h.errMsg,
	}
}

func (h *Highlights) notify() {
	if h.onChange == nil {
		return
	}
	h.onChange(h.State())
}

// TopGainers returns up to limit coins with a positive 24h change, largest first.
func TopGainers(coins []domain.Coin, limit int) []domain.HighlightCoin {
	picked := filterByChange(coins, func(v float64) bool { return v > 0 })
	sort.SliceStable(picked, func(i, j int) bool {
		return picked[i].PriceChangePercentage24h > picked[j].PriceChangePercentage24h
	})
	return project(picked, limit)
}

// TopLosers returns up to limit coins with a negative 24h change, most negative first.
func TopLosers(coins []domain.Coin, limit int) []domain.HighlightCoin {
	picked := filterByChange(coins, func(v float64) bool { return v < 0 })
	sort.SliceStable(picked, func(i, j int) bool {
		return picked[i].PriceChangePercentage24h < picked[j].PriceChangePercentage24h
	})
	return project(picked, limit)
}

// TrendingOrVolume returns the first limit trending items, or when the feed is
// empty the limit highest-volume coins of the snapshot.
func TrendingOrVolume(trending []domain.HighlightCoin, coins []domain.Coin, limit int) []domain.HighlightCoin {
	if len(trending) > 0 {
		if limit > 0 && len(trending) > limit {
			trending = trending[:limit]
		}
		return append([]domain.HighlightCoin(nil), trending...)
	}

	byVolume := append([]domain.Coin(nil), coins...)
	sort.SliceStable(byVolume, func(i, j int) bool {
		return byVolume[i].TotalVolume > byVolume[j].TotalVolume
	})
	return project(byVolume, limit)
}

func filterByChange(coins []domain.Coin, keep func(float64) bool) []domain.Coin {
	out := make([]domain.Coin, 0, len(coins))
	for _, c := range coins {
		if keep(c.PriceChangePercentage24h) {
			out = append(out, c)
		}
	}
	return out
}

func project(coins []domain.Coin, limit int) []domain.HighlightCoin {
	if limit > 0 && len(coins) > limit {
		coins = coins[:limit]
	}
	out := make([]domain.HighlightCoin, len(coins))
	for i, c := range coins {
		out[i] = domain.NewHighlightCoin(c)
	}
	return out
}
