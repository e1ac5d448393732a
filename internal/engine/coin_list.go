package engine

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"coinboard/internal/domain"
	"coinboard/internal/infra/coingecko"
)

// Status is the lifecycle state shared by the controllers.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusLoaded  Status = "loaded"
	StatusError   Status = "error"
)

const (
	DefaultPageSize = 50

	coinListErrorMessage = "Failed to fetch coins"
)

// MarketSource fetches pages of market data. *coingecko.Client satisfies it.
type MarketSource interface {
	GetMarketData(ctx context.Context, page, perPage int, currency, order string) ([]coingecko.MarketRecord, error)
}

// CoinListState is an immutable snapshot handed to the UI.
type CoinListState struct {
	Coins    []domain.Coin // already filtered by Query
	Total    int           // number of fetched coins before filtering
	Status   Status
	Loading  bool
	Error    string
	HasMore  bool
	Page     int
	Sort     domain.SortConfig
	Query    string
	Currency string
}

// CoinListOptions configures a CoinList. Zero values use the defaults.
type CoinListOptions struct {
	PageSize int
	Currency string
	OnChange func(CoinListState)
}

// CoinList drives the paginated, sortable market table.
// State lives behind mu; network calls run outside the lock and every fetch
// carries a generation so that only the most recently issued one is applied.
type CoinList struct {
	source   MarketSource
	pageSize int
	currency string
	onChange func(CoinListState)

	mu      sync.Mutex
	coins   []domain.Coin
	status  Status
	errMsg  string
	hasMore bool
	page    int
	sort    domain.SortConfig
	query   string
	gen     uint64
}

// NewCoinList creates an idle controller with the default sort.
func NewCoinList(source MarketSource, opts CoinListOptions) *CoinList {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Currency == "" {
		opts.Currency = "usd"
	}
	return &CoinList{
		source:   source,
		pageSize: opts.PageSize,
		currency: strings.ToLower(opts.Currency),
		onChange: opts.OnChange,
		status:   StatusIdle,
		hasMore:  true,
		page:     1,
		sort:     domain.DefaultSort,
	}
}

// fetchRequest is everything a fetch needs, captured under the lock.
type fetchRequest struct {
	gen     uint64
	page    int
	sort    domain.SortConfig
	replace bool
}

// Load fetches the first page with the current sort, replacing any coins.
func (c *CoinList) Load(ctx context.Context) error {
	c.mu.Lock()
	req := c.beginLocked(1, true)
	c.mu.Unlock()
	return c.run(ctx, req)
}

// Sort clears the table and refetches page 1 with cfg.
func (c *CoinList) Sort(ctx context.Context, cfg domain.SortConfig) error {
	c.mu.Lock()
	c.sort = cfg
	c.coins = nil
	req := c.beginLocked(1, true)
	c.mu.Unlock()
	return c.run(ctx, req)
}

// LoadMore appends the next page. It does nothing while a fetch is in flight
// or once the last page came back short.
func (c *CoinList) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if c.status == StatusLoading || !c.hasMore {
		c.mu.Unlock()
		return nil
	}
	req := c.beginLocked(c.page+1, false)
	c.mu.Unlock()
	return c.run(ctx, req)
}

// Retry restarts from page 1 with the current sort.
func (c *CoinList) Retry(ctx context.Context) error {
	return c.Load(ctx)
}

// Search sets the client-side filter. Only already fetched coins are searched.
func (c *CoinList) Search(query string) {
	c.mu.Lock()
	c.query = query
	c.mu.Unlock()
	c.notify()
}

// State returns a snapshot with the search filter applied.
func (c *CoinList) State() CoinListState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// beginLocked marks the list as loading and issues a new generation. Caller holds mu.
func (c *CoinList) beginLocked(page int, replace bool) fetchRequest {
	c.gen++
	c.page = page
	c.status = StatusLoading
	c.errMsg = ""
	return fetchRequest{gen: c.gen, page: page, sort: c.sort, replace: replace}
}

func (c *CoinList) run(ctx context.Context, req fetchRequest) error {
	c.notify()

	records, err := c.source.GetMarketData(ctx, req.page, c.pageSize, c.currency, req.sort.APIOrder())

	c.mu.Lock()
	// 이후에 시작된 요청이 있으면 이 응답은 버립니다
	if req.gen != c.gen {
		c.mu.Unlock()
		slog.Debug("Discarding stale coin page",
			slog.Uint64("gen", req.gen),
			slog.Int("page", req.page))
		return nil
	}

	if err != nil {
		c.status = StatusError
		c.errMsg = errorMessage(err, coinListErrorMessage)
		if !req.replace {
			// the next LoadMore asks for the same page again
			c.page = req.page - 1
		}
		c.mu.Unlock()
		slog.Error("Failed to fetch coin page",
			slog.Int("page", req.page),
			slog.String("order", req.sort.APIOrder()),
			slog.Any("error", err))
		c.notify()
		return err
	}

	coins := coingecko.AdaptMarketRecords(records)
	if req.replace {
		c.coins = coins
	} else {
		c.coins = append(c.coins, coins...)
	}
	// No total count on the public tier: a full page means there may be more
	c.hasMore = len(records) == c.pageSize
	c.status = StatusLoaded
	c.mu.Unlock()

	slog.Debug("Coin page loaded",
		slog.Int("page", req.page),
		slog.Int("count", len(records)))
	c.notify()
	return nil
}

func (c *CoinList) notify() {
	if c.onChange == nil {
		return
	}
	c.onChange(c.State())
}

func (c *CoinList) stateLocked() CoinListState {
	return CoinListState{
		Coins:    FilterCoins(c.coins, c.query),
		Total:    len(c.coins),
		Status:   c.status,
		Loading:  c.status == StatusLoading,
		Error:    c.errMsg,
		HasMore:  c.hasMore,
		Page:     c.page,
		Sort:     c.sort,
		Query:    c.query,
		Currency: c.currency,
	}
}

// FilterCoins returns a copy of coins whose name or symbol contains query,
// ignoring case. An empty query keeps every coin.
func FilterCoins(coins []domain.Coin, query string) []domain.Coin {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.Coin, 0, len(coins))
	for _, coin := range coins {
		if q == "" ||
			strings.Contains(strings.ToLower(coin.Name), q) ||
			strings.Contains(strings.ToLower(coin.Symbol), q) {
			out = append(out, coin)
		}
	}
	return out
}

// errorMessage turns err into display text, falling back when it has none.
func errorMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallback
}
