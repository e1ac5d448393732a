package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"coinboard/internal/infra"
)

const (
	DefaultBaseURL = infra.DefaultAPIURL
	DefaultRetries = 3
	DefaultTimeout = 10 * time.Second

	apiKeyParam = "x_cg_demo_api_key"
)

// Options configures a Client. Zero values fall back to the defaults above.
type Options struct {
	BaseURL   string
	APIKey    string // optional; unauthenticated tier when empty
	Retries   int
	Timeout   time.Duration
	UserAgent string
}

// Client is a thin CoinGecko REST client with bounded retry and exponential backoff.
type Client struct {
	baseURL    string
	apiKey     string
	retries    int
	userAgent  string
	httpClient *http.Client

	// sleep waits between attempts; replaced in tests
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a new CoinGecko client
func NewClient(opts Options) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		apiKey:    opts.APIKey,
		retries:   opts.Retries,
		userAgent: opts.UserAgent,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		sleep: sleepContext,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.retries <= 0 {
		c.retries = DefaultRetries
	}
	if c.httpClient.Timeout <= 0 {
		c.httpClient.Timeout = DefaultTimeout
	}
	if c.userAgent == "" {
		c.userAgent = infra.AppName
	}
	return c
}

// NewClientFromConfig builds a client from the application config.
func NewClientFromConfig(cfg *infra.Config) *Client {
	return NewClient(Options{
		BaseURL:   cfg.API.CoinGecko.BaseURL,
		APIKey:    cfg.API.CoinGecko.APIKey,
		Retries:   cfg.API.CoinGecko.Retries,
		Timeout:   cfg.Timeout(),
		UserAgent: cfg.App.Name + "/" + cfg.App.Version,
	})
}

// GetMarketData fetches one page of GET /coins/markets.
// order is the API's precomposed order string, e.g. "market_cap_desc" or "current_price_asc".
func (c *Client) GetMarketData(ctx context.Context, page, perPage int, currency, order string) ([]MarketRecord, error) {
	params := url.Values{}
	params.Set("vs_currency", currency)
	params.Set("order", order)
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("page", strconv.Itoa(page))
	params.Set("sparkline", "false")
	params.Set("price_change_percentage", "24h")

	var records []MarketRecord
	if err := c.getJSON(ctx, "/coins/markets", params, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// GetTrending fetches GET /search/trending.
func (c *Client) GetTrending(ctx context.Context) (*TrendingSnapshot, error) {
	var snap TrendingSnapshot
	if err := c.getJSON(ctx, "/search/trending", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, v any) error {
	body, err := c.fetchWithRetry(ctx, c.buildURL(endpoint, params))
	if err != nil {
		return err
	}
	// Decoding happens once, after the retry loop
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

// buildURL joins base URL and endpoint and appends the API key when one is configured.
func (c *Client) buildURL(endpoint string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	if c.apiKey != "" {
		params.Set(apiKeyParam, c.apiKey)
	}

	u := c.baseURL + endpoint
	if qs := params.Encode(); qs != "" {
		u += "?" + qs
	}
	return u
}

// fetchWithRetry performs the GET with up to c.retries attempts.
// Waits 2^attempt seconds between attempts; the last failure is returned as a *RetryError.
func (c *Client) fetchWithRetry(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for i := 0; i < c.retries; i++ {
		body, err := c.doFetch(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		slog.Warn("CoinGecko request attempt failed",
			slog.String("url", redactKey(rawURL)),
			slog.Int("attempt", i+1),
			slog.Int("max_attempts", c.retries),
			slog.Any("error", err))

		if i == c.retries-1 {
			break
		}

		// Exponential backoff: 1s, 2s, 4s
		delay := infra.CalculateBackoff(i)
		slog.Debug("Retrying CoinGecko request", slog.Int("attempt", i+2), slog.Duration("delay", delay))
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
	return nil, &RetryError{Attempts: c.retries, Err: lastErr}
}

func (c *Client) doFetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, newAPIError(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	return body, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// redactKey hides the API key in logged URLs.
func redactKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Has(apiKeyParam) {
		q.Set(apiKeyParam, "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
