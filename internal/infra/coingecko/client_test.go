package coingecko

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRoundTripper allows us to mock HTTP responses
type MockRoundTripper struct {
	Func func(req *http.Request) (*http.Response, error)
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.Func(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

// newTestClient returns a client whose transport is fn and whose sleeps are recorded instead of waited.
func newTestClient(opts Options, fn func(req *http.Request) (*http.Response, error)) (*Client, *[]time.Duration) {
	client := NewClient(opts)
	client.httpClient.Transport = &MockRoundTripper{Func: fn}

	var delays []time.Duration
	client.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return ctx.Err()
	}
	return client, &delays
}

const marketsPage = `[{"id":"bitcoin","symbol":"btc","name":"Bitcoin","image":"https://img/btc.png",
"current_price":65000.5,"market_cap":1280000000000,"market_cap_rank":1,"total_volume":31000000000,
"price_change_24h":1200.25,"price_change_percentage_24h":1.88,"last_updated":"2024-03-01T12:00:00.000Z"}]`

func TestClient_GetMarketData_QueryParameters(t *testing.T) {
	var captured *http.Request
	client, _ := newTestClient(Options{BaseURL: "https://api.test/api/v3/"}, func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(200, marketsPage), nil
	})

	records, err := client.GetMarketData(context.Background(), 2, 50, "usd", "current_price_desc")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "bitcoin", records[0].ID)

	require.NotNil(t, captured)
	assert.Equal(t, "/api/v3/coins/markets", captured.URL.Path)
	q := captured.URL.Query()
	assert.Equal(t, "usd", q.Get("vs_currency"))
	assert.Equal(t, "current_price_desc", q.Get("order"))
	assert.Equal(t, "50", q.Get("per_page"))
	assert.Equal(t, "2", q.Get("page"))
	assert.Equal(t, "false", q.Get("sparkline"))
	assert.Equal(t, "24h", q.Get("price_change_percentage"))
	assert.False(t, q.Has("x_cg_demo_api_key"), "key must be omitted when not configured")
	assert.Equal(t, "application/json", captured.Header.Get("Accept"))
}

func TestClient_AppendsAPIKey(t *testing.T) {
	var captured *http.Request
	client, _ := newTestClient(Options{APIKey: "CG-demo"}, func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(200, `{"coins":[]}`), nil
	})

	_, err := client.GetTrending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/v3/search/trending", captured.URL.Path)
	assert.Equal(t, "api.coingecko.com", captured.URL.Host)
	assert.Equal(t, "CG-demo", captured.URL.Query().Get("x_cg_demo_api_key"))
}

func TestClient_BuildURL_NoParams(t *testing.T) {
	client := NewClient(Options{BaseURL: "https://api.test/v3"})
	assert.Equal(t, "https://api.test/v3/search/trending", client.buildURL("/search/trending", nil))
}

func TestClient_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	client, delays := newTestClient(Options{}, func(req *http.Request) (*http.Response, error) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			return jsonResponse(http.StatusInternalServerError, "boom"), nil
		}
		return jsonResponse(200, marketsPage), nil
	})

	records, err := client.GetMarketData(context.Background(), 1, 50, "usd", "market_cap_desc")
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls), "expected exactly 3 attempts")
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, *delays)
}

func TestClient_AlwaysFailing_ExhaustsRetries(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusNotFound} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			var calls int32
			client, delays := newTestClient(Options{Retries: 3}, func(req *http.Request) (*http.Response, error) {
				atomic.AddInt32(&calls, 1)
				return jsonResponse(status, ""), nil
			})

			_, err := client.GetMarketData(context.Background(), 1, 50, "usd", "market_cap_desc")
			require.Error(t, err)
			assert.Equal(t, int32(3), atomic.LoadInt32(&calls), "no more than the configured attempts")
			assert.Len(t, *delays, 2, "no wait after the final attempt")

			var retryErr *RetryError
			require.True(t, errors.As(err, &retryErr))
			assert.Equal(t, 3, retryErr.Attempts)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, status, apiErr.StatusCode)
			assert.Equal(t, apiErr.Error(), err.Error(), "last error message propagates unmodified")
		})
	}
}

func TestClient_APIErrorMessage(t *testing.T) {
	client, _ := newTestClient(Options{Retries: 1}, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusServiceUnavailable, ""), nil
	})

	_, err := client.GetTrending(context.Background())
	require.Error(t, err)
	assert.Equal(t, "API request failed: 503 Service Unavailable", err.Error())
}

func TestClient_NetworkErrorIsRetried(t *testing.T) {
	var calls int32
	client, delays := newTestClient(Options{Retries: 2}, func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return nil, errors.New("connection refused")
	})

	_, err := client.GetTrending(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, []time.Duration{1 * time.Second}, *delays)

	var netErr *NetworkError
	assert.True(t, errors.As(err, &netErr))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestClient_DecodeErrorIsNotRetried(t *testing.T) {
	var calls int32
	client, _ := newTestClient(Options{}, func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return jsonResponse(200, "<html>not json</html>"), nil
	})

	_, err := client.GetMarketData(context.Background(), 1, 50, "usd", "market_cap_desc")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Contains(t, err.Error(), "failed to decode")
}

func TestClient_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int32
	client, _ := newTestClient(Options{}, func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		cancel()
		return jsonResponse(http.StatusBadGateway, ""), nil
	})

	_, err := client.GetTrending(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSleepContext(t *testing.T) {
	start := time.Now()
	require.NoError(t, sleepContext(context.Background(), 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}

func TestRedactKey(t *testing.T) {
	got := redactKey("https://api.test/v3/search/trending?x_cg_demo_api_key=secret")
	assert.NotContains(t, got, "secret")
	assert.Contains(t, got, "REDACTED")
}
