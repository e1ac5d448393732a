package coingecko

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/h2non/gock.v1"
)

const gockHost = "https://api.coingecko.test"

func newGockClient(t *testing.T, apiKey string) *Client {
	t.Helper()
	client := NewClient(Options{BaseURL: gockHost + "/api/v3", APIKey: apiKey, Retries: 2})
	client.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	gock.InterceptClient(client.httpClient)
	t.Cleanup(func() {
		gock.RestoreClient(client.httpClient)
		gock.Off()
	})
	return client
}

func TestClient_GetTrending_Gock(t *testing.T) {
	client := newGockClient(t, "")

	gock.New(gockHost).
		Get("/api/v3/search/trending").
		Reply(200).
		JSON(`{"coins":[
			{"item":{"id":"pepe","coin_id":29850,"name":"Pepe","symbol":"pepe","market_cap_rank":27,"thumb":"t","small":"s","large":"https://img/pepe.png","slug":"pepe","price_btc":2.1e-10,"score":0}},
			{"item":{"id":"newcoin","name":"New Coin","symbol":"new","market_cap_rank":null,"large":"https://img/new.png","score":1}}
		]}`)

	snap, err := client.GetTrending(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Coins, 2)
	assert.Equal(t, "pepe", snap.Coins[0].Item.ID)
	assert.Equal(t, int64(27), snap.Coins[0].Item.MarketCapRank.ValueOrZero())
	assert.False(t, snap.Coins[1].Item.MarketCapRank.Valid)
	assert.True(t, gock.IsDone())
}

func TestClient_GetTrending_Gock_RetryAfterServerError(t *testing.T) {
	client := newGockClient(t, "CG-key")

	gock.New(gockHost).
		Get("/api/v3/search/trending").
		MatchParam("x_cg_demo_api_key", "CG-key").
		Reply(500)
	gock.New(gockHost).
		Get("/api/v3/search/trending").
		MatchParam("x_cg_demo_api_key", "CG-key").
		Reply(200).
		JSON(`{"coins":[]}`)

	snap, err := client.GetTrending(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Coins)
	assert.True(t, gock.IsDone())
}

func TestClient_GetCoinDetails(t *testing.T) {
	client := newGockClient(t, "")

	gock.New(gockHost).
		Get("/api/v3/coins/bitcoin").
		MatchParam("market_data", "true").
		MatchParam("tickers", "false").
		Reply(200).
		JSON(`{
			"id":"bitcoin","symbol":"btc","name":"Bitcoin",
			"description":{"en":"  Bitcoin is the first decentralized currency. "},
			"links":{"homepage":["","http://www.bitcoin.org",""]},
			"genesis_date":"2009-01-03",
			"image":{"large":"https://img/btc-large.png"},
			"market_cap_rank":1,
			"last_updated":"2024-03-01T12:00:00.000Z",
			"market_data":{
				"current_price":{"usd":65000,"eur":60000},
				"market_cap":{"usd":1280000000000,"eur":1180000000000},
				"total_volume":{"usd":31000000000},
				"high_24h":{"usd":66000},
				"low_24h":{"usd":63000},
				"price_change_24h_in_currency":{"usd":1200.5},
				"price_change_percentage_24h_in_currency":{"usd":1.88},
				"ath":{"usd":73000},
				"atl":{"usd":67.81},
				"circulating_supply":19650000
			}
		}`)

	d, err := client.GetCoinDetails(context.Background(), "bitcoin", "USD")
	require.NoError(t, err)
	assert.Equal(t, "bitcoin", d.ID)
	assert.Equal(t, "BTC", d.Symbol)
	assert.Equal(t, "Bitcoin is the first decentralized currency.", d.Description)
	assert.Equal(t, "http://www.bitcoin.org", d.Homepage)
	assert.Equal(t, "2009-01-03", d.GenesisDate)
	assert.Equal(t, "usd", d.Currency)
	assert.Equal(t, 1, d.MarketCapRank)
	assert.Equal(t, 65000.0, d.CurrentPrice)
	assert.Equal(t, 1280000000000.0, d.MarketCap)
	assert.Equal(t, 66000.0, d.High24h)
	assert.Equal(t, 63000.0, d.Low24h)
	assert.Equal(t, 1200.5, d.PriceChange24h)
	assert.Equal(t, 1.88, d.PriceChangePercentage24h)
	assert.Equal(t, 67.81, d.ATL)
	assert.Equal(t, 19650000.0, d.CirculatingSupply)
	assert.True(t, gock.IsDone())
}

func TestClient_GetCoinDetails_EmptyID(t *testing.T) {
	client := NewClient(Options{})
	_, err := client.GetCoinDetails(context.Background(), "  ", "usd")
	assert.Error(t, err)
}

func TestParseCoinDetails_MissingCurrency(t *testing.T) {
	client := newGockClient(t, "")

	gock.New(gockHost).
		Get("/api/v3/coins/ethereum").
		Reply(200).
		JSON(`{"id":"ethereum","symbol":"eth","name":"Ethereum","market_data":{"current_price":{"usd":3500}}}`)

	d, err := client.GetCoinDetails(context.Background(), "ethereum", "krw")
	require.NoError(t, err)
	assert.Equal(t, "krw", d.Currency)
	assert.Zero(t, d.CurrentPrice)
	assert.Empty(t, d.Homepage)
}

func TestClient_SearchCoins(t *testing.T) {
	client := newGockClient(t, "")

	gock.New(gockHost).
		Get("/api/v3/search").
		MatchParam("query", "sol").
		Reply(200).
		JSON(`{"coins":[
			{"id":"solana","name":"Solana","api_symbol":"solana","symbol":"SOL","market_cap_rank":5,"thumb":"https://img/sol.png"},
			{"id":"solend","name":"Solend","symbol":"slnd","market_cap_rank":null,"thumb":""}
		],"exchanges":[],"categories":[]}`)

	results, err := client.SearchCoins(context.Background(), " sol ")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "solana", results[0].ID)
	assert.Equal(t, 5, results[0].MarketCapRank)
	assert.Equal(t, "SLND", results[1].Symbol)
	assert.Zero(t, results[1].MarketCapRank)
	assert.True(t, gock.IsDone())
}

func TestClient_SearchCoins_InvalidJSON(t *testing.T) {
	client := newGockClient(t, "")

	gock.New(gockHost).
		Get("/api/v3/search").
		Reply(200).
		BodyString("not json")

	_, err := client.SearchCoins(context.Background(), "x")
	assert.Error(t, err)
}
