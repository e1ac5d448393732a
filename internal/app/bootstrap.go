package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"coinboard/internal/domain"
	"coinboard/internal/engine"
	"coinboard/internal/infra"
	"coinboard/internal/infra/coingecko"
)

// Options are the command-line overrides applied on top of the config file.
type Options struct {
	ConfigPath string // empty: resolved via infra.ResolveConfigPath
	LogLevel   string
	Currency   string
}

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config    *infra.Config
	Client    *coingecko.Client
	Watchlist *domain.Watchlist
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads configuration, installs the logger and builds the API client.
func (b *Bootstrap) Initialize(opts Options) error {
	// 1. Load Config (Dynamic Path Resolution)
	path := opts.ConfigPath
	if path == "" {
		path = infra.ResolveConfigPath()
	}
	cfg, err := infra.LoadConfig(path)
	if err != nil {
		return err // Let main handle the error
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	if opts.Currency != "" {
		cfg.Market.Currency = strings.ToLower(opts.Currency)
	}
	b.Config = cfg

	// 2. Setup Logger
	slog.SetDefault(infra.NewLogger(cfg))
	slog.Debug("🚀 Bootstrapping coinboard...", slog.String("config", path))

	// 3. Optional secrets file (env and config keep priority)
	if err := b.applySecrets(infra.ResolveSecretPath()); err != nil {
		return err
	}

	// 4. API client
	b.Client = coingecko.NewClientFromConfig(cfg)
	b.Watchlist = domain.NewWatchlist(cfg.UI.Watchlist...)

	slog.Debug("✅ CoinGecko client ready",
		slog.String("base_url", cfg.API.CoinGecko.BaseURL),
		slog.Bool("api_key", cfg.API.CoinGecko.APIKey != ""),
		slog.Int("retries", cfg.API.CoinGecko.Retries))
	return nil
}

func (b *Bootstrap) applySecrets(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	secrets, err := infra.LoadSecretConfig(path)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}
	b.Config.ApplySecrets(secrets)
	slog.Debug("🔐 Secrets applied", slog.String("path", path))
	return nil
}

// NewCoinList builds the market table controller from config.
func (b *Bootstrap) NewCoinList(onChange func(engine.CoinListState)) *engine.CoinList {
	return engine.NewCoinList(b.Client, engine.CoinListOptions{
		PageSize: b.Config.Market.PageSize,
		Currency: b.Config.Market.Currency,
		OnChange: onChange,
	})
}

// NewHighlights builds the highlights controller from config.
// The snapshot is always priced in USD, whatever the table currency is.
func (b *Bootstrap) NewHighlights(onChange func(engine.HighlightsState)) *engine.Highlights {
	return engine.NewHighlights(b.Client, engine.HighlightsOptions{
		SnapshotSize: b.Config.Market.HighlightsSnapshot,
		Limit:        b.Config.Market.HighlightsLimit,
		OnChange:     onChange,
	})
}
