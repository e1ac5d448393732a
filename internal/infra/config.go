package infra

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIURL = "https://api.coingecko.com/api/v3"
)

// Config는 애플리케이션의 모든 설정을 담습니다.
// LoadConfig로 로드된 후에 환경 변수를 통해 민감 내용을 덮어씁니다.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	API struct {
		CoinGecko struct {
			BaseURL    string `yaml:"base_url" validate:"required,url"`
			APIKey     string `yaml:"api_key"`
			Retries    int    `yaml:"retries" validate:"min=1,max=10"`
			TimeoutSec int    `yaml:"timeout_sec" validate:"min=1"`
		} `yaml:"coingecko"`
	} `yaml:"api"`

	Market struct {
		Currency           string `yaml:"currency" validate:"required"`
		PageSize           int    `yaml:"page_size" validate:"min=1,max=250"`
		HighlightsSnapshot int    `yaml:"highlights_snapshot" validate:"min=1,max=250"`
		HighlightsLimit    int    `yaml:"highlights_limit" validate:"min=1"`
	} `yaml:"market"`

	UI struct {
		SearchDebounceMS int      `yaml:"search_debounce_ms" validate:"min=0"`
		Watchlist        []string `yaml:"watchlist"`
	} `yaml:"ui"`

	Logging struct {
		Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
}

// envOverrides lists the variables that win over the config file.
type envOverrides struct {
	APIURL   string `env:"COINGECKO_API_URL"`
	APIKey   string `env:"COINGECKO_API_KEY"`
	Currency string `env:"COINBOARD_CURRENCY"`
	LogLevel string `env:"COINBOARD_LOG_LEVEL"`
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	var cfg Config
	cfg.App.Name = AppName
	cfg.App.Version = "dev"
	cfg.API.CoinGecko.BaseURL = DefaultAPIURL
	cfg.API.CoinGecko.Retries = 3
	cfg.API.CoinGecko.TimeoutSec = 10
	cfg.Market.Currency = "usd"
	cfg.Market.PageSize = 50
	cfg.Market.HighlightsSnapshot = 100
	cfg.Market.HighlightsLimit = 10
	cfg.UI.SearchDebounceMS = 300
	cfg.Logging.Level = "warn"
	return &cfg
}

// LoadConfig는 설정 파일을 읽고 파싱합니다.
// A missing file is not an error: defaults plus environment are used instead.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// defaults
	default:
		return nil, err
	}

	// 4원칙: 보안 우선 - 환경 변수 오버라이드 지원
	if err := overrideWithEnv(cfg); err != nil {
		return nil, err
	}

	// 5원칙: 설정 유효성 검사
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// Timeout is the per-attempt HTTP timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.CoinGecko.TimeoutSec) * time.Second
}

// SearchDebounce is the quiet window before a search query is applied.
func (c *Config) SearchDebounce() time.Duration {
	return time.Duration(c.UI.SearchDebounceMS) * time.Millisecond
}

// overrideWithEnv는 환경 변수가 존재할 경우 설정 값을 덮어씁니다.
// Rule #5: 환경 변수는 설정 파일보다 우선합니다 (보안 강화).
// A .env file in the working directory is loaded first; real environment variables win over it.
func overrideWithEnv(cfg *Config) error {
	// Security Warning: Log if secrets found in config file
	if cfg.API.CoinGecko.APIKey != "" {
		// Using fmt instead of slog: the logger is configured from this very config
		fmt.Fprintln(os.Stderr, "⚠️  SECURITY WARNING: API key found in config file.")
		fmt.Fprintln(os.Stderr, "   Recommendation: Use COINGECKO_API_KEY instead")
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	var ov envOverrides
	if err := env.Parse(&ov); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}

	if ov.APIURL != "" {
		cfg.API.CoinGecko.BaseURL = ov.APIURL
	}
	if ov.APIKey != "" {
		cfg.API.CoinGecko.APIKey = ov.APIKey
	}
	if ov.Currency != "" {
		cfg.Market.Currency = ov.Currency
	}
	if ov.LogLevel != "" {
		cfg.Logging.Level = ov.LogLevel
	}
	return nil
}
