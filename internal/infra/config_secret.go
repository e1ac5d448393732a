package infra

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SecretConfig matches the structure of secrets/coingecko.yaml
type SecretConfig struct {
	API struct {
		CoinGecko struct {
			APIKey string `yaml:"api_key"`
		} `yaml:"coingecko"`
	} `yaml:"api"`
}

// LoadSecretConfig loads API keys from a separate yaml file.
// It returns error if file is missing (Fail Fast).
func LoadSecretConfig(path string) (*SecretConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret config: %w", err)
	}

	var cfg SecretConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse secret config: %w", err)
	}

	return &cfg, nil
}

// ApplySecrets fills the API key from secrets unless one is already configured
// (environment variables keep priority).
func (c *Config) ApplySecrets(s *SecretConfig) {
	if s == nil || c.API.CoinGecko.APIKey != "" {
		return
	}
	c.API.CoinGecko.APIKey = s.API.CoinGecko.APIKey
}
