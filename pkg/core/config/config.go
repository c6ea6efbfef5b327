// Package config carries the runtime configuration: server address,
// vendor client tuning, data file locations and the default valuation
// scenario. Everything has a working default so the API runs with no
// config file at all.
package config

import (
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v2"

	"stockval/pkg/core/valuation"
)

type Config struct {
	Server   ServerConfig          `yaml:"server"`
	Provider ProviderConfig        `yaml:"provider"`
	Data     DataConfig            `yaml:"data"`
	Defaults valuation.Assumptions `yaml:"defaults"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// ProviderConfig tunes the market data client. The rate limit protects
// the vendor endpoint; bursts above it queue instead of failing.
type ProviderConfig struct {
	BaseURL         string  `yaml:"base_url"`
	UserAgent       string  `yaml:"user_agent"`
	TimeoutSeconds  int     `yaml:"timeout_seconds"`
	CacheTTLMinutes int     `yaml:"cache_ttl_minutes"`
	RatePerSecond   float64 `yaml:"rate_per_second"`
	Burst           int     `yaml:"burst"`
}

type DataConfig struct {
	ListingCSV     string `yaml:"listing_csv"`
	IndustriesCSV  string `yaml:"industries_csv"`
	IndexPath      string `yaml:"index_path"`
	CacheDir       string `yaml:"cache_dir"`
	FieldOverrides string `yaml:"field_overrides"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Provider: ProviderConfig{
			BaseURL:         "https://trading.vietcap.com.vn/api",
			UserAgent:       "StockVal/1.0 (contact@example.com)",
			TimeoutSeconds:  30,
			CacheTTLMinutes: 15,
			RatePerSecond:   5,
			Burst:           10,
		},
		Data: DataConfig{
			ListingCSV:    "data/listing.csv",
			IndustriesCSV: "data/top_industries.csv",
			IndexPath:     ".cache/stockval/symbols.bleve",
			CacheDir:      ".cache/stockval/bundles",
		},
		Defaults: valuation.DefaultAssumptions(),
	}
}

// Load reads the YAML file at path layered over the defaults. A missing
// file is fine, the defaults serve; a file that exists but does not parse
// is reported and ignored.
func Load(path string) Config {
	cfg := Default()
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return cfg
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		fmt.Printf("[CONFIG] Failed to parse %s: %v (using defaults)\n", path, err)
		return Default()
	}
	return cfg
}
