package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the synthd daemon configuration.
type Config struct {
	ListenAddress  string `toml:"ListenAddress"`
	MetricsAddress string `toml:"MetricsAddress"`
	DataDir        string `toml:"DataDir"`
	Environment    string `toml:"Environment"`
	RPCAuthToken   string `toml:"RPCAuthToken"`
	DebtSymbol     string `toml:"DebtSymbol"`

	Collateral []CollateralAsset     `toml:"collateral"`
	Feeds      map[string]FeedConfig `toml:"feeds"`
	Genesis    Genesis               `toml:"genesis"`
}

// CollateralAsset declares one approved collateral token and the feed that
// prices it.
type CollateralAsset struct {
	Symbol string `toml:"Symbol"`
	Feed   string `toml:"Feed"`
}

// FeedConfig describes a price feed. Static feeds carry a fixed 8-decimal
// integer price and exist for local development; http feeds poll an endpoint.
type FeedConfig struct {
	Type  string `toml:"Type"`
	Price string `toml:"Price,omitempty"`
	URL   string `toml:"URL,omitempty"`
}

// Genesis seeds token balances at first boot so local networks have funded
// accounts to work with.
type Genesis struct {
	Allocations []Allocation `toml:"allocations"`
}

// Allocation credits Amount (base units, decimal string) of Token to Address.
type Allocation struct {
	Address string `toml:"Address"`
	Token   string `toml:"Token"`
	Amount  string `toml:"Amount"`
}

// Load loads the configuration from the given path, writing a default file
// when none exists.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.ListenAddress) == "" {
		cfg.ListenAddress = ":8545"
	}
	if strings.TrimSpace(cfg.MetricsAddress) == "" {
		cfg.MetricsAddress = ":9090"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./synthd-data"
	}
	if strings.TrimSpace(cfg.Environment) == "" {
		cfg.Environment = "dev"
	}
	if strings.TrimSpace(cfg.DebtSymbol) == "" {
		cfg.DebtSymbol = "SUSD"
	}
	if cfg.Feeds == nil {
		cfg.Feeds = map[string]FeedConfig{}
	}
}

// createDefault creates and saves a default configuration file with a single
// statically priced collateral asset.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		ListenAddress:  ":8545",
		MetricsAddress: ":9090",
		DataDir:        "./synthd-data",
		Environment:    "dev",
		DebtSymbol:     "SUSD",
		Collateral: []CollateralAsset{
			{Symbol: "ETH", Feed: "eth-usd"},
		},
		Feeds: map[string]FeedConfig{
			"eth-usd": {Type: "static", Price: "200000000000"},
		},
	}

	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
