package config

import (
	"fmt"
	"math/big"
	"net/url"
	"strings"
)

// Validate checks structural consistency: every collateral asset must name an
// existing feed, every referenced feed must be well formed, and genesis
// allocations must parse as non-negative integers.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil configuration")
	}
	if strings.TrimSpace(cfg.DebtSymbol) == "" {
		return fmt.Errorf("config: DebtSymbol required")
	}

	seen := make(map[string]struct{}, len(cfg.Collateral))
	for i, asset := range cfg.Collateral {
		symbol := strings.TrimSpace(asset.Symbol)
		if symbol == "" {
			return fmt.Errorf("config: collateral[%d]: Symbol required", i)
		}
		if symbol == strings.TrimSpace(cfg.DebtSymbol) {
			return fmt.Errorf("config: collateral %s collides with DebtSymbol", symbol)
		}
		if _, dup := seen[symbol]; dup {
			return fmt.Errorf("config: duplicate collateral asset %s", symbol)
		}
		seen[symbol] = struct{}{}

		feedID := strings.TrimSpace(asset.Feed)
		if feedID == "" {
			return fmt.Errorf("config: collateral %s: Feed required", symbol)
		}
		feed, ok := cfg.Feeds[feedID]
		if !ok {
			return fmt.Errorf("config: collateral %s references unknown feed %q", symbol, feedID)
		}
		if err := validateFeed(feedID, feed); err != nil {
			return err
		}
	}

	for i, alloc := range cfg.Genesis.Allocations {
		if strings.TrimSpace(alloc.Address) == "" {
			return fmt.Errorf("config: genesis allocation %d: Address required", i)
		}
		if strings.TrimSpace(alloc.Token) == "" {
			return fmt.Errorf("config: genesis allocation %d: Token required", i)
		}
		amount, ok := new(big.Int).SetString(strings.TrimSpace(alloc.Amount), 10)
		if !ok || amount.Sign() < 0 {
			return fmt.Errorf("config: genesis allocation %d: invalid Amount %q", i, alloc.Amount)
		}
	}
	return nil
}

func validateFeed(id string, feed FeedConfig) error {
	switch strings.TrimSpace(feed.Type) {
	case "static":
		price, ok := new(big.Int).SetString(strings.TrimSpace(feed.Price), 10)
		if !ok || price.Sign() <= 0 {
			return fmt.Errorf("config: feed %s: static feeds need a positive integer Price", id)
		}
	case "http":
		endpoint := strings.TrimSpace(feed.URL)
		if endpoint == "" {
			return fmt.Errorf("config: feed %s: http feeds need a URL", id)
		}
		if _, err := url.ParseRequestURI(endpoint); err != nil {
			return fmt.Errorf("config: feed %s: invalid URL: %w", id, err)
		}
	default:
		return fmt.Errorf("config: feed %s: unknown Type %q", id, feed.Type)
	}
	return nil
}
