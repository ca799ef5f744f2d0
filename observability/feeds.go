package observability

import (
	"context"
	"math/big"
)

// priceSource matches the oracle feed contract structurally so this package
// stays free of a dependency on the oracle package.
type priceSource interface {
	LatestPrice(ctx context.Context) (*big.Int, error)
}

// InstrumentedFeed counts failed reads of the wrapped price feed so operators
// can alert on a flapping upstream before positions go stale.
type InstrumentedFeed struct {
	asset string
	feed  priceSource
}

// InstrumentFeed wraps a price feed with failure accounting under the given
// asset label.
func InstrumentFeed(asset string, feed priceSource) *InstrumentedFeed {
	return &InstrumentedFeed{asset: asset, feed: feed}
}

// LatestPrice delegates to the wrapped feed, recording a feed-failure metric
// when the read errors.
func (f *InstrumentedFeed) LatestPrice(ctx context.Context) (*big.Int, error) {
	price, err := f.feed.LatestPrice(ctx)
	if err != nil {
		EngineMetrics().RecordFeedFailure(f.asset)
		return nil, err
	}
	return price, nil
}
