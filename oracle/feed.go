package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"
)

// FeedDecimals is the fractional precision every feed reports in. The engine's
// USD conversion assumes this scale and promotes readings to 18 decimals.
const FeedDecimals = 8

// ErrInvalidPrice indicates a feed returned a zero or negative reading that
// cannot be used for collateral valuation.
var ErrInvalidPrice = errors.New("oracle: reported price is not positive")

// PriceFeed resolves the latest raw price for a single asset, expressed as an
// integer with FeedDecimals fractional digits. Implementations trust the
// upstream source; there is deliberately no staleness or deviation check on
// this path.
type PriceFeed interface {
	LatestPrice(ctx context.Context) (*big.Int, error)
}

// StaticFeed serves a fixed price from memory. It backs tests, incident
// overrides, and dev deployments where no upstream feed exists.
type StaticFeed struct {
	mu    sync.RWMutex
	price *big.Int
}

// NewStaticFeed constructs a feed pinned to the supplied raw price.
func NewStaticFeed(price *big.Int) *StaticFeed {
	f := &StaticFeed{price: big.NewInt(0)}
	if price != nil {
		f.price = new(big.Int).Set(price)
	}
	return f
}

// SetPrice replaces the served price.
func (f *StaticFeed) SetPrice(price *big.Int) {
	if f == nil || price == nil {
		return
	}
	f.mu.Lock()
	f.price = new(big.Int).Set(price)
	f.mu.Unlock()
}

// LatestPrice returns the pinned price.
func (f *StaticFeed) LatestPrice(context.Context) (*big.Int, error) {
	if f == nil {
		return nil, fmt.Errorf("static feed not configured")
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.price.Sign() <= 0 {
		return nil, ErrInvalidPrice
	}
	return new(big.Int).Set(f.price), nil
}

// HTTPDoer abstracts http.Client for ease of testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPFeed polls a JSON price endpoint. The expected payload is
// {"price":"200000000000"} with the price in FeedDecimals fixed point.
type HTTPFeed struct {
	client   HTTPDoer
	endpoint string

	mu           sync.Mutex
	lastObserved time.Time
}

// NewHTTPFeed constructs an HTTP feed adapter. When the client is nil
// http.DefaultClient is used.
func NewHTTPFeed(client HTTPDoer, endpoint string) (*HTTPFeed, error) {
	ep := strings.TrimSpace(endpoint)
	if ep == "" {
		return nil, fmt.Errorf("http feed: endpoint required")
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFeed{client: client, endpoint: ep}, nil
}

// LatestPrice fetches the current reading from the upstream endpoint.
func (f *HTTPFeed) LatestPrice(ctx context.Context) (*big.Int, error) {
	if f == nil {
		return nil, fmt.Errorf("http feed not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("http feed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var payload struct {
		Price string `json:"price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("http feed: decode: %w", err)
	}
	raw := strings.TrimSpace(payload.Price)
	if raw == "" {
		return nil, fmt.Errorf("http feed: empty price")
	}
	price, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("http feed: invalid price %q", payload.Price)
	}
	if price.Sign() <= 0 {
		return nil, ErrInvalidPrice
	}
	f.mu.Lock()
	f.lastObserved = time.Now()
	f.mu.Unlock()
	return price, nil
}

// LastObserved reports when the feed last returned a usable reading. This is
// operator telemetry only; the engine never gates on it.
func (f *HTTPFeed) LastObserved() time.Time {
	if f == nil {
		return time.Time{}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastObserved
}
