package engine

import (
	"fmt"
	"math/big"
	"sync"

	"synthd/core/events"
	"synthd/crypto"
	"synthd/oracle"
	"synthd/token"
)

// Engine is the accounting and liquidation core. It owns the per-account
// collateral/debt ledger, converts collateral to the 18-decimal unit of
// account through injected price feeds, and enforces the minimum health
// factor on every operation that could weaken a position.
//
// Public operations execute as indivisible units: the mutex gives each one an
// exclusive, fully-updated view of the ledger, and each either commits all of
// its state changes or none of them.
type Engine struct {
	mu sync.Mutex

	state   State
	custody crypto.Address

	// Configuration registry: populated at construction, immutable after.
	assets  []string
	feeds   map[string]oracle.PriceFeed
	ledgers map[string]token.Ledger

	debt    token.Ledger
	minter  *token.MinterCap
	emitter events.Emitter
}

// NewEngine constructs the engine from parallel collateral-ledger and
// price-feed lists plus the debt token's minter capability. The two lists
// must be the same length; their order fixes the registry enumeration order.
func NewEngine(custody crypto.Address, collateral []token.Ledger, feeds []oracle.PriceFeed, minter *token.MinterCap) (*Engine, error) {
	if len(collateral) != len(feeds) {
		return nil, ErrFeedListMismatch
	}
	if custody.IsZero() {
		return nil, fmt.Errorf("engine: custody address required")
	}
	if minter == nil || minter.Ledger() == nil {
		return nil, fmt.Errorf("engine: debt token minter capability required")
	}

	e := &Engine{
		custody: custody,
		assets:  make([]string, 0, len(collateral)),
		feeds:   make(map[string]oracle.PriceFeed, len(feeds)),
		ledgers: make(map[string]token.Ledger, len(collateral)),
		debt:    minter.Ledger(),
		minter:  minter,
		emitter: events.NoopEmitter{},
	}
	for i, ledger := range collateral {
		if ledger == nil || feeds[i] == nil {
			return nil, fmt.Errorf("engine: nil collateral ledger or price feed at index %d", i)
		}
		symbol := ledger.Symbol()
		if _, exists := e.ledgers[symbol]; exists {
			return nil, fmt.Errorf("engine: duplicate collateral asset %q", symbol)
		}
		e.assets = append(e.assets, symbol)
		e.ledgers[symbol] = ledger
		e.feeds[symbol] = feeds[i]
	}
	return e, nil
}

// SetState wires the engine to its persistence layer.
func (e *Engine) SetState(state State) { e.state = state }

// SetEmitter installs the event sink used for successful operations.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if e == nil || emitter == nil {
		return
	}
	e.emitter = emitter
}

// CollateralAssets lists the approved collateral assets in registration order.
func (e *Engine) CollateralAssets() []string {
	return append([]string(nil), e.assets...)
}

// PriceFeed returns the configured feed for an asset.
func (e *Engine) PriceFeed(asset string) (oracle.PriceFeed, error) {
	feed, ok := e.feeds[asset]
	if !ok {
		return nil, ErrAssetNotApproved
	}
	return feed, nil
}

// DebtToken returns the debt-token ledger the engine mints and burns against.
func (e *Engine) DebtToken() token.Ledger { return e.debt }

// CollateralOf returns the recorded collateral balance for an account/asset
// pair.
func (e *Engine) CollateralOf(account crypto.Address, asset string) (*big.Int, error) {
	if _, ok := e.ledgers[asset]; !ok {
		return nil, ErrAssetNotApproved
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	position, err := e.loadPosition(account)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(position.collateral(asset)), nil
}

// DebtOf returns the outstanding debt-token amount minted against an account.
func (e *Engine) DebtOf(account crypto.Address) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	position, err := e.loadPosition(account)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(position.Debt), nil
}

func validAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrAmountMustBePositive
	}
	return nil
}
