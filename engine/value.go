package engine

import (
	"context"
	"fmt"
	"math/big"

	"synthd/crypto"
)

// UsdValue converts an asset amount (18-decimal fixed point) to the unit of
// account using the asset's configured feed: amount * price * 1e10 / 1e18.
// The feed reading is an 8-decimal integer; flooring division drops the
// remainder, undervaluing collateral rather than overvaluing it.
func (e *Engine) UsdValue(ctx context.Context, asset string, amount *big.Int) (*big.Int, error) {
	price, err := e.latestPrice(ctx, asset)
	if err != nil {
		return nil, err
	}
	if amount == nil {
		amount = big.NewInt(0)
	}
	scaled := new(big.Int).Mul(price, feedScaling)
	return mulDiv(amount, scaled, precision), nil
}

// collateralAmountForUsd inverts UsdValue: the asset quantity whose value
// equals usd at the current feed price, floored.
func (e *Engine) collateralAmountForUsd(ctx context.Context, asset string, usd *big.Int) (*big.Int, error) {
	price, err := e.latestPrice(ctx, asset)
	if err != nil {
		return nil, err
	}
	scaled := new(big.Int).Mul(price, feedScaling)
	return mulDiv(usd, precision, scaled), nil
}

func (e *Engine) latestPrice(ctx context.Context, asset string) (*big.Int, error) {
	feed, ok := e.feeds[asset]
	if !ok {
		return nil, ErrAssetNotApproved
	}
	price, err := feed.LatestPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine: read %s price feed: %w", asset, err)
	}
	return price, nil
}

// AccountCollateralValue sums the unit-of-account value of every collateral
// asset the account holds, at live prices. Linear in the number of configured
// assets; never cached.
func (e *Engine) AccountCollateralValue(ctx context.Context, account crypto.Address) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	position, err := e.loadPosition(account)
	if err != nil {
		return nil, err
	}
	return e.positionCollateralValue(ctx, position)
}

func (e *Engine) positionCollateralValue(ctx context.Context, position *Position) (*big.Int, error) {
	total := big.NewInt(0)
	for _, asset := range e.assets {
		amount := position.collateral(asset)
		if amount.Sign() == 0 {
			continue
		}
		value, err := e.UsdValue(ctx, asset, amount)
		if err != nil {
			return nil, err
		}
		total.Add(total, value)
	}
	return total, nil
}

// PositionView is a point-in-time copy of an account's position together
// with its derived health factor.
type PositionView struct {
	Account      crypto.Address
	Collateral   map[string]*big.Int
	Debt         *big.Int
	HealthFactor *big.Int
}

// PositionOf assembles the full position view under one lock, so a
// concurrent write cannot tear the snapshot into mismatched halves. Only
// nonzero collateral entries appear in the map.
func (e *Engine) PositionOf(ctx context.Context, account crypto.Address) (*PositionView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	position, err := e.loadPosition(account)
	if err != nil {
		return nil, err
	}
	ratio, err := e.positionHealthFactor(ctx, position)
	if err != nil {
		return nil, err
	}
	debt := position.Debt
	if debt == nil {
		debt = big.NewInt(0)
	}
	view := &PositionView{
		Account:      account,
		Collateral:   make(map[string]*big.Int),
		Debt:         new(big.Int).Set(debt),
		HealthFactor: ratio,
	}
	for _, asset := range e.assets {
		amount := position.collateral(asset)
		if amount.Sign() == 0 {
			continue
		}
		view.Collateral[asset] = new(big.Int).Set(amount)
	}
	return view, nil
}

// HealthFactor reports the account's solvency ratio in 18-decimal fixed
// point. Debt-free accounts return MaxHealthFactor: no amount of price
// movement can make them under-collateralized.
func (e *Engine) HealthFactor(ctx context.Context, account crypto.Address) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	position, err := e.loadPosition(account)
	if err != nil {
		return nil, err
	}
	return e.positionHealthFactor(ctx, position)
}

// positionHealthFactor evaluates the ratio against the supplied position,
// which lets the operation gates observe post-mutation working copies before
// anything is committed.
func (e *Engine) positionHealthFactor(ctx context.Context, position *Position) (*big.Int, error) {
	if position.Debt == nil || position.Debt.Sign() == 0 {
		return new(big.Int).Set(MaxHealthFactor), nil
	}
	value, err := e.positionCollateralValue(ctx, position)
	if err != nil {
		return nil, err
	}
	adjusted := mulDiv(value, liquidationThreshold, hundred)
	return mulDiv(adjusted, precision, position.Debt), nil
}

// checkHealth applies the post-condition gate shared by every debt-increasing
// or collateral-decreasing operation.
func (e *Engine) checkHealth(ctx context.Context, position *Position) error {
	ratio, err := e.positionHealthFactor(ctx, position)
	if err != nil {
		return err
	}
	if ratio.Cmp(MinHealthFactor) < 0 {
		return ErrHealthFactorBroken
	}
	return nil
}
