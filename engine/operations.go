package engine

import (
	"context"
	"fmt"
	"math/big"

	"synthd/core/events"
	"synthd/crypto"
)

// DepositCollateral transfers amount of asset from the account into engine
// custody and credits the position. Collateral can only raise a health
// factor, so no gate runs here.
func (e *Engine) DepositCollateral(ctx context.Context, account crypto.Address, asset string, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.depositCollateral(ctx, account, asset, amount)
}

// MintDebt issues amount of debt token against the account's collateral,
// rejecting the whole operation if the resulting position would fall below
// the minimum health factor.
func (e *Engine) MintDebt(ctx context.Context, account crypto.Address, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mintDebt(ctx, account, amount)
}

// RedeemCollateral releases amount of asset from the position back to the
// account, subject to the health-factor gate.
func (e *Engine) RedeemCollateral(ctx context.Context, account crypto.Address, asset string, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.redeemCollateral(ctx, account, asset, amount)
}

// BurnDebt pulls amount of debt token from the account, retires it, and
// reduces the recorded debt. Debt reduction cannot weaken a position, so no
// gate runs here.
func (e *Engine) BurnDebt(ctx context.Context, account crypto.Address, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.burnDebt(ctx, account, amount)
}

// DepositCollateralAndMintDebt performs deposit and mint as one atomic unit
// with the union of both operations' preconditions.
func (e *Engine) DepositCollateralAndMintDebt(ctx context.Context, account crypto.Address, asset string, collateralAmount, debtAmount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := validAmount(collateralAmount); err != nil {
		return err
	}
	if err := validAmount(debtAmount); err != nil {
		return err
	}
	ledger, ok := e.ledgers[asset]
	if !ok {
		return ErrAssetNotApproved
	}

	position, err := e.loadPosition(account)
	if err != nil {
		return err
	}
	working := position.Clone()
	working.Collateral[asset] = new(big.Int).Add(working.collateral(asset), collateralAmount)
	working.Debt = new(big.Int).Add(working.Debt, debtAmount)
	if err := e.checkHealth(ctx, working); err != nil {
		return err
	}

	if err := ledger.Transfer(account, e.custody, collateralAmount); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	if err := e.minter.Mint(account, debtAmount); err != nil {
		// Return the collateral taken in before surfacing the failure.
		_ = ledger.Transfer(e.custody, account, collateralAmount)
		return fmt.Errorf("%w: %v", ErrMintFailed, err)
	}
	if err := e.state.PutPosition(working); err != nil {
		// Nothing was recorded, so both external moves come back.
		_ = e.minter.Burn(account, debtAmount)
		_ = ledger.Transfer(e.custody, account, collateralAmount)
		return err
	}
	e.emitter.Emit(events.CollateralDeposited{Account: account, Asset: asset, Amount: collateralAmount})
	e.emitter.Emit(events.DebtMinted{Account: account, Amount: debtAmount})
	return nil
}

// RedeemCollateralForDebt burns debtAmount and redeems collateralAmount as
// one atomic unit with the union of both operations' preconditions.
func (e *Engine) RedeemCollateralForDebt(ctx context.Context, account crypto.Address, asset string, collateralAmount, debtAmount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := validAmount(collateralAmount); err != nil {
		return err
	}
	if err := validAmount(debtAmount); err != nil {
		return err
	}
	ledger, ok := e.ledgers[asset]
	if !ok {
		return ErrAssetNotApproved
	}

	position, err := e.loadPosition(account)
	if err != nil {
		return err
	}
	working := position.Clone()
	newDebt, err := checkedSub(working.Debt, debtAmount)
	if err != nil {
		return err
	}
	newCollateral, err := checkedSub(working.collateral(asset), collateralAmount)
	if err != nil {
		return err
	}
	working.Debt = newDebt
	working.Collateral[asset] = newCollateral
	if err := e.checkHealth(ctx, working); err != nil {
		return err
	}

	if err := e.debt.Transfer(account, e.custody, debtAmount); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	if err := e.minter.Burn(e.custody, debtAmount); err != nil {
		_ = e.debt.Transfer(e.custody, account, debtAmount)
		return fmt.Errorf("%w: %v", ErrBurnFailed, err)
	}
	if err := ledger.Transfer(e.custody, account, collateralAmount); err != nil {
		// The debt is already burned; restore it so the caller is whole.
		_ = e.minter.Mint(account, debtAmount)
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	if err := e.state.PutPosition(working); err != nil {
		_ = ledger.Transfer(account, e.custody, collateralAmount)
		_ = e.minter.Mint(account, debtAmount)
		return err
	}
	e.emitter.Emit(events.DebtBurned{Account: account, Amount: debtAmount})
	e.emitter.Emit(events.CollateralRedeemed{Account: account, Asset: asset, Amount: collateralAmount})
	return nil
}

// Validation runs in a fixed order on every path: amount positivity first,
// then asset approval, then (where relevant) account identity.
func (e *Engine) depositCollateral(_ context.Context, account crypto.Address, asset string, amount *big.Int) error {
	if err := validAmount(amount); err != nil {
		return err
	}
	ledger, ok := e.ledgers[asset]
	if !ok {
		return ErrAssetNotApproved
	}

	position, err := e.loadPosition(account)
	if err != nil {
		return err
	}
	working := position.Clone()
	working.Collateral[asset] = new(big.Int).Add(working.collateral(asset), amount)

	if err := ledger.Transfer(account, e.custody, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	if err := e.state.PutPosition(working); err != nil {
		// The transfer landed but the record did not; give the funds back.
		_ = ledger.Transfer(e.custody, account, amount)
		return err
	}
	e.emitter.Emit(events.CollateralDeposited{Account: account, Asset: asset, Amount: amount})
	return nil
}

func (e *Engine) mintDebt(ctx context.Context, account crypto.Address, amount *big.Int) error {
	if err := validAmount(amount); err != nil {
		return err
	}

	position, err := e.loadPosition(account)
	if err != nil {
		return err
	}
	working := position.Clone()
	working.Debt = new(big.Int).Add(working.Debt, amount)

	// The gate sees the ledger as it would be after the mint; nothing is
	// committed until it passes.
	if err := e.checkHealth(ctx, working); err != nil {
		return err
	}
	if err := e.minter.Mint(account, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrMintFailed, err)
	}
	if err := e.state.PutPosition(working); err != nil {
		// Unrecorded debt is unbacked debt; retire the freshly minted tokens.
		_ = e.minter.Burn(account, amount)
		return err
	}
	e.emitter.Emit(events.DebtMinted{Account: account, Amount: amount})
	return nil
}

func (e *Engine) redeemCollateral(ctx context.Context, account crypto.Address, asset string, amount *big.Int) error {
	if err := validAmount(amount); err != nil {
		return err
	}
	ledger, ok := e.ledgers[asset]
	if !ok {
		return ErrAssetNotApproved
	}

	position, err := e.loadPosition(account)
	if err != nil {
		return err
	}
	working := position.Clone()
	newCollateral, err := checkedSub(working.collateral(asset), amount)
	if err != nil {
		return err
	}
	working.Collateral[asset] = newCollateral

	if err := e.checkHealth(ctx, working); err != nil {
		return err
	}
	if err := ledger.Transfer(e.custody, account, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	if err := e.state.PutPosition(working); err != nil {
		// The ledger still records the full balance; reclaim the payout so
		// it cannot be redeemed twice.
		_ = ledger.Transfer(account, e.custody, amount)
		return err
	}
	e.emitter.Emit(events.CollateralRedeemed{Account: account, Asset: asset, Amount: amount})
	return nil
}

func (e *Engine) burnDebt(_ context.Context, account crypto.Address, amount *big.Int) error {
	if err := validAmount(amount); err != nil {
		return err
	}

	position, err := e.loadPosition(account)
	if err != nil {
		return err
	}
	working := position.Clone()
	newDebt, err := checkedSub(working.Debt, amount)
	if err != nil {
		return err
	}
	working.Debt = newDebt

	if err := e.debt.Transfer(account, e.custody, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	if err := e.minter.Burn(e.custody, amount); err != nil {
		_ = e.debt.Transfer(e.custody, account, amount)
		return fmt.Errorf("%w: %v", ErrBurnFailed, err)
	}
	if err := e.state.PutPosition(working); err != nil {
		// The tokens are gone but the debt still stands; reissue them.
		_ = e.minter.Mint(account, amount)
		return err
	}
	e.emitter.Emit(events.DebtBurned{Account: account, Amount: amount})
	return nil
}
