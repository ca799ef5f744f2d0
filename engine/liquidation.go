package engine

import (
	"context"
	"fmt"
	"math/big"

	"synthd/core/events"
	"synthd/crypto"
)

// Liquidate lets a third party repay debtToCover of an under-collateralized
// account's debt in exchange for the equivalent quantity of collateralAsset
// plus a 10% bonus. The target's health factor must be below the minimum
// before, and strictly higher after; a liquidation that does not improve
// solvency is rejected outright.
//
// Precondition order follows the protocol: asset approval, target identity,
// amount positivity, then the solvency check.
func (e *Engine) Liquidate(ctx context.Context, liquidator crypto.Address, collateralAsset string, account crypto.Address, debtToCover *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ledger, ok := e.ledgers[collateralAsset]
	if !ok {
		return ErrAssetNotApproved
	}
	if account.IsZero() {
		return ErrInvalidAccount
	}
	if err := validAmount(debtToCover); err != nil {
		return err
	}

	position, err := e.loadPosition(account)
	if err != nil {
		return err
	}
	working := position.Clone()

	startFactor, err := e.positionHealthFactor(ctx, working)
	if err != nil {
		return err
	}
	if startFactor.Cmp(MinHealthFactor) >= 0 {
		return ErrHealthFactorOK
	}

	// Convert the covered debt into collateral terms and add the incentive.
	equivalent, err := e.collateralAmountForUsd(ctx, collateralAsset, debtToCover)
	if err != nil {
		return err
	}
	bonus := mulDiv(equivalent, liquidationBonus, hundred)
	seized := new(big.Int).Add(equivalent, bonus)

	newCollateral, err := checkedSub(working.collateral(collateralAsset), seized)
	if err != nil {
		return err
	}
	newDebt, err := checkedSub(working.Debt, debtToCover)
	if err != nil {
		return err
	}
	working.Collateral[collateralAsset] = newCollateral
	working.Debt = newDebt

	endFactor, err := e.positionHealthFactor(ctx, working)
	if err != nil {
		return err
	}
	if endFactor.Cmp(startFactor) <= 0 {
		return ErrHealthFactorNotImproved
	}

	// The liquidator spends debt tokens but their own position is untouched;
	// the gate still applies in case they are simultaneously a borrower.
	if liquidator.Equal(account) {
		if endFactor.Cmp(MinHealthFactor) < 0 {
			return ErrHealthFactorBroken
		}
	} else {
		liquidatorPosition, err := e.loadPosition(liquidator)
		if err != nil {
			return err
		}
		if err := e.checkHealth(ctx, liquidatorPosition); err != nil {
			return err
		}
	}

	if err := e.debt.Transfer(liquidator, e.custody, debtToCover); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	if err := ledger.Transfer(e.custody, liquidator, seized); err != nil {
		_ = e.debt.Transfer(e.custody, liquidator, debtToCover)
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	if err := e.minter.Burn(e.custody, debtToCover); err != nil {
		_ = ledger.Transfer(liquidator, e.custody, seized)
		_ = e.debt.Transfer(e.custody, liquidator, debtToCover)
		return fmt.Errorf("%w: %v", ErrBurnFailed, err)
	}
	if err := e.state.PutPosition(working); err != nil {
		// Undo the whole exchange: seized collateral back to custody, the
		// liquidator's repayment re-minted.
		_ = ledger.Transfer(liquidator, e.custody, seized)
		_ = e.minter.Mint(liquidator, debtToCover)
		return err
	}

	e.emitter.Emit(events.CollateralRedeemed{Account: account, Asset: collateralAsset, Amount: seized})
	e.emitter.Emit(events.Liquidation{
		Liquidator:       liquidator,
		Account:          account,
		Asset:            collateralAsset,
		DebtCovered:      debtToCover,
		CollateralSeized: seized,
	})
	return nil
}
