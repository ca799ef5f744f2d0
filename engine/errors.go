package engine

import "errors"

var (
	// ErrFeedListMismatch fails construction when the collateral asset list
	// and the price feed list differ in length.
	ErrFeedListMismatch = errors.New("engine: collateral asset and price feed lists must be the same length")
	// ErrAmountMustBePositive rejects zero or negative operation amounts.
	ErrAmountMustBePositive = errors.New("engine: amount must be positive")
	// ErrAssetNotApproved rejects assets absent from the configuration registry.
	ErrAssetNotApproved = errors.New("engine: asset not approved as collateral")
	// ErrInvalidAccount rejects the zero address as an operation target.
	ErrInvalidAccount = errors.New("engine: invalid account address")
	// ErrArithmeticUnderflow marks a subtraction that would go negative:
	// redeeming or burning more than the ledger records. It aborts the
	// operation rather than clamping.
	ErrArithmeticUnderflow = errors.New("engine: arithmetic underflow")
	// ErrTransferFailed marks a failed external asset transfer.
	ErrTransferFailed = errors.New("engine: asset transfer failed")
	// ErrMintFailed marks a failed debt-token mint.
	ErrMintFailed = errors.New("engine: debt token mint failed")
	// ErrBurnFailed marks a failed debt-token burn.
	ErrBurnFailed = errors.New("engine: debt token burn failed")
	// ErrHealthFactorBroken rejects any operation that would leave the acting
	// account below the minimum health factor.
	ErrHealthFactorBroken = errors.New("engine: health factor below minimum")
	// ErrHealthFactorOK rejects liquidation of a solvent position.
	ErrHealthFactorOK = errors.New("engine: health factor not below minimum, liquidation not permitted")
	// ErrHealthFactorNotImproved rejects liquidations that fail to strictly
	// raise the target position's health factor.
	ErrHealthFactorNotImproved = errors.New("engine: liquidation did not improve health factor")
)
