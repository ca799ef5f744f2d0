package events

import (
	"math/big"

	"synthd/crypto"
)

const (
	// TypeCollateralDeposited is emitted when collateral enters engine custody.
	TypeCollateralDeposited = "collateral.deposited"
	// TypeCollateralRedeemed is emitted when collateral is released back to an
	// account, whether by redemption or liquidation seizure.
	TypeCollateralRedeemed = "collateral.redeemed"
	// TypeDebtMinted is emitted when new debt tokens are minted against a
	// position.
	TypeDebtMinted = "debt.minted"
	// TypeDebtBurned is emitted when debt tokens are retired.
	TypeDebtBurned = "debt.burned"
	// TypeLiquidation is emitted when a third party repairs an
	// under-collateralized position.
	TypeLiquidation = "position.liquidated"
)

// CollateralDeposited records a successful collateral deposit.
type CollateralDeposited struct {
	Account crypto.Address
	Asset   string
	Amount  *big.Int
}

// EventType satisfies the events.Event interface.
func (CollateralDeposited) EventType() string { return TypeCollateralDeposited }

// Attributes satisfies the events.Event interface.
func (e CollateralDeposited) Attributes() map[string]string {
	return map[string]string{
		"account": e.Account.String(),
		"asset":   e.Asset,
		"amount":  amountString(e.Amount),
	}
}

// CollateralRedeemed records collateral leaving engine custody.
type CollateralRedeemed struct {
	Account crypto.Address
	Asset   string
	Amount  *big.Int
}

// EventType satisfies the events.Event interface.
func (CollateralRedeemed) EventType() string { return TypeCollateralRedeemed }

// Attributes satisfies the events.Event interface.
func (e CollateralRedeemed) Attributes() map[string]string {
	return map[string]string{
		"account": e.Account.String(),
		"asset":   e.Asset,
		"amount":  amountString(e.Amount),
	}
}

// DebtMinted records newly issued debt tokens.
type DebtMinted struct {
	Account crypto.Address
	Amount  *big.Int
}

// EventType satisfies the events.Event interface.
func (DebtMinted) EventType() string { return TypeDebtMinted }

// Attributes satisfies the events.Event interface.
func (e DebtMinted) Attributes() map[string]string {
	return map[string]string{
		"account": e.Account.String(),
		"amount":  amountString(e.Amount),
	}
}

// DebtBurned records retired debt tokens.
type DebtBurned struct {
	Account crypto.Address
	Amount  *big.Int
}

// EventType satisfies the events.Event interface.
func (DebtBurned) EventType() string { return TypeDebtBurned }

// Attributes satisfies the events.Event interface.
func (e DebtBurned) Attributes() map[string]string {
	return map[string]string{
		"account": e.Account.String(),
		"amount":  amountString(e.Amount),
	}
}

// Liquidation records a completed liquidation.
type Liquidation struct {
	Liquidator       crypto.Address
	Account          crypto.Address
	Asset            string
	DebtCovered      *big.Int
	CollateralSeized *big.Int
}

// EventType satisfies the events.Event interface.
func (Liquidation) EventType() string { return TypeLiquidation }

// Attributes satisfies the events.Event interface.
func (e Liquidation) Attributes() map[string]string {
	return map[string]string{
		"liquidator":       e.Liquidator.String(),
		"account":          e.Account.String(),
		"asset":            e.Asset,
		"debtCovered":      amountString(e.DebtCovered),
		"collateralSeized": amountString(e.CollateralSeized),
	}
}

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
