package engine

import "math/big"

// All engine arithmetic is integer fixed point. Amounts and USD values carry
// 18 fractional decimals; price feeds report 8 and are promoted by
// feedScaling. Division always floors, biasing rounding loss against the
// account and in favour of protocol solvency.
var (
	precision   = mustBigInt("1000000000000000000")  // 1e18
	feedScaling = mustBigInt("10000000000")          // 10^(18-8)
	hundred     = big.NewInt(100)

	// liquidationThreshold counts 50% of collateral value toward borrowing
	// power: positions must stay at least 200% over-collateralized.
	liquidationThreshold = big.NewInt(50)
	// liquidationBonus awards liquidators 10% extra collateral on top of the
	// debt-equivalent quantity they seize.
	liquidationBonus = big.NewInt(10)
)

// MinHealthFactor is the solvency floor: 1.0 in 18-decimal fixed point.
var MinHealthFactor = mustBigInt("1000000000000000000")

// MaxHealthFactor is the sentinel health factor for debt-free positions, the
// largest value a 256-bit word can hold. It keeps division out of the zero
// debt path while comparing above every real ratio.
var MaxHealthFactor = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

func mustBigInt(value string) *big.Int {
	v, ok := new(big.Int).SetString(value, 10)
	if !ok {
		panic("invalid big integer constant")
	}
	return v
}
