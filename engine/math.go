package engine

import "math/big"

// checkedSub returns a-b, or ErrArithmeticUnderflow when the result would be
// negative. Ledger quantities are unsigned by contract; going below zero is a
// hard fault, never a clamp.
func checkedSub(a, b *big.Int) (*big.Int, error) {
	if a == nil || b == nil || a.Cmp(b) < 0 {
		return nil, ErrArithmeticUnderflow
	}
	return new(big.Int).Sub(a, b), nil
}

// mulDiv computes a*b/denom with flooring integer division.
func mulDiv(a, b, denom *big.Int) *big.Int {
	product := new(big.Int).Mul(a, b)
	return product.Quo(product, denom)
}
