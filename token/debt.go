package token

import (
	"errors"
	"math/big"
	"sync"

	"github.com/holiman/uint256"

	"synthd/crypto"
)

var (
	// ErrMinterAlreadyIssued guards the single-capability invariant: exactly
	// one component may ever hold mint/burn authority over the debt token.
	ErrMinterAlreadyIssued = errors.New("token: minter capability already issued")
	// ErrSupplyUnderflow rejects burns larger than the recorded balance or
	// total supply.
	ErrSupplyUnderflow = errors.New("token: burn exceeds supply")
)

// DebtToken is the synthetic stablecoin ledger. It behaves as a regular
// fungible ledger for holders, while issuance and retirement are reachable
// only through the MinterCap handle issued once at construction time.
type DebtToken struct {
	*Token

	mu          sync.Mutex
	totalSupply *uint256.Int
	issued      bool
}

// NewDebtToken constructs a debt-token ledger with zero supply.
func NewDebtToken(symbol string, store BalanceStore) *DebtToken {
	return &DebtToken{
		Token:       NewToken(symbol, store),
		totalSupply: uint256.NewInt(0),
	}
}

// TotalSupply returns the outstanding debt-token supply.
func (d *DebtToken) TotalSupply() *big.Int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.totalSupply.ToBig()
}

// IssueMinter hands out the unique mint/burn capability. The second and every
// subsequent call fails: authority over issuance cannot be duplicated.
func (d *DebtToken) IssueMinter() (*MinterCap, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.issued {
		return nil, ErrMinterAlreadyIssued
	}
	d.issued = true
	return &MinterCap{token: d}, nil
}

// MinterCap is the capability object authorizing debt-token issuance. Holding
// the handle is the authorization; there is no owner check to bypass.
type MinterCap struct {
	token *DebtToken
}

// Ledger exposes the underlying transfer surface of the capability's token.
func (c *MinterCap) Ledger() Ledger {
	if c == nil {
		return nil
	}
	return c.token
}

// Mint credits newly issued debt tokens to an address.
func (c *MinterCap) Mint(to crypto.Address, amount *big.Int) error {
	if c == nil || c.token == nil {
		return errors.New("token: nil minter capability")
	}
	value, err := toUint256(amount)
	if err != nil {
		return err
	}
	d := c.token
	d.mu.Lock()
	defer d.mu.Unlock()
	newSupply, overflow := new(uint256.Int).AddOverflow(d.totalSupply, value)
	if overflow {
		return ErrBalanceOverflow
	}
	if err := d.Token.Credit(to, amount); err != nil {
		return err
	}
	d.totalSupply = newSupply
	return nil
}

// Burn destroys debt tokens held by an address, shrinking total supply.
func (c *MinterCap) Burn(from crypto.Address, amount *big.Int) error {
	if c == nil || c.token == nil {
		return errors.New("token: nil minter capability")
	}
	value, err := toUint256(amount)
	if err != nil {
		return err
	}
	d := c.token
	d.mu.Lock()
	defer d.mu.Unlock()
	newSupply, underflow := new(uint256.Int).SubOverflow(d.totalSupply, value)
	if underflow {
		return ErrSupplyUnderflow
	}

	d.Token.mu.Lock()
	balance, err := d.Token.store.Get(from)
	if err != nil {
		d.Token.mu.Unlock()
		return err
	}
	debited, underflow := new(uint256.Int).SubOverflow(balance, value)
	if underflow {
		d.Token.mu.Unlock()
		return ErrSupplyUnderflow
	}
	if err := d.Token.store.Put(from, debited); err != nil {
		d.Token.mu.Unlock()
		return err
	}
	d.Token.mu.Unlock()

	d.totalSupply = newSupply
	return nil
}
