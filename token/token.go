package token

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/holiman/uint256"

	"synthd/crypto"
)

var (
	// ErrInvalidAmount rejects nil or negative transfer amounts.
	ErrInvalidAmount = errors.New("token: amount must not be negative")
	// ErrAmountOverflow rejects amounts that do not fit the 256-bit balance width.
	ErrAmountOverflow = errors.New("token: amount exceeds 256-bit range")
	// ErrInsufficientBalance rejects debits larger than the recorded balance.
	ErrInsufficientBalance = errors.New("token: insufficient balance")
	// ErrBalanceOverflow rejects credits that would overflow the recipient balance.
	ErrBalanceOverflow = errors.New("token: balance overflow")
)

// Ledger is the transfer surface the engine drives for both collateral assets
// and the debt token. Implementations must debit and credit atomically: a
// failed transfer leaves both balances untouched.
type Ledger interface {
	Symbol() string
	BalanceOf(addr crypto.Address) (*big.Int, error)
	Transfer(from, to crypto.Address, amount *big.Int) error
}

// BalanceStore persists per-address balances. Balances are fixed-width 256-bit
// integers so arithmetic carries explicit overflow and underflow signals.
type BalanceStore interface {
	Get(addr crypto.Address) (*uint256.Int, error)
	Put(addr crypto.Address, balance *uint256.Int) error
}

// MemBalances is an in-memory BalanceStore used in tests and dev deployments.
type MemBalances struct {
	mu       sync.RWMutex
	balances map[string]*uint256.Int
}

// NewMemBalances constructs an empty in-memory balance store.
func NewMemBalances() *MemBalances {
	return &MemBalances{balances: make(map[string]*uint256.Int)}
}

// Get returns the recorded balance, zero when the address was never credited.
func (m *MemBalances) Get(addr crypto.Address) (*uint256.Int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if balance, ok := m.balances[string(addr.Bytes())]; ok {
		return balance.Clone(), nil
	}
	return uint256.NewInt(0), nil
}

// Put records the balance for an address.
func (m *MemBalances) Put(addr crypto.Address, balance *uint256.Int) error {
	if balance == nil {
		return fmt.Errorf("token: nil balance")
	}
	m.mu.Lock()
	m.balances[string(addr.Bytes())] = balance.Clone()
	m.mu.Unlock()
	return nil
}

// Token is a plain fungible-asset ledger. Collateral assets are modelled as
// Tokens; the engine only ever moves them, never creates or destroys them.
type Token struct {
	symbol string

	mu    sync.Mutex
	store BalanceStore
}

// NewToken constructs a ledger for the given asset symbol backed by the
// supplied balance store.
func NewToken(symbol string, store BalanceStore) *Token {
	return &Token{symbol: symbol, store: store}
}

// Symbol returns the asset identity this ledger tracks.
func (t *Token) Symbol() string { return t.symbol }

// BalanceOf returns the recorded balance for an address.
func (t *Token) BalanceOf(addr crypto.Address) (*big.Int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	balance, err := t.store.Get(addr)
	if err != nil {
		return nil, err
	}
	return balance.ToBig(), nil
}

// Transfer moves amount from one address to another. A zero amount is a no-op
// at this layer; positivity rules belong to the engine's validation order.
func (t *Token) Transfer(from, to crypto.Address, amount *big.Int) error {
	value, err := toUint256(amount)
	if err != nil {
		return err
	}
	if value.IsZero() || from.Equal(to) {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	fromBalance, err := t.store.Get(from)
	if err != nil {
		return err
	}
	debited, underflow := new(uint256.Int).SubOverflow(fromBalance, value)
	if underflow {
		return ErrInsufficientBalance
	}
	toBalance, err := t.store.Get(to)
	if err != nil {
		return err
	}
	credited, overflow := new(uint256.Int).AddOverflow(toBalance, value)
	if overflow {
		return ErrBalanceOverflow
	}
	if err := t.store.Put(from, debited); err != nil {
		return err
	}
	return t.store.Put(to, credited)
}

// Credit mints balance out of thin air for genesis allocations and bridge
// inflows. It exists for collateral assets whose real issuance lives outside
// this process.
func (t *Token) Credit(to crypto.Address, amount *big.Int) error {
	value, err := toUint256(amount)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	balance, err := t.store.Get(to)
	if err != nil {
		return err
	}
	credited, overflow := new(uint256.Int).AddOverflow(balance, value)
	if overflow {
		return ErrBalanceOverflow
	}
	return t.store.Put(to, credited)
}

func toUint256(amount *big.Int) (*uint256.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	value, overflow := uint256.FromBig(amount)
	if overflow {
		return nil, ErrAmountOverflow
	}
	return value, nil
}
