package storage

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"synthd/crypto"
)

// BalanceStore keeps per-address token balances in the key-value store, one
// record per holder under a symbol-scoped prefix. It implements
// token.BalanceStore so ledgers survive restarts.
type BalanceStore struct {
	db     Database
	prefix []byte
}

// NewBalanceStore binds a balance store for the given token symbol.
func NewBalanceStore(db Database, symbol string) *BalanceStore {
	return &BalanceStore{db: db, prefix: []byte("token/" + symbol + "/")}
}

func (s *BalanceStore) key(addr crypto.Address) []byte {
	key := make([]byte, 0, len(s.prefix)+len(addr.Bytes()))
	key = append(key, s.prefix...)
	return append(key, addr.Bytes()...)
}

// Get returns the stored balance, zero for addresses never credited.
func (s *BalanceStore) Get(addr crypto.Address) (*uint256.Int, error) {
	raw, err := s.db.Get(s.key(addr))
	if errors.Is(err, ErrKeyNotFound) {
		return uint256.NewInt(0), nil
	}
	if err != nil {
		return nil, err
	}
	if len(raw) > 32 {
		return nil, fmt.Errorf("storage: balance record exceeds 32 bytes")
	}
	return new(uint256.Int).SetBytes(raw), nil
}

// Put writes the balance as its minimal big-endian encoding.
func (s *BalanceStore) Put(addr crypto.Address, balance *uint256.Int) error {
	if balance == nil {
		balance = uint256.NewInt(0)
	}
	return s.db.Put(s.key(addr), balance.Bytes())
}
