package storage

import (
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/rlp"

	"synthd/crypto"
	"synthd/engine"
)

var positionPrefix = []byte("engine/position/")

// PositionStore persists engine positions in the key-value store, one RLP
// record per account. It implements engine.State.
type PositionStore struct {
	db Database
}

// NewPositionStore constructs a position store bound to the provided backend.
func NewPositionStore(db Database) *PositionStore {
	return &PositionStore{db: db}
}

// Collateral entries are stored as a slice sorted by asset symbol: RLP has no
// map encoding and the sort keeps records byte-stable across writes.
type storedCollateral struct {
	Asset  string
	Amount *big.Int
}

type storedPosition struct {
	Debt       *big.Int
	Collateral []storedCollateral
}

func positionKey(addr crypto.Address) []byte {
	key := make([]byte, 0, len(positionPrefix)+len(addr.Bytes()))
	key = append(key, positionPrefix...)
	return append(key, addr.Bytes()...)
}

// GetPosition loads the stored position for an address, nil when the account
// has never interacted with the engine.
func (s *PositionStore) GetPosition(addr crypto.Address) (*engine.Position, error) {
	raw, err := s.db.Get(positionKey(addr))
	if errors.Is(err, ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stored storedPosition
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return nil, fmt.Errorf("storage: decode position: %w", err)
	}
	position := &engine.Position{
		Address:    addr,
		Collateral: make(map[string]*big.Int, len(stored.Collateral)),
		Debt:       stored.Debt,
	}
	if position.Debt == nil {
		position.Debt = big.NewInt(0)
	}
	for _, entry := range stored.Collateral {
		amount := entry.Amount
		if amount == nil {
			amount = big.NewInt(0)
		}
		position.Collateral[entry.Asset] = amount
	}
	return position, nil
}

// PutPosition writes the position record for its address.
func (s *PositionStore) PutPosition(position *engine.Position) error {
	if position == nil {
		return fmt.Errorf("storage: nil position")
	}
	stored := storedPosition{
		Debt:       position.Debt,
		Collateral: make([]storedCollateral, 0, len(position.Collateral)),
	}
	if stored.Debt == nil {
		stored.Debt = big.NewInt(0)
	}
	for asset, amount := range position.Collateral {
		if amount == nil {
			amount = big.NewInt(0)
		}
		stored.Collateral = append(stored.Collateral, storedCollateral{Asset: asset, Amount: amount})
	}
	sort.Slice(stored.Collateral, func(i, j int) bool {
		return stored.Collateral[i].Asset < stored.Collateral[j].Asset
	})
	raw, err := rlp.EncodeToBytes(&stored)
	if err != nil {
		return fmt.Errorf("storage: encode position: %w", err)
	}
	return s.db.Put(positionKey(position.Address), raw)
}
