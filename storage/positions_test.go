package storage

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"synthd/crypto"
	"synthd/engine"
)

func testAddress(suffix byte) crypto.Address {
	raw := make([]byte, 20)
	raw[len(raw)-1] = suffix
	return crypto.MustNewAddress(crypto.SynPrefix, raw)
}

func TestMemDBMissingKey(t *testing.T) {
	db := NewMemDB()
	_, err := db.Get([]byte("missing"))
	require.ErrorIs(t, err, ErrKeyNotFound)

	has, err := db.Has([]byte("missing"))
	require.NoError(t, err)
	require.False(t, has)
}

func TestPositionStoreRoundTrip(t *testing.T) {
	store := NewPositionStore(NewMemDB())
	addr := testAddress(0x01)

	original := &engine.Position{
		Address: addr,
		Collateral: map[string]*big.Int{
			"ETH": big.NewInt(1500),
			"BTC": big.NewInt(25),
		},
		Debt: big.NewInt(990),
	}
	require.NoError(t, store.PutPosition(original))

	loaded, err := store.GetPosition(addr)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.True(t, loaded.Address.Equal(addr))
	require.Equal(t, 0, loaded.Debt.Cmp(big.NewInt(990)))
	require.Len(t, loaded.Collateral, 2)
	require.Equal(t, 0, loaded.Collateral["ETH"].Cmp(big.NewInt(1500)))
	require.Equal(t, 0, loaded.Collateral["BTC"].Cmp(big.NewInt(25)))
}

func TestPositionStoreUnknownAccount(t *testing.T) {
	store := NewPositionStore(NewMemDB())
	loaded, err := store.GetPosition(testAddress(0x07))
	require.NoError(t, err)
	require.Nil(t, loaded)
}

func TestPositionStoreOverwrite(t *testing.T) {
	store := NewPositionStore(NewMemDB())
	addr := testAddress(0x01)

	first := &engine.Position{
		Address:    addr,
		Collateral: map[string]*big.Int{"ETH": big.NewInt(10)},
		Debt:       big.NewInt(5),
	}
	require.NoError(t, store.PutPosition(first))

	second := &engine.Position{
		Address:    addr,
		Collateral: map[string]*big.Int{"ETH": big.NewInt(7)},
		Debt:       big.NewInt(0),
	}
	require.NoError(t, store.PutPosition(second))

	loaded, err := store.GetPosition(addr)
	require.NoError(t, err)
	require.Equal(t, 0, loaded.Debt.Sign())
	require.Equal(t, 0, loaded.Collateral["ETH"].Cmp(big.NewInt(7)))
}

func TestPositionStoreNormalisesNilFields(t *testing.T) {
	store := NewPositionStore(NewMemDB())
	addr := testAddress(0x01)

	require.NoError(t, store.PutPosition(&engine.Position{Address: addr}))
	loaded, err := store.GetPosition(addr)
	require.NoError(t, err)
	require.NotNil(t, loaded.Debt)
	require.Equal(t, 0, loaded.Debt.Sign())
}

func TestBalanceStoreRoundTrip(t *testing.T) {
	db := NewMemDB()
	store := NewBalanceStore(db, "ETH")
	addr := testAddress(0x01)

	balance, err := store.Get(addr)
	require.NoError(t, err)
	require.True(t, balance.IsZero())

	require.NoError(t, store.Put(addr, uint256.NewInt(123456)))
	balance, err = store.Get(addr)
	require.NoError(t, err)
	require.Equal(t, uint64(123456), balance.Uint64())
}

func TestBalanceStoreIsolatesSymbols(t *testing.T) {
	db := NewMemDB()
	eth := NewBalanceStore(db, "ETH")
	btc := NewBalanceStore(db, "BTC")
	addr := testAddress(0x01)

	require.NoError(t, eth.Put(addr, uint256.NewInt(42)))
	balance, err := btc.Get(addr)
	require.NoError(t, err)
	require.True(t, balance.IsZero())
}
