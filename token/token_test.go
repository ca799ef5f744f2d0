package token

import (
	"errors"
	"math/big"
	"testing"

	"synthd/crypto"
)

func testAddress(suffix byte) crypto.Address {
	raw := make([]byte, 20)
	raw[len(raw)-1] = suffix
	return crypto.MustNewAddress(crypto.SynPrefix, raw)
}

func TestTransferMovesBalance(t *testing.T) {
	ledger := NewToken("ETH", NewMemBalances())
	alice := testAddress(0x01)
	bob := testAddress(0x02)
	if err := ledger.Credit(alice, big.NewInt(100)); err != nil {
		t.Fatalf("credit: %v", err)
	}

	if err := ledger.Transfer(alice, bob, big.NewInt(30)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	aliceBalance, err := ledger.BalanceOf(alice)
	if err != nil {
		t.Fatalf("balance of alice: %v", err)
	}
	if aliceBalance.Cmp(big.NewInt(70)) != 0 {
		t.Fatalf("unexpected sender balance: got %s", aliceBalance)
	}
	bobBalance, err := ledger.BalanceOf(bob)
	if err != nil {
		t.Fatalf("balance of bob: %v", err)
	}
	if bobBalance.Cmp(big.NewInt(30)) != 0 {
		t.Fatalf("unexpected recipient balance: got %s", bobBalance)
	}
}

func TestTransferInsufficientBalance(t *testing.T) {
	ledger := NewToken("ETH", NewMemBalances())
	alice := testAddress(0x01)
	bob := testAddress(0x02)
	if err := ledger.Credit(alice, big.NewInt(10)); err != nil {
		t.Fatalf("credit: %v", err)
	}

	err := ledger.Transfer(alice, bob, big.NewInt(11))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	balance, err := ledger.BalanceOf(alice)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("balance changed after failed transfer: %s", balance)
	}
}

func TestTransferZeroAndSelfAreNoops(t *testing.T) {
	ledger := NewToken("ETH", NewMemBalances())
	alice := testAddress(0x01)
	if err := ledger.Credit(alice, big.NewInt(10)); err != nil {
		t.Fatalf("credit: %v", err)
	}

	if err := ledger.Transfer(alice, testAddress(0x02), big.NewInt(0)); err != nil {
		t.Fatalf("zero transfer: %v", err)
	}
	if err := ledger.Transfer(alice, alice, big.NewInt(5)); err != nil {
		t.Fatalf("self transfer: %v", err)
	}
	balance, err := ledger.BalanceOf(alice)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("balance changed by no-op transfers: %s", balance)
	}
}

func TestTransferRejectsNegativeAndNil(t *testing.T) {
	ledger := NewToken("ETH", NewMemBalances())
	alice := testAddress(0x01)
	bob := testAddress(0x02)

	if err := ledger.Transfer(alice, bob, big.NewInt(-1)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount for negative, got %v", err)
	}
	if err := ledger.Transfer(alice, bob, nil); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount for nil, got %v", err)
	}
}

func TestIssueMinterOnlyOnce(t *testing.T) {
	debt := NewDebtToken("SUSD", NewMemBalances())
	if _, err := debt.IssueMinter(); err != nil {
		t.Fatalf("first issue: %v", err)
	}
	if _, err := debt.IssueMinter(); !errors.Is(err, ErrMinterAlreadyIssued) {
		t.Fatalf("expected second issue to fail, got %v", err)
	}
}

func TestMintAndBurnTrackSupply(t *testing.T) {
	debt := NewDebtToken("SUSD", NewMemBalances())
	minter, err := debt.IssueMinter()
	if err != nil {
		t.Fatalf("issue minter: %v", err)
	}
	holder := testAddress(0x01)

	if err := minter.Mint(holder, big.NewInt(1000)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if debt.TotalSupply().Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("unexpected supply after mint: %s", debt.TotalSupply())
	}
	balance, err := debt.BalanceOf(holder)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("unexpected balance after mint: %s", balance)
	}

	if err := minter.Burn(holder, big.NewInt(400)); err != nil {
		t.Fatalf("burn: %v", err)
	}
	if debt.TotalSupply().Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("unexpected supply after burn: %s", debt.TotalSupply())
	}
	balance, err = debt.BalanceOf(holder)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("unexpected balance after burn: %s", balance)
	}
}

func TestBurnMoreThanHeld(t *testing.T) {
	debt := NewDebtToken("SUSD", NewMemBalances())
	minter, err := debt.IssueMinter()
	if err != nil {
		t.Fatalf("issue minter: %v", err)
	}
	holder := testAddress(0x01)
	if err := minter.Mint(holder, big.NewInt(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}

	if err := minter.Burn(holder, big.NewInt(101)); !errors.Is(err, ErrSupplyUnderflow) {
		t.Fatalf("expected supply underflow, got %v", err)
	}
	if debt.TotalSupply().Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("supply changed after failed burn: %s", debt.TotalSupply())
	}
}
