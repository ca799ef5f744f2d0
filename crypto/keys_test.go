package crypto

import (
	"bytes"
	"strings"
	"testing"
)

func TestAddressRoundTrip(t *testing.T) {
	raw := make([]byte, 20)
	raw[0] = 0x42
	raw[19] = 0x24
	addr, err := NewAddress(SynPrefix, raw)
	if err != nil {
		t.Fatalf("new address: %v", err)
	}

	encoded := addr.String()
	if !strings.HasPrefix(encoded, string(SynPrefix)+"1") {
		t.Fatalf("unexpected encoding: %s", encoded)
	}
	decoded, err := DecodeAddress(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !decoded.Equal(addr) {
		t.Fatalf("round trip mismatch: %s != %s", decoded, addr)
	}
}

func TestNewAddressRejectsBadLength(t *testing.T) {
	if _, err := NewAddress(SynPrefix, []byte{0x01}); err == nil {
		t.Fatalf("expected length error")
	}
}

func TestAddressIsZero(t *testing.T) {
	if !(Address{}).IsZero() {
		t.Fatalf("empty address must be zero")
	}
	if !MustNewAddress(SynPrefix, make([]byte, 20)).IsZero() {
		t.Fatalf("all-zero payload must be zero")
	}
	raw := make([]byte, 20)
	raw[5] = 1
	if MustNewAddress(SynPrefix, raw).IsZero() {
		t.Fatalf("non-zero payload must not be zero")
	}
}

func TestModuleAddressDeterministic(t *testing.T) {
	a := ModuleAddress(SynPrefix, "collateral-engine")
	b := ModuleAddress(SynPrefix, "collateral-engine")
	if !a.Equal(b) {
		t.Fatalf("module address not deterministic")
	}
	if a.IsZero() {
		t.Fatalf("module address must not be zero")
	}
	other := ModuleAddress(SynPrefix, "treasury")
	if a.Equal(other) {
		t.Fatalf("distinct module names must map to distinct addresses")
	}
}

func TestKeyAddressDerivation(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	addr := key.PubKey().Address()
	if addr.IsZero() {
		t.Fatalf("derived address must not be zero")
	}

	restored, err := PrivateKeyFromBytes(key.Bytes())
	if err != nil {
		t.Fatalf("restore key: %v", err)
	}
	if !bytes.Equal(restored.PubKey().Address().Bytes(), addr.Bytes()) {
		t.Fatalf("restored key derives a different address")
	}
}
