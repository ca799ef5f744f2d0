package engine

import (
	"math/big"

	"synthd/crypto"
)

// Position is the authoritative per-account ledger entry: collateral balances
// per approved asset and the outstanding debt-token amount minted against
// them. Positions come into existence on first use and decay to the all-zero
// state rather than being deleted; collateral entries persist at zero.
type Position struct {
	Address    crypto.Address
	Collateral map[string]*big.Int
	Debt       *big.Int
}

// Clone returns a deep copy so operations can mutate a working position and
// commit it only after every validation gate has passed.
func (p *Position) Clone() *Position {
	if p == nil {
		return nil
	}
	clone := &Position{
		Address:    p.Address,
		Collateral: make(map[string]*big.Int, len(p.Collateral)),
		Debt:       big.NewInt(0),
	}
	for asset, amount := range p.Collateral {
		if amount != nil {
			clone.Collateral[asset] = new(big.Int).Set(amount)
		}
	}
	if p.Debt != nil {
		clone.Debt.Set(p.Debt)
	}
	return clone
}

// collateral returns the recorded balance for an asset, zero when the account
// never deposited it.
func (p *Position) collateral(asset string) *big.Int {
	if p == nil || p.Collateral == nil {
		return big.NewInt(0)
	}
	if amount, ok := p.Collateral[asset]; ok && amount != nil {
		return amount
	}
	return big.NewInt(0)
}

// State is the persistence boundary for positions. GetPosition returns nil
// for accounts that never interacted with the engine.
type State interface {
	GetPosition(addr crypto.Address) (*Position, error)
	PutPosition(position *Position) error
}

func (e *Engine) loadPosition(addr crypto.Address) (*Position, error) {
	position, err := e.state.GetPosition(addr)
	if err != nil {
		return nil, err
	}
	if position == nil {
		position = &Position{Address: addr}
	}
	if position.Collateral == nil {
		position.Collateral = make(map[string]*big.Int)
	}
	if position.Debt == nil {
		position.Debt = big.NewInt(0)
	}
	return position, nil
}
