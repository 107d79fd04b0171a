// Package pool models constant-product swap pools: the static account wiring
// loaded from config and the live reserve snapshot fetched per request.
package pool

import (
	"errors"

	"github.com/gagliardetto/solana-go"
)

// ErrCannotFindReserves is returned when a mint does not belong to a pool.
var ErrCannotFindReserves = errors.New("pool: cannot find reserves for mint")

// State is a read-only reserve snapshot of one pool, taken fresh at the start
// of a request. Reserves are denominated in the smallest indivisible unit of
// their mint; pricing never mutates a State.
type State struct {
	Pool *Pool

	ReserveS uint64 // primary (bridging) mint reserve
	ReserveA uint64
	ReserveB uint64

	Timestamp int64 // unix seconds when fetched
}

// ParseReserve returns the reserve paired with the given mint, matching the
// pool's three mint slots in a, b, s order. The three mints of one pool are
// distinct by the pool-creation invariant, so order is not observable.
func (s *State) ParseReserve(mint solana.PublicKey) (uint64, error) {
	switch {
	case s.Pool.MintA.Equals(mint):
		return s.ReserveA, nil
	case s.Pool.MintB.Equals(mint):
		return s.ReserveB, nil
	case s.Pool.MintS.Equals(mint):
		return s.ReserveS, nil
	}
	return 0, ErrCannotFindReserves
}

// TreasuryFor returns the treasury account holding the pool-side balance of
// the given mint, a/b/s ordered like ParseReserve.
func (p *Pool) TreasuryFor(mint solana.PublicKey) (solana.PublicKey, error) {
	switch {
	case p.MintA.Equals(mint):
		return p.TreasuryA, nil
	case p.MintB.Equals(mint):
		return p.TreasuryB, nil
	case p.MintS.Equals(mint):
		return p.TreasuryS, nil
	}
	return solana.PublicKey{}, ErrCannotFindReserves
}

// SharesPrimaryMint reports whether two pools can be bridged: routing is only
// meaningful when both pools hold the same primary mint.
func (p *Pool) SharesPrimaryMint(other *Pool) bool {
	return p.MintS.Equals(other.MintS)
}
