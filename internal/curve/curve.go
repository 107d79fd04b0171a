// Package curve implements constant-product pricing for legacy swap pools.
// All functions are pure: callers pass a reserve snapshot and receive a plan,
// never a handle into shared state. All monetary math is scaled-integer with
// big.Int intermediates; there is no floating point and no silent wraparound.
package curve

import (
	"math/big"
)

// Fee rates, scaled by RateScale.
const (
	FeeRate     = 2_500_000     // 0.25% pool fee, stays inside the pool
	EarningRate = 500_000       // 0.05% platform earning, leaves the pool
	RateScale   = 1_000_000_000 // 10^9
)

// Quote is the result of pricing a hypothetical trade. It is transient:
// consumed immediately by the caller and never stored.
type Quote struct {
	NewAskReserve uint64 // output reserve after the trade, fee retained
	PaidAmount    uint64 // net amount delivered to the trader
	Earning       uint64 // platform revenue, zero for exempted legs
}

// Curve solves the constant-product invariant
//
//	bidReserve * askReserve = newBidReserve * newAskReserve
//
// for newAskReserve, flooring the division. A zero reserve makes the pool
// undefined and is rejected, as is a result of zero (a trade that would drain
// the pool or round the receipt down to nothing).
func Curve(newBidReserve, bidReserve, askReserve uint64) (uint64, error) {
	if newBidReserve == 0 || bidReserve == 0 || askReserve == 0 {
		return 0, ErrOverflow
	}

	// bid*ask can exceed 64 bits; keep the intermediate in big.Int.
	product := new(big.Int).Mul(
		new(big.Int).SetUint64(bidReserve),
		new(big.Int).SetUint64(askReserve),
	)
	newAsk := product.Div(product, new(big.Int).SetUint64(newBidReserve))

	if !newAsk.IsUint64() {
		return 0, ErrOverflow
	}
	out := newAsk.Uint64()
	if out == 0 {
		return 0, ErrOverflow
	}
	return out, nil
}

// CurveInFee prices a trade and splits the gross output into the trader's net
// amount, the pool fee and the platform earning. Exempted legs (the internal
// hop of a two-pool route) are charged the fee but not the earning, so one
// logical route pays the earning at most once.
func CurveInFee(newBidReserve, bidReserve, askReserve uint64, exempted bool) (Quote, error) {
	withoutFee, err := Curve(newBidReserve, bidReserve, askReserve)
	if err != nil {
		return Quote{}, err
	}

	// Cannot underflow while the invariant holds, checked anyway.
	if askReserve < withoutFee {
		return Quote{}, ErrOverflow
	}
	paidWithoutFee := askReserve - withoutFee

	fee, err := mulDivRate(paidWithoutFee, FeeRate)
	if err != nil {
		return Quote{}, err
	}

	var earning uint64
	if !exempted {
		earning, err = mulDivRate(paidWithoutFee, EarningRate)
		if err != nil {
			return Quote{}, err
		}
	}

	if paidWithoutFee < fee {
		return Quote{}, ErrOverflow
	}
	paid := paidWithoutFee - fee
	if paid < earning {
		return Quote{}, ErrOverflow
	}
	paid -= earning

	// The fee remains in the pool's output reserve and grows the pool.
	newAsk := withoutFee + fee
	if newAsk < withoutFee {
		return Quote{}, ErrOverflow
	}

	return Quote{NewAskReserve: newAsk, PaidAmount: paid, Earning: earning}, nil
}

// mulDivRate computes floor(amount * rate / RateScale) in a wide intermediate.
func mulDivRate(amount, rate uint64) (uint64, error) {
	v := new(big.Int).Mul(
		new(big.Int).SetUint64(amount),
		new(big.Int).SetUint64(rate),
	)
	v.Div(v, new(big.Int).SetUint64(RateScale))
	if !v.IsUint64() {
		return 0, ErrOverflow
	}
	return v.Uint64(), nil
}
