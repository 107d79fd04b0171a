package curve

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurve_Identity(t *testing.T) {
	// Trading zero net change leaves the price untouched.
	cases := []struct{ bid, ask uint64 }{
		{1, 1},
		{1_000, 5_000},
		{1_000_000_000, 1_000_000_000},
		{math.MaxUint64, 1},
		{7, math.MaxUint64},
	}
	for _, tc := range cases {
		out, err := Curve(tc.bid, tc.bid, tc.ask)
		require.NoError(t, err)
		assert.Equal(t, tc.ask, out)
	}
}

func TestCurve_ZeroInputsRejected(t *testing.T) {
	cases := [][3]uint64{
		{0, 1, 1},
		{1, 0, 1},
		{1, 1, 0},
		{0, 0, 0},
	}
	for _, tc := range cases {
		_, err := Curve(tc[0], tc[1], tc[2])
		assert.ErrorIs(t, err, ErrOverflow)
	}
}

func TestCurve_ZeroResultRejected(t *testing.T) {
	// newBid far beyond bid*ask floors the new ask reserve to zero; the pool
	// would be drained, so the trade fails instead of executing.
	_, err := Curve(math.MaxUint64, 1, 1)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Curve(101, 10, 10)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestCurve_OverflowingResultRejected(t *testing.T) {
	// bid*ask/newBid above MaxUint64 must fail deterministically, never wrap.
	_, err := Curve(1, math.MaxUint64, math.MaxUint64)
	assert.ErrorIs(t, err, ErrOverflow)

	// Wide intermediate keeps large-but-representable results alive.
	out, err := Curve(4, math.MaxUint64, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64/2), out)
}

func TestCurve_FloorsDivision(t *testing.T) {
	// 10*10/3 = 33.33 -> 33
	out, err := Curve(3, 10, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(33), out)
}

func TestCurve_ProductPreserved(t *testing.T) {
	// bid*ask ~= newBid*newAsk up to integer floor rounding.
	bid := uint64(1_000_000_000)
	ask := uint64(2_500_000_000)
	newBid := bid + 13_370_000

	newAsk, err := Curve(newBid, bid, ask)
	require.NoError(t, err)

	before := new(bigProduct).set(bid, ask)
	after := new(bigProduct).set(newBid, newAsk)
	afterNext := new(bigProduct).set(newBid, newAsk+1)

	assert.True(t, after.cmp(before) <= 0)
	assert.True(t, afterNext.cmp(before) > 0)
}

func TestCurveInFee_ReferenceExample(t *testing.T) {
	bid := uint64(1_000_000_000)
	ask := uint64(1_000_000_000)
	amount := uint64(1_000_000)

	q, err := CurveInFee(bid+amount, bid, ask, true)
	require.NoError(t, err)

	assert.Equal(t, uint64(0), q.Earning)
	assert.Equal(t, uint64(996_504), q.PaidAmount)
	assert.Equal(t, uint64(999_000_999+2_497), q.NewAskReserve)
}

func TestCurveInFee_EarningCharged(t *testing.T) {
	bid := uint64(1_000_000_000)
	ask := uint64(1_000_000_000)
	amount := uint64(1_000_000)

	q, err := CurveInFee(bid+amount, bid, ask, false)
	require.NoError(t, err)

	assert.Equal(t, uint64(499), q.Earning)
	assert.Equal(t, uint64(996_005), q.PaidAmount)
}

func TestCurveInFee_FeeMonotone(t *testing.T) {
	bid := uint64(50_000_000)
	ask := uint64(80_000_000)

	for _, amount := range []uint64{1, 1_000, 250_000, 10_000_000} {
		withoutFee, err := Curve(bid+amount, bid, ask)
		require.NoError(t, err)
		paidWithoutFee := ask - withoutFee

		q, err := CurveInFee(bid+amount, bid, ask, false)
		require.NoError(t, err)

		assert.LessOrEqual(t, q.PaidAmount, paidWithoutFee)
		assert.Equal(t, paidWithoutFee, q.PaidAmount+q.Earning+(q.NewAskReserve-withoutFee))
	}
}

func TestCurveInFee_ExemptionSkipsEarningOnly(t *testing.T) {
	bid := uint64(3_000_000_000)
	ask := uint64(1_500_000_000)
	amount := uint64(9_999_999)

	exempted, err := CurveInFee(bid+amount, bid, ask, true)
	require.NoError(t, err)
	charged, err := CurveInFee(bid+amount, bid, ask, false)
	require.NoError(t, err)

	assert.Equal(t, uint64(0), exempted.Earning)
	assert.NotZero(t, charged.Earning)
	// Same fee either way, so the reserves land in the same place.
	assert.Equal(t, exempted.NewAskReserve, charged.NewAskReserve)
	assert.Equal(t, exempted.PaidAmount, charged.PaidAmount+charged.Earning)
}

func TestCurveInFee_PropagatesCurveFailure(t *testing.T) {
	_, err := CurveInFee(0, 1, 1, true)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = CurveInFee(1, math.MaxUint64, math.MaxUint64, true)
	assert.ErrorIs(t, err, ErrOverflow)
}

// bigProduct compares u64 products without overflow.
type bigProduct struct{ v *big.Int }

func (p *bigProduct) set(a, b uint64) *bigProduct {
	p.v = new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	return p
}

func (p *bigProduct) cmp(o *bigProduct) int { return p.v.Cmp(o.v) }
