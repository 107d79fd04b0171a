package router

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/solana-route-aggregator/internal/curve"
	"github.com/aman-zulfiqar/solana-route-aggregator/internal/pool"
	"github.com/aman-zulfiqar/solana-route-aggregator/internal/splswap"
)

func key() solana.PublicKey { return solana.NewWallet().PublicKey() }

func newPool(name string, mintS solana.PublicKey) *pool.Pool {
	return &pool.Pool{
		Name:      name,
		ProgramID: key(),
		Address:   key(),
		Vault:     key(),
		Treasurer: key(),
		MintLPT:   key(),
		MintS:     mintS,
		MintA:     key(),
		MintB:     key(),
		TreasuryS: key(),
		TreasuryA: key(),
		TreasuryB: key(),
	}
}

type swapCall struct {
	programID solana.PublicKey
	amount    uint64
	limit     uint64
	accs      splswap.SwapAccounts
}

// fakeExecutor records calls and can fail a specific swap leg, standing in
// for the downstream swap program's limit rejection.
type fakeExecutor struct {
	swaps   []swapCall
	failLeg int // 1-based index of the swap call to fail, 0 = never
	liqOps  []string
}

var errLimitNotMet = errors.New("insufficient output vs limit")

func (f *fakeExecutor) Swap(_ context.Context, programID solana.PublicKey, amount, limit uint64, accs splswap.SwapAccounts) error {
	f.swaps = append(f.swaps, swapCall{programID, amount, limit, accs})
	if f.failLeg == len(f.swaps) {
		return errLimitNotMet
	}
	return nil
}

func (f *fakeExecutor) AddLiquidity(_ context.Context, _ solana.PublicKey, _, _, _ uint64, _ splswap.LiquidityAccounts) error {
	f.liqOps = append(f.liqOps, "add")
	return nil
}

func (f *fakeExecutor) RemoveLiquidity(_ context.Context, _ solana.PublicKey, _ uint64, _ splswap.LiquidityAccounts) error {
	f.liqOps = append(f.liqOps, "remove")
	return nil
}

// fakeProvisioner marks configured accounts as unusable until initialized.
type fakeProvisioner struct {
	unusable    map[solana.PublicKey]bool
	initialized []solana.PublicKey
}

func newFakeProvisioner(unusable ...solana.PublicKey) *fakeProvisioner {
	m := make(map[solana.PublicKey]bool, len(unusable))
	for _, a := range unusable {
		m[a] = true
	}
	return &fakeProvisioner{unusable: m}
}

func (f *fakeProvisioner) IsUsable(_ context.Context, account solana.PublicKey) (bool, error) {
	return !f.unusable[account], nil
}

func (f *fakeProvisioner) Initialize(_ context.Context, account, _, _ solana.PublicKey) error {
	f.initialized = append(f.initialized, account)
	delete(f.unusable, account)
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func routeFixture() (RouteParams, *pool.Pool, *pool.Pool) {
	primary := key()
	first := newPool("FIRST", primary)
	second := newPool("SECOND", primary)

	params := RouteParams{
		Amount:      1_000_000,
		FirstLimit:  990_000,
		SecondLimit: 980_000,
		Payer:       key(),
		First: &pool.State{
			Pool:     first,
			ReserveS: 1_000_000_000,
			ReserveA: 1_000_000_000,
			ReserveB: 500_000_000,
		},
		Second: &pool.State{
			Pool:     second,
			ReserveS: 2_000_000_000,
			ReserveA: 750_000_000,
			ReserveB: 3_000_000_000,
		},
		MintBid: first.MintA,
		MintAsk: second.MintB,
		Src:     key(),
		Middle:  key(),
		Dst:     key(),
	}
	return params, first, second
}

func TestRoute_TwoLegs(t *testing.T) {
	params, first, second := routeFixture()
	exec := &fakeExecutor{}
	prov := newFakeProvisioner()
	r := New(exec, prov, quietLogger())

	require.NoError(t, r.Route(context.Background(), params))
	require.Len(t, exec.swaps, 2)

	leg1, leg2 := exec.swaps[0], exec.swaps[1]

	// Leg 1: input mint -> primary, landing in the bridge account.
	assert.Equal(t, first.ProgramID, leg1.programID)
	assert.Equal(t, uint64(1_000_000), leg1.amount)
	assert.Equal(t, uint64(990_000), leg1.limit)
	assert.Equal(t, params.Src, leg1.accs.Src)
	assert.Equal(t, params.Middle, leg1.accs.Dst)
	assert.Equal(t, first.TreasuryA, leg1.accs.TreasuryBid)
	assert.Equal(t, first.TreasuryS, leg1.accs.TreasuryAsk)

	// Leg 2: primary -> output mint, sized by the bridge quote. With 1e9/1e9
	// reserves and amount 1e6: paid 999_001 minus fee 2_497 = 996_504.
	assert.Equal(t, second.ProgramID, leg2.programID)
	assert.Equal(t, uint64(996_504), leg2.amount)
	assert.Equal(t, uint64(980_000), leg2.limit)
	assert.Equal(t, params.Middle, leg2.accs.Src)
	assert.Equal(t, params.Dst, leg2.accs.Dst)
	assert.Equal(t, second.TreasuryS, leg2.accs.TreasuryBid)
	assert.Equal(t, second.TreasuryB, leg2.accs.TreasuryAsk)
}

func TestRoute_RejectsUnmatchedPrimaryMints(t *testing.T) {
	params, _, _ := routeFixture()
	params.Second.Pool.MintS = key() // break the bridge

	exec := &fakeExecutor{}
	prov := newFakeProvisioner(params.Middle, params.Dst)
	r := New(exec, prov, quietLogger())

	err := r.Route(context.Background(), params)
	assert.ErrorIs(t, err, ErrUnmatchedPrimaryMints)

	// Rejected before any provisioning or leg execution.
	assert.Empty(t, exec.swaps)
	assert.Empty(t, prov.initialized)
}

func TestRoute_ProvisionsBridgeAndDestination(t *testing.T) {
	params, _, _ := routeFixture()
	exec := &fakeExecutor{}
	prov := newFakeProvisioner(params.Middle, params.Dst)
	r := New(exec, prov, quietLogger())

	require.NoError(t, r.Route(context.Background(), params))
	assert.Equal(t, []solana.PublicKey{params.Middle, params.Dst}, prov.initialized)
}

func TestRoute_SkipsProvisioningWhenUsable(t *testing.T) {
	params, _, _ := routeFixture()
	exec := &fakeExecutor{}
	prov := newFakeProvisioner()
	r := New(exec, prov, quietLogger())

	require.NoError(t, r.Route(context.Background(), params))
	assert.Empty(t, prov.initialized)
}

func TestRoute_FirstLegFailureStopsRoute(t *testing.T) {
	params, _, _ := routeFixture()
	exec := &fakeExecutor{failLeg: 1}
	r := New(exec, newFakeProvisioner(), quietLogger())

	err := r.Route(context.Background(), params)
	assert.ErrorIs(t, err, errLimitNotMet)
	assert.Len(t, exec.swaps, 1)
}

func TestRoute_SecondLegFailureSurfaces(t *testing.T) {
	params, _, _ := routeFixture()
	exec := &fakeExecutor{failLeg: 2}
	r := New(exec, newFakeProvisioner(), quietLogger())

	err := r.Route(context.Background(), params)
	assert.ErrorIs(t, err, errLimitNotMet)
	assert.Len(t, exec.swaps, 2)
}

func TestRoute_OverflowingAmount(t *testing.T) {
	params, _, _ := routeFixture()
	params.Amount = math.MaxUint64 // bidReserve + amount wraps

	exec := &fakeExecutor{}
	r := New(exec, newFakeProvisioner(), quietLogger())

	err := r.Route(context.Background(), params)
	assert.ErrorIs(t, err, curve.ErrOverflow)
	assert.Empty(t, exec.swaps)
}

func TestRoute_UnknownBidMint(t *testing.T) {
	params, _, _ := routeFixture()
	params.MintBid = key()

	r := New(&fakeExecutor{}, newFakeProvisioner(), quietLogger())
	err := r.Route(context.Background(), params)
	assert.ErrorIs(t, err, pool.ErrCannotFindReserves)
}

func TestSwap_DelegatesToExecutor(t *testing.T) {
	p := newPool("ONLY", key())
	params := SwapParams{
		Amount:  5_000,
		Limit:   4_900,
		Payer:   key(),
		Pool:    p,
		MintBid: p.MintB,
		MintAsk: p.MintS,
		Src:     key(),
		Dst:     key(),
	}

	exec := &fakeExecutor{}
	prov := newFakeProvisioner(params.Dst)
	r := New(exec, prov, quietLogger())

	require.NoError(t, r.Swap(context.Background(), params))
	assert.Equal(t, []solana.PublicKey{params.Dst}, prov.initialized)

	require.Len(t, exec.swaps, 1)
	call := exec.swaps[0]
	assert.Equal(t, uint64(5_000), call.amount)
	assert.Equal(t, uint64(4_900), call.limit)
	assert.Equal(t, p.TreasuryB, call.accs.TreasuryBid)
	assert.Equal(t, p.TreasuryS, call.accs.TreasuryAsk)
}

func TestLiquidity_Provisioning(t *testing.T) {
	p := newPool("LIQ", key())
	params := LiquidityParams{
		DeltaS:     1,
		DeltaA:     2,
		DeltaB:     3,
		LPT:        10,
		Payer:      key(),
		Pool:       p,
		LPTAccount: key(),
		SideS:      key(),
		SideA:      key(),
		SideB:      key(),
	}

	exec := &fakeExecutor{}
	prov := newFakeProvisioner(params.LPTAccount, params.SideA)
	r := New(exec, prov, quietLogger())

	require.NoError(t, r.AddLiquidity(context.Background(), params))
	assert.Equal(t, []solana.PublicKey{params.LPTAccount}, prov.initialized)

	require.NoError(t, r.RemoveLiquidity(context.Background(), params))
	assert.Contains(t, prov.initialized, params.SideA)
	assert.Equal(t, []string{"add", "remove"}, exec.liqOps)
}

func TestEstimateMiddleAmount_MatchesReference(t *testing.T) {
	primary := key()
	p := newPool("REF", primary)
	st := &pool.State{
		Pool:     p,
		ReserveS: 1_000_000_000,
		ReserveA: 1_000_000_000,
		ReserveB: 1,
	}

	mid, err := EstimateMiddleAmount(st, p.MintA, 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(996_504), mid)
}

func TestEstimateSwapOutput_ChargesEarning(t *testing.T) {
	p := newPool("REF", key())
	st := &pool.State{
		Pool:     p,
		ReserveS: 1_000_000_000,
		ReserveA: 1_000_000_000,
		ReserveB: 1,
	}

	q, err := EstimateSwapOutput(st, p.MintA, p.MintS, 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(499), q.Earning)
	assert.Equal(t, uint64(996_005), q.PaidAmount)
}
