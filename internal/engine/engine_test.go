package engine

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/solana-route-aggregator/internal/instruction"
	"github.com/aman-zulfiqar/solana-route-aggregator/internal/splswap"
)

func TestTxPlanSetupRunsBeforeLegs(t *testing.T) {
	plan := newTxPlan()

	legProgram := solana.NewWallet().PublicKey()
	setupIx := NewCreateAssociatedTokenAccountIx(
		solana.NewWallet().PublicKey(),
		solana.NewWallet().PublicKey(),
		solana.NewWallet().PublicKey(),
		solana.NewWallet().PublicKey(),
	)
	legIx := solana.NewInstruction(legProgram, nil, []byte{3})

	// Legs recorded first must still come after setup in the final order.
	plan.addLeg(legIx)
	plan.addSetup(setupIx)

	ixs := plan.instructions()
	require.Len(t, ixs, 2)
	assert.Equal(t, associatedTokenProgramID, ixs[0].ProgramID())
	assert.Equal(t, legProgram, ixs[1].ProgramID())
}

func TestIxRecorderAppendsSwapLegs(t *testing.T) {
	plan := newTxPlan()
	rec := &ixRecorder{plan: plan}

	programID := solana.NewWallet().PublicKey()
	accs := splswap.SwapAccounts{
		Payer:       solana.NewWallet().PublicKey(),
		Pool:        solana.NewWallet().PublicKey(),
		Vault:       solana.NewWallet().PublicKey(),
		Src:         solana.NewWallet().PublicKey(),
		TreasuryBid: solana.NewWallet().PublicKey(),
		Dst:         solana.NewWallet().PublicKey(),
		TreasuryAsk: solana.NewWallet().PublicKey(),
		TreasuryS:   solana.NewWallet().PublicKey(),
		Treasurer:   solana.NewWallet().PublicKey(),
	}

	require.NoError(t, rec.Swap(context.Background(), programID, 1000, 900, accs))
	require.NoError(t, rec.Swap(context.Background(), programID, 500, 400, accs))

	ixs := plan.instructions()
	require.Len(t, ixs, 2)
	for _, ix := range ixs {
		assert.Equal(t, programID, ix.ProgramID())
	}
}

func TestAtaProvisionerInitialize(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	ata, _, err := FindAssociatedTokenAddress(owner, mint)
	require.NoError(t, err)

	plan := newTxPlan()
	calls := 0
	prov := &ataProvisioner{
		payer: owner,
		exists: func(ctx context.Context, account solana.PublicKey) (bool, error) {
			calls++
			return false, nil
		},
		plan: plan,
	}

	usable, err := prov.IsUsable(context.Background(), ata)
	require.NoError(t, err)
	assert.False(t, usable)
	assert.Equal(t, 1, calls)

	require.NoError(t, prov.Initialize(context.Background(), ata, owner, mint))
	assert.Len(t, plan.instructions(), 1)

	// Scheduled accounts are usable without another ledger lookup.
	usable, err = prov.IsUsable(context.Background(), ata)
	require.NoError(t, err)
	assert.True(t, usable)
	assert.Equal(t, 1, calls)
}

func TestAtaProvisionerRejectsForeignAccount(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	notATA := solana.NewWallet().PublicKey()

	prov := &ataProvisioner{
		payer:  owner,
		exists: func(ctx context.Context, account solana.PublicKey) (bool, error) { return false, nil },
		plan:   newTxPlan(),
	}

	err := prov.Initialize(context.Background(), notATA, owner, mint)
	assert.Error(t, err)
}

func TestFindAssociatedTokenAddressDeterministic(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	a1, bump1, err := FindAssociatedTokenAddress(owner, mint)
	require.NoError(t, err)
	a2, bump2, err := FindAssociatedTokenAddress(owner, mint)
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
	assert.Equal(t, bump1, bump2)

	other, _, err := FindAssociatedTokenAddress(owner, solana.NewWallet().PublicKey())
	require.NoError(t, err)
	assert.NotEqual(t, a1, other)
}

func TestDispatchRejectsMalformedData(t *testing.T) {
	e := &Engine{}

	_, err := e.Dispatch(context.Background(), []byte{}, DispatchTarget{})
	assert.ErrorIs(t, err, instruction.ErrInvalidInstruction)

	_, err = e.Dispatch(context.Background(), []byte{9, 0, 0, 0}, DispatchTarget{})
	assert.ErrorIs(t, err, instruction.ErrInvalidInstruction)

	// Truncated swap payload.
	_, err = e.Dispatch(context.Background(), []byte{0, 1, 2, 3}, DispatchTarget{})
	assert.ErrorIs(t, err, instruction.ErrInvalidInstruction)
}

func TestRiskManagerLimits(t *testing.T) {
	rm := NewRiskManager(RiskConfig{MaxAmountIn: 100, DailyLimitIn: 150})

	assert.NoError(t, rm.Check(100))
	assert.Error(t, rm.Check(101))

	rm.Record(100)
	assert.Error(t, rm.Check(100)) // would exceed the daily cap
	assert.NoError(t, rm.Check(50))
}

func TestMintFromSymbol(t *testing.T) {
	sol, err := MintFromSymbol("SOL")
	require.NoError(t, err)
	assert.Equal(t, TokenMints["SOL"], sol.String())

	raw := solana.NewWallet().PublicKey()
	parsed, err := MintFromSymbol(raw.String())
	require.NoError(t, err)
	assert.Equal(t, raw, parsed)

	_, err = MintFromSymbol("not-a-mint")
	assert.Error(t, err)
}

func TestPairLabelUsesKnownSymbols(t *testing.T) {
	sol := solana.MustPublicKeyFromBase58(TokenMints["SOL"])
	usdc := solana.MustPublicKeyFromBase58(TokenMints["USDC"])
	assert.Equal(t, "SOL/USDC", pairLabel(sol, usdc))

	unknown := solana.NewWallet().PublicKey()
	assert.Equal(t, "SOL/"+unknown.String(), pairLabel(sol, unknown))
}
