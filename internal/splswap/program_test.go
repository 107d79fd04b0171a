package splswap

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key() solana.PublicKey { return solana.NewWallet().PublicKey() }

func TestNewSwapInstruction(t *testing.T) {
	programID := key()
	accs := SwapAccounts{
		Payer:       key(),
		Pool:        key(),
		Vault:       key(),
		Src:         key(),
		TreasuryBid: key(),
		Dst:         key(),
		TreasuryAsk: key(),
		TreasuryS:   key(),
		Treasurer:   key(),
	}

	ix, err := NewSwapInstruction(programID, 12_345, 12_000, accs)
	require.NoError(t, err)
	assert.Equal(t, programID, ix.ProgramID())

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 17)
	assert.Equal(t, codeSwap, data[0])
	assert.Equal(t, uint64(12_345), binary.LittleEndian.Uint64(data[1:9]))
	assert.Equal(t, uint64(12_000), binary.LittleEndian.Uint64(data[9:17]))

	metas := ix.Accounts()
	require.Len(t, metas, 10)
	assert.Equal(t, accs.Payer, metas[0].PublicKey)
	assert.True(t, metas[0].IsSigner)
	assert.Equal(t, accs.Src, metas[3].PublicKey)
	assert.Equal(t, accs.Dst, metas[5].PublicKey)
	assert.Equal(t, accs.Treasurer, metas[8].PublicKey)
	assert.False(t, metas[8].IsWritable)
	assert.Equal(t, solana.TokenProgramID, metas[9].PublicKey)
}

func TestNewSwapInstruction_ZeroProgram(t *testing.T) {
	_, err := NewSwapInstruction(solana.PublicKey{}, 1, 1, SwapAccounts{})
	assert.Error(t, err)
}

func TestLiquidityInstructions(t *testing.T) {
	programID := key()
	accs := LiquidityAccounts{
		Owner:     key(),
		Pool:      key(),
		LPT:       key(),
		MintLPT:   key(),
		SideS:     key(),
		TreasuryS: key(),
		SideA:     key(),
		TreasuryA: key(),
		SideB:     key(),
		TreasuryB: key(),
		Treasurer: key(),
	}

	add, err := NewAddLiquidityInstruction(programID, 5, 6, 7, accs)
	require.NoError(t, err)
	data, err := add.Data()
	require.NoError(t, err)
	require.Len(t, data, 25)
	assert.Equal(t, codeAddLiquidity, data[0])
	assert.Equal(t, uint64(5), binary.LittleEndian.Uint64(data[1:9]))
	assert.Equal(t, uint64(6), binary.LittleEndian.Uint64(data[9:17]))
	assert.Equal(t, uint64(7), binary.LittleEndian.Uint64(data[17:25]))
	assert.Len(t, add.Accounts(), 12)

	rm, err := NewRemoveLiquidityInstruction(programID, 99, accs)
	require.NoError(t, err)
	data, err = rm.Data()
	require.NoError(t, err)
	require.Len(t, data, 9)
	assert.Equal(t, codeRemoveLiquidity, data[0])
	assert.Equal(t, uint64(99), binary.LittleEndian.Uint64(data[1:9]))

	// Both liquidity calls share one account order.
	assert.Equal(t, add.Accounts(), rm.Accounts())
}
