// Package splswap builds instructions for the external constant-product swap
// program. The aggregator never mutates pool reserves itself; every balance
// change is delegated to this program, which also enforces the caller-chosen
// minimum-output limit on each swap.
package splswap

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Downstream instruction codes. These are the swap program's own
// discriminants, unrelated to the aggregator's request tags.
const (
	codeAddLiquidity    byte = 1
	codeRemoveLiquidity byte = 2
	codeSwap            byte = 3
)

// SwapAccounts is the account wiring of one swap leg.
//
// Account order expected by the swap program:
// 0. payer (signer)      5. dst
// 1. pool                6. treasury_ask
// 2. vault               7. treasury_s
// 3. src                 8. treasurer (read-only)
// 4. treasury_bid        9. token_program (read-only)
type SwapAccounts struct {
	Payer       solana.PublicKey
	Pool        solana.PublicKey
	Vault       solana.PublicKey
	Src         solana.PublicKey
	TreasuryBid solana.PublicKey
	Dst         solana.PublicKey
	TreasuryAsk solana.PublicKey
	TreasuryS   solana.PublicKey
	Treasurer   solana.PublicKey
}

// NewSwapInstruction builds a swap against one pool: debit amount from the
// input treasury, credit the output treasury, fail if the realized output is
// below limit.
func NewSwapInstruction(programID solana.PublicKey, amount, limit uint64, accs SwapAccounts) (solana.Instruction, error) {
	if programID.IsZero() {
		return nil, fmt.Errorf("swap program id is zero")
	}

	data := make([]byte, 17)
	data[0] = codeSwap
	binary.LittleEndian.PutUint64(data[1:9], amount)
	binary.LittleEndian.PutUint64(data[9:17], limit)

	accounts := []*solana.AccountMeta{
		{PublicKey: accs.Payer, IsWritable: true, IsSigner: true},
		{PublicKey: accs.Pool, IsWritable: true, IsSigner: false},
		{PublicKey: accs.Vault, IsWritable: true, IsSigner: false},
		{PublicKey: accs.Src, IsWritable: true, IsSigner: false},
		{PublicKey: accs.TreasuryBid, IsWritable: true, IsSigner: false},
		{PublicKey: accs.Dst, IsWritable: true, IsSigner: false},
		{PublicKey: accs.TreasuryAsk, IsWritable: true, IsSigner: false},
		{PublicKey: accs.TreasuryS, IsWritable: true, IsSigner: false},
		{PublicKey: accs.Treasurer, IsWritable: false, IsSigner: false},
		{PublicKey: solana.TokenProgramID, IsWritable: false, IsSigner: false},
	}

	return solana.NewInstruction(programID, accounts, data), nil
}

// LiquidityAccounts is the account wiring of an add/remove liquidity call.
// Src* double as Dst* on removal; the order is identical either way.
type LiquidityAccounts struct {
	Owner     solana.PublicKey
	Pool      solana.PublicKey
	LPT       solana.PublicKey
	MintLPT   solana.PublicKey
	SideS     solana.PublicKey // user account for mint S
	TreasuryS solana.PublicKey
	SideA     solana.PublicKey
	TreasuryA solana.PublicKey
	SideB     solana.PublicKey
	TreasuryB solana.PublicKey
	Treasurer solana.PublicKey
}

// NewAddLiquidityInstruction deposits deltaS/deltaA/deltaB and mints LP
// tokens. Share accounting happens entirely inside the swap program.
func NewAddLiquidityInstruction(programID solana.PublicKey, deltaS, deltaA, deltaB uint64, accs LiquidityAccounts) (solana.Instruction, error) {
	if programID.IsZero() {
		return nil, fmt.Errorf("swap program id is zero")
	}

	data := make([]byte, 25)
	data[0] = codeAddLiquidity
	binary.LittleEndian.PutUint64(data[1:9], deltaS)
	binary.LittleEndian.PutUint64(data[9:17], deltaA)
	binary.LittleEndian.PutUint64(data[17:25], deltaB)

	return solana.NewInstruction(programID, liquidityMetas(accs), data), nil
}

// NewRemoveLiquidityInstruction burns lpt LP tokens and withdraws the matching
// share of all three reserves.
func NewRemoveLiquidityInstruction(programID solana.PublicKey, lpt uint64, accs LiquidityAccounts) (solana.Instruction, error) {
	if programID.IsZero() {
		return nil, fmt.Errorf("swap program id is zero")
	}

	data := make([]byte, 9)
	data[0] = codeRemoveLiquidity
	binary.LittleEndian.PutUint64(data[1:9], lpt)

	return solana.NewInstruction(programID, liquidityMetas(accs), data), nil
}

func liquidityMetas(accs LiquidityAccounts) []*solana.AccountMeta {
	return []*solana.AccountMeta{
		{PublicKey: accs.Owner, IsWritable: true, IsSigner: true},
		{PublicKey: accs.Pool, IsWritable: true, IsSigner: false},
		{PublicKey: accs.LPT, IsWritable: true, IsSigner: false},
		{PublicKey: accs.MintLPT, IsWritable: true, IsSigner: false},
		{PublicKey: accs.SideS, IsWritable: true, IsSigner: false},
		{PublicKey: accs.TreasuryS, IsWritable: true, IsSigner: false},
		{PublicKey: accs.SideA, IsWritable: true, IsSigner: false},
		{PublicKey: accs.TreasuryA, IsWritable: true, IsSigner: false},
		{PublicKey: accs.SideB, IsWritable: true, IsSigner: false},
		{PublicKey: accs.TreasuryB, IsWritable: true, IsSigner: false},
		{PublicKey: accs.Treasurer, IsWritable: false, IsSigner: false},
		{PublicKey: solana.TokenProgramID, IsWritable: false, IsSigner: false},
	}
}
