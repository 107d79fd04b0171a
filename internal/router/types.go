package router

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/aman-zulfiqar/solana-route-aggregator/internal/pool"
	"github.com/aman-zulfiqar/solana-route-aggregator/internal/splswap"
)

// SwapExecutor performs one atomic trade against one pool. Implementations
// decide what "perform" means: production records the downstream instruction
// into the request's transaction, tests apply the trade to fake pools. The
// executor, not the router, enforces the minimum-output limit.
type SwapExecutor interface {
	Swap(ctx context.Context, programID solana.PublicKey, amount, limit uint64, accs splswap.SwapAccounts) error
	AddLiquidity(ctx context.Context, programID solana.PublicKey, deltaS, deltaA, deltaB uint64, accs splswap.LiquidityAccounts) error
	RemoveLiquidity(ctx context.Context, programID solana.PublicKey, lpt uint64, accs splswap.LiquidityAccounts) error
}

// AccountProvisioner lazily creates destination holding accounts. Initialize
// is only requested when IsUsable reports false.
type AccountProvisioner interface {
	IsUsable(ctx context.Context, account solana.PublicKey) (bool, error)
	Initialize(ctx context.Context, account, owner, mint solana.PublicKey) error
}

// SwapParams is a single-hop swap request.
type SwapParams struct {
	Amount uint64
	Limit  uint64

	Payer solana.PublicKey
	Pool  *pool.Pool

	MintBid solana.PublicKey // input mint
	MintAsk solana.PublicKey // output mint
	Src     solana.PublicKey // payer's input holding account
	Dst     solana.PublicKey // payer's destination holding account
}

// RouteParams is a two-hop route request: MintBid -> primary mint -> MintAsk
// across two pools sharing the primary mint.
type RouteParams struct {
	Amount      uint64
	FirstLimit  uint64 // minimum acceptable output of leg 1
	SecondLimit uint64 // minimum acceptable output of leg 2

	Payer  solana.PublicKey
	First  *pool.State // fresh snapshot of the leg-1 pool
	Second *pool.State // fresh snapshot of the leg-2 pool

	MintBid solana.PublicKey
	MintAsk solana.PublicKey
	Src     solana.PublicKey
	Middle  solana.PublicKey // payer's holding account for the primary mint
	Dst     solana.PublicKey
}

// LiquidityParams covers both add and remove requests; Deltas are read on
// add, LPT on remove. SideS/A/B are the payer's accounts per mint, LPTAccount
// holds the pool share tokens.
type LiquidityParams struct {
	DeltaS uint64
	DeltaA uint64
	DeltaB uint64
	LPT    uint64

	Payer      solana.PublicKey
	Pool       *pool.Pool
	LPTAccount solana.PublicKey
	SideS      solana.PublicKey
	SideA      solana.PublicKey
	SideB      solana.PublicKey
}
