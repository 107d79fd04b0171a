package engine

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// SwapRequest is a single-hop trade through one pool.
type SwapRequest struct {
	InputMint  solana.PublicKey
	OutputMint solana.PublicKey
	Amount     uint64
	Limit      uint64 // minimum acceptable output

	// Optional explicit pool; resolved by mints when empty.
	PoolName string
}

// RouteRequest is a two-hop trade across two pools sharing a primary mint.
type RouteRequest struct {
	InputMint   solana.PublicKey
	OutputMint  solana.PublicKey
	Amount      uint64
	FirstLimit  uint64
	SecondLimit uint64

	// Optional explicit pools; resolved by mints when empty.
	FirstPoolName  string
	SecondPoolName string
}

// LiquidityRequest covers add and remove liquidity against one pool.
type LiquidityRequest struct {
	PoolName string

	// Add side
	DeltaS uint64
	DeltaA uint64
	DeltaB uint64

	// Remove side
	LPT uint64
}

// QuoteResult is a priced but unexecuted request.
type QuoteResult struct {
	FirstPool  string `json:"first_pool"`
	SecondPool string `json:"second_pool,omitempty"`

	AmountIn     uint64 `json:"amount_in"`
	MiddleAmount uint64 `json:"middle_amount,omitempty"` // routed quotes only
	AmountOut    uint64 `json:"amount_out"`
	Earning      uint64 `json:"earning"`

	ReserveIn  uint64 `json:"reserve_in"`
	ReserveOut uint64 `json:"reserve_out"`

	QuotedAt time.Time `json:"quoted_at"`
}

// ExecResult is the outcome of an executed request.
type ExecResult struct {
	Signature string        `json:"signature"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`

	Quote *QuoteResult `json:"quote,omitempty"`
}

// TokenDecimals maps token symbols to their decimal places.
var TokenDecimals = map[string]uint8{
	"SOL":  9,
	"USDC": 6,
	"USDT": 6,
	"RAY":  6,
	"SRM":  6,
}

// TokenMints maps token symbols to their mint addresses.
var TokenMints = map[string]string{
	"SOL":  "So11111111111111111111111111111111111111112",
	"USDC": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
	"USDT": "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB",
	// Add more as needed
}

// MintFromSymbol resolves a token symbol or raw base58 mint string.
func MintFromSymbol(s string) (solana.PublicKey, error) {
	if m, ok := TokenMints[s]; ok {
		return solana.PublicKeyFromBase58(m)
	}
	return solana.PublicKeyFromBase58(s)
}
