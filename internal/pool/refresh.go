package pool

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
)

// BalanceFetcher reads a token account balance from the ledger.
type BalanceFetcher interface {
	TokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error)
}

// Refresh fetches the three treasury balances of a pool into a fresh State.
func Refresh(ctx context.Context, f BalanceFetcher, p *Pool) (*State, error) {
	reserveS, err := f.TokenAccountBalance(ctx, p.TreasuryS)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch treasury S balance: %w", err)
	}
	reserveA, err := f.TokenAccountBalance(ctx, p.TreasuryA)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch treasury A balance: %w", err)
	}
	reserveB, err := f.TokenAccountBalance(ctx, p.TreasuryB)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch treasury B balance: %w", err)
	}

	return &State{
		Pool:      p,
		ReserveS:  reserveS,
		ReserveA:  reserveA,
		ReserveB:  reserveB,
		Timestamp: time.Now().Unix(),
	}, nil
}
