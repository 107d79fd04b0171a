// Package router orchestrates swap, two-hop route and liquidity requests over
// injected collaborators. It reads pool snapshots and produces plans; reserve
// balances are only ever mutated downstream by the swap program, and a request
// either applies in full or not at all.
package router

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-route-aggregator/internal/curve"
	"github.com/aman-zulfiqar/solana-route-aggregator/internal/pool"
	"github.com/aman-zulfiqar/solana-route-aggregator/internal/splswap"
)

type Router struct {
	exec   SwapExecutor
	prov   AccountProvisioner
	logger *logrus.Logger
}

func New(exec SwapExecutor, prov AccountProvisioner, logger *logrus.Logger) *Router {
	if logger == nil {
		logger = logrus.New()
	}
	return &Router{exec: exec, prov: prov, logger: logger}
}

// Swap executes a single-hop trade: provision the destination if needed, then
// delegate the trade (and the limit check) to the swap program.
func (r *Router) Swap(ctx context.Context, p SwapParams) error {
	if err := r.ensureUsable(ctx, p.Dst, p.Payer, p.MintAsk); err != nil {
		return err
	}

	accs, err := legAccounts(p.Pool, p.Payer, p.MintBid, p.MintAsk, p.Src, p.Dst)
	if err != nil {
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"pool":   p.Pool.Name,
		"amount": p.Amount,
		"limit":  p.Limit,
	}).Debug("executing swap")

	return r.exec.Swap(ctx, p.Pool.ProgramID, p.Amount, p.Limit, accs)
}

// Route executes MintBid -> primary -> MintAsk across two pools as one
// indivisible unit, with an independent slippage limit per leg.
//
// Leg 2 is sized from the leg-1 pool snapshot taken before leg 1 executes:
// the bridge-leg quote only predicts the router's own price impact, while the
// authoritative fee accounting happens inside the swap program when each leg
// runs. The quote is exempted from the platform earning so one logical route
// is not charged it twice.
func (r *Router) Route(ctx context.Context, p RouteParams) error {
	firstPool, secondPool := p.First.Pool, p.Second.Pool
	if !firstPool.SharesPrimaryMint(secondPool) {
		return ErrUnmatchedPrimaryMints
	}
	mintPrimary := firstPool.MintS

	if err := r.ensureUsable(ctx, p.Middle, p.Payer, mintPrimary); err != nil {
		return err
	}
	if err := r.ensureUsable(ctx, p.Dst, p.Payer, p.MintAsk); err != nil {
		return err
	}

	middleAmount, err := EstimateMiddleAmount(p.First, p.MintBid, p.Amount)
	if err != nil {
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"first_pool":    firstPool.Name,
		"second_pool":   secondPool.Name,
		"amount":        p.Amount,
		"middle_amount": middleAmount,
	}).Debug("executing route")

	// Leg 1: MintBid -> primary, landing in the bridge holding account.
	firstAccs, err := legAccounts(firstPool, p.Payer, p.MintBid, mintPrimary, p.Src, p.Middle)
	if err != nil {
		return err
	}
	if err := r.exec.Swap(ctx, firstPool.ProgramID, p.Amount, p.FirstLimit, firstAccs); err != nil {
		return fmt.Errorf("first leg: %w", err)
	}

	// Leg 2: primary -> MintAsk, spending exactly the quoted middle amount.
	secondAccs, err := legAccounts(secondPool, p.Payer, mintPrimary, p.MintAsk, p.Middle, p.Dst)
	if err != nil {
		return err
	}
	if err := r.exec.Swap(ctx, secondPool.ProgramID, middleAmount, p.SecondLimit, secondAccs); err != nil {
		return fmt.Errorf("second leg: %w", err)
	}

	return nil
}

// AddLiquidity forwards a three-sided deposit to the swap program after
// making sure the LP token account can receive the minted shares.
func (r *Router) AddLiquidity(ctx context.Context, p LiquidityParams) error {
	if err := r.ensureUsable(ctx, p.LPTAccount, p.Payer, p.Pool.MintLPT); err != nil {
		return err
	}
	return r.exec.AddLiquidity(ctx, p.Pool.ProgramID, p.DeltaS, p.DeltaA, p.DeltaB, liquidityAccounts(p))
}

// RemoveLiquidity forwards an LP burn, provisioning all three withdrawal
// destinations first.
func (r *Router) RemoveLiquidity(ctx context.Context, p LiquidityParams) error {
	if err := r.ensureUsable(ctx, p.SideS, p.Payer, p.Pool.MintS); err != nil {
		return err
	}
	if err := r.ensureUsable(ctx, p.SideA, p.Payer, p.Pool.MintA); err != nil {
		return err
	}
	if err := r.ensureUsable(ctx, p.SideB, p.Payer, p.Pool.MintB); err != nil {
		return err
	}
	return r.exec.RemoveLiquidity(ctx, p.Pool.ProgramID, p.LPT, liquidityAccounts(p))
}

// EstimateMiddleAmount quotes the decrease of the primary-mint reserve for a
// hypothetical trade of amount into the pool: the exact quantity leg 2 should
// request as input.
func EstimateMiddleAmount(state *pool.State, mintBid solana.PublicKey, amount uint64) (uint64, error) {
	bidReserve, err := state.ParseReserve(mintBid)
	if err != nil {
		return 0, err
	}
	middleReserve, err := state.ParseReserve(state.Pool.MintS)
	if err != nil {
		return 0, err
	}

	newBidReserve := bidReserve + amount
	if newBidReserve < bidReserve {
		return 0, curve.ErrOverflow
	}

	q, err := curve.CurveInFee(newBidReserve, bidReserve, middleReserve, true)
	if err != nil {
		return 0, err
	}
	if middleReserve < q.NewAskReserve {
		return 0, curve.ErrOverflow
	}
	return middleReserve - q.NewAskReserve, nil
}

// EstimateSwapOutput quotes the trader's net receipt for a terminal trade
// (earning charged) without executing it.
func EstimateSwapOutput(state *pool.State, mintBid, mintAsk solana.PublicKey, amount uint64) (curve.Quote, error) {
	bidReserve, err := state.ParseReserve(mintBid)
	if err != nil {
		return curve.Quote{}, err
	}
	askReserve, err := state.ParseReserve(mintAsk)
	if err != nil {
		return curve.Quote{}, err
	}

	newBidReserve := bidReserve + amount
	if newBidReserve < bidReserve {
		return curve.Quote{}, curve.ErrOverflow
	}
	return curve.CurveInFee(newBidReserve, bidReserve, askReserve, false)
}

func (r *Router) ensureUsable(ctx context.Context, account, owner, mint solana.PublicKey) error {
	usable, err := r.prov.IsUsable(ctx, account)
	if err != nil {
		return fmt.Errorf("check account %s: %w", account, err)
	}
	if usable {
		return nil
	}
	if err := r.prov.Initialize(ctx, account, owner, mint); err != nil {
		return fmt.Errorf("initialize account %s: %w", account, err)
	}
	return nil
}

func legAccounts(p *pool.Pool, payer, mintBid, mintAsk, src, dst solana.PublicKey) (splswap.SwapAccounts, error) {
	treasuryBid, err := p.TreasuryFor(mintBid)
	if err != nil {
		return splswap.SwapAccounts{}, err
	}
	treasuryAsk, err := p.TreasuryFor(mintAsk)
	if err != nil {
		return splswap.SwapAccounts{}, err
	}
	return splswap.SwapAccounts{
		Payer:       payer,
		Pool:        p.Address,
		Vault:       p.Vault,
		Src:         src,
		TreasuryBid: treasuryBid,
		Dst:         dst,
		TreasuryAsk: treasuryAsk,
		TreasuryS:   p.TreasuryS,
		Treasurer:   p.Treasurer,
	}, nil
}

func liquidityAccounts(p LiquidityParams) splswap.LiquidityAccounts {
	return splswap.LiquidityAccounts{
		Owner:     p.Payer,
		Pool:      p.Pool.Address,
		LPT:       p.LPTAccount,
		MintLPT:   p.Pool.MintLPT,
		SideS:     p.SideS,
		TreasuryS: p.Pool.TreasuryS,
		SideA:     p.SideA,
		TreasuryA: p.Pool.TreasuryA,
		SideB:     p.SideB,
		TreasuryB: p.Pool.TreasuryB,
		Treasurer: p.Pool.Treasurer,
	}
}
