package engine

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/aman-zulfiqar/solana-route-aggregator/internal/splswap"
)

// txPlan accumulates the instructions of one request. Setup instructions
// (account provisioning) run before the swap legs; everything lands in one
// transaction so the environment applies all of it or none of it.
type txPlan struct {
	setup   []solana.Instruction
	legs    []solana.Instruction
	created map[solana.PublicKey]bool
}

func newTxPlan() *txPlan {
	return &txPlan{created: make(map[solana.PublicKey]bool)}
}

func (p *txPlan) addSetup(ix solana.Instruction) {
	p.setup = append(p.setup, ix)
}

func (p *txPlan) addLeg(ix solana.Instruction) {
	p.legs = append(p.legs, ix)
}

func (p *txPlan) markProvisioned(account solana.PublicKey) {
	p.created[account] = true
}

func (p *txPlan) provisioned(account solana.PublicKey) bool {
	return p.created[account]
}

func (p *txPlan) instructions() []solana.Instruction {
	out := make([]solana.Instruction, 0, len(p.setup)+len(p.legs))
	out = append(out, p.setup...)
	out = append(out, p.legs...)
	return out
}

// ixRecorder implements the router's SwapExecutor by recording downstream
// swap-program instructions into a plan. The limit travels inside the
// instruction data; the swap program enforces it at execution time.
type ixRecorder struct {
	plan *txPlan
}

func (r *ixRecorder) Swap(_ context.Context, programID solana.PublicKey, amount, limit uint64, accs splswap.SwapAccounts) error {
	ix, err := splswap.NewSwapInstruction(programID, amount, limit, accs)
	if err != nil {
		return err
	}
	r.plan.addLeg(ix)
	return nil
}

func (r *ixRecorder) AddLiquidity(_ context.Context, programID solana.PublicKey, deltaS, deltaA, deltaB uint64, accs splswap.LiquidityAccounts) error {
	ix, err := splswap.NewAddLiquidityInstruction(programID, deltaS, deltaA, deltaB, accs)
	if err != nil {
		return err
	}
	r.plan.addLeg(ix)
	return nil
}

func (r *ixRecorder) RemoveLiquidity(_ context.Context, programID solana.PublicKey, lpt uint64, accs splswap.LiquidityAccounts) error {
	ix, err := splswap.NewRemoveLiquidityInstruction(programID, lpt, accs)
	if err != nil {
		return err
	}
	r.plan.addLeg(ix)
	return nil
}
