// Package engine wires the router, wallet, pool registry, and storage into
// end-to-end quote and execute operations. One request becomes one Solana
// transaction: provisioning instructions first, then the trade legs, so a
// failing leg rolls back everything the request touched.
package engine

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-route-aggregator/internal/cache"
	"github.com/aman-zulfiqar/solana-route-aggregator/internal/constants"
	"github.com/aman-zulfiqar/solana-route-aggregator/internal/instruction"
	"github.com/aman-zulfiqar/solana-route-aggregator/internal/models"
	"github.com/aman-zulfiqar/solana-route-aggregator/internal/pool"
	"github.com/aman-zulfiqar/solana-route-aggregator/internal/router"
	aggrpc "github.com/aman-zulfiqar/solana-route-aggregator/internal/rpc"
	"github.com/aman-zulfiqar/solana-route-aggregator/internal/wallet"
)

// Engine is the main orchestrator for swap and route operations
type Engine struct {
	wallet   *wallet.Wallet
	rpc      *aggrpc.Client
	registry *pool.Registry
	redis    *cache.RedisCache
	store    *cache.ClickHouseStore
	risk     *RiskManager
	logger   *logrus.Logger

	confirmTimeout time.Duration
}

// EngineConfig holds configuration for the engine
type EngineConfig struct {
	// RPC settings
	RPCURL       string
	RPCTimeout   time.Duration
	MaxRetries   int
	RetryBackoff time.Duration

	// Wallet
	WalletPrivateKey string

	// Pool configuration
	PoolConfigPath string

	// Storage
	RedisAddr      string
	ClickHouseAddr string

	// Risk management
	RiskConfig RiskConfig

	Logger *logrus.Logger
}

// DefaultEngineConfig returns sensible defaults
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		RPCURL:         "https://api.mainnet-beta.solana.com",
		RPCTimeout:     30 * time.Second,
		MaxRetries:     3,
		RetryBackoff:   1 * time.Second,
		PoolConfigPath: "internal/config/pools.json",
		RedisAddr:      "",
		ClickHouseAddr: "",
		RiskConfig:     DefaultRiskConfig(),
	}
}

// NewEngine creates an engine with all dependencies
func NewEngine(cfg EngineConfig) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	// 1. Initialize wallet
	w, err := wallet.NewWallet(wallet.WalletConfig{
		RPCURL:              cfg.RPCURL,
		PrivateKey:          cfg.WalletPrivateKey,
		Timeout:             cfg.RPCTimeout,
		MaxRetries:          cfg.MaxRetries,
		RetryBackoff:        cfg.RetryBackoff,
		DefaultCommitment:   "confirmed",
		SkipPreflight:       false,
		PreflightCommitment: "processed",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	// 2. RPC client for reserve reads
	rpcClient := aggrpc.NewClient(aggrpc.ClientConfig{
		BaseURL:      cfg.RPCURL,
		Timeout:      cfg.RPCTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       logger,
	})

	// 3. Load pool registry
	registry, err := pool.NewRegistry(cfg.PoolConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load pool registry: %w", err)
	}

	// 4. Optional Redis cache
	var redisCache *cache.RedisCache
	if cfg.RedisAddr != "" {
		redisCache = cache.NewRedisCache(cfg.RedisAddr, logger)
		if err := redisCache.Ping(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
	}

	// 5. Optional ClickHouse store
	var store *cache.ClickHouseStore
	if cfg.ClickHouseAddr != "" {
		store, err = cache.NewClickHouseStore(cfg.ClickHouseAddr, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
		}
	}

	return &Engine{
		wallet:         w,
		rpc:            rpcClient,
		registry:       registry,
		redis:          redisCache,
		store:          store,
		risk:           NewRiskManager(cfg.RiskConfig),
		logger:         logger,
		confirmTimeout: 60 * time.Second,
	}, nil
}

// NewEngineFromEnv creates an engine using environment variables
func NewEngineFromEnv() (*Engine, error) {
	cfg := DefaultEngineConfig()

	if v := os.Getenv("SOLANA_RPC_URL"); v != "" {
		cfg.RPCURL = v
	}
	cfg.WalletPrivateKey = os.Getenv("WALLET_PRIVATE_KEY")

	if v := os.Getenv("AGGREGATOR_POOL_CONFIG_PATH"); v != "" {
		cfg.PoolConfigPath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("CLICKHOUSE_ADDR"); v != "" {
		cfg.ClickHouseAddr = v
	}

	if v := os.Getenv("AGGREGATOR_REQUIRE_SIMULATION"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.RiskConfig.RequireSimulation = b
		}
	}
	if v := os.Getenv("AGGREGATOR_MAX_AMOUNT_IN"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.RiskConfig.MaxAmountIn = n
		}
	}

	return NewEngine(cfg)
}

// Registry exposes the configured pools for read-only consumers.
func (e *Engine) Registry() *pool.Registry { return e.registry }

// WalletAddress returns the engine wallet's public address.
func (e *Engine) WalletAddress() string { return e.wallet.Address() }

// Close releases all storage connections.
func (e *Engine) Close() error {
	if e.redis != nil {
		if err := e.redis.Close(); err != nil {
			e.logger.WithError(err).Warn("Error closing Redis")
		}
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.logger.WithError(err).Warn("Error closing ClickHouse")
		}
	}
	return e.wallet.Close()
}

// GetSwapQuote prices a single-hop swap without executing it.
func (e *Engine) GetSwapQuote(ctx context.Context, req SwapRequest) (*QuoteResult, error) {
	p, err := e.resolveSwapPool(req)
	if err != nil {
		return nil, err
	}

	state, err := pool.Refresh(ctx, e.rpc, p)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh pool %s: %w", p.Name, err)
	}

	q, err := router.EstimateSwapOutput(state, req.InputMint, req.OutputMint, req.Amount)
	if err != nil {
		return nil, err
	}

	reserveIn, _ := state.ParseReserve(req.InputMint)
	reserveOut, _ := state.ParseReserve(req.OutputMint)

	return &QuoteResult{
		FirstPool:  p.Name,
		AmountIn:   req.Amount,
		AmountOut:  q.PaidAmount,
		Earning:    q.Earning,
		ReserveIn:  reserveIn,
		ReserveOut: reserveOut,
		QuotedAt:   time.Now(),
	}, nil
}

// GetRouteQuote prices a two-hop route without executing it. Both legs are
// priced from the same pre-trade snapshots the executed route would use.
func (e *Engine) GetRouteQuote(ctx context.Context, req RouteRequest) (*QuoteResult, error) {
	first, second, err := e.resolveRoutePools(req)
	if err != nil {
		return nil, err
	}

	firstState, err := pool.Refresh(ctx, e.rpc, first)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh pool %s: %w", first.Name, err)
	}
	secondState, err := pool.Refresh(ctx, e.rpc, second)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh pool %s: %w", second.Name, err)
	}

	middle, err := router.EstimateMiddleAmount(firstState, req.InputMint, req.Amount)
	if err != nil {
		return nil, err
	}
	q, err := router.EstimateSwapOutput(secondState, second.MintS, req.OutputMint, middle)
	if err != nil {
		return nil, err
	}

	reserveIn, _ := firstState.ParseReserve(req.InputMint)
	reserveOut, _ := secondState.ParseReserve(req.OutputMint)

	return &QuoteResult{
		FirstPool:    first.Name,
		SecondPool:   second.Name,
		AmountIn:     req.Amount,
		MiddleAmount: middle,
		AmountOut:    q.PaidAmount,
		Earning:      q.Earning,
		ReserveIn:    reserveIn,
		ReserveOut:   reserveOut,
		QuotedAt:     time.Now(),
	}, nil
}

// ExecuteSwap performs a single-hop swap end-to-end.
func (e *Engine) ExecuteSwap(ctx context.Context, req SwapRequest) (*ExecResult, error) {
	start := time.Now()

	quote, err := e.GetSwapQuote(ctx, req)
	if err != nil {
		return failed(start, nil, err), err
	}
	if err := e.risk.Check(req.Amount); err != nil {
		return failed(start, quote, err), err
	}

	p, err := e.resolveSwapPool(req)
	if err != nil {
		return failed(start, quote, err), err
	}

	owner := e.wallet.PublicKey()
	src, err := e.holdingAccount(owner, req.InputMint)
	if err != nil {
		return failed(start, quote, err), err
	}
	dst, err := e.holdingAccount(owner, req.OutputMint)
	if err != nil {
		return failed(start, quote, err), err
	}

	plan := newTxPlan()
	r := e.planner(plan, owner)
	err = r.Swap(ctx, router.SwapParams{
		Amount:  req.Amount,
		Limit:   req.Limit,
		Payer:   owner,
		Pool:    p,
		MintBid: req.InputMint,
		MintAsk: req.OutputMint,
		Src:     src,
		Dst:     dst,
	})
	if err != nil {
		return failed(start, quote, err), err
	}

	sig, err := e.sendPlan(ctx, plan)
	result := e.finish(ctx, start, sig, quote, err, &models.RouteEvent{
		Kind:      "swap",
		Pair:      pairLabel(req.InputMint, req.OutputMint),
		MintIn:    req.InputMint.String(),
		MintOut:   req.OutputMint.String(),
		AmountIn:  req.Amount,
		AmountOut: quote.AmountOut,
		Earning:   quote.Earning,
		FirstPool: p.Name,
	})
	return result, err
}

// ExecuteRoute performs a two-hop route end-to-end. Leg 2's input amount is
// fixed by the pre-trade quote of leg 1, not by leg 1's realized output.
func (e *Engine) ExecuteRoute(ctx context.Context, req RouteRequest) (*ExecResult, error) {
	start := time.Now()

	quote, err := e.GetRouteQuote(ctx, req)
	if err != nil {
		return failed(start, nil, err), err
	}
	if err := e.risk.Check(req.Amount); err != nil {
		return failed(start, quote, err), err
	}

	first, second, err := e.resolveRoutePools(req)
	if err != nil {
		return failed(start, quote, err), err
	}

	firstState, err := pool.Refresh(ctx, e.rpc, first)
	if err != nil {
		return failed(start, quote, err), err
	}
	secondState, err := pool.Refresh(ctx, e.rpc, second)
	if err != nil {
		return failed(start, quote, err), err
	}

	owner := e.wallet.PublicKey()
	src, err := e.holdingAccount(owner, req.InputMint)
	if err != nil {
		return failed(start, quote, err), err
	}
	middle, err := e.holdingAccount(owner, first.MintS)
	if err != nil {
		return failed(start, quote, err), err
	}
	dst, err := e.holdingAccount(owner, req.OutputMint)
	if err != nil {
		return failed(start, quote, err), err
	}

	plan := newTxPlan()
	r := e.planner(plan, owner)
	err = r.Route(ctx, router.RouteParams{
		Amount:      req.Amount,
		FirstLimit:  req.FirstLimit,
		SecondLimit: req.SecondLimit,
		Payer:       owner,
		First:       firstState,
		Second:      secondState,
		MintBid:     req.InputMint,
		MintAsk:     req.OutputMint,
		Src:         src,
		Middle:      middle,
		Dst:         dst,
	})
	if err != nil {
		return failed(start, quote, err), err
	}

	sig, err := e.sendPlan(ctx, plan)
	result := e.finish(ctx, start, sig, quote, err, &models.RouteEvent{
		Kind:         "route",
		Pair:         pairLabel(req.InputMint, req.OutputMint),
		MintIn:       req.InputMint.String(),
		MintOut:      req.OutputMint.String(),
		AmountIn:     req.Amount,
		MiddleAmount: quote.MiddleAmount,
		AmountOut:    quote.AmountOut,
		Earning:      quote.Earning,
		FirstPool:    first.Name,
		SecondPool:   second.Name,
	})
	return result, err
}

// AddLiquidity deposits up to three sides into a pool and mints LPT.
func (e *Engine) AddLiquidity(ctx context.Context, req LiquidityRequest) (*ExecResult, error) {
	return e.executeLiquidity(ctx, req, false)
}

// RemoveLiquidity burns LPT and withdraws the three sides pro rata.
func (e *Engine) RemoveLiquidity(ctx context.Context, req LiquidityRequest) (*ExecResult, error) {
	return e.executeLiquidity(ctx, req, true)
}

func (e *Engine) executeLiquidity(ctx context.Context, req LiquidityRequest, remove bool) (*ExecResult, error) {
	start := time.Now()

	p, err := e.registry.FindByName(req.PoolName)
	if err != nil {
		return failed(start, nil, err), err
	}

	owner := e.wallet.PublicKey()
	params := router.LiquidityParams{
		DeltaS: req.DeltaS,
		DeltaA: req.DeltaA,
		DeltaB: req.DeltaB,
		LPT:    req.LPT,
		Payer:  owner,
		Pool:   p,
	}
	for _, bind := range []struct {
		mint solana.PublicKey
		dst  *solana.PublicKey
	}{
		{p.MintLPT, &params.LPTAccount},
		{p.MintS, &params.SideS},
		{p.MintA, &params.SideA},
		{p.MintB, &params.SideB},
	} {
		acc, err := e.holdingAccount(owner, bind.mint)
		if err != nil {
			return failed(start, nil, err), err
		}
		*bind.dst = acc
	}

	plan := newTxPlan()
	r := e.planner(plan, owner)
	if remove {
		err = r.RemoveLiquidity(ctx, params)
	} else {
		err = r.AddLiquidity(ctx, params)
	}
	if err != nil {
		return failed(start, nil, err), err
	}

	sig, err := e.sendPlan(ctx, plan)
	kind := "add_liquidity"
	if remove {
		kind = "remove_liquidity"
	}
	result := e.finish(ctx, start, sig, nil, err, &models.RouteEvent{
		Kind:      kind,
		Pair:      p.Name,
		AmountIn:  req.DeltaS + req.DeltaA + req.DeltaB,
		AmountOut: req.LPT,
		FirstPool: p.Name,
	})
	return result, err
}

// DispatchTarget supplies the account context a packed instruction lacks:
// instruction data carries only amounts and limits.
type DispatchTarget struct {
	InputMint  solana.PublicKey
	OutputMint solana.PublicKey

	PoolName       string
	SecondPoolName string
}

// Dispatch decodes a packed instruction and executes it against the target.
func (e *Engine) Dispatch(ctx context.Context, data []byte, target DispatchTarget) (*ExecResult, error) {
	ix, err := instruction.Unpack(data)
	if err != nil {
		return nil, err
	}

	switch {
	case ix.Swap != nil:
		return e.ExecuteSwap(ctx, SwapRequest{
			InputMint:  target.InputMint,
			OutputMint: target.OutputMint,
			Amount:     ix.Swap.Amount,
			Limit:      ix.Swap.Limit,
			PoolName:   target.PoolName,
		})
	case ix.Route != nil:
		return e.ExecuteRoute(ctx, RouteRequest{
			InputMint:      target.InputMint,
			OutputMint:     target.OutputMint,
			Amount:         ix.Route.Amount,
			FirstLimit:     ix.Route.FirstLimit,
			SecondLimit:    ix.Route.SecondLimit,
			FirstPoolName:  target.PoolName,
			SecondPoolName: target.SecondPoolName,
		})
	case ix.AddLiquidity != nil:
		return e.AddLiquidity(ctx, LiquidityRequest{
			PoolName: target.PoolName,
			DeltaS:   ix.AddLiquidity.DeltaS,
			DeltaA:   ix.AddLiquidity.DeltaA,
			DeltaB:   ix.AddLiquidity.DeltaB,
		})
	case ix.RemoveLiquidity != nil:
		return e.RemoveLiquidity(ctx, LiquidityRequest{
			PoolName: target.PoolName,
			LPT:      ix.RemoveLiquidity.LPT,
		})
	}
	return nil, instruction.ErrInvalidInstruction
}

func (e *Engine) resolveSwapPool(req SwapRequest) (*pool.Pool, error) {
	if req.PoolName != "" {
		return e.registry.FindByName(req.PoolName)
	}
	return e.registry.FindByMints(req.InputMint, req.OutputMint)
}

func (e *Engine) resolveRoutePools(req RouteRequest) (first, second *pool.Pool, err error) {
	if req.FirstPoolName != "" && req.SecondPoolName != "" {
		if first, err = e.registry.FindByName(req.FirstPoolName); err != nil {
			return nil, nil, err
		}
		if second, err = e.registry.FindByName(req.SecondPoolName); err != nil {
			return nil, nil, err
		}
		return first, second, nil
	}
	return e.registry.FindRoute(req.InputMint, req.OutputMint)
}

// planner builds a router whose executor and provisioner record into plan.
func (e *Engine) planner(plan *txPlan, owner solana.PublicKey) *router.Router {
	exec := &ixRecorder{plan: plan}
	prov := &ataProvisioner{payer: owner, exists: e.wallet.AccountExists, plan: plan}
	return router.New(exec, prov, e.logger)
}

// holdingAccount derives the owner's associated token account for mint.
func (e *Engine) holdingAccount(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	ata, _, err := FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive holding account for %s: %w", mint, err)
	}
	return ata, nil
}

// sendPlan turns a recorded plan into one signed transaction and lands it.
func (e *Engine) sendPlan(ctx context.Context, plan *txPlan) (string, error) {
	ixs := plan.instructions()
	if len(ixs) == 0 {
		return "", fmt.Errorf("empty transaction plan")
	}

	tx, err := e.wallet.BuildTransaction(ctx, ixs)
	if err != nil {
		return "", err
	}

	if e.risk.RequireSimulation() {
		if _, err := e.wallet.SimulateTransaction(ctx, tx); err != nil {
			return "", fmt.Errorf("simulation rejected: %w", err)
		}
	}

	if err := e.wallet.SignTx(tx); err != nil {
		return "", err
	}

	sig, err := e.wallet.SendTx(ctx, tx, nil)
	if err != nil {
		return "", err
	}

	if err := e.wallet.ConfirmTransaction(ctx, sig, "confirmed", e.confirmTimeout); err != nil {
		return sig, err
	}
	return sig, nil
}

// finish records usage, publishes the event best-effort, and shapes the result.
func (e *Engine) finish(ctx context.Context, start time.Time, sig string, quote *QuoteResult, execErr error, event *models.RouteEvent) *ExecResult {
	result := &ExecResult{
		Signature: sig,
		Success:   execErr == nil,
		Duration:  time.Since(start),
		Quote:     quote,
	}
	if execErr != nil {
		result.Error = execErr.Error()
	} else {
		e.risk.Record(event.AmountIn)
	}

	event.Signature = sig
	event.Timestamp = time.Now()
	event.Success = execErr == nil
	e.publishEvent(ctx, event)

	return result
}

// publishEvent fans the event out to Redis and ClickHouse. Storage failures
// are logged, never surfaced: the trade already landed or failed on-chain.
func (e *Engine) publishEvent(ctx context.Context, event *models.RouteEvent) {
	if e.redis != nil {
		if err := e.redis.AddRecentRoute(ctx, event); err != nil {
			e.logger.WithError(err).Warn("Failed to cache route event")
		}
		if err := e.redis.PublishRoute(ctx, event); err != nil {
			e.logger.WithError(err).Warn("Failed to publish route event")
		}
	}
	if e.store != nil {
		if err := e.store.InsertRoute(ctx, event); err != nil {
			e.logger.WithError(err).Warn("Failed to persist route event")
		}
	}
}

func failed(start time.Time, quote *QuoteResult, err error) *ExecResult {
	return &ExecResult{
		Success:  false,
		Error:    err.Error(),
		Duration: time.Since(start),
		Quote:    quote,
	}
}

func pairLabel(mintIn, mintOut solana.PublicKey) string {
	in, out := mintIn.String(), mintOut.String()
	if s, ok := constants.TokenSymbols[in]; ok {
		in = s
	}
	if s, ok := constants.TokenSymbols[out]; ok {
		out = s
	}
	return in + "/" + out
}
