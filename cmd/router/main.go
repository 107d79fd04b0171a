package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/aman-zulfiqar/solana-route-aggregator/internal/engine"
)

func loadEnv() {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	_ = godotenv.Load(filepath.Join(projectRoot, ".env"))
}

func main() {
	loadEnv()

	mode := flag.String("mode", "quote", "quote | execute")
	inTok := flag.String("in", "SOL", "input mint (symbol or base58)")
	outTok := flag.String("out", "USDC", "output mint (symbol or base58)")
	amt := flag.Uint64("amt", 0, "amount in base units (e.g. lamports)")
	firstLimit := flag.Uint64("first-limit", 0, "minimum output of leg 1 (routed trades)")
	secondLimit := flag.Uint64("limit", 0, "minimum final output")
	poolName := flag.String("pool", "", "explicit pool name (optional)")
	secondPool := flag.String("second-pool", "", "explicit second pool name (forces a routed trade)")
	flag.Parse()

	if *amt == 0 {
		fmt.Println("missing -amt (must be > 0)")
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	eng, err := engine.NewEngineFromEnv()
	if err != nil {
		fmt.Println("failed to init engine:", err)
		os.Exit(1)
	}
	defer eng.Close()

	inputMint, err := engine.MintFromSymbol(*inTok)
	if err != nil {
		fmt.Println("invalid -in:", err)
		os.Exit(2)
	}
	outputMint, err := engine.MintFromSymbol(*outTok)
	if err != nil {
		fmt.Println("invalid -out:", err)
		os.Exit(2)
	}

	// A trade is routed when the caller names a second pool or no single
	// pool holds both mints.
	routed := *secondPool != ""
	if !routed && *poolName == "" {
		if _, err := eng.Registry().FindByMints(inputMint, outputMint); err != nil {
			routed = true
		}
	}

	switch *mode {
	case "quote":
		var q *engine.QuoteResult
		if routed {
			q, err = eng.GetRouteQuote(ctx, engine.RouteRequest{
				InputMint:      inputMint,
				OutputMint:     outputMint,
				Amount:         *amt,
				FirstPoolName:  *poolName,
				SecondPoolName: *secondPool,
			})
		} else {
			q, err = eng.GetSwapQuote(ctx, engine.SwapRequest{
				InputMint:  inputMint,
				OutputMint: outputMint,
				Amount:     *amt,
				PoolName:   *poolName,
			})
		}
		if err != nil {
			fmt.Println("quote failed:", err)
			os.Exit(1)
		}
		if q.SecondPool != "" {
			fmt.Printf("pools=%s,%s amount_in=%d middle=%d amount_out=%d earning=%d\n",
				q.FirstPool, q.SecondPool, q.AmountIn, q.MiddleAmount, q.AmountOut, q.Earning)
		} else {
			fmt.Printf("pool=%s amount_in=%d amount_out=%d earning=%d\n",
				q.FirstPool, q.AmountIn, q.AmountOut, q.Earning)
		}
	case "execute":
		var res *engine.ExecResult
		if routed {
			res, err = eng.ExecuteRoute(ctx, engine.RouteRequest{
				InputMint:      inputMint,
				OutputMint:     outputMint,
				Amount:         *amt,
				FirstLimit:     *firstLimit,
				SecondLimit:    *secondLimit,
				FirstPoolName:  *poolName,
				SecondPoolName: *secondPool,
			})
		} else {
			res, err = eng.ExecuteSwap(ctx, engine.SwapRequest{
				InputMint:  inputMint,
				OutputMint: outputMint,
				Amount:     *amt,
				Limit:      *secondLimit,
				PoolName:   *poolName,
			})
		}
		if err != nil {
			fmt.Println("execute failed:", err)
			os.Exit(1)
		}
		fmt.Printf("success=%v sig=%s duration=%s\n", res.Success, res.Signature, res.Duration)
	default:
		fmt.Println("invalid -mode (use quote|execute)")
		os.Exit(2)
	}
}
