package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-route-aggregator/internal/cache"
	"github.com/aman-zulfiqar/solana-route-aggregator/internal/config"
	"github.com/aman-zulfiqar/solana-route-aggregator/internal/pool"
	"github.com/aman-zulfiqar/solana-route-aggregator/internal/rpc"
	"github.com/aman-zulfiqar/solana-route-aggregator/internal/stream"
)

func loadEnv() {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	_ = godotenv.Load(filepath.Join(projectRoot, ".env"))
}

// main runs the reserve poller: it refreshes every configured pool's
// treasuries on an interval and publishes snapshots through Redis.
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	loadEnv()
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	registry, err := pool.NewRegistry(cfg.PoolConfigPath)
	if err != nil {
		logger.WithError(err).Fatal("failed to load pool registry")
	}

	redisCache := cache.NewRedisCache(cfg.RedisAddr, logger)
	if err := redisCache.Ping(ctx); err != nil {
		logger.WithError(err).Fatal("failed to connect to Redis")
	}
	defer redisCache.Close()

	client := rpc.NewClient(rpc.ClientConfig{
		BaseURL:      cfg.RPCUrl,
		Timeout:      cfg.HTTPTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       logger,
	})

	poller := stream.NewReservePoller(stream.ReservePollerConfig{
		RPCClient:    client,
		Registry:     registry,
		Sink:         redisCache,
		PollInterval: cfg.PollInterval,
		Logger:       logger,
	})

	if err := poller.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Fatal("poller stopped")
	}
}
