// Package stream polls pool treasuries and publishes reserve snapshots.
// The API serves cached snapshots so quote traffic never fans out to RPC.
package stream

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/aman-zulfiqar/solana-route-aggregator/internal/constants"
	"github.com/aman-zulfiqar/solana-route-aggregator/internal/models"
	"github.com/aman-zulfiqar/solana-route-aggregator/internal/pool"
)

// SnapshotSink receives fresh reserve snapshots.
type SnapshotSink interface {
	UpdateReserves(ctx context.Context, snap *models.ReserveSnapshot) error
	PublishReserves(ctx context.Context, snap *models.ReserveSnapshot) error
}

// ReservePoller periodically refreshes every configured pool's reserves.
type ReservePoller struct {
	client       pool.BalanceFetcher
	registry     *pool.Registry
	sink         SnapshotSink
	pollInterval time.Duration
	limiter      *rate.Limiter
	logger       *logrus.Logger

	mu      sync.Mutex
	running bool
}

// ReservePollerConfig holds configuration for the reserve poller
type ReservePollerConfig struct {
	RPCClient    pool.BalanceFetcher
	Registry     *pool.Registry
	Sink         SnapshotSink
	PollInterval time.Duration
	RequestRate  float64 // RPC requests per second across all pools
	Logger       *logrus.Logger
}

// NewReservePoller creates a new reserve poller
func NewReservePoller(cfg ReservePollerConfig) *ReservePoller {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = constants.DefaultPollInterval
	}
	if cfg.RequestRate <= 0 {
		cfg.RequestRate = constants.DefaultPollRate
	}

	return &ReservePoller{
		client:       cfg.RPCClient,
		registry:     cfg.Registry,
		sink:         cfg.Sink,
		pollInterval: cfg.PollInterval,
		limiter:      rate.NewLimiter(rate.Limit(cfg.RequestRate), 1),
		logger:       cfg.Logger,
	}
}

// Start begins polling until ctx is cancelled
func (p *ReservePoller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("poller already running")
	}
	p.running = true
	p.mu.Unlock()

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	p.logger.WithFields(logrus.Fields{
		"interval": p.pollInterval,
		"pools":    p.registry.Count(),
	}).Info("starting reserve polling")

	for {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			p.running = false
			p.mu.Unlock()
			return ctx.Err()

		case <-ticker.C:
			p.pollAll(ctx)
		}
	}
}

// Stop marks the poller stopped
func (p *ReservePoller) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
	return nil
}

func (p *ReservePoller) pollAll(ctx context.Context) {
	for _, pl := range p.registry.All() {
		// Each Refresh issues three balance reads; pace them as one unit.
		if err := p.limiter.Wait(ctx); err != nil {
			return
		}

		state, err := pool.Refresh(ctx, p.client, &pl)
		if err != nil {
			p.logger.WithError(err).WithField("pool", pl.Name).Error("failed to refresh reserves")
			continue
		}

		snap := &models.ReserveSnapshot{
			Pool:      pl.Name,
			ReserveS:  state.ReserveS,
			ReserveA:  state.ReserveA,
			ReserveB:  state.ReserveB,
			Timestamp: time.Unix(state.Timestamp, 0),
		}

		if err := p.sink.UpdateReserves(ctx, snap); err != nil {
			p.logger.WithError(err).WithField("pool", pl.Name).Warn("failed to cache snapshot")
			continue
		}
		if err := p.sink.PublishReserves(ctx, snap); err != nil {
			p.logger.WithError(err).WithField("pool", pl.Name).Warn("failed to publish snapshot")
		}

		p.logger.WithFields(logrus.Fields{
			"pool":      pl.Name,
			"reserve_s": snap.ReserveS,
			"reserve_a": snap.ReserveA,
			"reserve_b": snap.ReserveB,
		}).Debug("published reserve snapshot")
	}
}
