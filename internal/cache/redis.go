package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-route-aggregator/internal/constants"
	"github.com/aman-zulfiqar/solana-route-aggregator/internal/models"
)

// RedisCache keeps the recent-route list and the latest reserve
// snapshots, and fans out live events over Pub/Sub.
type RedisCache struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewRedisCache(addr string, logger *logrus.Logger) *RedisCache {
	return NewRedisCacheFromClient(redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	}), logger)
}

// NewRedisCacheFromClient wraps an existing client, letting the cache share a
// connection pool with other Redis consumers.
func NewRedisCacheFromClient(client *redis.Client, logger *logrus.Logger) *RedisCache {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RedisCache{client: client, logger: logger}
}

func (r *RedisCache) AddRecentRoute(ctx context.Context, event *models.RouteEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal route event: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.LPush(ctx, constants.RedisKeyRecentRoutes, data)
	pipe.LTrim(ctx, constants.RedisKeyRecentRoutes, 0, constants.MaxRecentRoutes-1)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisCache) GetRecentRoutes(ctx context.Context, limit int64) ([]*models.RouteEvent, error) {
	if limit <= 0 || limit > constants.MaxRecentRoutes {
		limit = constants.MaxRecentRoutes
	}

	raw, err := r.client.LRange(ctx, constants.RedisKeyRecentRoutes, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}

	events := make([]*models.RouteEvent, 0, len(raw))
	for _, item := range raw {
		var event models.RouteEvent
		if err := json.Unmarshal([]byte(item), &event); err != nil {
			r.logger.WithError(err).Warn("Skipping malformed route event in cache")
			continue
		}
		events = append(events, &event)
	}
	return events, nil
}

func (r *RedisCache) UpdateReserves(ctx context.Context, snap *models.ReserveSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal reserve snapshot: %w", err)
	}
	return r.client.Set(ctx, constants.RedisKeyReservesPrefix+snap.Pool, data, 0).Err()
}

func (r *RedisCache) GetReserves(ctx context.Context, pool string) (*models.ReserveSnapshot, error) {
	raw, err := r.client.Get(ctx, constants.RedisKeyReservesPrefix+pool).Result()
	if err != nil {
		return nil, err
	}

	var snap models.ReserveSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reserve snapshot: %w", err)
	}
	return &snap, nil
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
