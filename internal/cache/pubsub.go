// ============================================================================
// cache/pubsub.go - Redis Pub/Sub Wrapper
// ============================================================================
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aman-zulfiqar/solana-route-aggregator/internal/constants"
	"github.com/aman-zulfiqar/solana-route-aggregator/internal/models"
)

// PublishRoute publishes a route event to multiple channels for
// different subscribers.
func (r *RedisCache) PublishRoute(ctx context.Context, event *models.RouteEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	channels := []string{
		constants.PubSubChannelRoutes,               // All routes
		fmt.Sprintf("routes:pair:%s", event.Pair),   // Pair-specific
		fmt.Sprintf("routes:kind:%s", event.Kind),   // swap / route / liquidity
		fmt.Sprintf("routes:pool:%s", event.FirstPool),
	}

	pipe := r.client.Pipeline()
	for _, channel := range channels {
		pipe.Publish(ctx, channel, data)
	}

	_, err = pipe.Exec(ctx)
	return err
}

// SubscribeRoutes subscribes to the live route channel. The returned
// channel is closed when ctx is cancelled.
func (r *RedisCache) SubscribeRoutes(ctx context.Context) (<-chan *models.RouteEvent, error) {
	pubsub := r.client.Subscribe(ctx, constants.PubSubChannelRoutes)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", constants.PubSubChannelRoutes, err)
	}

	r.logger.WithField("channel", constants.PubSubChannelRoutes).Info("Subscribed to route events")

	out := make(chan *models.RouteEvent)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event models.RouteEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					r.logger.WithError(err).Warn("Error unmarshaling route event")
					continue
				}
				select {
				case out <- &event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// PublishReserves publishes a reserve snapshot for live quote consumers.
func (r *RedisCache) PublishReserves(ctx context.Context, snap *models.ReserveSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, constants.PubSubChannelReserves, data).Err()
}
