package storage

import (
	"context"
	"io"

	"github.com/aman-zulfiqar/solana-route-aggregator/internal/models"
)

// RouteCache defines the interface for caching route data
type RouteCache interface {
	// AddRecentRoute adds a route event to the recent routes list
	AddRecentRoute(ctx context.Context, event *models.RouteEvent) error

	// GetRecentRoutes retrieves the most recent route events
	GetRecentRoutes(ctx context.Context, limit int64) ([]*models.RouteEvent, error)

	// UpdateReserves stores the latest reserve snapshot for a pool
	UpdateReserves(ctx context.Context, snap *models.ReserveSnapshot) error

	// GetReserves retrieves the latest reserve snapshot for a pool
	GetReserves(ctx context.Context, pool string) (*models.ReserveSnapshot, error)

	// Ping checks if the cache is reachable
	Ping(ctx context.Context) error

	// Close closes the cache connection
	io.Closer

	// PublishRoute publishes a route event to the Pub/Sub channel
	PublishRoute(ctx context.Context, event *models.RouteEvent) error

	// SubscribeRoutes subscribes to real-time route events
	SubscribeRoutes(ctx context.Context) (<-chan *models.RouteEvent, error)
}

// RouteStore defines the interface for persistent route storage
type RouteStore interface {
	// InsertRoute inserts a route event into the store
	InsertRoute(ctx context.Context, event *models.RouteEvent) error

	// Ping checks if the store is reachable
	Ping(ctx context.Context) error

	// Close closes the store connection
	io.Closer
}

// RouteHandler is a function that processes route events
type RouteHandler func(*models.RouteEvent)

// StreamProvider defines the interface for route event streaming
type StreamProvider interface {
	// Start begins streaming route events
	Start(ctx context.Context, handler RouteHandler) error

	// Stop stops the stream provider
	Stop() error
}
