package cache

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-route-aggregator/internal/models"
)

type ClickHouseStore struct {
	conn driver.Conn
}

func NewClickHouseStore(addr string, logger *logrus.Logger) (*ClickHouseStore, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: "solana",
			Username: "default",
			Password: "",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	// Test connection
	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	if logger != nil {
		logger.Info("Connected to ClickHouse")
	}

	return &ClickHouseStore{
		conn: conn,
	}, nil
}

func (c *ClickHouseStore) InsertRoute(ctx context.Context, event *models.RouteEvent) error {
	query := `
		INSERT INTO routes (
			signature, timestamp, kind, pair, mint_in, mint_out,
			amount_in, middle_amount, amount_out, earning,
			first_pool, second_pool, success
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := c.conn.Exec(ctx, query,
		event.Signature,
		event.Timestamp,
		event.Kind,
		event.Pair,
		event.MintIn,
		event.MintOut,
		event.AmountIn,
		event.MiddleAmount,
		event.AmountOut,
		event.Earning,
		event.FirstPool,
		event.SecondPool,
		event.Success,
	)

	if err != nil {
		return fmt.Errorf("failed to insert route: %w", err)
	}

	return nil
}

func (c *ClickHouseStore) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

func (c *ClickHouseStore) Close() error {
	return c.conn.Close()
}
