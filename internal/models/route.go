// ============================================================================
// models/route.go
// ============================================================================
package models

import "time"

// RouteEvent records a single executed swap, routed swap, or liquidity
// operation. Amounts are in the raw base units of the mints involved.
type RouteEvent struct {
	Signature    string    `json:"signature"`
	Timestamp    time.Time `json:"timestamp"`
	Kind         string    `json:"kind"` // "swap", "route", "add_liquidity", "remove_liquidity"
	Pair         string    `json:"pair"`
	MintIn       string    `json:"mint_in"`
	MintOut      string    `json:"mint_out"`
	AmountIn     uint64    `json:"amount_in"`
	MiddleAmount uint64    `json:"middle_amount"`
	AmountOut    uint64    `json:"amount_out"`
	Earning      uint64    `json:"earning"`
	FirstPool    string    `json:"first_pool"`
	SecondPool   string    `json:"second_pool"`
	Success      bool      `json:"success"`
}

// ReserveSnapshot is a point-in-time view of a pool's three reserves,
// published by the poller and cached for quoting.
type ReserveSnapshot struct {
	Pool      string    `json:"pool"`
	ReserveS  uint64    `json:"reserve_s"`
	ReserveA  uint64    `json:"reserve_a"`
	ReserveB  uint64    `json:"reserve_b"`
	Timestamp time.Time `json:"timestamp"`
}
