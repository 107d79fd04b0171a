package engine

import (
	"fmt"
	"sync"
	"time"
)

// RiskConfig defines execution guardrails. Amounts are raw input units of the
// traded mint; zero disables the corresponding limit.
type RiskConfig struct {
	MaxAmountIn       uint64 // per-request input cap
	DailyLimitIn      uint64 // rolling 24h input cap
	RequireSimulation bool   // simulate the transaction before sending
}

// DefaultRiskConfig returns conservative settings.
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		MaxAmountIn:       1_000_000_000,
		DailyLimitIn:      10_000_000_000,
		RequireSimulation: true,
	}
}

// RiskManager enforces risk limits.
type RiskManager struct {
	config  RiskConfig
	tracker *dailyTracker
}

func NewRiskManager(config RiskConfig) *RiskManager {
	return &RiskManager{config: config, tracker: newDailyTracker()}
}

// Check validates a request's input amount against the per-request and daily
// limits before anything is signed.
func (rm *RiskManager) Check(amountIn uint64) error {
	if rm.config.MaxAmountIn > 0 && amountIn > rm.config.MaxAmountIn {
		return fmt.Errorf("amount %d exceeds per-request limit %d", amountIn, rm.config.MaxAmountIn)
	}
	if rm.config.DailyLimitIn > 0 {
		used := rm.tracker.usage()
		if used+amountIn > rm.config.DailyLimitIn {
			return fmt.Errorf("daily limit exceeded: used %d + %d > %d", used, amountIn, rm.config.DailyLimitIn)
		}
	}
	return nil
}

// Record adds an executed request to the daily tracker.
func (rm *RiskManager) Record(amountIn uint64) {
	rm.tracker.record(amountIn)
}

// RequireSimulation reports whether transactions must simulate cleanly first.
func (rm *RiskManager) RequireSimulation() bool {
	return rm.config.RequireSimulation
}

// dailyTracker tracks rolling 24-hour usage.
type dailyTracker struct {
	mu      sync.Mutex
	records []usageRecord
}

type usageRecord struct {
	timestamp time.Time
	amount    uint64
}

func newDailyTracker() *dailyTracker {
	return &dailyTracker{records: make([]usageRecord, 0)}
}

func (t *dailyTracker) record(amount uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = append(t.records, usageRecord{timestamp: time.Now(), amount: amount})
	t.cleanupLocked()
}

func (t *dailyTracker) usage() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cleanupLocked()

	var total uint64
	for _, r := range t.records {
		total += r.amount
	}
	return total
}

func (t *dailyTracker) cleanupLocked() {
	cutoff := time.Now().Add(-24 * time.Hour)
	kept := t.records[:0]
	for _, r := range t.records {
		if r.timestamp.After(cutoff) {
			kept = append(kept, r)
		}
	}
	t.records = kept
}
