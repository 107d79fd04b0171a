package pool

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
)

// PoolConfig is one pool entry in the JSON config file.
type PoolConfig struct {
	Name      string `json:"name"`
	ProgramID string `json:"program_id"`
	Address   string `json:"address"`
	Vault     string `json:"vault"`
	Treasurer string `json:"treasurer"`
	MintLPT   string `json:"mint_lpt"`
	MintS     string `json:"mint_s"`
	MintA     string `json:"mint_a"`
	MintB     string `json:"mint_b"`
	TreasuryS string `json:"treasury_s"`
	TreasuryA string `json:"treasury_a"`
	TreasuryB string `json:"treasury_b"`
}

// Pool is a parsed, ready-to-use pool: the downstream swap program plus the
// full account wiring one leg needs. Reserves are not part of Pool; they are
// fetched per request into a State.
type Pool struct {
	Name      string
	ProgramID solana.PublicKey
	Address   solana.PublicKey // the pool account itself
	Vault     solana.PublicKey // earning vault of the pool
	Treasurer solana.PublicKey // PDA authority over the treasuries
	MintLPT   solana.PublicKey
	MintS     solana.PublicKey
	MintA     solana.PublicKey
	MintB     solana.PublicKey
	TreasuryS solana.PublicKey
	TreasuryA solana.PublicKey
	TreasuryB solana.PublicKey
}

// Registry holds all configured pools.
type Registry struct {
	pools []Pool
}

// NewRegistry loads pools from a JSON file.
func NewRegistry(configPath string) (*Registry, error) {
	pools, err := LoadPoolsFromJSON(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load pools: %w", err)
	}
	return &Registry{pools: pools}, nil
}

// LoadPoolsFromJSON reads and parses pool configurations.
func LoadPoolsFromJSON(path string) ([]Pool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var configs []PoolConfig
	if err := json.Unmarshal(data, &configs); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	pools := make([]Pool, 0, len(configs))
	for i, cfg := range configs {
		pool, err := parsePoolConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("pool %d (%s): %w", i, cfg.Name, err)
		}
		pools = append(pools, pool)
	}
	return pools, nil
}

func parsePoolConfig(cfg PoolConfig) (Pool, error) {
	keys := map[string]string{
		"program_id": cfg.ProgramID,
		"address":    cfg.Address,
		"vault":      cfg.Vault,
		"treasurer":  cfg.Treasurer,
		"mint_lpt":   cfg.MintLPT,
		"mint_s":     cfg.MintS,
		"mint_a":     cfg.MintA,
		"mint_b":     cfg.MintB,
		"treasury_s": cfg.TreasuryS,
		"treasury_a": cfg.TreasuryA,
		"treasury_b": cfg.TreasuryB,
	}
	parsed := make(map[string]solana.PublicKey, len(keys))
	for field, raw := range keys {
		pk, err := solana.PublicKeyFromBase58(raw)
		if err != nil {
			return Pool{}, fmt.Errorf("%s: %w", field, err)
		}
		parsed[field] = pk
	}

	// The three mints of one pool must be distinct or reserve resolution
	// becomes ambiguous.
	if parsed["mint_s"].Equals(parsed["mint_a"]) ||
		parsed["mint_s"].Equals(parsed["mint_b"]) ||
		parsed["mint_a"].Equals(parsed["mint_b"]) {
		return Pool{}, fmt.Errorf("pool mints must be distinct")
	}

	return Pool{
		Name:      cfg.Name,
		ProgramID: parsed["program_id"],
		Address:   parsed["address"],
		Vault:     parsed["vault"],
		Treasurer: parsed["treasurer"],
		MintLPT:   parsed["mint_lpt"],
		MintS:     parsed["mint_s"],
		MintA:     parsed["mint_a"],
		MintB:     parsed["mint_b"],
		TreasuryS: parsed["treasury_s"],
		TreasuryA: parsed["treasury_a"],
		TreasuryB: parsed["treasury_b"],
	}, nil
}

// FindByName searches for a pool by its name.
func (r *Registry) FindByName(name string) (*Pool, error) {
	for i := range r.pools {
		if r.pools[i].Name == name {
			return &r.pools[i], nil
		}
	}
	return nil, fmt.Errorf("pool not found: %s", name)
}

// FindByMints searches for a pool holding both given mints, in either order
// and including the primary slot.
func (r *Registry) FindByMints(mintX, mintY solana.PublicKey) (*Pool, error) {
	for i := range r.pools {
		p := &r.pools[i]
		if p.holdsMint(mintX) && p.holdsMint(mintY) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no pool found for mints %s / %s", mintX, mintY)
}

// FindRoute returns a pool pair bridging mintIn to mintOut through a shared
// primary mint.
func (r *Registry) FindRoute(mintIn, mintOut solana.PublicKey) (first, second *Pool, err error) {
	for i := range r.pools {
		p := &r.pools[i]
		if !p.holdsMint(mintIn) {
			continue
		}
		for j := range r.pools {
			if i == j {
				continue
			}
			q := &r.pools[j]
			if q.holdsMint(mintOut) && p.SharesPrimaryMint(q) {
				return p, q, nil
			}
		}
	}
	return nil, nil, fmt.Errorf("no route found for mints %s -> %s", mintIn, mintOut)
}

func (p *Pool) holdsMint(mint solana.PublicKey) bool {
	return p.MintS.Equals(mint) || p.MintA.Equals(mint) || p.MintB.Equals(mint)
}

// All returns all registered pools.
func (r *Registry) All() []Pool {
	return r.pools
}

// Count returns the number of registered pools.
func (r *Registry) Count() int {
	return len(r.pools)
}
