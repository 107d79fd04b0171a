package constants

import "time"

// Redis keys
const (
	RedisKeyRecentRoutes   = "routes:recent"
	RedisKeyReservesPrefix = "reserves:"
)

// Redis Pub/Sub channels
const (
	PubSubChannelRoutes   = "routes:live"
	PubSubChannelReserves = "reserves:live"
)

// Limits
const (
	MaxRecentRoutes = 100
)

// Rate limiting
const (
	// Polling treasury balances on public RPC hits rate limits quickly;
	// keep the interval generous by default.
	DefaultPollInterval = 5 * time.Second
	DefaultPollRate     = 2.0 // requests per second across all pools
)

// Token mint addresses to symbols
var TokenSymbols = map[string]string{
	"So11111111111111111111111111111111111111112":  "SOL",
	"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v": "USDC",
	"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB": "USDT",
	"mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So":  "mSOL",
	"7vfCXTUXx5WJV5JADk17DUJ4ksgau7utNKj4b963voxs": "ETH",
	"DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263": "BONK",
	"JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN":  "JUP",
	"4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R": "RAY",
}
