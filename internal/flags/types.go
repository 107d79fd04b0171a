package flags

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("flag not found")

// Well-known keys the API consults before accepting work.
const (
	KeyQuotingEnabled   = "quoting.enabled"
	KeyExecutionEnabled = "execution.enabled"
)

type Flag struct {
	Key       string    `json:"key"`
	Value     bool      `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
