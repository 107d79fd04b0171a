package server

// ErrorResponse is the standard error shape for all endpoints
type ErrorResponse struct {
	Error   string `json:"error"`             // Human-readable error message
	Code    int    `json:"code"`              // HTTP status code
	Details any    `json:"details,omitempty"` // Additional error details (dev mode only)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK     bool   `json:"ok"`
	Wallet string `json:"wallet,omitempty"` // engine wallet address, when configured
}

// PoolInfo is the public view of a configured pool
type PoolInfo struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	MintS     string `json:"mint_s"`
	MintA     string `json:"mint_a"`
	MintB     string `json:"mint_b"`
	ProgramID string `json:"program_id"`
}

// ExecuteRequest carries a packed instruction plus the account context the
// instruction data does not encode
type ExecuteRequest struct {
	Data string `json:"data"` // base64-encoded instruction bytes

	InputMint  string `json:"input_mint"`  // symbol or base58 mint
	OutputMint string `json:"output_mint"` // symbol or base58 mint

	PoolName       string `json:"pool_name,omitempty"`
	SecondPoolName string `json:"second_pool_name,omitempty"`
}

// FlagUpsertRequest creates or updates a feature flag
type FlagUpsertRequest struct {
	Key   string `json:"key"`
	Value bool   `json:"value"`
}

// FlagUpdateRequest updates an existing feature flag
type FlagUpdateRequest struct {
	Value bool `json:"value"`
}
