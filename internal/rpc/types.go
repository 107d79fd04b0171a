package rpc

// RPCError represents a JSON-RPC error response.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return e.Message
}

// TokenAmount represents token balance information.
type TokenAmount struct {
	Amount         string  `json:"amount"`
	Decimals       int     `json:"decimals"`
	UIAmountString string  `json:"uiAmountString"`
	UIAmount       float64 `json:"uiAmount"`
}

// TokenBalanceResponse is the response from getTokenAccountBalance.
type TokenBalanceResponse struct {
	Result struct {
		Value TokenAmount `json:"value"`
	} `json:"result"`
	Error *RPCError `json:"error"`
}

// AccountValue is the account metadata returned by getAccountInfo.
type AccountValue struct {
	Lamports   uint64   `json:"lamports"`
	Owner      string   `json:"owner"`
	Executable bool     `json:"executable"`
	RentEpoch  uint64   `json:"rentEpoch"`
	Data       []string `json:"data"`
}

// AccountInfoResponse is the response from getAccountInfo.
type AccountInfoResponse struct {
	Result struct {
		Value *AccountValue `json:"value"`
	} `json:"result"`
	Error *RPCError `json:"error"`
}
