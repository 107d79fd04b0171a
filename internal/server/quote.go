package server

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aman-zulfiqar/solana-route-aggregator/internal/engine"
	"github.com/aman-zulfiqar/solana-route-aggregator/internal/flags"
	"github.com/aman-zulfiqar/solana-route-aggregator/internal/instruction"
)

// Quote prices a trade without executing it. When the two mints share a pool
// the quote is single-hop; otherwise it is routed through the primary mint.
func (h *Handlers) Quote(c echo.Context) error {
	if h.Engine == nil {
		return h.err(c, http.StatusServiceUnavailable, "engine is not configured", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if h.Flags != nil && !h.Flags.IsEnabled(ctx, flags.KeyQuotingEnabled, true) {
		return h.err(c, http.StatusServiceUnavailable, "quoting is disabled", nil)
	}

	inputStr := strings.TrimSpace(c.QueryParam("inputMint"))
	outputStr := strings.TrimSpace(c.QueryParam("outputMint"))
	amountStr := strings.TrimSpace(c.QueryParam("amount"))

	if inputStr == "" {
		return h.err(c, http.StatusBadRequest, "invalid inputMint", map[string]any{"inputMint": "required"})
	}
	if outputStr == "" {
		return h.err(c, http.StatusBadRequest, "invalid outputMint", map[string]any{"outputMint": "required"})
	}
	amount, err := strconv.ParseUint(amountStr, 10, 64)
	if err != nil || amount == 0 {
		return h.err(c, http.StatusBadRequest, "invalid amount", map[string]any{"amount": "must be a positive uint64"})
	}

	inputMint, err := engine.MintFromSymbol(inputStr)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid inputMint", map[string]any{"inputMint": err.Error()})
	}
	outputMint, err := engine.MintFromSymbol(outputStr)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid outputMint", map[string]any{"outputMint": err.Error()})
	}

	poolName := strings.TrimSpace(c.QueryParam("pool"))
	secondPoolName := strings.TrimSpace(c.QueryParam("secondPool"))

	// Prefer a direct pool; route only when no single pool holds both mints.
	direct := secondPoolName == ""
	if direct && poolName == "" {
		if _, err := h.Engine.Registry().FindByMints(inputMint, outputMint); err != nil {
			direct = false
		}
	}

	if direct {
		quote, err := h.Engine.GetSwapQuote(ctx, engine.SwapRequest{
			InputMint:  inputMint,
			OutputMint: outputMint,
			Amount:     amount,
			PoolName:   poolName,
		})
		if err != nil {
			return h.err(c, http.StatusUnprocessableEntity, "quote failed", map[string]any{"err": err.Error()})
		}
		return c.JSON(http.StatusOK, quote)
	}

	quote, err := h.Engine.GetRouteQuote(ctx, engine.RouteRequest{
		InputMint:      inputMint,
		OutputMint:     outputMint,
		Amount:         amount,
		FirstPoolName:  poolName,
		SecondPoolName: secondPoolName,
	})
	if err != nil {
		return h.err(c, http.StatusUnprocessableEntity, "route quote failed", map[string]any{"err": err.Error()})
	}
	return c.JSON(http.StatusOK, quote)
}

// Execute decodes a packed instruction and runs it through the engine.
// Execution is off by default; the execution.enabled flag arms it.
func (h *Handlers) Execute(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 90*time.Second)
	defer cancel()

	if h.Flags == nil || !h.Flags.IsEnabled(ctx, flags.KeyExecutionEnabled, false) {
		return h.err(c, http.StatusForbidden, "execution is disabled", nil)
	}
	if h.Engine == nil {
		return h.err(c, http.StatusServiceUnavailable, "engine is not configured", nil)
	}

	var req ExecuteRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid data", map[string]any{"data": "must be base64"})
	}

	target := engine.DispatchTarget{
		PoolName:       strings.TrimSpace(req.PoolName),
		SecondPoolName: strings.TrimSpace(req.SecondPoolName),
	}
	if s := strings.TrimSpace(req.InputMint); s != "" {
		if target.InputMint, err = engine.MintFromSymbol(s); err != nil {
			return h.err(c, http.StatusBadRequest, "invalid input_mint", map[string]any{"input_mint": err.Error()})
		}
	}
	if s := strings.TrimSpace(req.OutputMint); s != "" {
		if target.OutputMint, err = engine.MintFromSymbol(s); err != nil {
			return h.err(c, http.StatusBadRequest, "invalid output_mint", map[string]any{"output_mint": err.Error()})
		}
	}

	result, err := h.Engine.Dispatch(ctx, data, target)
	if err != nil {
		if errors.Is(err, instruction.ErrInvalidInstruction) {
			return h.err(c, http.StatusBadRequest, "invalid instruction", map[string]any{"err": err.Error()})
		}
		if result != nil {
			// Execution attempted and failed; hand back the partial result.
			return c.JSON(http.StatusBadGateway, result)
		}
		return h.err(c, http.StatusBadGateway, "execution failed", map[string]any{"err": err.Error()})
	}
	return c.JSON(http.StatusOK, result)
}
