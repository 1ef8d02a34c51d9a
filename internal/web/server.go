package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/gorilla/mux"

	"github.com/ospreylabs/poolpricer/internal/config"
	"github.com/ospreylabs/poolpricer/internal/fixedpoint"
	"github.com/ospreylabs/poolpricer/internal/logger"
	"github.com/ospreylabs/poolpricer/internal/quoter"
	"github.com/ospreylabs/poolpricer/internal/stable"
	"github.com/ospreylabs/poolpricer/internal/state"
	"github.com/ospreylabs/poolpricer/internal/types"
	"github.com/ospreylabs/poolpricer/internal/utils"
	"github.com/ospreylabs/poolpricer/internal/weighted"
)

var webLogger = logger.GetForComponent("web_server")

// WebServer handles HTTP requests for pool pricing
type WebServer struct {
	router *mux.Router
	port   string
}

// NewWebServer creates a new web server instance
func NewWebServer(port string) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router: mux.NewRouter(),
		port:   port,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	// Health endpoint (direct route)
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	// API endpoints
	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/pools", ws.handleListPools).Methods("GET")
	api.HandleFunc("/pools/weighted", ws.handleSaveWeightedPool).Methods("POST")
	api.HandleFunc("/pools/weighted/{id}", ws.handleGetWeightedPool).Methods("GET")
	api.HandleFunc("/pools/stable", ws.handleSaveStablePool).Methods("POST")
	api.HandleFunc("/pools/stable/{id}", ws.handleGetStablePool).Methods("GET")
	api.HandleFunc("/quote/swap", ws.handleSwapQuote).Methods("POST")
	api.HandleFunc("/quote/deposit", ws.handleDepositQuote).Methods("POST")
	api.HandleFunc("/quote/withdraw", ws.handleWithdrawQuote).Methods("POST")
	api.HandleFunc("/receipts", ws.handleGetReceipts).Methods("GET")
	api.HandleFunc("/stats", ws.handleGetStats).Methods("GET")

	// Add CORS middleware
	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// handleHealth returns server health status
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	dbHealthy := true
	if err := state.TestDBConnection(); err != nil {
		dbHealthy = false
	}

	overallStatus := "OK"
	statusCode := http.StatusOK
	if !dbHealthy {
		overallStatus = "DEGRADED"
		statusCode = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":          runtime.Version(),
			"goroutines_count": runtime.NumGoroutine(),
			"alloc_bytes":      memStats.Alloc,
			"sys_bytes":        memStats.Sys,
			"gc_cycles":        memStats.NumGC,
		},
		"component": map[string]interface{}{
			"name":    config.ServiceName,
			"version": "1.0.0",
		},
		"database_healthy": dbHealthy,
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// handleListPools returns the IDs of all stored pools by type
func (ws *WebServer) handleListPools(w http.ResponseWriter, r *http.Request) {
	weightedIDs, err := state.ListPoolIDs(state.PoolTypeWeighted)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to list weighted pools")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to list pools")
		return
	}
	stableIDs, err := state.ListPoolIDs(state.PoolTypeStable)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to list stable pools")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to list pools")
		return
	}

	response := map[string]interface{}{
		"weighted": weightedIDs,
		"stable":   stableIDs,
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetWeightedPool returns a weighted pool by ID
func (ws *WebServer) handleGetWeightedPool(w http.ResponseWriter, r *http.Request) {
	id, ok := ws.parsePoolID(w, r)
	if !ok {
		return
	}
	pool, err := state.GetWeightedPool(id)
	if err != nil {
		webLogger.Error().Err(err).Uint64("poolId", id).Msg("Failed to get weighted pool")
		ws.writeErrorResponse(w, http.StatusNotFound, "Pool not found")
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, pool)
}

// handleGetStablePool returns a stable pool by ID
func (ws *WebServer) handleGetStablePool(w http.ResponseWriter, r *http.Request) {
	id, ok := ws.parsePoolID(w, r)
	if !ok {
		return
	}
	pool, err := state.GetStablePool(id)
	if err != nil {
		webLogger.Error().Err(err).Uint64("poolId", id).Msg("Failed to get stable pool")
		ws.writeErrorResponse(w, http.StatusNotFound, "Pool not found")
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, pool)
}

// handleSaveWeightedPool registers or updates a weighted pool
func (ws *WebServer) handleSaveWeightedPool(w http.ResponseWriter, r *http.Request) {
	var pool types.WeightedPool
	if err := json.NewDecoder(r.Body).Decode(&pool); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := ws.validateTokens(pool.Tokens); msg != "" {
		ws.writeErrorResponse(w, http.StatusBadRequest, msg)
		return
	}
	if pool.SwapFee == 0 {
		pool.SwapFee = config.DefaultSwapFee
	}
	if pool.SwapFee >= fixedpoint.One {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Swap fee must be below one")
		return
	}
	if err := types.ValidateWeights(pool.Tokens); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Token weights must be positive and sum to one")
		return
	}
	if k, err := weighted.CalcInvariant(pool.Balances(), pool.Weights()); err == nil {
		pool.InvariantK = k
	}

	if err := state.SaveWeightedPool(&pool); err != nil {
		webLogger.Error().Err(err).Uint64("poolId", uint64(pool.ID)).Msg("Failed to save weighted pool")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to save pool")
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, pool)
}

// handleSaveStablePool registers or updates a stable pool
func (ws *WebServer) handleSaveStablePool(w http.ResponseWriter, r *http.Request) {
	var pool types.StablePool
	if err := json.NewDecoder(r.Body).Decode(&pool); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := ws.validateTokens(pool.Tokens); msg != "" {
		ws.writeErrorResponse(w, http.StatusBadRequest, msg)
		return
	}
	if pool.SwapFee == 0 {
		pool.SwapFee = config.DefaultSwapFee
	}
	if pool.SwapFee >= fixedpoint.One {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Swap fee must be below one")
		return
	}
	if err := types.ValidateAmp(pool.Amp); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Amplification out of range")
		return
	}
	if pool.AmpTarget != 0 {
		if err := types.ValidateAmp(pool.AmpTarget); err != nil {
			ws.writeErrorResponse(w, http.StatusBadRequest, "Amplification target out of range")
			return
		}
	}

	if err := state.SaveStablePool(&pool); err != nil {
		webLogger.Error().Err(err).Uint64("poolId", uint64(pool.ID)).Msg("Failed to save stable pool")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to save pool")
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, pool)
}

func (ws *WebServer) validateTokens(tokens []types.PoolToken) string {
	if len(tokens) < 2 {
		return "Pool needs at least two tokens"
	}
	if uint64(len(tokens)) > config.MaxQuoteTokens {
		return "Pool exceeds the configured token limit"
	}
	seen := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		if token.Denom == "" {
			return "Every token needs a denom"
		}
		if seen[token.Denom] {
			return "Duplicate token denom: " + token.Denom
		}
		seen[token.Denom] = true
	}
	return ""
}

// swapQuoteRequest is the body of POST /api/quote/swap. Amounts are JSON
// strings so callers never hit float precision limits.
type swapQuoteRequest struct {
	PoolID    uint64      `json:"pool_id"`
	PoolType  string      `json:"pool_type"`
	DenomIn   string      `json:"denom_in"`
	DenomOut  string      `json:"denom_out"`
	AmountIn  sdkmath.Int `json:"amount_in,omitempty"`
	AmountOut sdkmath.Int `json:"amount_out,omitempty"`
	Limit     sdkmath.Int `json:"limit"` // min out for exact-in, max in for exact-out
}

// swapQuoteResponse restates the quoted amounts as integer strings so JSON
// clients never lose precision past 2^53, plus a display-unit float.
type swapQuoteResponse struct {
	*quoter.SwapQuote
	AmountInExact    sdkmath.Int `json:"amount_in_exact"`
	AmountOutExact   sdkmath.Int `json:"amount_out_exact"`
	AmountOutDisplay float64     `json:"amount_out_display,omitempty"`
}

// handleSwapQuote prices a swap against a stored pool
func (ws *WebServer) handleSwapQuote(w http.ResponseWriter, r *http.Request) {
	var req swapQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	amountIn, ok := ws.parseAmount(w, req.AmountIn)
	if !ok {
		return
	}
	amountOut, ok := ws.parseAmount(w, req.AmountOut)
	if !ok {
		return
	}
	limit, ok := ws.parseAmount(w, req.Limit)
	if !ok {
		return
	}
	exactIn := amountIn > 0
	if exactIn == (amountOut > 0) {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Exactly one of amount_in and amount_out must be set")
		return
	}
	if !exactIn && req.Limit.IsNil() {
		limit = ^uint64(0) // no input cap requested
	}

	var (
		quote       *quoter.SwapQuote
		decimalsOut uint8
		err         error
	)
	now := time.Now()
	switch req.PoolType {
	case state.PoolTypeStable:
		pool, loadErr := state.GetStablePool(req.PoolID)
		if loadErr != nil {
			ws.writeErrorResponse(w, http.StatusNotFound, "Pool not found")
			return
		}
		if i := pool.TokenIndex(req.DenomOut); i >= 0 {
			decimalsOut = pool.Tokens[i].Decimals
		}
		if exactIn {
			quote, err = quoter.StableSwapExactIn(pool, req.DenomIn, req.DenomOut, amountIn, limit, now)
		} else {
			quote, err = quoter.StableSwapExactOut(pool, req.DenomIn, req.DenomOut, amountOut, limit, now)
		}
	case state.PoolTypeWeighted:
		pool, loadErr := state.GetWeightedPool(req.PoolID)
		if loadErr != nil {
			ws.writeErrorResponse(w, http.StatusNotFound, "Pool not found")
			return
		}
		if i := pool.TokenIndex(req.DenomOut); i >= 0 {
			decimalsOut = pool.Tokens[i].Decimals
		}
		if exactIn {
			quote, err = quoter.WeightedSwapExactIn(pool, req.DenomIn, req.DenomOut, amountIn, limit)
		} else {
			quote, err = quoter.WeightedSwapExactOut(pool, req.DenomIn, req.DenomOut, amountOut, limit)
		}
	default:
		ws.writeErrorResponse(w, http.StatusBadRequest, "Unknown pool type")
		return
	}

	ws.recordQuote("swap", req.PoolID, req.DenomIn, req.DenomOut, quote, err)
	if err != nil {
		ws.writeQuoteError(w, err)
		return
	}

	resp := swapQuoteResponse{
		SwapQuote:      quote,
		AmountInExact:  utils.Uint64ToSDKInt(quote.AmountIn),
		AmountOutExact: utils.Uint64ToSDKInt(quote.AmountOut),
	}
	if display, derr := utils.SDKIntToFloat64(resp.AmountOutExact, int(decimalsOut)); derr == nil {
		resp.AmountOutDisplay = display
	}
	ws.writeJSONResponse(w, http.StatusOK, resp)
}

// depositQuoteRequest is the body of POST /api/quote/deposit.
type depositQuoteRequest struct {
	PoolID       uint64        `json:"pool_id"`
	PoolType     string        `json:"pool_type"`
	AmountsIn    []sdkmath.Int `json:"amounts_in,omitempty"`
	LpAmount     sdkmath.Int   `json:"lp_amount,omitempty"` // proportional deposits
	MinLpAmount  sdkmath.Int   `json:"min_lp_amount"`
	Proportional bool          `json:"proportional"`
}

// handleDepositQuote prices a deposit into a stored pool
func (ws *WebServer) handleDepositQuote(w http.ResponseWriter, r *http.Request) {
	var req depositQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	amountsIn, ok := ws.parseAmounts(w, req.AmountsIn)
	if !ok {
		return
	}
	lpAmount, ok := ws.parseAmount(w, req.LpAmount)
	if !ok {
		return
	}
	minLpAmount, ok := ws.parseAmount(w, req.MinLpAmount)
	if !ok {
		return
	}

	var (
		quote *quoter.LiquidityQuote
		err   error
	)
	switch req.PoolType {
	case state.PoolTypeStable:
		pool, loadErr := state.GetStablePool(req.PoolID)
		if loadErr != nil {
			ws.writeErrorResponse(w, http.StatusNotFound, "Pool not found")
			return
		}
		if req.Proportional {
			quote, err = quoter.StableDepositProportional(pool, lpAmount)
		} else {
			quote, err = quoter.StableDeposit(pool, amountsIn, minLpAmount, time.Now())
		}
	case state.PoolTypeWeighted:
		pool, loadErr := state.GetWeightedPool(req.PoolID)
		if loadErr != nil {
			ws.writeErrorResponse(w, http.StatusNotFound, "Pool not found")
			return
		}
		if len(amountsIn) != 2 {
			ws.writeErrorResponse(w, http.StatusBadRequest, "Weighted deposits take exactly two amounts")
			return
		}
		quote, err = quoter.WeightedDepositUnbalanced(pool, amountsIn[0], amountsIn[1], minLpAmount)
	default:
		ws.writeErrorResponse(w, http.StatusBadRequest, "Unknown pool type")
		return
	}

	ws.recordLiquidityQuote("deposit", req.PoolID, quote, err)
	if err != nil {
		ws.writeQuoteError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, quote)
}

// withdrawQuoteRequest is the body of POST /api/quote/withdraw.
type withdrawQuoteRequest struct {
	PoolID       uint64      `json:"pool_id"`
	DenomOut     string      `json:"denom_out,omitempty"`
	LpBurn       sdkmath.Int `json:"lp_burn"`
	MinAmountOut sdkmath.Int `json:"min_amount_out"`
	Proportional bool        `json:"proportional"`
}

// handleWithdrawQuote prices a withdrawal from a stored stable pool
func (ws *WebServer) handleWithdrawQuote(w http.ResponseWriter, r *http.Request) {
	var req withdrawQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	lpBurn, ok := ws.parseAmount(w, req.LpBurn)
	if !ok {
		return
	}
	minAmountOut, ok := ws.parseAmount(w, req.MinAmountOut)
	if !ok {
		return
	}

	pool, loadErr := state.GetStablePool(req.PoolID)
	if loadErr != nil {
		ws.writeErrorResponse(w, http.StatusNotFound, "Pool not found")
		return
	}

	var (
		quote *quoter.LiquidityQuote
		err   error
	)
	if req.Proportional {
		quote, err = quoter.StableWithdrawProportional(pool, lpBurn)
	} else {
		quote, err = quoter.StableWithdrawSingle(pool, req.DenomOut, lpBurn, minAmountOut, time.Now())
	}

	ws.recordLiquidityQuote("withdraw", req.PoolID, quote, err)
	if err != nil {
		ws.writeQuoteError(w, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, quote)
}

// handleGetReceipts returns recent quote receipts
func (ws *WebServer) handleGetReceipts(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			limit = parsedLimit
		}
	}

	quoteTypes := r.URL.Query()["type"]
	receipts, err := state.GetReceiptsByType(quoteTypes, limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get quote receipts")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve receipts")
		return
	}

	response := map[string]interface{}{
		"receipts": receipts,
		"count":    len(receipts),
		"limit":    limit,
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetStats returns aggregated quoting statistics
func (ws *WebServer) handleGetStats(w http.ResponseWriter, r *http.Request) {
	summary, err := state.GetQuoteSummary()
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get quote summary")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve statistics")
		return
	}
	activity, err := state.GetPoolActivity(10)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get pool activity")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve statistics")
		return
	}

	response := map[string]interface{}{
		"summary":       summary,
		"pool_activity": activity,
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

// parseAmount narrows a request amount to the engine's native width. Absent
// fields decode as a nil Int and are treated as zero.
func (ws *WebServer) parseAmount(w http.ResponseWriter, amount sdkmath.Int) (uint64, bool) {
	if amount.IsNil() {
		return 0, true
	}
	value, err := utils.SDKIntToUint64(amount)
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid amount: "+err.Error())
		return 0, false
	}
	return value, true
}

func (ws *WebServer) parseAmounts(w http.ResponseWriter, amounts []sdkmath.Int) ([]uint64, bool) {
	values := make([]uint64, len(amounts))
	for i, amount := range amounts {
		value, ok := ws.parseAmount(w, amount)
		if !ok {
			return nil, false
		}
		values[i] = value
	}
	return values, true
}

func (ws *WebServer) parsePoolID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid pool ID")
		return 0, false
	}
	return id, true
}

// recordQuote persists a swap quote receipt when enabled
func (ws *WebServer) recordQuote(quoteType string, poolID uint64, denomIn, denomOut string, quote *quoter.SwapQuote, quoteErr error) {
	if !config.PersistQuotes {
		return
	}
	receipt := state.QuoteReceipt{
		QuoteType: quoteType,
		PoolID:    poolID,
		DenomIn:   denomIn,
		DenomOut:  denomOut,
		Success:   quoteErr == nil,
	}
	if quote != nil {
		receipt.AmountIn = quote.AmountIn
		receipt.AmountOut = quote.AmountOut
		receipt.FeeAmount = quote.FeeAmount
	}
	if quoteErr != nil {
		receipt.Message = quoteErr.Error()
	}
	if _, err := state.SaveQuoteReceipt(receipt); err != nil {
		webLogger.Error().Err(err).Msg("Failed to persist quote receipt")
	}
}

// recordLiquidityQuote persists a liquidity quote receipt when enabled
func (ws *WebServer) recordLiquidityQuote(quoteType string, poolID uint64, quote *quoter.LiquidityQuote, quoteErr error) {
	if !config.PersistQuotes {
		return
	}
	receipt := state.QuoteReceipt{
		QuoteType: quoteType,
		PoolID:    poolID,
		Success:   quoteErr == nil,
	}
	if quote != nil {
		receipt.LpAmount = quote.LpAmount
	}
	if quoteErr != nil {
		receipt.Message = quoteErr.Error()
	}
	if _, err := state.SaveQuoteReceipt(receipt); err != nil {
		webLogger.Error().Err(err).Msg("Failed to persist quote receipt")
	}
}

// writeQuoteError maps quoting failures onto HTTP status codes
func (ws *WebServer) writeQuoteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quoter.ErrSlippageExceeded):
		ws.writeErrorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, quoter.ErrPoolInactive), errors.Is(err, quoter.ErrUnknownToken):
		ws.writeErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, fixedpoint.ErrInvalidAmount), errors.Is(err, fixedpoint.ErrDivideByZero):
		ws.writeErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, fixedpoint.ErrOverflow), errors.Is(err, stable.ErrNotConverged):
		ws.writeErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
	default:
		webLogger.Error().Err(err).Msg("Unexpected quoting failure")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to compute quote")
	}
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// corsMiddleware adds CORS headers
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)

		webLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", duration).
			Msg("HTTP request")
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
