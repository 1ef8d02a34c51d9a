// Package quoter turns raw pool state into user-facing quotes. It is the
// only layer that knows about swap fees and slippage limits: the engines
// underneath price trades on fee-free balances, and the quoter applies the
// pool's fee on the correct side (input for weighted pools, output for
// stable pools) before enforcing the caller's limit.
package quoter

import (
	"errors"
	"math/bits"
	"time"

	"github.com/ospreylabs/poolpricer/internal/fixedpoint"
	"github.com/ospreylabs/poolpricer/internal/logger"
	"github.com/ospreylabs/poolpricer/internal/stable"
	"github.com/ospreylabs/poolpricer/internal/types"
	"github.com/ospreylabs/poolpricer/internal/utils"
	"github.com/ospreylabs/poolpricer/internal/weighted"
)

var quoteLogger = logger.GetForComponent("quoter")

var (
	ErrPoolInactive     = errors.New("pool is not active")
	ErrUnknownToken     = errors.New("token is not in the pool")
	ErrSlippageExceeded = errors.New("quote violates slippage limit")
)

// SwapQuote is the result of pricing a swap against a pool. The new balances
// are what the pool would hold if the swap executed; the quoter itself never
// mutates pool state.
type SwapQuote struct {
	PoolID        types.PoolID `json:"pool_id"`
	DenomIn       string       `json:"denom_in"`
	DenomOut      string       `json:"denom_out"`
	AmountIn      uint64       `json:"amount_in"`       // raw token units
	AmountOut     uint64       `json:"amount_out"`      // raw token units
	FeeAmount     uint64       `json:"fee_amount"`      // normalized units
	NewBalanceIn  uint64       `json:"new_balance_in"`  // normalized
	NewBalanceOut uint64       `json:"new_balance_out"` // normalized
}

// LiquidityQuote is the result of pricing a deposit or withdrawal.
type LiquidityQuote struct {
	PoolID      types.PoolID `json:"pool_id"`
	LpAmount    uint64       `json:"lp_amount"`
	Amounts     []uint64     `json:"amounts"` // raw token units, pool order
	FeeCharged  bool         `json:"fee_charged"`
	NewLpSupply uint64       `json:"new_lp_supply"`
}

// postSwapBalances applies a priced swap to the two touched balances. The fee
// portion of the output side stays in the pool.
func postSwapBalances(balanceIn, scaledIn, balanceOut, scaledOut uint64) (uint64, uint64, error) {
	newIn, carry := bits.Add64(balanceIn, scaledIn, 0)
	if carry != 0 {
		return 0, 0, fixedpoint.ErrOverflow
	}
	if scaledOut > balanceOut {
		return 0, 0, fixedpoint.ErrInvalidAmount
	}
	return newIn, balanceOut - scaledOut, nil
}

// StableSwapExactIn prices an exact-input swap against a stable pool. The
// swap fee is taken from the engine output before the slippage check.
func StableSwapExactIn(pool *types.StablePool, denomIn, denomOut string, amountIn, minAmountOut uint64, now time.Time) (*SwapQuote, error) {
	if !pool.IsActive {
		return nil, ErrPoolInactive
	}
	idxIn := pool.TokenIndex(denomIn)
	idxOut := pool.TokenIndex(denomOut)
	if idxIn < 0 || idxOut < 0 {
		return nil, ErrUnknownToken
	}

	scaledIn, err := pool.Tokens[idxIn].ScaleAmountUp(amountIn)
	if err != nil {
		return nil, err
	}
	amp := pool.CurrentAmp(now)

	grossOut, err := stable.CalcOutGivenIn(amp, pool.Balances(), idxIn, idxOut, scaledIn)
	if err != nil {
		return nil, err
	}
	netOut, err := fixedpoint.MulDown(grossOut, fixedpoint.One-pool.SwapFee)
	if err != nil {
		return nil, err
	}

	amountOut := pool.Tokens[idxOut].ScaleAmountDown(netOut)
	if amountOut < minAmountOut {
		quoteLogger.Debug().
			Uint64("pool", uint64(pool.ID)).
			Uint64("amount_out", amountOut).
			Uint64("min_amount_out", minAmountOut).
			Msg("Stable swap quote below slippage limit")
		return nil, ErrSlippageExceeded
	}

	newIn, newOut, err := postSwapBalances(pool.Tokens[idxIn].Balance, scaledIn, pool.Tokens[idxOut].Balance, netOut)
	if err != nil {
		return nil, err
	}

	if feeDisplay, ferr := utils.ScaledToFloat64(grossOut - netOut); ferr == nil {
		quoteLogger.Debug().
			Uint64("pool", uint64(pool.ID)).
			Str("pair", denomIn+"/"+denomOut).
			Float64("fee", feeDisplay).
			Msg("Priced stable swap")
	}

	return &SwapQuote{
		PoolID:        pool.ID,
		DenomIn:       denomIn,
		DenomOut:      denomOut,
		AmountIn:      amountIn,
		AmountOut:     amountOut,
		FeeAmount:     grossOut - netOut,
		NewBalanceIn:  newIn,
		NewBalanceOut: newOut,
	}, nil
}

// StableSwapExactOut prices an exact-output swap against a stable pool. The
// requested output is grossed up by the fee before the engine solves for the
// required input.
func StableSwapExactOut(pool *types.StablePool, denomIn, denomOut string, amountOut, maxAmountIn uint64, now time.Time) (*SwapQuote, error) {
	if !pool.IsActive {
		return nil, ErrPoolInactive
	}
	idxIn := pool.TokenIndex(denomIn)
	idxOut := pool.TokenIndex(denomOut)
	if idxIn < 0 || idxOut < 0 {
		return nil, ErrUnknownToken
	}

	scaledOut, err := pool.Tokens[idxOut].ScaleAmountUp(amountOut)
	if err != nil {
		return nil, err
	}
	grossOut, err := fixedpoint.DivUp(scaledOut, fixedpoint.One-pool.SwapFee)
	if err != nil {
		return nil, err
	}

	amp := pool.CurrentAmp(now)
	scaledIn, err := stable.CalcInGivenOut(amp, pool.Balances(), idxIn, idxOut, grossOut)
	if err != nil {
		return nil, err
	}

	amountIn := pool.Tokens[idxIn].ScaleAmountDown(scaledIn)
	if roundsUp := scaledIn % pool.Tokens[idxIn].ScalingFactor; pool.Tokens[idxIn].ScalingUp && roundsUp != 0 {
		amountIn++
	}
	if amountIn > maxAmountIn {
		return nil, ErrSlippageExceeded
	}

	newIn, newOut, err := postSwapBalances(pool.Tokens[idxIn].Balance, scaledIn, pool.Tokens[idxOut].Balance, scaledOut)
	if err != nil {
		return nil, err
	}

	return &SwapQuote{
		PoolID:        pool.ID,
		DenomIn:       denomIn,
		DenomOut:      denomOut,
		AmountIn:      amountIn,
		AmountOut:     amountOut,
		FeeAmount:     grossOut - scaledOut,
		NewBalanceIn:  newIn,
		NewBalanceOut: newOut,
	}, nil
}

// WeightedSwapExactIn prices an exact-input swap against a weighted pool.
// The swap fee is deducted from the input before it is priced.
func WeightedSwapExactIn(pool *types.WeightedPool, denomIn, denomOut string, amountIn, minAmountOut uint64) (*SwapQuote, error) {
	if !pool.IsActive {
		return nil, ErrPoolInactive
	}
	idxIn := pool.TokenIndex(denomIn)
	idxOut := pool.TokenIndex(denomOut)
	if idxIn < 0 || idxOut < 0 {
		return nil, ErrUnknownToken
	}

	scaledIn, err := pool.Tokens[idxIn].ScaleAmountUp(amountIn)
	if err != nil {
		return nil, err
	}
	netIn, err := fixedpoint.MulDown(scaledIn, fixedpoint.One-pool.SwapFee)
	if err != nil {
		return nil, err
	}

	scaledOut, err := weighted.CalcOutGivenIn(
		pool.Tokens[idxIn].Balance, pool.Tokens[idxIn].Weight,
		pool.Tokens[idxOut].Balance, pool.Tokens[idxOut].Weight,
		netIn,
	)
	if err != nil {
		return nil, err
	}

	amountOut := pool.Tokens[idxOut].ScaleAmountDown(scaledOut)
	if amountOut < minAmountOut {
		quoteLogger.Debug().
			Uint64("pool", uint64(pool.ID)).
			Uint64("amount_out", amountOut).
			Uint64("min_amount_out", minAmountOut).
			Msg("Weighted swap quote below slippage limit")
		return nil, ErrSlippageExceeded
	}

	newIn, newOut, err := postSwapBalances(pool.Tokens[idxIn].Balance, scaledIn, pool.Tokens[idxOut].Balance, scaledOut)
	if err != nil {
		return nil, err
	}

	if feeDisplay, ferr := utils.ScaledToFloat64(scaledIn - netIn); ferr == nil {
		quoteLogger.Debug().
			Uint64("pool", uint64(pool.ID)).
			Str("pair", denomIn+"/"+denomOut).
			Float64("fee", feeDisplay).
			Msg("Priced weighted swap")
	}

	return &SwapQuote{
		PoolID:        pool.ID,
		DenomIn:       denomIn,
		DenomOut:      denomOut,
		AmountIn:      amountIn,
		AmountOut:     amountOut,
		FeeAmount:     scaledIn - netIn,
		NewBalanceIn:  newIn,
		NewBalanceOut: newOut,
	}, nil
}

// WeightedSwapExactOut prices an exact-output swap against a weighted pool.
// The engine's required input is grossed up by the fee afterwards.
func WeightedSwapExactOut(pool *types.WeightedPool, denomIn, denomOut string, amountOut, maxAmountIn uint64) (*SwapQuote, error) {
	if !pool.IsActive {
		return nil, ErrPoolInactive
	}
	idxIn := pool.TokenIndex(denomIn)
	idxOut := pool.TokenIndex(denomOut)
	if idxIn < 0 || idxOut < 0 {
		return nil, ErrUnknownToken
	}

	scaledOut, err := pool.Tokens[idxOut].ScaleAmountUp(amountOut)
	if err != nil {
		return nil, err
	}
	netIn, err := weighted.CalcInGivenOut(
		pool.Tokens[idxIn].Balance, pool.Tokens[idxIn].Weight,
		pool.Tokens[idxOut].Balance, pool.Tokens[idxOut].Weight,
		scaledOut,
	)
	if err != nil {
		return nil, err
	}
	grossIn, err := fixedpoint.DivUp(netIn, fixedpoint.One-pool.SwapFee)
	if err != nil {
		return nil, err
	}

	amountIn := pool.Tokens[idxIn].ScaleAmountDown(grossIn)
	if pool.Tokens[idxIn].ScalingUp && grossIn%pool.Tokens[idxIn].ScalingFactor != 0 {
		amountIn++
	}
	if amountIn > maxAmountIn {
		return nil, ErrSlippageExceeded
	}

	newIn, newOut, err := postSwapBalances(pool.Tokens[idxIn].Balance, grossIn, pool.Tokens[idxOut].Balance, scaledOut)
	if err != nil {
		return nil, err
	}

	return &SwapQuote{
		PoolID:        pool.ID,
		DenomIn:       denomIn,
		DenomOut:      denomOut,
		AmountIn:      amountIn,
		AmountOut:     amountOut,
		FeeAmount:     grossIn - netIn,
		NewBalanceIn:  newIn,
		NewBalanceOut: newOut,
	}, nil
}
