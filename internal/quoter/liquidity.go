package quoter

import (
	"math/bits"
	"time"

	"github.com/holiman/uint256"

	"github.com/ospreylabs/poolpricer/internal/fixedpoint"
	"github.com/ospreylabs/poolpricer/internal/stable"
	"github.com/ospreylabs/poolpricer/internal/types"
	"github.com/ospreylabs/poolpricer/internal/weighted"
)

// WeightedDepositUnbalanced prices a two-token deposit into a weighted pool
// where the deposit ratio may not match the pool ratio. The deposit is split
// into a balanced portion and an excess portion; the excess is a disguised
// swap and is charged the pool's swap fee before the invariant growth is
// converted into LP tokens.
func WeightedDepositUnbalanced(pool *types.WeightedPool, amountA, amountB, minLpAmount uint64) (*LiquidityQuote, error) {
	if !pool.IsActive {
		return nil, ErrPoolInactive
	}
	if len(pool.Tokens) != 2 {
		return nil, fixedpoint.ErrInvalidAmount
	}
	if amountA == 0 || amountB == 0 || minLpAmount == 0 {
		return nil, fixedpoint.ErrInvalidAmount
	}

	scaledA, err := pool.Tokens[0].ScaleAmountUp(amountA)
	if err != nil {
		return nil, err
	}
	scaledB, err := pool.Tokens[1].ScaleAmountUp(amountB)
	if err != nil {
		return nil, err
	}
	balanceA := pool.Tokens[0].Balance
	balanceB := pool.Tokens[1].Balance
	if balanceA == 0 || balanceB == 0 {
		return nil, fixedpoint.ErrInvalidAmount
	}

	depositRatio := wideRatio(scaledA, scaledB)
	poolRatio := wideRatio(balanceA, balanceB)

	// Split the overweight side into the portion matching the pool ratio and
	// the excess above it.
	var balanced, excess *uint256.Int
	tokenAExcess := depositRatio.Gt(poolRatio)
	if tokenAExcess {
		balanced = new(uint256.Int).Mul(poolRatio, uint256.NewInt(scaledB))
		balanced.Div(balanced, uint256.NewInt(fixedpoint.One))
		if balanced.CmpUint64(scaledA) > 0 {
			return nil, fixedpoint.ErrInvalidAmount
		}
		excess = new(uint256.Int).Sub(uint256.NewInt(scaledA), balanced)
	} else {
		balanced = new(uint256.Int).Mul(uint256.NewInt(scaledA), uint256.NewInt(fixedpoint.One))
		balanced.Div(balanced, poolRatio)
		if balanced.CmpUint64(scaledB) > 0 {
			return nil, fixedpoint.ErrInvalidAmount
		}
		excess = new(uint256.Int).Sub(uint256.NewInt(scaledB), balanced)
	}

	excessAfterFee := new(uint256.Int).Mul(excess, uint256.NewInt(fixedpoint.One-pool.SwapFee))
	excessAfterFee.Div(excessAfterFee, uint256.NewInt(fixedpoint.One))

	effective := new(uint256.Int).Add(balanced, excessAfterFee)
	if !effective.IsUint64() {
		return nil, fixedpoint.ErrOverflow
	}

	effectiveA, effectiveB := scaledA, scaledB
	if tokenAExcess {
		effectiveA = effective.Uint64()
	} else {
		effectiveB = effective.Uint64()
	}

	newBalanceA, carryA := bits.Add64(balanceA, effectiveA, 0)
	newBalanceB, carryB := bits.Add64(balanceB, effectiveB, 0)
	if carryA != 0 || carryB != 0 {
		return nil, fixedpoint.ErrOverflow
	}

	weights := pool.Weights()
	oldK, err := weighted.CalcInvariant([]uint64{balanceA, balanceB}, weights)
	if err != nil {
		return nil, err
	}
	newK, err := weighted.CalcInvariant([]uint64{newBalanceA, newBalanceB}, weights)
	if err != nil {
		return nil, err
	}

	lpToMint, err := weighted.CalcLpToMint(pool.LpSupply, newK, oldK, fixedpoint.One)
	if err != nil {
		return nil, err
	}
	if lpToMint < minLpAmount {
		quoteLogger.Debug().
			Uint64("pool", uint64(pool.ID)).
			Uint64("lp_to_mint", lpToMint).
			Uint64("min_lp_amount", minLpAmount).
			Msg("Weighted deposit quote below slippage limit")
		return nil, ErrSlippageExceeded
	}

	newSupply, carry := bits.Add64(pool.LpSupply, lpToMint, 0)
	if carry != 0 {
		return nil, fixedpoint.ErrOverflow
	}
	return &LiquidityQuote{
		PoolID:      pool.ID,
		LpAmount:    lpToMint,
		Amounts:     []uint64{amountA, amountB},
		FeeCharged:  !excess.IsZero(),
		NewLpSupply: newSupply,
	}, nil
}

// StableDeposit prices an unbalanced deposit into a stable pool. amountsIn
// is in raw token units and pool order; zero entries are allowed.
func StableDeposit(pool *types.StablePool, amountsIn []uint64, minLpAmount uint64, now time.Time) (*LiquidityQuote, error) {
	if !pool.IsActive {
		return nil, ErrPoolInactive
	}
	if len(amountsIn) != len(pool.Tokens) {
		return nil, fixedpoint.ErrInvalidAmount
	}

	scaled := make([]uint64, len(amountsIn))
	for i, amount := range amountsIn {
		var err error
		scaled[i], err = pool.Tokens[i].ScaleAmountUp(amount)
		if err != nil {
			return nil, err
		}
	}

	// A pool with no LP supply takes its bootstrap mint from the deposit
	// itself rather than from invariant growth.
	if pool.LpSupply == 0 {
		if len(scaled) != 2 || scaled[0] == 0 || scaled[1] == 0 {
			return nil, fixedpoint.ErrInvalidAmount
		}
		lpToMint := InitialStableLp(scaled[0], scaled[1])
		if lpToMint < minLpAmount {
			return nil, ErrSlippageExceeded
		}
		return &LiquidityQuote{
			PoolID:      pool.ID,
			LpAmount:    lpToMint,
			Amounts:     amountsIn,
			NewLpSupply: lpToMint,
		}, nil
	}

	amp := pool.CurrentAmp(now)
	balances := pool.Balances()
	dOld, err := stable.CalcInvariant(amp, balances)
	if err != nil {
		return nil, err
	}

	lpToMint, err := stable.CalcLpTokensForDeposit(amp, balances, scaled, pool.LpSupply, dOld, pool.SwapFee)
	if err != nil {
		return nil, err
	}
	if lpToMint < minLpAmount {
		return nil, ErrSlippageExceeded
	}

	newSupply, carry := bits.Add64(pool.LpSupply, lpToMint, 0)
	if carry != 0 {
		return nil, fixedpoint.ErrOverflow
	}
	return &LiquidityQuote{
		PoolID:      pool.ID,
		LpAmount:    lpToMint,
		Amounts:     amountsIn,
		FeeCharged:  pool.SwapFee > 0,
		NewLpSupply: newSupply,
	}, nil
}

// StableWithdrawSingle prices burning LP tokens for a single token.
func StableWithdrawSingle(pool *types.StablePool, denomOut string, lpBurn, minAmountOut uint64, now time.Time) (*LiquidityQuote, error) {
	if !pool.IsActive {
		return nil, ErrPoolInactive
	}
	idxOut := pool.TokenIndex(denomOut)
	if idxOut < 0 {
		return nil, ErrUnknownToken
	}

	amp := pool.CurrentAmp(now)
	balances := pool.Balances()
	dOld, err := stable.CalcInvariant(amp, balances)
	if err != nil {
		return nil, err
	}

	scaledOut, err := stable.CalcTokenOutForLpBurn(amp, balances, idxOut, lpBurn, pool.LpSupply, dOld, pool.SwapFee)
	if err != nil {
		return nil, err
	}

	amountOut := pool.Tokens[idxOut].ScaleAmountDown(scaledOut)
	if amountOut < minAmountOut {
		return nil, ErrSlippageExceeded
	}

	amounts := make([]uint64, len(pool.Tokens))
	amounts[idxOut] = amountOut
	return &LiquidityQuote{
		PoolID:      pool.ID,
		LpAmount:    lpBurn,
		Amounts:     amounts,
		FeeCharged:  pool.SwapFee > 0,
		NewLpSupply: pool.LpSupply - lpBurn,
	}, nil
}

// StableWithdrawProportional prices burning LP tokens for the pool's tokens
// in proportion to their balances. No fee applies to proportional exits.
func StableWithdrawProportional(pool *types.StablePool, lpBurn uint64) (*LiquidityQuote, error) {
	if !pool.IsActive {
		return nil, ErrPoolInactive
	}
	scaled, err := stable.CalcTokensOutProportional(pool.Balances(), lpBurn, pool.LpSupply)
	if err != nil {
		return nil, err
	}

	amounts := make([]uint64, len(scaled))
	for i, amount := range scaled {
		amounts[i] = pool.Tokens[i].ScaleAmountDown(amount)
	}
	return &LiquidityQuote{
		PoolID:      pool.ID,
		LpAmount:    lpBurn,
		Amounts:     amounts,
		NewLpSupply: pool.LpSupply - lpBurn,
	}, nil
}

// StableDepositProportional prices the deposits required to mint lpAmount in
// proportion to the pool's balances. Amounts round up in the pool's favor.
func StableDepositProportional(pool *types.StablePool, lpAmount uint64) (*LiquidityQuote, error) {
	if !pool.IsActive {
		return nil, ErrPoolInactive
	}
	scaled, err := stable.CalcTokensInProportional(pool.Balances(), lpAmount, pool.LpSupply)
	if err != nil {
		return nil, err
	}

	amounts := make([]uint64, len(scaled))
	for i, amount := range scaled {
		amounts[i] = pool.Tokens[i].ScaleAmountDown(amount)
		if pool.Tokens[i].ScalingUp && amount%pool.Tokens[i].ScalingFactor != 0 {
			amounts[i]++
		}
	}
	newSupply, carry := bits.Add64(pool.LpSupply, lpAmount, 0)
	if carry != 0 {
		return nil, fixedpoint.ErrOverflow
	}
	return &LiquidityQuote{
		PoolID:      pool.ID,
		LpAmount:    lpAmount,
		Amounts:     amounts,
		NewLpSupply: newSupply,
	}, nil
}

// InitialStableLp computes the LP amount minted by a pool's very first
// deposit: the integer square root of the product of the two normalized
// deposits.
func InitialStableLp(scaledAmountA, scaledAmountB uint64) uint64 {
	product := new(uint256.Int).Mul(uint256.NewInt(scaledAmountA), uint256.NewInt(scaledAmountB))
	product.Sqrt(product)
	return product.Uint64()
}

// wideRatio returns a*One/b at 256-bit width.
func wideRatio(a, b uint64) *uint256.Int {
	ratio := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(fixedpoint.One))
	ratio.Div(ratio, uint256.NewInt(b))
	return ratio
}
