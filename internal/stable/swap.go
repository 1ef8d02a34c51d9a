package stable

import (
	"math/bits"

	"github.com/holiman/uint256"

	"github.com/ospreylabs/poolpricer/internal/fixedpoint"
)

// Swap quotes keep a permanent margin in the pool's favor. On top of the one
// raw unit withheld from every quote, a convergence guard of two parts per
// 10^12 absorbs the residual wobble of the Newton solvers so that quotes are
// monotone in the input and round trips can never profit.
const (
	swapGuardNumerator   uint64 = 2
	swapGuardDenominator uint64 = 1_000_000_000_000
)

// CalcOutGivenIn quotes the output of tokenOut for an exact input of tokenIn.
func CalcOutGivenIn(amp uint64, balances []uint64, tokenIn, tokenOut int, amountIn uint64) (uint64, error) {
	if err := validateSwapIndexes(balances, tokenIn, tokenOut); err != nil {
		return 0, err
	}
	if amountIn == 0 {
		return 0, fixedpoint.ErrInvalidAmount
	}

	d, err := CalcInvariant(amp, balances)
	if err != nil {
		return 0, err
	}

	updated := make([]uint64, len(balances))
	copy(updated, balances)
	newBalanceIn, carry := bits.Add64(balances[tokenIn], amountIn, 0)
	if carry != 0 {
		return 0, fixedpoint.ErrOverflow
	}
	updated[tokenIn] = newBalanceIn

	newBalanceOut, err := SolveBalance(amp, updated, d, tokenOut)
	if err != nil {
		return 0, err
	}
	if newBalanceOut >= balances[tokenOut] {
		return 0, nil
	}
	amountOut := balances[tokenOut] - newBalanceOut - 1
	guard := swapGuard(amountOut)
	if guard >= amountOut {
		return 0, nil
	}
	return amountOut - guard, nil
}

// CalcInGivenOut quotes the input of tokenIn required for an exact output of
// tokenOut.
func CalcInGivenOut(amp uint64, balances []uint64, tokenIn, tokenOut int, amountOut uint64) (uint64, error) {
	if err := validateSwapIndexes(balances, tokenIn, tokenOut); err != nil {
		return 0, err
	}
	if amountOut == 0 || amountOut >= balances[tokenOut] {
		return 0, fixedpoint.ErrInvalidAmount
	}

	d, err := CalcInvariant(amp, balances)
	if err != nil {
		return 0, err
	}

	updated := make([]uint64, len(balances))
	copy(updated, balances)
	updated[tokenOut] = balances[tokenOut] - amountOut

	newBalanceIn, err := SolveBalance(amp, updated, d, tokenIn)
	if err != nil {
		return 0, err
	}
	if newBalanceIn < balances[tokenIn] {
		return 0, fixedpoint.ErrInvalidAmount
	}
	amountIn := newBalanceIn - balances[tokenIn] + 1
	result, carry := bits.Add64(amountIn, swapGuard(amountIn), 0)
	if carry != 0 {
		return 0, fixedpoint.ErrOverflow
	}
	return result, nil
}

func validateSwapIndexes(balances []uint64, tokenIn, tokenOut int) error {
	if tokenIn == tokenOut ||
		tokenIn < 0 || tokenIn >= len(balances) ||
		tokenOut < 0 || tokenOut >= len(balances) {
		return fixedpoint.ErrInvalidAmount
	}
	return nil
}

// swapGuard returns ceil(amount * 2 / 10^12).
func swapGuard(amount uint64) uint64 {
	g := uint256.NewInt(amount)
	g.Mul(g, uint256.NewInt(swapGuardNumerator))
	g.Add(g, uint256.NewInt(swapGuardDenominator-1))
	g.Div(g, uint256.NewInt(swapGuardDenominator))
	return g.Uint64()
}
