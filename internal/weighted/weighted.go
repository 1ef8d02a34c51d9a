// Package weighted implements the constant weighted-product invariant used
// by weighted pools. All functions are pure: they take balances already
// normalized to a common decimal base and never mutate pool state.
//
// Rounding always favors the pool. Swap quotes round every intermediate step
// in whichever direction understates the trader's output or overstates their
// input, so a swap followed by the reverse swap can never extract value.
package weighted

import (
	"math/bits"

	"github.com/ospreylabs/poolpricer/internal/fixedpoint"
)

// CalcInvariant computes the weighted product of the balances,
// prod(balance_i ^ weight_i), rounding down. Weights are scaled fractions
// that sum to fixedpoint.One.
func CalcInvariant(balances, weights []uint64) (uint64, error) {
	if len(balances) == 0 || len(balances) != len(weights) {
		return 0, fixedpoint.ErrInvalidAmount
	}
	invariant := fixedpoint.One
	for i, balance := range balances {
		term, err := fixedpoint.PowDown(balance, weights[i])
		if err != nil {
			return 0, err
		}
		invariant, err = fixedpoint.MulDown(invariant, term)
		if err != nil {
			return 0, err
		}
	}
	if invariant == 0 {
		return 0, fixedpoint.ErrInvalidAmount
	}
	return invariant, nil
}

// CalcOutGivenIn quotes the output amount for an exact input. The base ratio
// rounds up and the exponent rounds down so the power term is overstated,
// which understates the output.
func CalcOutGivenIn(balanceIn, weightIn, balanceOut, weightOut, amountIn uint64) (uint64, error) {
	if amountIn == 0 {
		return 0, fixedpoint.ErrInvalidAmount
	}
	newBalanceIn, carry := bits.Add64(balanceIn, amountIn, 0)
	if carry != 0 {
		return 0, fixedpoint.ErrOverflow
	}
	base, err := fixedpoint.DivUp(balanceIn, newBalanceIn)
	if err != nil {
		return 0, err
	}
	exponent, err := fixedpoint.DivDown(weightIn, weightOut)
	if err != nil {
		return 0, err
	}
	power, err := fixedpoint.PowUp(base, exponent)
	if err != nil {
		return 0, err
	}
	return fixedpoint.MulDown(balanceOut, fixedpoint.Complement(power))
}

// CalcInGivenOut quotes the input required for an exact output. Every step
// rounds up so the input is overstated.
func CalcInGivenOut(balanceIn, weightIn, balanceOut, weightOut, amountOut uint64) (uint64, error) {
	if amountOut == 0 || amountOut >= balanceOut {
		return 0, fixedpoint.ErrInvalidAmount
	}
	base, err := fixedpoint.DivUp(balanceOut, balanceOut-amountOut)
	if err != nil {
		return 0, err
	}
	exponent, err := fixedpoint.DivUp(weightOut, weightIn)
	if err != nil {
		return 0, err
	}
	power, err := fixedpoint.PowUp(base, exponent)
	if err != nil {
		return 0, err
	}
	if power <= fixedpoint.One {
		return 0, nil
	}
	return fixedpoint.MulUp(balanceIn, power-fixedpoint.One)
}

// CalcLpToMint converts invariant growth into LP tokens: the supply is
// scaled by the growth of the invariant raised to the weight sum, rounded
// down, and floored at zero when the invariant did not grow.
func CalcLpToMint(lpSupply, invariantNew, invariantOld, weightSum uint64) (uint64, error) {
	ratio, err := fixedpoint.DivDown(invariantNew, invariantOld)
	if err != nil {
		return 0, err
	}
	growth, err := fixedpoint.PowDown(ratio, weightSum)
	if err != nil {
		return 0, err
	}
	if growth <= fixedpoint.One {
		return 0, nil
	}
	return fixedpoint.MulDown(lpSupply, growth-fixedpoint.One)
}
