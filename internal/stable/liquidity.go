package stable

import (
	"math/bits"

	"github.com/holiman/uint256"

	"github.com/ospreylabs/poolpricer/internal/fixedpoint"
)

var wideFixedOne = uint256.NewInt(fixedpoint.One)

// CalcLpTokensForDeposit quotes the LP tokens minted for an unbalanced
// deposit. Each token's deposit ratio is compared against the ideal ratio of
// a perfectly proportional deposit; the portion of any deposit above the
// ideal is charged the swap fee before the new invariant is computed. The
// mint is the supply scaled by the invariant growth, floored at zero.
// dOld is the current invariant of balances, typically cached by the caller.
func CalcLpTokensForDeposit(amp uint64, balances, amountsIn []uint64, lpSupply uint64, dOld *uint256.Int, swapFee uint64) (uint64, error) {
	if len(balances) == 0 || len(balances) != len(amountsIn) || lpSupply == 0 {
		return 0, fixedpoint.ErrInvalidAmount
	}
	if dOld == nil || dOld.IsZero() || swapFee >= fixedpoint.One {
		return 0, fixedpoint.ErrInvalidAmount
	}

	oldSum := new(uint256.Int)
	newSum := new(uint256.Int)
	for i, balance := range balances {
		oldSum.Add(oldSum, uint256.NewInt(balance))
		newSum.Add(newSum, uint256.NewInt(balance))
		newSum.Add(newSum, uint256.NewInt(amountsIn[i]))
	}

	// idealRatio = newSum/oldSum at fixed-point scale, rounded down.
	idealRatio := new(uint256.Int).Mul(newSum, wideFixedOne)
	idealRatio.Div(idealRatio, oldSum)

	adjusted := make([]uint64, len(balances))
	for i, balance := range balances {
		net, err := depositNetOfFee(balance, amountsIn[i], idealRatio, swapFee)
		if err != nil {
			return 0, err
		}
		newBalance, carry := bits.Add64(balance, net, 0)
		if carry != 0 {
			return 0, fixedpoint.ErrOverflow
		}
		adjusted[i] = newBalance
	}

	dNew, err := CalcInvariant(amp, adjusted)
	if err != nil {
		return 0, err
	}
	if !dNew.Gt(dOld) {
		return 0, nil
	}

	// lpMinted = lpSupply * (dNew - dOld) / dOld, rounded down.
	minted := new(uint256.Int).Sub(dNew, dOld)
	if _, overflow := minted.MulOverflow(minted, uint256.NewInt(lpSupply)); overflow {
		return 0, fixedpoint.ErrOverflow
	}
	minted.Div(minted, dOld)
	if !minted.IsUint64() {
		return 0, fixedpoint.ErrOverflow
	}
	return minted.Uint64(), nil
}

// depositNetOfFee charges the swap fee on the portion of a single token's
// deposit that exceeds the pool-wide ideal ratio.
func depositNetOfFee(balance, amountIn uint64, idealRatio *uint256.Int, swapFee uint64) (uint64, error) {
	if balance == 0 {
		return 0, fixedpoint.ErrInvalidAmount
	}
	newBalance, carry := bits.Add64(balance, amountIn, 0)
	if carry != 0 {
		return 0, fixedpoint.ErrOverflow
	}
	ratio := new(uint256.Int).Mul(uint256.NewInt(newBalance), wideFixedOne)
	ratio.Div(ratio, uint256.NewInt(balance))
	if !ratio.Gt(idealRatio) || !idealRatio.Gt(wideFixedOne) {
		return amountIn, nil
	}

	// nonTaxable = balance * (idealRatio - ONE), rounded down, capped at the
	// deposit itself.
	nonTaxable := new(uint256.Int).Sub(idealRatio, wideFixedOne)
	if _, overflow := nonTaxable.MulOverflow(nonTaxable, uint256.NewInt(balance)); overflow {
		return 0, fixedpoint.ErrOverflow
	}
	nonTaxable.Div(nonTaxable, wideFixedOne)
	if nonTaxable.CmpUint64(amountIn) > 0 {
		return amountIn, nil
	}

	taxable := amountIn - nonTaxable.Uint64()
	netTaxable, err := fixedpoint.MulDown(taxable, fixedpoint.One-swapFee)
	if err != nil {
		return 0, err
	}
	return nonTaxable.Uint64() + netTaxable, nil
}

// CalcTokenOutForLpBurn quotes the single-token withdrawal for burning
// lpBurn LP tokens. The target invariant is reduced in proportion to the
// burned supply, rounded in the pool's favor, and the swap fee is charged on
// the taxable portion of the withdrawal, mirroring the deposit fee policy.
// dOld is the current invariant of balances.
func CalcTokenOutForLpBurn(amp uint64, balances []uint64, tokenIndex int, lpBurn, lpSupply uint64, dOld *uint256.Int, swapFee uint64) (uint64, error) {
	if tokenIndex < 0 || tokenIndex >= len(balances) {
		return 0, fixedpoint.ErrInvalidAmount
	}
	if lpBurn == 0 || lpSupply == 0 || lpBurn >= lpSupply {
		return 0, fixedpoint.ErrInvalidAmount
	}
	if dOld == nil || dOld.IsZero() || swapFee >= fixedpoint.One {
		return 0, fixedpoint.ErrInvalidAmount
	}

	// dNew = dOld * (lpSupply - lpBurn) / lpSupply, rounded up so the pool
	// keeps the residue.
	dNew := new(uint256.Int)
	if _, overflow := dNew.MulOverflow(dOld, uint256.NewInt(lpSupply-lpBurn)); overflow {
		return 0, fixedpoint.ErrOverflow
	}
	dNew.Add(dNew, uint256.NewInt(lpSupply-1))
	dNew.Div(dNew, uint256.NewInt(lpSupply))

	newBalance, err := SolveBalance(amp, balances, dNew, tokenIndex)
	if err != nil {
		return 0, err
	}
	if newBalance >= balances[tokenIndex] {
		return 0, nil
	}
	rawOut := balances[tokenIndex] - newBalance

	totalBalance := new(uint256.Int)
	for _, balance := range balances {
		totalBalance.Add(totalBalance, uint256.NewInt(balance))
	}

	// The share of the withdrawal matching the token's share of the pool is
	// fee free; the remainder is a disguised swap and pays the swap fee.
	nonTaxable := new(uint256.Int).Mul(uint256.NewInt(rawOut), uint256.NewInt(balances[tokenIndex]))
	nonTaxable.Div(nonTaxable, totalBalance)

	taxable := rawOut - nonTaxable.Uint64()
	netTaxable, err := fixedpoint.MulDown(taxable, fixedpoint.One-swapFee)
	if err != nil {
		return 0, err
	}
	return nonTaxable.Uint64() + netTaxable, nil
}

// CalcTokensOutProportional quotes the per-token amounts for a proportional
// withdrawal of lpAmount out of lpSupply, each rounded down.
func CalcTokensOutProportional(balances []uint64, lpAmount, lpSupply uint64) ([]uint64, error) {
	if lpSupply == 0 {
		return nil, fixedpoint.ErrDivideByZero
	}
	if lpAmount == 0 || lpAmount > lpSupply {
		return nil, fixedpoint.ErrInvalidAmount
	}
	amounts := make([]uint64, len(balances))
	for i, balance := range balances {
		share := new(uint256.Int).Mul(uint256.NewInt(balance), uint256.NewInt(lpAmount))
		share.Div(share, uint256.NewInt(lpSupply))
		amounts[i] = share.Uint64()
	}
	return amounts, nil
}

// CalcTokensInProportional quotes the per-token deposits required to mint
// lpAmount against lpSupply, each rounded up.
func CalcTokensInProportional(balances []uint64, lpAmount, lpSupply uint64) ([]uint64, error) {
	if lpSupply == 0 {
		return nil, fixedpoint.ErrDivideByZero
	}
	if lpAmount == 0 {
		return nil, fixedpoint.ErrInvalidAmount
	}
	amounts := make([]uint64, len(balances))
	for i, balance := range balances {
		share := new(uint256.Int).Mul(uint256.NewInt(balance), uint256.NewInt(lpAmount))
		share.Add(share, uint256.NewInt(lpSupply-1))
		share.Div(share, uint256.NewInt(lpSupply))
		if !share.IsUint64() {
			return nil, fixedpoint.ErrOverflow
		}
		amounts[i] = share.Uint64()
	}
	return amounts, nil
}
