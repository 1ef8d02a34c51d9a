// Package stable implements the StableSwap invariant and the quote math
// built on it. The invariant D satisfies
//
//	Ann*S + D = Ann*D + D^(n+1) / (n^n * P)
//
// where S and P are the sum and product of the balances, n the token count
// and Ann = amp*n. D and the per-token balance solver are both obtained by
// bounded Newton-Raphson iteration carried at 256-bit width; the solvers
// converge in a handful of steps for any amp in the supported range.
package stable

import (
	"errors"

	"github.com/holiman/uint256"

	"github.com/ospreylabs/poolpricer/internal/fixedpoint"
)

const (
	// AmpPrecision scales the amplification coefficient: a pool's amp field
	// stores A * AmpPrecision.
	AmpPrecision uint64 = 1000

	MinAmp uint64 = 1
	MaxAmp uint64 = 10_000

	maxLoopLimit = 255

	// convergeTolerance is the absolute tolerance, in raw units, at which a
	// Newton iteration is considered settled.
	convergeTolerance uint64 = 1
)

var ErrNotConverged = errors.New("newton iteration did not converge")

var (
	wideAmpPrecision = uint256.NewInt(AmpPrecision)
	wideOne          = uint256.NewInt(1)
)

// CalcInvariant solves for D given the amplification and the normalized
// balances. Returns zero when the balance sum is zero, ErrInvalidAmount when
// any single balance is zero, and ErrNotConverged if the iteration bound is
// exhausted.
func CalcInvariant(amp uint64, balances []uint64) (*uint256.Int, error) {
	if len(balances) == 0 {
		return nil, fixedpoint.ErrInvalidAmount
	}
	sum := new(uint256.Int)
	for _, balance := range balances {
		sum.Add(sum, uint256.NewInt(balance))
	}
	if sum.IsZero() {
		return new(uint256.Int), nil
	}
	for _, balance := range balances {
		if balance == 0 {
			return nil, fixedpoint.ErrInvalidAmount
		}
	}

	n := uint64(len(balances))
	ann := uint256.NewInt(amp)
	ann.Mul(ann, uint256.NewInt(n))

	// ann*sum/AmpPrecision is invariant across iterations.
	annSum := new(uint256.Int).Mul(ann, sum)
	annSum.Div(annSum, wideAmpPrecision)

	annLessPrec := new(uint256.Int).Sub(ann, wideAmpPrecision)

	d := sum.Clone()
	dP := new(uint256.Int)
	numerator := new(uint256.Int)
	denominator := new(uint256.Int)
	term := new(uint256.Int)
	for i := 0; i < maxLoopLimit; i++ {
		dP.Set(d)
		for _, balance := range balances {
			// dP = dP * d / (n * balance), divisor widened before the multiply
			var overflow bool
			if _, overflow = dP.MulOverflow(dP, d); overflow {
				return nil, fixedpoint.ErrOverflow
			}
			dP.Div(dP, new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(balance)))
		}

		// numerator = (annSum + n*dP) * d
		numerator.Mul(uint256.NewInt(n), dP)
		numerator.Add(numerator, annSum)
		if _, overflow := numerator.MulOverflow(numerator, d); overflow {
			return nil, fixedpoint.ErrOverflow
		}

		// denominator = (ann-AmpPrecision)*d/AmpPrecision + (n+1)*dP
		if _, overflow := term.MulOverflow(annLessPrec, d); overflow {
			return nil, fixedpoint.ErrOverflow
		}
		term.Div(term, wideAmpPrecision)
		denominator.Mul(uint256.NewInt(n+1), dP)
		denominator.Add(denominator, term)

		dNew := new(uint256.Int).Div(numerator, denominator)
		if withinTolerance(dNew, d) {
			return dNew, nil
		}
		d.Set(dNew)
	}
	return nil, ErrNotConverged
}

// SolveBalance finds the balance of tokenIndex that holds the invariant at d
// when every other balance is taken as given. The recurrence is
// y_new = (y^2 + c) / (2y + b - d) with b and c precomputed from d, Ann and
// the other balances.
func SolveBalance(amp uint64, balances []uint64, d *uint256.Int, tokenIndex int) (uint64, error) {
	if len(balances) < 2 || tokenIndex < 0 || tokenIndex >= len(balances) {
		return 0, fixedpoint.ErrInvalidAmount
	}
	if d == nil || d.IsZero() {
		return 0, fixedpoint.ErrInvalidAmount
	}

	n := uint64(len(balances))
	ann := uint256.NewInt(amp)
	ann.Mul(ann, uint256.NewInt(n))

	c := d.Clone()
	othersSum := new(uint256.Int)
	for i, balance := range balances {
		if i == tokenIndex {
			continue
		}
		if balance == 0 {
			return 0, fixedpoint.ErrInvalidAmount
		}
		othersSum.Add(othersSum, uint256.NewInt(balance))
		// c = c * d / (n * balance), divisor widened before the multiply
		if _, overflow := c.MulOverflow(c, d); overflow {
			return 0, fixedpoint.ErrOverflow
		}
		c.Div(c, new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(balance)))
	}
	// c = c * d * AmpPrecision / (ann * n)
	if _, overflow := c.MulOverflow(c, d); overflow {
		return 0, fixedpoint.ErrOverflow
	}
	if _, overflow := c.MulOverflow(c, wideAmpPrecision); overflow {
		return 0, fixedpoint.ErrOverflow
	}
	c.Div(c, new(uint256.Int).Mul(ann, uint256.NewInt(n)))

	// b = othersSum + d * AmpPrecision / ann
	b := new(uint256.Int).Mul(d, wideAmpPrecision)
	b.Div(b, ann)
	b.Add(b, othersSum)

	y := d.Clone()
	numerator := new(uint256.Int)
	denominator := new(uint256.Int)
	for i := 0; i < maxLoopLimit; i++ {
		// denominator = 2y + b - d
		denominator.Lsh(y, 1)
		denominator.Add(denominator, b)
		if denominator.Lt(d) {
			return 0, ErrNotConverged
		}
		denominator.Sub(denominator, d)
		if denominator.IsZero() {
			return 0, ErrNotConverged
		}

		// numerator = y^2 + c
		if _, overflow := numerator.MulOverflow(y, y); overflow {
			return 0, fixedpoint.ErrOverflow
		}
		numerator.Add(numerator, c)

		yNew := new(uint256.Int).Div(numerator, denominator)
		if withinTolerance(yNew, y) {
			if !yNew.IsUint64() {
				return 0, fixedpoint.ErrOverflow
			}
			return yNew.Uint64(), nil
		}
		y.Set(yNew)
	}
	return 0, ErrNotConverged
}

// withinTolerance reports whether a and b differ by at most the convergence
// tolerance.
func withinTolerance(a, b *uint256.Int) bool {
	diff := new(uint256.Int)
	if a.Lt(b) {
		diff.Sub(b, a)
	} else {
		diff.Sub(a, b)
	}
	return diff.CmpUint64(convergeTolerance) <= 0
}
