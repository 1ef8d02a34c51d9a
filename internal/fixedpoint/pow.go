package fixedpoint

import "github.com/holiman/uint256"

// Exponentiation runs at an internal scale of 10^18 to keep precision while
// the result is assembled, then narrows back to Scale. The integer part of
// the exponent is handled by binary exponentiation and the fractional part by
// a square-root chain over its binary digits. The raw result is accurate to
// well under one part in 10^8, and PowDown/PowUp convert that bound into a
// hard guarantee by subtracting or adding the maximum error.
const (
	powScale uint64 = 1_000_000_000_000_000_000
	powLift  uint64 = powScale / Scale

	// Relative error bound of powCore, expressed at Scale (10 = 1e-8).
	powMaxError uint64 = 10

	powMaxFracBits = 64
)

var (
	widePowScale       = uint256.NewInt(powScale)
	widePowLift        = uint256.NewInt(powLift)
	widePowLiftLessOne = uint256.NewInt(powLift - 1)
)

// PowDown raises base to exp, guaranteeing the result does not exceed the
// exact value. Whole exponents up to four are computed exactly.
func PowDown(base, exp uint64) (uint64, error) {
	switch exp {
	case 0:
		return One, nil
	case One:
		return base, nil
	case Two:
		return MulDown(base, base)
	case Three:
		square, err := MulDown(base, base)
		if err != nil {
			return 0, err
		}
		return MulDown(square, base)
	case Four:
		square, err := MulDown(base, base)
		if err != nil {
			return 0, err
		}
		return MulDown(square, square)
	}

	raw, err := powCore(base, exp, false)
	if err != nil {
		return 0, err
	}
	margin, err := powMargin(raw)
	if err != nil {
		return 0, err
	}
	if margin >= raw {
		return 0, nil
	}
	return raw - margin, nil
}

// PowUp raises base to exp, guaranteeing the result is not below the exact
// value. Whole exponents up to four are computed exactly.
func PowUp(base, exp uint64) (uint64, error) {
	switch exp {
	case 0:
		return One, nil
	case One:
		return base, nil
	case Two:
		return MulUp(base, base)
	case Three:
		square, err := MulUp(base, base)
		if err != nil {
			return 0, err
		}
		return MulUp(square, base)
	case Four:
		square, err := MulUp(base, base)
		if err != nil {
			return 0, err
		}
		return MulUp(square, square)
	}

	raw, err := powCore(base, exp, true)
	if err != nil {
		return 0, err
	}
	margin, err := powMargin(raw)
	if err != nil {
		return 0, err
	}
	result := raw + margin
	if result < raw {
		return 0, ErrOverflow
	}
	return result, nil
}

// powMargin is the absolute error bound for a raw powCore result: the
// relative bound plus one unit for final-digit quantization.
func powMargin(raw uint64) (uint64, error) {
	relative, err := MulUp(raw, powMaxError)
	if err != nil {
		return 0, err
	}
	return relative + 1, nil
}

// powCore computes base^exp at powScale precision and narrows the result to
// Scale, rounding the narrowing step up or down per roundUp. Both rounding
// variants share the same floor-rounded accumulation, so the pair brackets
// the true value only together with the powMargin adjustment.
func powCore(base, exp uint64, roundUp bool) (uint64, error) {
	x := new(uint256.Int).Mul(uint256.NewInt(base), widePowLift)
	result := new(uint256.Int).Set(widePowScale)

	whole := exp / One
	frac := exp % One

	factor := new(uint256.Int).Set(x)
	for e := whole; e > 0; e >>= 1 {
		if e&1 == 1 {
			if err := powMulInternal(result, result, factor); err != nil {
				return 0, err
			}
		}
		if e > 1 {
			if err := powMulInternal(factor, factor, factor); err != nil {
				return 0, err
			}
		}
	}

	if frac > 0 {
		root := new(uint256.Int).Set(x)
		rem := frac
		for i := 0; i < powMaxFracBits && rem > 0; i++ {
			scaled, overflow := new(uint256.Int).MulOverflow(root, widePowScale)
			if overflow {
				return 0, ErrOverflow
			}
			root.Sqrt(scaled)
			rem <<= 1
			if rem >= One {
				rem -= One
				if err := powMulInternal(result, result, root); err != nil {
					return 0, err
				}
			}
		}
	}

	if roundUp {
		result.Add(result, widePowLiftLessOne)
	}
	result.Div(result, widePowLift)
	if !result.IsUint64() {
		return 0, ErrOverflow
	}
	return result.Uint64(), nil
}

// powMulInternal sets dst to a*b at powScale precision, rounding down.
func powMulInternal(dst, a, b *uint256.Int) error {
	product, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return ErrOverflow
	}
	dst.Div(product, widePowScale)
	return nil
}
