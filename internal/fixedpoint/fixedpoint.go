// Package fixedpoint implements unsigned fixed-point arithmetic with nine
// decimal places of precision. Every operation carries an explicit rounding
// direction so that callers can always round against the party requesting a
// quote. Intermediate products are computed at 256-bit width, so the only
// overflow surface is the final narrowing back to uint64.
package fixedpoint

import (
	"errors"

	"github.com/holiman/uint256"
)

const (
	// Scale is the fixed-point unit. A raw value v represents v / Scale.
	Scale uint64 = 1_000_000_000

	One   = Scale
	Two   = 2 * Scale
	Three = 3 * Scale
	Four  = 4 * Scale
)

var (
	ErrOverflow      = errors.New("fixed-point overflow")
	ErrDivideByZero  = errors.New("division by zero")
	ErrInvalidAmount = errors.New("invalid amount")
)

var (
	wideScale        = uint256.NewInt(Scale)
	wideScaleLessOne = uint256.NewInt(Scale - 1)
)

// MulDown multiplies two fixed-point values, rounding the result down.
func MulDown(a, b uint64) (uint64, error) {
	product := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	product.Div(product, wideScale)
	if !product.IsUint64() {
		return 0, ErrOverflow
	}
	return product.Uint64(), nil
}

// MulUp multiplies two fixed-point values, rounding the result up.
func MulUp(a, b uint64) (uint64, error) {
	product := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	product.Add(product, wideScaleLessOne)
	product.Div(product, wideScale)
	if !product.IsUint64() {
		return 0, ErrOverflow
	}
	return product.Uint64(), nil
}

// DivDown divides a by b, rounding the quotient down.
func DivDown(a, b uint64) (uint64, error) {
	if b == 0 {
		return 0, ErrDivideByZero
	}
	quotient := new(uint256.Int).Mul(uint256.NewInt(a), wideScale)
	quotient.Div(quotient, uint256.NewInt(b))
	if !quotient.IsUint64() {
		return 0, ErrOverflow
	}
	return quotient.Uint64(), nil
}

// DivUp divides a by b, rounding the quotient up.
func DivUp(a, b uint64) (uint64, error) {
	if b == 0 {
		return 0, ErrDivideByZero
	}
	quotient := new(uint256.Int).Mul(uint256.NewInt(a), wideScale)
	quotient.Add(quotient, uint256.NewInt(b-1))
	quotient.Div(quotient, uint256.NewInt(b))
	if !quotient.IsUint64() {
		return 0, ErrOverflow
	}
	return quotient.Uint64(), nil
}

// Complement returns One - a, saturating at zero for a > One.
func Complement(a uint64) uint64 {
	if a >= One {
		return 0
	}
	return One - a
}
