/*
This file contains common utility functions for converting between different types,
particularly for SDK math operations and fixed-point precision handling.
*/

package utils

import (
	"errors"
	"fmt"
	"math"

	sdkmath "cosmossdk.io/math"

	"github.com/ospreylabs/poolpricer/internal/fixedpoint"
)

// Error definitions for zero-tolerance error handling
var (
	ErrInvalidPrecision = errors.New("precision is invalid")
	ErrAmountNil        = errors.New("amount is nil")
	ErrAmountNegative   = errors.New("amount is negative")
	ErrAmountTooLarge   = errors.New("amount exceeds uint64 range")
	ErrNotFinite        = errors.New("value is not finite")
	ErrConversionFailed = errors.New("conversion failed")
)

// SDKIntToUint64 narrows an SDK Int (as received on the API surface) to the
// engine's native width.
func SDKIntToUint64(amount sdkmath.Int) (uint64, error) {
	if amount.IsNil() {
		return 0, ErrAmountNil
	}
	if amount.IsNegative() {
		return 0, ErrAmountNegative
	}
	if !amount.BigInt().IsUint64() {
		return 0, fmt.Errorf("%w: %s", ErrAmountTooLarge, amount.String())
	}
	return amount.Uint64(), nil
}

// Uint64ToSDKInt widens an engine amount for the API surface.
func Uint64ToSDKInt(amount uint64) sdkmath.Int {
	return sdkmath.NewIntFromUint64(amount)
}

// ScaledToFloat64 converts a fixed-point amount to a float for display and
// logging only; it must never feed back into pricing.
func ScaledToFloat64(amount uint64) (float64, error) {
	dec := sdkmath.LegacyNewDecFromInt(sdkmath.NewIntFromUint64(amount))
	result := dec.QuoInt64(int64(fixedpoint.Scale))
	resultFloat, err := result.Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}
	if math.IsNaN(resultFloat) || math.IsInf(resultFloat, 0) {
		return 0, fmt.Errorf("%w: result is %f", ErrNotFinite, resultFloat)
	}
	return resultFloat, nil
}

// SDKIntToFloat64 converts an SDK Int to float64 with proper precision handling
func SDKIntToFloat64(amount sdkmath.Int, precision int) (float64, error) {
	if precision < 0 || precision > 18 {
		return 0, fmt.Errorf("%w: %d (must be between 0 and 18)", ErrInvalidPrecision, precision)
	}
	if amount.IsNil() {
		return 0, ErrAmountNil
	}
	if amount.IsNegative() {
		return 0, ErrAmountNegative
	}

	decAmount := sdkmath.LegacyNewDecFromInt(amount)
	factor := sdkmath.LegacyNewDec(1)
	for i := 0; i < precision; i++ {
		factor = factor.Mul(sdkmath.LegacyNewDec(10))
	}

	result := decAmount.Quo(factor)
	resultFloat, err := result.Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}

	if math.IsNaN(resultFloat) || math.IsInf(resultFloat, 0) {
		return 0, fmt.Errorf("%w: result is %f", ErrNotFinite, resultFloat)
	}

	return resultFloat, nil
}
