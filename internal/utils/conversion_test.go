package utils

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func TestSDKIntToUint64(t *testing.T) {
	got, err := SDKIntToUint64(sdkmath.NewInt(1_500_000))
	require.NoError(t, err)
	require.Equal(t, uint64(1_500_000), got)

	_, err = SDKIntToUint64(sdkmath.Int{})
	require.ErrorIs(t, err, ErrAmountNil)

	_, err = SDKIntToUint64(sdkmath.NewInt(-1))
	require.ErrorIs(t, err, ErrAmountNegative)

	tooBig := sdkmath.NewIntFromUint64(^uint64(0)).AddRaw(1)
	_, err = SDKIntToUint64(tooBig)
	require.ErrorIs(t, err, ErrAmountTooLarge)
}

func TestUint64ToSDKIntRoundTrip(t *testing.T) {
	amount := ^uint64(0)
	got, err := SDKIntToUint64(Uint64ToSDKInt(amount))
	require.NoError(t, err)
	require.Equal(t, amount, got)
}

func TestScaledToFloat64(t *testing.T) {
	got, err := ScaledToFloat64(1_500_000_000)
	require.NoError(t, err)
	require.InDelta(t, 1.5, got, 1e-12)
}

func TestSDKIntToFloat64(t *testing.T) {
	got, err := SDKIntToFloat64(sdkmath.NewInt(1_500_000), 6)
	require.NoError(t, err)
	require.InDelta(t, 1.5, got, 1e-12)

	_, err = SDKIntToFloat64(sdkmath.NewInt(1), 19)
	require.ErrorIs(t, err, ErrInvalidPrecision)

	_, err = SDKIntToFloat64(sdkmath.NewInt(-1), 6)
	require.ErrorIs(t, err, ErrAmountNegative)
}
