package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ospreylabs/poolpricer/internal/fixedpoint"
)

func TestCurrentAmpRampUp(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	pool := &StablePool{
		Amp:          100_000,
		AmpTarget:    200_000,
		AmpRampStart: start,
		AmpRampStop:  start.Add(1000 * time.Second),
	}

	require.Equal(t, uint64(100_000), pool.CurrentAmp(start.Add(-time.Minute)))
	require.Equal(t, uint64(100_000), pool.CurrentAmp(start))
	require.Equal(t, uint64(150_000), pool.CurrentAmp(start.Add(500*time.Second)))
	require.Equal(t, uint64(200_000), pool.CurrentAmp(start.Add(1000*time.Second)))
	require.Equal(t, uint64(200_000), pool.CurrentAmp(start.Add(time.Hour)))
}

func TestCurrentAmpRampDown(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	pool := &StablePool{
		Amp:          200_000,
		AmpTarget:    100_000,
		AmpRampStart: start,
		AmpRampStop:  start.Add(1000 * time.Second),
	}

	require.Equal(t, uint64(150_000), pool.CurrentAmp(start.Add(500*time.Second)))
	require.Equal(t, uint64(100_000), pool.CurrentAmp(start.Add(2000*time.Second)))
}

func TestCurrentAmpNoRamp(t *testing.T) {
	pool := &StablePool{Amp: 500_000}
	require.Equal(t, uint64(500_000), pool.CurrentAmp(time.Now()))
}

func TestValidateAmp(t *testing.T) {
	require.NoError(t, ValidateAmp(1000))
	require.NoError(t, ValidateAmp(10_000_000))
	require.ErrorIs(t, ValidateAmp(999), fixedpoint.ErrInvalidAmount)
	require.ErrorIs(t, ValidateAmp(10_000_001), fixedpoint.ErrInvalidAmount)
}

func TestValidateWeights(t *testing.T) {
	good := []PoolToken{
		{Denom: "uatom", Weight: 600_000_000},
		{Denom: "uosmo", Weight: 400_000_000},
	}
	require.NoError(t, ValidateWeights(good))

	short := []PoolToken{
		{Denom: "uatom", Weight: 600_000_000},
		{Denom: "uosmo", Weight: 300_000_000},
	}
	require.ErrorIs(t, ValidateWeights(short), fixedpoint.ErrInvalidAmount)

	zero := []PoolToken{
		{Denom: "uatom", Weight: fixedpoint.One},
		{Denom: "uosmo", Weight: 0},
	}
	require.ErrorIs(t, ValidateWeights(zero), fixedpoint.ErrInvalidAmount)
}

func TestScaleAmount(t *testing.T) {
	token := PoolToken{Decimals: 6, ScalingUp: true, ScalingFactor: 1000}
	up, err := token.ScaleAmountUp(1_500_000)
	require.NoError(t, err)
	require.Equal(t, uint64(1_500_000_000), up)
	require.Equal(t, uint64(1_500_000), token.ScaleAmountDown(1_500_000_000))
	require.Equal(t, uint64(1), token.ScaleAmountDown(1999))

	flat := PoolToken{Decimals: 9, ScalingFactor: 1}
	up, err = flat.ScaleAmountUp(42)
	require.NoError(t, err)
	require.Equal(t, uint64(42), up)
	require.Equal(t, uint64(42), flat.ScaleAmountDown(42))
}

func TestScaleAmountUpOverflow(t *testing.T) {
	token := PoolToken{Decimals: 6, ScalingUp: true, ScalingFactor: 1000}
	_, err := token.ScaleAmountUp(1 << 55)
	require.ErrorIs(t, err, fixedpoint.ErrOverflow)
}

func TestCurrentAmpLongRamp(t *testing.T) {
	// A multi-hour window makes delta*elapsed exceed 64 bits in nanoseconds,
	// so the interpolation has to widen the multiply.
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	pool := &StablePool{
		Amp:          1_000,
		AmpTarget:    10_000_000,
		AmpRampStart: start,
		AmpRampStop:  start.Add(10 * time.Hour),
	}
	require.Equal(t, uint64(7_000_300), pool.CurrentAmp(start.Add(7*time.Hour)))
}
