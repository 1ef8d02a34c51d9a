package stable

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ospreylabs/poolpricer/internal/fixedpoint"
)

var (
	swapAmp      = uint64(5_000_000)
	swapBalances = []uint64{894_520_800_000_000, 467_581_800_000_000}
)

func TestCalcOutGivenIn(t *testing.T) {
	cases := []struct {
		amountIn uint64
		want     uint64
	}{
		{1_000_000_000_000, 999_845_351_779},
		{1_000_000_000, 999_845_869},
		{1_000_000, 999_845},
	}
	for _, tc := range cases {
		got, err := CalcOutGivenIn(swapAmp, swapBalances, 0, 1, tc.amountIn)
		require.NoError(t, err)
		require.Equal(t, tc.want, got)
	}
}

func TestCalcOutGivenInThreeTokens(t *testing.T) {
	balances := []uint64{
		40_000_000_000_000_000,
		50_000_000_000_000_000,
		60_000_000_000_000_000,
	}
	got, err := CalcOutGivenIn(750_000, balances, 0, 2, 1_000_000_000_000)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000_577_958_251), got)
}

func TestCalcOutGivenInRejectsBadInput(t *testing.T) {
	_, err := CalcOutGivenIn(swapAmp, swapBalances, 0, 0, 1_000_000)
	require.ErrorIs(t, err, fixedpoint.ErrInvalidAmount)

	_, err = CalcOutGivenIn(swapAmp, swapBalances, 0, 2, 1_000_000)
	require.ErrorIs(t, err, fixedpoint.ErrInvalidAmount)

	_, err = CalcOutGivenIn(swapAmp, swapBalances, 0, 1, 0)
	require.ErrorIs(t, err, fixedpoint.ErrInvalidAmount)
}

func TestCalcOutGivenInMonotone(t *testing.T) {
	var prev uint64
	for amountIn := uint64(1_000_000); amountIn <= 1_000_000_000_000; amountIn += 7_000_000_000 {
		got, err := CalcOutGivenIn(swapAmp, swapBalances, 0, 1, amountIn)
		require.NoError(t, err)
		require.GreaterOrEqual(t, got, prev)
		prev = got
	}
}

func TestCalcInGivenOut(t *testing.T) {
	got, err := CalcInGivenOut(swapAmp, swapBalances, 0, 1, 999_845_351_779)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000_000_000_000), got)

	got, err = CalcInGivenOut(swapAmp, swapBalances, 0, 1, 1_000_000_000)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000_154_155), got)
}

func TestCalcInGivenOutThreeTokens(t *testing.T) {
	balances := []uint64{
		40_000_000_000_000_000,
		50_000_000_000_000_000,
		60_000_000_000_000_000,
	}
	got, err := CalcInGivenOut(750_000, balances, 0, 2, 1_000_000_000_000)
	require.NoError(t, err)
	require.Equal(t, uint64(999_422_375_572), got)
}

func TestCalcInGivenOutRejectsDrain(t *testing.T) {
	_, err := CalcInGivenOut(swapAmp, swapBalances, 0, 1, swapBalances[1])
	require.ErrorIs(t, err, fixedpoint.ErrInvalidAmount)

	_, err = CalcInGivenOut(swapAmp, swapBalances, 0, 1, 0)
	require.ErrorIs(t, err, fixedpoint.ErrInvalidAmount)
}

func TestSwapRoundTripNeverProfits(t *testing.T) {
	for _, amountIn := range []uint64{1_000_000, 1_000_000_000, 1_000_000_000_000, 50_000_000_000_000} {
		out, err := CalcOutGivenIn(swapAmp, swapBalances, 0, 1, amountIn)
		require.NoError(t, err)
		require.NotZero(t, out)

		updated := []uint64{swapBalances[0] + amountIn, swapBalances[1] - out}
		back, err := CalcOutGivenIn(swapAmp, updated, 1, 0, out)
		require.NoError(t, err)
		require.LessOrEqual(t, back, amountIn)
	}
}

func TestInGivenOutCoversOutGivenIn(t *testing.T) {
	for _, amountOut := range []uint64{1_000_000, 1_000_000_000, 1_000_000_000_000} {
		needed, err := CalcInGivenOut(swapAmp, swapBalances, 0, 1, amountOut)
		require.NoError(t, err)
		got, err := CalcOutGivenIn(swapAmp, swapBalances, 0, 1, needed)
		require.NoError(t, err)
		require.GreaterOrEqual(t, got, amountOut)
	}
}
