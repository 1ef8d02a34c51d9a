package weighted

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ospreylabs/poolpricer/internal/fixedpoint"
)

const one = fixedpoint.One

func TestCalcInvariantGeometricMean(t *testing.T) {
	// Equal weights reduce the invariant to the geometric mean:
	// sqrt(4 * 9) = 6, minus the downward exponentiation margin.
	got, err := CalcInvariant([]uint64{4 * one, 9 * one}, []uint64{one / 2, one / 2})
	require.NoError(t, err)
	require.Equal(t, uint64(5_999_999_875), got)
}

func TestCalcInvariantSingleToken(t *testing.T) {
	// A full-weight token makes the invariant the balance itself.
	got, err := CalcInvariant([]uint64{42 * one}, []uint64{one})
	require.NoError(t, err)
	require.Equal(t, uint64(42)*one, got)
}

func TestCalcInvariantAsymmetricWeights(t *testing.T) {
	got, err := CalcInvariant(
		[]uint64{100 * one, 200 * one},
		[]uint64{300_000_000, 700_000_000},
	)
	require.NoError(t, err)
	require.Equal(t, uint64(162_450_475_942), got)
}

func TestCalcInvariantRejectsBadInput(t *testing.T) {
	_, err := CalcInvariant(nil, nil)
	require.ErrorIs(t, err, fixedpoint.ErrInvalidAmount)

	_, err = CalcInvariant([]uint64{one}, []uint64{one / 2, one / 2})
	require.ErrorIs(t, err, fixedpoint.ErrInvalidAmount)

	// A zero balance collapses the product to zero.
	_, err = CalcInvariant([]uint64{0, 9 * one}, []uint64{one / 2, one / 2})
	require.ErrorIs(t, err, fixedpoint.ErrInvalidAmount)
}

func TestCalcOutGivenIn(t *testing.T) {
	balanceIn := uint64(100_000) * one
	balanceOut := uint64(200_000) * one
	weightIn := uint64(300_000_000)
	weightOut := uint64(700_000_000)

	cases := []struct {
		amountIn uint64
		want     uint64
	}{
		{1_000_000_000, 854_800_000},
		{1_000_000_000_000, 851_067_200_000},
		{5_000_000_000_000, 4_138_591_800_000},
	}
	for _, tc := range cases {
		got, err := CalcOutGivenIn(balanceIn, weightIn, balanceOut, weightOut, tc.amountIn)
		require.NoError(t, err)
		require.Equal(t, tc.want, got)
	}
}

func TestCalcOutGivenInMonotone(t *testing.T) {
	balanceIn := uint64(100_000) * one
	balanceOut := uint64(200_000) * one

	var prev uint64
	for amountIn := uint64(one); amountIn <= 50_000*one; amountIn += 1_111 * one {
		got, err := CalcOutGivenIn(balanceIn, 300_000_000, balanceOut, 700_000_000, amountIn)
		require.NoError(t, err)
		require.GreaterOrEqual(t, got, prev)
		prev = got
	}
}

func TestCalcInGivenOut(t *testing.T) {
	balanceIn := uint64(100_000) * one
	balanceOut := uint64(200_000) * one
	weightIn := uint64(300_000_000)
	weightOut := uint64(700_000_000)

	got, err := CalcInGivenOut(balanceIn, weightIn, balanceOut, weightOut, 1_000_000_000)
	require.NoError(t, err)
	require.Equal(t, uint64(1_168_200_000), got)

	got, err = CalcInGivenOut(balanceIn, weightIn, balanceOut, weightOut, 1_000_000_000_000)
	require.NoError(t, err)
	require.Equal(t, uint64(1_176_460_900_000), got)
}

func TestCalcInGivenOutRejectsDrain(t *testing.T) {
	_, err := CalcInGivenOut(100*one, one/2, 200*one, one/2, 200*one)
	require.ErrorIs(t, err, fixedpoint.ErrInvalidAmount)

	_, err = CalcInGivenOut(100*one, one/2, 200*one, one/2, 0)
	require.ErrorIs(t, err, fixedpoint.ErrInvalidAmount)
}

func TestSwapRoundTripNeverProfits(t *testing.T) {
	balanceIn := uint64(50_000) * one
	balanceOut := uint64(80_000) * one
	weightIn := uint64(400_000_000)
	weightOut := uint64(600_000_000)

	for _, amountIn := range []uint64{one / 1000, one, 500 * one, 10_000 * one} {
		out, err := CalcOutGivenIn(balanceIn, weightIn, balanceOut, weightOut, amountIn)
		require.NoError(t, err)
		if out == 0 {
			continue
		}
		back, err := CalcOutGivenIn(balanceOut-out, weightOut, balanceIn+amountIn, weightIn, out)
		require.NoError(t, err)
		require.LessOrEqual(t, back, amountIn)
	}
}

func TestInGivenOutConsistentWithOutGivenIn(t *testing.T) {
	// Paying the quoted input buys the requested output up to the
	// exponentiation margin, which is a few parts in 10^8 of the out-side
	// balance.
	balanceIn := uint64(50_000) * one
	balanceOut := uint64(80_000) * one
	weightIn := uint64(400_000_000)
	weightOut := uint64(600_000_000)

	fuzz, err := fixedpoint.MulUp(balanceOut, 50)
	require.NoError(t, err)

	for _, amountOut := range []uint64{one, 100 * one, 5_000 * one} {
		needed, err := CalcInGivenOut(balanceIn, weightIn, balanceOut, weightOut, amountOut)
		require.NoError(t, err)
		got, err := CalcOutGivenIn(balanceIn, weightIn, balanceOut, weightOut, needed)
		require.NoError(t, err)
		require.GreaterOrEqual(t, got+fuzz, amountOut)
	}
}

func TestCalcLpToMint(t *testing.T) {
	supply := uint64(1_000_000) * one

	minted, err := CalcLpToMint(supply, 110*one, 100*one, one)
	require.NoError(t, err)
	require.Equal(t, uint64(100_000_000_000_000), minted)

	// A shrinking invariant mints nothing.
	minted, err = CalcLpToMint(supply, 100*one, 110*one, one)
	require.NoError(t, err)
	require.Equal(t, uint64(0), minted)

	_, err = CalcLpToMint(supply, 110*one, 0, one)
	require.ErrorIs(t, err, fixedpoint.ErrDivideByZero)
}
