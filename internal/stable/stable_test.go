package stable

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/ospreylabs/poolpricer/internal/fixedpoint"
)

func TestCalcInvariantTwoTokens(t *testing.T) {
	d, err := CalcInvariant(5_000_000, []uint64{40_000_000_000_000_000, 60_000_000_000_000_000})
	require.NoError(t, err)
	require.Equal(t, uint64(99999583421855646), d.Uint64())
}

func TestCalcInvariantThreeTokens(t *testing.T) {
	d, err := CalcInvariant(750_000, []uint64{
		40_000_000_000_000_000,
		50_000_000_000_000_000,
		60_000_000_000_000_000,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(149997226126050479), d.Uint64())
}

func TestCalcInvariantFourTokens(t *testing.T) {
	d, err := CalcInvariant(150_000, []uint64{
		40_000_000_000_000_000,
		50_000_000_000_000_000,
		60_000_000_000_000_000,
		70_000_000_000_000_000,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(219967475585041316), d.Uint64())
}

func TestCalcInvariantBalancedPool(t *testing.T) {
	// With equal balances the invariant is exactly the sum.
	balances := []uint64{50_000_000_000_000_000, 50_000_000_000_000_000}
	d, err := CalcInvariant(5_000_000, balances)
	require.NoError(t, err)
	require.Equal(t, uint64(100_000_000_000_000_000), d.Uint64())
}

func TestCalcInvariantLargeBalances(t *testing.T) {
	// Balances near the uint64 ceiling must not wrap inside the n*balance
	// divisor. The balanced-pool identity D == sum still holds even though
	// the sum itself exceeds 64 bits.
	balances := []uint64{1 << 63, 1 << 63, 1 << 63}
	d, err := CalcInvariant(5_000_000, balances)
	require.NoError(t, err)
	require.Equal(t, uint256.MustFromDecimal("27670116110564327424"), d)

	y, err := SolveBalance(5_000_000, balances, d, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(1)<<63, y)
}

func TestCalcInvariantRejectsBadBalances(t *testing.T) {
	_, err := CalcInvariant(5_000_000, nil)
	require.ErrorIs(t, err, fixedpoint.ErrInvalidAmount)

	_, err = CalcInvariant(5_000_000, []uint64{0, 60_000_000_000_000_000})
	require.ErrorIs(t, err, fixedpoint.ErrInvalidAmount)
}

func TestCalcInvariantZeroSum(t *testing.T) {
	d, err := CalcInvariant(5_000_000, []uint64{0, 0})
	require.NoError(t, err)
	require.True(t, d.IsZero())
}

func TestSolveBalance(t *testing.T) {
	amp := uint64(5_000_000)
	balances := []uint64{894_520_800_000_000, 467_581_800_000_000}

	d, err := CalcInvariant(amp, balances)
	require.NoError(t, err)
	require.Equal(t, uint64(1362087763467738), d.Uint64())

	bumped := []uint64{balances[0] + 1_000_000_000_000, balances[1]}
	y, err := SolveBalance(amp, bumped, d, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(466581954648218), y)
}

func TestSolveBalanceRecoversKnownBalance(t *testing.T) {
	// Solving for a balance that already satisfies the invariant must land
	// within the convergence tolerance of its true value.
	amp := uint64(750_000)
	balances := []uint64{
		40_000_000_000_000_000,
		50_000_000_000_000_000,
		60_000_000_000_000_000,
	}
	d, err := CalcInvariant(amp, balances)
	require.NoError(t, err)

	for i, want := range balances {
		got, err := SolveBalance(amp, balances, d, i)
		require.NoError(t, err)
		require.InDelta(t, float64(want), float64(got), 2)
	}
}

func TestSolveBalanceRejectsBadInput(t *testing.T) {
	d := uint256.NewInt(100_000_000_000_000_000)

	_, err := SolveBalance(5_000_000, []uint64{1_000_000_000}, d, 0)
	require.ErrorIs(t, err, fixedpoint.ErrInvalidAmount)

	_, err = SolveBalance(5_000_000, []uint64{1_000_000_000, 2_000_000_000}, d, 2)
	require.ErrorIs(t, err, fixedpoint.ErrInvalidAmount)

	_, err = SolveBalance(5_000_000, []uint64{1_000_000_000, 2_000_000_000}, nil, 0)
	require.ErrorIs(t, err, fixedpoint.ErrInvalidAmount)

	_, err = SolveBalance(5_000_000, []uint64{0, 2_000_000_000}, d, 1)
	require.ErrorIs(t, err, fixedpoint.ErrInvalidAmount)
}
