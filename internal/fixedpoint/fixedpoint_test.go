package fixedpoint

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMulRounding(t *testing.T) {
	third := uint64(333_333_333)

	down, err := MulDown(third, third)
	require.NoError(t, err)
	require.Equal(t, uint64(111_111_110), down)

	up, err := MulUp(third, third)
	require.NoError(t, err)
	require.Equal(t, uint64(111_111_111), up)

	// Exact products round identically in both directions.
	down, err = MulDown(1_500_000_000, 2_500_000_000)
	require.NoError(t, err)
	up, err2 := MulUp(1_500_000_000, 2_500_000_000)
	require.NoError(t, err2)
	require.Equal(t, uint64(3_750_000_000), down)
	require.Equal(t, down, up)
}

func TestMulOverflow(t *testing.T) {
	_, err := MulDown(math.MaxUint64, math.MaxUint64)
	require.ErrorIs(t, err, ErrOverflow)

	_, err = MulUp(math.MaxUint64, math.MaxUint64)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestDivRounding(t *testing.T) {
	down, err := DivDown(One, 3*One)
	require.NoError(t, err)
	require.Equal(t, uint64(333_333_333), down)

	up, err := DivUp(One, 3*One)
	require.NoError(t, err)
	require.Equal(t, uint64(333_333_334), up)

	down, err = DivDown(2*One, 3*One)
	require.NoError(t, err)
	require.Equal(t, uint64(666_666_666), down)

	up, err = DivUp(2*One, 3*One)
	require.NoError(t, err)
	require.Equal(t, uint64(666_666_667), up)
}

func TestDivByZero(t *testing.T) {
	_, err := DivDown(One, 0)
	require.ErrorIs(t, err, ErrDivideByZero)

	_, err = DivUp(One, 0)
	require.ErrorIs(t, err, ErrDivideByZero)
}

func TestDivOverflow(t *testing.T) {
	_, err := DivDown(math.MaxUint64, 1)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestRoundingBrackets(t *testing.T) {
	// down <= up <= down+1 for every pair.
	pairs := [][2]uint64{
		{1, 1},
		{7, 13},
		{One, One},
		{333_333_333, 999_999_999},
		{123_456_789_123, 987_654_321},
		{One - 1, One + 1},
	}
	for _, p := range pairs {
		mulDown, err := MulDown(p[0], p[1])
		require.NoError(t, err)
		mulUp, err := MulUp(p[0], p[1])
		require.NoError(t, err)
		require.LessOrEqual(t, mulDown, mulUp)
		require.LessOrEqual(t, mulUp, mulDown+1)

		divDown, err := DivDown(p[0], p[1])
		require.NoError(t, err)
		divUp, err := DivUp(p[0], p[1])
		require.NoError(t, err)
		require.LessOrEqual(t, divDown, divUp)
		require.LessOrEqual(t, divUp, divDown+1)
	}
}

func TestComplement(t *testing.T) {
	require.Equal(t, One, Complement(0))
	require.Equal(t, uint64(0), Complement(One))
	require.Equal(t, uint64(0), Complement(One+1))
	require.Equal(t, uint64(1), Complement(One-1))
	require.Equal(t, uint64(600_000_000), Complement(400_000_000))
}
