package quoter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ospreylabs/poolpricer/internal/fixedpoint"
	"github.com/ospreylabs/poolpricer/internal/types"
)

func testStablePool() *types.StablePool {
	return &types.StablePool{
		ID:      7,
		SwapFee: 3_000_000,
		Amp:     500_000,
		Tokens: []types.PoolToken{
			{Symbol: "usdc", Denom: "uusdc", Decimals: 9, ScalingFactor: 1, Balance: 40_000_000_000_000_000},
			{Symbol: "usdt", Denom: "uusdt", Decimals: 9, ScalingFactor: 1, Balance: 50_000_000_000_000_000},
			{Symbol: "dai", Denom: "udai", Decimals: 9, ScalingFactor: 1, Balance: 60_000_000_000_000_000},
		},
		IsActive: true,
		LpSupply: 100_000_000_000_000_000,
	}
}

func testWeightedPool() *types.WeightedPool {
	return &types.WeightedPool{
		ID:      3,
		SwapFee: 3_000_000,
		Tokens: []types.PoolToken{
			{Symbol: "atom", Denom: "uatom", Decimals: 9, ScalingFactor: 1, Balance: 100_000_000_000, Weight: 500_000_000},
			{Symbol: "osmo", Denom: "uosmo", Decimals: 9, ScalingFactor: 1, Balance: 100_000_000_000, Weight: 500_000_000},
		},
		IsActive: true,
		LpSupply: 1_000_000_000_000_000,
	}
}

func TestStableSwapExactIn(t *testing.T) {
	pool := testStablePool()
	quote, err := StableSwapExactIn(pool, "uusdc", "uusdt", 1_000_000_000_000, 0, time.Now())
	require.NoError(t, err)
	require.Equal(t, uint64(1_000_000_000_000), quote.AmountIn)
	require.Equal(t, uint64(997518079511), quote.AmountOut)
	require.Equal(t, uint64(3001558916), quote.FeeAmount)
	require.Equal(t, uint64(40_001_000_000_000_000), quote.NewBalanceIn)
	require.Equal(t, uint64(49_999_002_481_920_489), quote.NewBalanceOut)
}

func TestStableSwapExactOut(t *testing.T) {
	pool := testStablePool()
	quote, err := StableSwapExactOut(pool, "uusdc", "uusdt", 997518079511, ^uint64(0), time.Now())
	require.NoError(t, err)
	require.Equal(t, uint64(999999999999), quote.AmountIn)
	require.Equal(t, uint64(997518079511), quote.AmountOut)
	require.Equal(t, uint64(3001558916), quote.FeeAmount)
}

func TestStableSwapScaledToken(t *testing.T) {
	// Token in carries six on-chain decimals against the pool's nine, so raw
	// amounts are lifted by 1000 before pricing.
	pool := testStablePool()
	pool.Tokens[0].Decimals = 6
	pool.Tokens[0].ScalingUp = true
	pool.Tokens[0].ScalingFactor = 1000

	quote, err := StableSwapExactIn(pool, "uusdc", "uusdt", 1_000_000_000, 0, time.Now())
	require.NoError(t, err)
	require.Equal(t, uint64(997518079511), quote.AmountOut)

	// Exact-out rounds the required input up to the next raw unit.
	quote, err = StableSwapExactOut(pool, "uusdc", "uusdt", 997518079511, ^uint64(0), time.Now())
	require.NoError(t, err)
	require.Equal(t, uint64(1_000_000_000), quote.AmountIn)

	// A raw amount whose lifted value exceeds 64 bits is rejected, never
	// wrapped.
	_, err = StableSwapExactIn(pool, "uusdc", "uusdt", 1<<55, 0, time.Now())
	require.ErrorIs(t, err, fixedpoint.ErrOverflow)
}

func TestStableSwapSlippage(t *testing.T) {
	pool := testStablePool()
	_, err := StableSwapExactIn(pool, "uusdc", "uusdt", 1_000_000_000_000, 997518079512, time.Now())
	require.ErrorIs(t, err, ErrSlippageExceeded)

	_, err = StableSwapExactOut(pool, "uusdc", "uusdt", 997518079511, 999999999998, time.Now())
	require.ErrorIs(t, err, ErrSlippageExceeded)
}

func TestStableSwapRejectsBadPoolState(t *testing.T) {
	pool := testStablePool()
	pool.IsActive = false
	_, err := StableSwapExactIn(pool, "uusdc", "uusdt", 1_000_000_000, 0, time.Now())
	require.ErrorIs(t, err, ErrPoolInactive)

	pool = testStablePool()
	_, err = StableSwapExactIn(pool, "uusdc", "ubtc", 1_000_000_000, 0, time.Now())
	require.ErrorIs(t, err, ErrUnknownToken)
}

func TestWeightedSwapExactIn(t *testing.T) {
	pool := testWeightedPool()
	quote, err := WeightedSwapExactIn(pool, "uatom", "uosmo", 1_000_000_000, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(987158000), quote.AmountOut)
	require.Equal(t, uint64(3_000_000), quote.FeeAmount)
}

func TestWeightedSwapExactOut(t *testing.T) {
	pool := testWeightedPool()
	quote, err := WeightedSwapExactOut(pool, "uatom", "uosmo", 1_000_000_000, ^uint64(0))
	require.NoError(t, err)
	require.Equal(t, uint64(1013140522), quote.AmountIn)
	require.Equal(t, uint64(3039422), quote.FeeAmount)
}

func TestWeightedSwapSlippage(t *testing.T) {
	pool := testWeightedPool()
	_, err := WeightedSwapExactIn(pool, "uatom", "uosmo", 1_000_000_000, 987158001)
	require.ErrorIs(t, err, ErrSlippageExceeded)

	_, err = WeightedSwapExactOut(pool, "uatom", "uosmo", 1_000_000_000, 1013140521)
	require.ErrorIs(t, err, ErrSlippageExceeded)
}

func TestWeightedSwapFeeMakesRoundTripLossy(t *testing.T) {
	pool := testWeightedPool()
	forward, err := WeightedSwapExactIn(pool, "uatom", "uosmo", 1_000_000_000, 0)
	require.NoError(t, err)

	back, err := WeightedSwapExactIn(pool, "uosmo", "uatom", forward.AmountOut, 0)
	require.NoError(t, err)
	require.Less(t, back.AmountOut, uint64(1_000_000_000))
}
