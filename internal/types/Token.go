/*

Per-token pool state. Balances are stored pre-scaled to the pool's common
decimal base so cross-token arithmetic is valid without further adjustment.

*/

package types

import (
	"math/bits"

	"github.com/ospreylabs/poolpricer/internal/fixedpoint"
)

// PoolToken describes one token held by a pool.
type PoolToken struct {
	Symbol        string `json:"symbol"`         // e.g., "usdc"
	Denom         string `json:"denom"`          // e.g., "uusdc"
	Decimals      uint8  `json:"decimals"`       // native decimals of the mint
	ScalingUp     bool   `json:"scaling_up"`     // whether raw amounts are scaled up for storage
	ScalingFactor uint64 `json:"scaling_factor"` // 10^(pool max decimals - token decimals)
	Balance       uint64 `json:"balance"`        // normalized balance
	Weight        uint64 `json:"weight"`         // scaled fraction, weighted pools only
}

// ScaleAmountUp converts a raw token amount into the pool's normalized base.
// Returns ErrOverflow when the scaled amount does not fit in 64 bits.
func (t *PoolToken) ScaleAmountUp(amount uint64) (uint64, error) {
	if !t.ScalingUp {
		return amount, nil
	}
	hi, lo := bits.Mul64(amount, t.ScalingFactor)
	if hi != 0 {
		return 0, fixedpoint.ErrOverflow
	}
	return lo, nil
}

// ScaleAmountDown converts a normalized amount back to the token's raw
// units, truncating any dust below the token's precision.
func (t *PoolToken) ScaleAmountDown(amount uint64) uint64 {
	if !t.ScalingUp {
		return amount
	}
	return amount / t.ScalingFactor
}
