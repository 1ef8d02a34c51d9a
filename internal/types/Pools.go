/*

Pool state consumed by the pricing engines. Pools are passive values: the
engines never mutate them, and balance updates are applied by the accounting
layer that owns the pool records.

*/

package types

import (
	"math/bits"
	"time"

	"github.com/ospreylabs/poolpricer/internal/fixedpoint"
	"github.com/ospreylabs/poolpricer/internal/stable"
)

type PoolID uint64

// WeightedPool is a constant weighted-product pool of 2-8 tokens. Token
// weights are scaled fractions that sum to fixedpoint.One at creation.
type WeightedPool struct {
	ID         PoolID      `json:"id"`
	Tokens     []PoolToken `json:"tokens"`
	SwapFee    uint64      `json:"swap_fee"`    // scaled fraction in [0, One)
	IsActive   bool        `json:"is_active"`
	LpSupply   uint64      `json:"lp_supply"`
	InvariantK uint64      `json:"invariant_k"` // cached weighted product
	CreatedAt  time.Time   `json:"created_at"`
}

// StablePool is a StableSwap pool. Amp stores the amplification coefficient
// multiplied by stable.AmpPrecision and can ramp linearly between AmpStart
// and AmpTarget over the configured window.
type StablePool struct {
	ID           PoolID      `json:"id"`
	Tokens       []PoolToken `json:"tokens"`
	SwapFee      uint64      `json:"swap_fee"`
	Amp          uint64      `json:"amp"`
	AmpTarget    uint64      `json:"amp_target"`
	AmpRampStart time.Time   `json:"amp_ramp_start"`
	AmpRampStop  time.Time   `json:"amp_ramp_stop"`
	IsActive     bool        `json:"is_active"`
	LpSupply     uint64      `json:"lp_supply"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Balances returns the normalized balances of all pool tokens, in order.
func (p *WeightedPool) Balances() []uint64 {
	balances := make([]uint64, len(p.Tokens))
	for i, token := range p.Tokens {
		balances[i] = token.Balance
	}
	return balances
}

// Weights returns the weights of all pool tokens, in order.
func (p *WeightedPool) Weights() []uint64 {
	weights := make([]uint64, len(p.Tokens))
	for i, token := range p.Tokens {
		weights[i] = token.Weight
	}
	return weights
}

// TokenIndex returns the position of the token with the given denom, or -1.
func (p *WeightedPool) TokenIndex(denom string) int {
	for i, token := range p.Tokens {
		if token.Denom == denom {
			return i
		}
	}
	return -1
}

// Balances returns the normalized balances of all pool tokens, in order.
func (p *StablePool) Balances() []uint64 {
	balances := make([]uint64, len(p.Tokens))
	for i, token := range p.Tokens {
		balances[i] = token.Balance
	}
	return balances
}

// TokenIndex returns the position of the token with the given denom, or -1.
func (p *StablePool) TokenIndex(denom string) int {
	for i, token := range p.Tokens {
		if token.Denom == denom {
			return i
		}
	}
	return -1
}

// CurrentAmp returns the amplification in effect at the given time,
// interpolating linearly while a ramp is in progress.
func (p *StablePool) CurrentAmp(now time.Time) uint64 {
	if p.AmpTarget == 0 || p.AmpTarget == p.Amp {
		return p.Amp
	}
	if !now.After(p.AmpRampStart) {
		return p.Amp
	}
	if !now.Before(p.AmpRampStop) {
		return p.AmpTarget
	}
	total := p.AmpRampStop.Sub(p.AmpRampStart)
	elapsed := now.Sub(p.AmpRampStart)
	if total <= 0 {
		return p.AmpTarget
	}
	if p.AmpTarget > p.Amp {
		return p.Amp + rampStep(p.AmpTarget-p.Amp, elapsed, total)
	}
	return p.Amp - rampStep(p.Amp-p.AmpTarget, elapsed, total)
}

// rampStep computes delta*elapsed/total in integer nanoseconds, widening the
// multiply so long ramp windows cannot wrap. elapsed < total is guaranteed by
// the caller, which bounds the quotient by delta.
func rampStep(delta uint64, elapsed, total time.Duration) uint64 {
	hi, lo := bits.Mul64(delta, uint64(elapsed.Nanoseconds()))
	step, _ := bits.Div64(hi, lo, uint64(total.Nanoseconds()))
	return step
}

// ValidateAmp checks the scaled amplification against the supported range.
func ValidateAmp(amp uint64) error {
	if amp < stable.MinAmp*stable.AmpPrecision || amp > stable.MaxAmp*stable.AmpPrecision {
		return fixedpoint.ErrInvalidAmount
	}
	return nil
}

// ValidateWeights checks that every weight is a positive fraction and that
// the weights sum to exactly fixedpoint.One.
func ValidateWeights(tokens []PoolToken) error {
	var sum uint64
	for _, token := range tokens {
		if token.Weight == 0 || token.Weight >= fixedpoint.One {
			return fixedpoint.ErrInvalidAmount
		}
		sum += token.Weight
	}
	if sum != fixedpoint.One {
		return fixedpoint.ErrInvalidAmount
	}
	return nil
}
