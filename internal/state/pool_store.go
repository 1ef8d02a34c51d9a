// ./internal/state/pool_store.go
package state

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ospreylabs/poolpricer/internal/types"
)

const (
	PoolTypeWeighted = "weighted"
	PoolTypeStable   = "stable"
)

// SaveWeightedPool upserts a weighted pool and its token rows.
func SaveWeightedPool(pool *types.WeightedPool) error {
	return savePool(uint64(pool.ID), PoolTypeWeighted, pool.SwapFee, 0, 0,
		time.Time{}, time.Time{}, pool.LpSupply, pool.InvariantK, pool.IsActive, pool.Tokens)
}

// SaveStablePool upserts a stable pool and its token rows.
func SaveStablePool(pool *types.StablePool) error {
	return savePool(uint64(pool.ID), PoolTypeStable, pool.SwapFee, pool.Amp, pool.AmpTarget,
		pool.AmpRampStart, pool.AmpRampStop, pool.LpSupply, 0, pool.IsActive, pool.Tokens)
}

func savePool(poolID uint64, poolType string, swapFee, amp, ampTarget uint64,
	rampStart, rampStop time.Time, lpSupply, invariantK uint64, isActive bool, tokens []types.PoolToken) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	tx, err := DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p) // Re-panic after rollback
		} else if err != nil {
			tx.Rollback() // Rollback if error occurred
		}
	}()

	stmt := `
		INSERT INTO pools (pool_id, pool_type, swap_fee, amp, amp_target, amp_ramp_start, amp_ramp_stop, lp_supply, invariant_k, is_active, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, CURRENT_TIMESTAMP)
		ON CONFLICT (pool_id) DO UPDATE SET
			pool_type = EXCLUDED.pool_type,
			swap_fee = EXCLUDED.swap_fee,
			amp = EXCLUDED.amp,
			amp_target = EXCLUDED.amp_target,
			amp_ramp_start = EXCLUDED.amp_ramp_start,
			amp_ramp_stop = EXCLUDED.amp_ramp_stop,
			lp_supply = EXCLUDED.lp_supply,
			invariant_k = EXCLUDED.invariant_k,
			is_active = EXCLUDED.is_active,
			updated_at = CURRENT_TIMESTAMP;`

	var rampStartArg, rampStopArg interface{}
	if !rampStart.IsZero() {
		rampStartArg = rampStart
	}
	if !rampStop.IsZero() {
		rampStopArg = rampStop
	}

	_, err = tx.Exec(stmt, poolID, poolType,
		strconv.FormatUint(swapFee, 10), strconv.FormatUint(amp, 10), strconv.FormatUint(ampTarget, 10),
		rampStartArg, rampStopArg, strconv.FormatUint(lpSupply, 10),
		strconv.FormatUint(invariantK, 10), isActive)
	if err != nil {
		return fmt.Errorf("failed to upsert pool %d: %w", poolID, err)
	}

	_, err = tx.Exec(`DELETE FROM pool_tokens WHERE pool_id = $1;`, poolID)
	if err != nil {
		return fmt.Errorf("failed to clear tokens for pool %d: %w", poolID, err)
	}

	tokenStmt := `
		INSERT INTO pool_tokens (pool_id, token_index, symbol, denom, decimals, scaling_up, scaling_factor, balance, weight)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`
	for i, token := range tokens {
		_, err = tx.Exec(tokenStmt, poolID, i, token.Symbol, token.Denom, token.Decimals,
			token.ScalingUp,
			strconv.FormatUint(token.ScalingFactor, 10),
			strconv.FormatUint(token.Balance, 10),
			strconv.FormatUint(token.Weight, 10))
		if err != nil {
			return fmt.Errorf("failed to insert token %d for pool %d: %w", i, poolID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pool %d: %w", poolID, err)
	}
	log.Debug().Uint64("pool_id", poolID).Str("pool_type", poolType).Msg("Pool saved")
	return nil
}

// GetWeightedPool loads a weighted pool by ID.
func GetWeightedPool(poolID uint64) (*types.WeightedPool, error) {
	row, tokens, err := loadPool(poolID, PoolTypeWeighted)
	if err != nil {
		return nil, err
	}
	return &types.WeightedPool{
		ID:         types.PoolID(poolID),
		Tokens:     tokens,
		SwapFee:    row.swapFee,
		IsActive:   row.isActive,
		LpSupply:   row.lpSupply,
		InvariantK: row.invariantK,
		CreatedAt:  row.createdAt,
	}, nil
}

// GetStablePool loads a stable pool by ID.
func GetStablePool(poolID uint64) (*types.StablePool, error) {
	row, tokens, err := loadPool(poolID, PoolTypeStable)
	if err != nil {
		return nil, err
	}
	pool := &types.StablePool{
		ID:        types.PoolID(poolID),
		Tokens:    tokens,
		SwapFee:   row.swapFee,
		Amp:       row.amp,
		AmpTarget: row.ampTarget,
		IsActive:  row.isActive,
		LpSupply:  row.lpSupply,
		CreatedAt: row.createdAt,
	}
	if row.rampStart.Valid {
		pool.AmpRampStart = row.rampStart.Time
	}
	if row.rampStop.Valid {
		pool.AmpRampStop = row.rampStop.Time
	}
	return pool, nil
}

type poolRow struct {
	swapFee    uint64
	amp        uint64
	ampTarget  uint64
	rampStart  sql.NullTime
	rampStop   sql.NullTime
	lpSupply   uint64
	invariantK uint64
	isActive   bool
	createdAt  time.Time
}

func loadPool(poolID uint64, wantType string) (*poolRow, []types.PoolToken, error) {
	if DB == nil {
		return nil, nil, fmt.Errorf("database not initialized")
	}

	var (
		poolType                  string
		swapFeeStr, ampStr        string
		ampTargetStr, lpSupplyStr string
		invariantKStr             string
		row                       poolRow
	)
	err := DB.QueryRow(`
		SELECT pool_type, swap_fee, COALESCE(amp, 0), COALESCE(amp_target, 0),
		       amp_ramp_start, amp_ramp_stop, lp_supply, invariant_k, is_active, created_at
		FROM pools WHERE pool_id = $1;`, poolID).
		Scan(&poolType, &swapFeeStr, &ampStr, &ampTargetStr,
			&row.rampStart, &row.rampStop, &lpSupplyStr, &invariantKStr, &row.isActive, &row.createdAt)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("pool %d not found", poolID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load pool %d: %w", poolID, err)
	}
	if poolType != wantType {
		return nil, nil, fmt.Errorf("pool %d is %s, not %s", poolID, poolType, wantType)
	}

	if row.swapFee, err = strconv.ParseUint(swapFeeStr, 10, 64); err != nil {
		return nil, nil, fmt.Errorf("invalid swap_fee for pool %d: %w", poolID, err)
	}
	if row.amp, err = strconv.ParseUint(ampStr, 10, 64); err != nil {
		return nil, nil, fmt.Errorf("invalid amp for pool %d: %w", poolID, err)
	}
	if row.ampTarget, err = strconv.ParseUint(ampTargetStr, 10, 64); err != nil {
		return nil, nil, fmt.Errorf("invalid amp_target for pool %d: %w", poolID, err)
	}
	if row.lpSupply, err = strconv.ParseUint(lpSupplyStr, 10, 64); err != nil {
		return nil, nil, fmt.Errorf("invalid lp_supply for pool %d: %w", poolID, err)
	}
	if row.invariantK, err = strconv.ParseUint(invariantKStr, 10, 64); err != nil {
		return nil, nil, fmt.Errorf("invalid invariant_k for pool %d: %w", poolID, err)
	}

	tokens, err := loadPoolTokens(poolID)
	if err != nil {
		return nil, nil, err
	}
	return &row, tokens, nil
}

func loadPoolTokens(poolID uint64) ([]types.PoolToken, error) {
	rows, err := DB.Query(`
		SELECT symbol, denom, decimals, scaling_up, scaling_factor, balance, weight
		FROM pool_tokens WHERE pool_id = $1 ORDER BY token_index;`, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokens for pool %d: %w", poolID, err)
	}
	defer rows.Close()

	var tokens []types.PoolToken
	for rows.Next() {
		var (
			token                                   types.PoolToken
			scalingFactorStr, balanceStr, weightStr string
		)
		if err := rows.Scan(&token.Symbol, &token.Denom, &token.Decimals, &token.ScalingUp,
			&scalingFactorStr, &balanceStr, &weightStr); err != nil {
			return nil, fmt.Errorf("failed to scan token for pool %d: %w", poolID, err)
		}
		if token.ScalingFactor, err = strconv.ParseUint(scalingFactorStr, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid scaling_factor for pool %d: %w", poolID, err)
		}
		if token.Balance, err = strconv.ParseUint(balanceStr, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid balance for pool %d: %w", poolID, err)
		}
		if token.Weight, err = strconv.ParseUint(weightStr, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid weight for pool %d: %w", poolID, err)
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

// ListPoolIDs returns the IDs of all pools of the given type.
func ListPoolIDs(poolType string) ([]uint64, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	rows, err := DB.Query(`SELECT pool_id FROM pools WHERE pool_type = $1 ORDER BY pool_id;`, poolType)
	if err != nil {
		return nil, fmt.Errorf("failed to list pools: %w", err)
	}
	defer rows.Close()

	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan pool id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
