package state

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// QuoteSummary represents high-level quoting statistics
type QuoteSummary struct {
	TotalQuotes      int    `json:"total_quotes"`
	SuccessfulQuotes int    `json:"successful_quotes"`
	SwapQuotes       int    `json:"swap_quotes"`
	DepositQuotes    int    `json:"deposit_quotes"`
	WithdrawQuotes   int    `json:"withdraw_quotes"`
	LastQuoteAt      string `json:"last_quote_at"`
}

// PoolActivity represents per-pool quoting activity
type PoolActivity struct {
	PoolID       uint64 `json:"pool_id"`
	QuoteCount   int    `json:"quote_count"`
	SuccessCount int    `json:"success_count"`
	LastQuoteAt  string `json:"last_quote_at"`
}

// GetQuoteSummary retrieves aggregated statistics over all recorded quotes
func GetQuoteSummary() (*QuoteSummary, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	summary := &QuoteSummary{}

	query := `
		SELECT
			COUNT(*) as total_quotes,
			COUNT(CASE WHEN success THEN 1 END) as successful_quotes,
			COUNT(CASE WHEN quote_type = 'swap' THEN 1 END) as swap_quotes,
			COUNT(CASE WHEN quote_type = 'deposit' THEN 1 END) as deposit_quotes,
			COUNT(CASE WHEN quote_type = 'withdraw' THEN 1 END) as withdraw_quotes,
			MAX(quote_timestamp)
		FROM quote_receipts
	`

	var lastQuoteAt sql.NullString
	err := DB.QueryRow(query).Scan(
		&summary.TotalQuotes,
		&summary.SuccessfulQuotes,
		&summary.SwapQuotes,
		&summary.DepositQuotes,
		&summary.WithdrawQuotes,
		&lastQuoteAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote summary: %w", err)
	}
	if lastQuoteAt.Valid {
		summary.LastQuoteAt = lastQuoteAt.String
	}

	log.Info().Int("totalQuotes", summary.TotalQuotes).Int("successfulQuotes", summary.SuccessfulQuotes).Msg("Retrieved quote summary")
	return summary, nil
}

// GetPoolActivity retrieves per-pool quote counts, busiest pools first
func GetPoolActivity(limit int) ([]PoolActivity, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	if limit <= 0 || limit > 100 {
		limit = 10 // Default limit
	}

	query := `
		SELECT
			pool_id,
			COUNT(*) as quote_count,
			COUNT(CASE WHEN success THEN 1 END) as success_count,
			MAX(quote_timestamp)
		FROM quote_receipts
		GROUP BY pool_id
		ORDER BY quote_count DESC
		LIMIT $1
	`

	rows, err := DB.Query(query, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to query pool activity")
		return nil, fmt.Errorf("failed to query pool activity: %w", err)
	}
	defer rows.Close()

	var activity []PoolActivity
	for rows.Next() {
		var entry PoolActivity
		var lastQuoteAt sql.NullString
		if err := rows.Scan(&entry.PoolID, &entry.QuoteCount, &entry.SuccessCount, &lastQuoteAt); err != nil {
			log.Error().Err(err).Msg("Failed to scan pool activity row")
			continue // Skip this row and continue with others
		}
		if lastQuoteAt.Valid {
			entry.LastQuoteAt = lastQuoteAt.String
		}
		activity = append(activity, entry)
	}

	if err := rows.Err(); err != nil {
		log.Error().Err(err).Msg("Error occurred during row iteration")
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	return activity, nil
}

// GetReceiptsByType retrieves recent receipts matching any of the given quote
// types, newest first
func GetReceiptsByType(quoteTypes []string, limit int) ([]QuoteReceipt, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if len(quoteTypes) == 0 {
		return GetRecentQuoteReceipts(limit)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `
		SELECT receipt_id, quote_timestamp, quote_type, pool_id,
		       COALESCE(denom_in, ''), COALESCE(denom_out, ''),
		       COALESCE(amount_in, 0), COALESCE(amount_out, 0),
		       COALESCE(lp_amount, 0), COALESCE(fee_amount, 0),
		       success, COALESCE(message, '')
		FROM quote_receipts
		WHERE quote_type = ANY($1)
		ORDER BY quote_timestamp DESC
		LIMIT $2
	`

	rows, err := DB.Query(query, pq.Array(quoteTypes), limit) // Use pq.Array for PostgreSQL array
	if err != nil {
		log.Error().Err(err).Msg("Failed to query receipts by type")
		return nil, fmt.Errorf("failed to query receipts by type: %w", err)
	}
	defer rows.Close()

	var receipts []QuoteReceipt
	for rows.Next() {
		var (
			receipt                                  QuoteReceipt
			amountInStr, amountOutStr, lpStr, feeStr string
		)
		if err := rows.Scan(&receipt.ReceiptID, &receipt.Timestamp, &receipt.QuoteType, &receipt.PoolID,
			&receipt.DenomIn, &receipt.DenomOut,
			&amountInStr, &amountOutStr, &lpStr, &feeStr,
			&receipt.Success, &receipt.Message); err != nil {
			return nil, fmt.Errorf("failed to scan quote receipt: %w", err)
		}
		if receipt.AmountIn, err = strconv.ParseUint(amountInStr, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid amount_in in receipt %d: %w", receipt.ReceiptID, err)
		}
		if receipt.AmountOut, err = strconv.ParseUint(amountOutStr, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid amount_out in receipt %d: %w", receipt.ReceiptID, err)
		}
		if receipt.LpAmount, err = strconv.ParseUint(lpStr, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid lp_amount in receipt %d: %w", receipt.ReceiptID, err)
		}
		if receipt.FeeAmount, err = strconv.ParseUint(feeStr, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid fee_amount in receipt %d: %w", receipt.ReceiptID, err)
		}
		receipts = append(receipts, receipt)
	}
	return receipts, rows.Err()
}
