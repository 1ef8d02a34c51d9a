// ./internal/state/receipt_store.go
package state

import (
	"fmt"
	"strconv"
	"time"
)

// QuoteReceipt records a served (or rejected) quote for later analysis.
type QuoteReceipt struct {
	ReceiptID int64     `json:"receipt_id"`
	Timestamp time.Time `json:"timestamp"`
	QuoteType string    `json:"quote_type"`
	PoolID    uint64    `json:"pool_id"`
	DenomIn   string    `json:"denom_in,omitempty"`
	DenomOut  string    `json:"denom_out,omitempty"`
	AmountIn  uint64    `json:"amount_in,omitempty"`
	AmountOut uint64    `json:"amount_out,omitempty"`
	LpAmount  uint64    `json:"lp_amount,omitempty"`
	FeeAmount uint64    `json:"fee_amount,omitempty"`
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
}

// SaveQuoteReceipt inserts a receipt row and returns its ID.
func SaveQuoteReceipt(receipt QuoteReceipt) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	stmt := `
		INSERT INTO quote_receipts (
			quote_type, pool_id, denom_in, denom_out,
			amount_in, amount_out, lp_amount, fee_amount,
			success, message
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING receipt_id;`

	var receiptID int64
	err := DB.QueryRow(stmt,
		receipt.QuoteType, receipt.PoolID, receipt.DenomIn, receipt.DenomOut,
		strconv.FormatUint(receipt.AmountIn, 10),
		strconv.FormatUint(receipt.AmountOut, 10),
		strconv.FormatUint(receipt.LpAmount, 10),
		strconv.FormatUint(receipt.FeeAmount, 10),
		receipt.Success, receipt.Message,
	).Scan(&receiptID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert quote receipt: %w", err)
	}
	return receiptID, nil
}

// GetRecentQuoteReceipts returns the most recent receipts, newest first.
func GetRecentQuoteReceipts(limit int) ([]QuoteReceipt, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := DB.Query(`
		SELECT receipt_id, quote_timestamp, quote_type, pool_id,
		       COALESCE(denom_in, ''), COALESCE(denom_out, ''),
		       COALESCE(amount_in, 0), COALESCE(amount_out, 0),
		       COALESCE(lp_amount, 0), COALESCE(fee_amount, 0),
		       success, COALESCE(message, '')
		FROM quote_receipts
		ORDER BY quote_timestamp DESC
		LIMIT $1;`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query quote receipts: %w", err)
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
