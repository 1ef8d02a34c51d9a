// ./internal/state/db.go
package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool.
var DB *sql.DB

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

// InitDB initializes the database connection pool.
func InitDB(cfg DBConfig) error {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	var err error
	DB, err = sql.Open("postgres", psqlInfo)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	err = DB.Ping()
	if err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to the PostgreSQL database!")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
	}
}

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	schemaSQL := `
		CREATE TABLE IF NOT EXISTS pools (
			pool_id BIGINT PRIMARY KEY,
			pool_type VARCHAR(16) NOT NULL, -- 'weighted' or 'stable'
			swap_fee BIGINT NOT NULL,
			amp BIGINT,
			amp_target BIGINT,
			amp_ramp_start TIMESTAMPTZ,
			amp_ramp_stop TIMESTAMPTZ,
			lp_supply NUMERIC(30, 0) NOT NULL DEFAULT 0,
			invariant_k NUMERIC(30, 0) NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_pools_type_active ON pools(pool_type, is_active);

		CREATE TABLE IF NOT EXISTS pool_tokens (
			pool_id BIGINT NOT NULL REFERENCES pools(pool_id) ON DELETE CASCADE,
			token_index INTEGER NOT NULL,
			symbol VARCHAR(32) NOT NULL,
			denom VARCHAR(128) NOT NULL,
			decimals SMALLINT NOT NULL,
			scaling_up BOOLEAN NOT NULL DEFAULT FALSE,
			scaling_factor NUMERIC(30, 0) NOT NULL DEFAULT 1,
			balance NUMERIC(30, 0) NOT NULL DEFAULT 0,
			weight BIGINT NOT NULL DEFAULT 0,
			PRIMARY KEY (pool_id, token_index)
		);
		CREATE INDEX IF NOT EXISTS idx_pool_tokens_denom ON pool_tokens(denom);

		CREATE TABLE IF NOT EXISTS quote_receipts (
			receipt_id SERIAL PRIMARY KEY,
			quote_timestamp TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			quote_type VARCHAR(32) NOT NULL,
			pool_id BIGINT NOT NULL,
			denom_in VARCHAR(128),
			denom_out VARCHAR(128),
			amount_in NUMERIC(30, 0),
			amount_out NUMERIC(30, 0),
			lp_amount NUMERIC(30, 0),
			fee_amount NUMERIC(30, 0),
			success BOOLEAN NOT NULL,
			message TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_quote_receipts_timestamp ON quote_receipts(quote_timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_quote_receipts_pool_id ON quote_receipts(pool_id);
		CREATE INDEX IF NOT EXISTS idx_quote_receipts_quote_type ON quote_receipts(quote_type);
	`
	_, err := DB.Exec(schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}
	log.Info().Msg("Database schema ensured.")
	return nil
}

// TestDBConnection tests if the database connection is healthy
func TestDBConnection() error {
	if DB == nil {
		return fmt.Errorf("database connection is nil")
	}

	// Use a short timeout context for health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := DB.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
