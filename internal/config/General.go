package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// ServiceName identifies this instance in logs and health responses.
	ServiceName string

	// DefaultSwapFee is the scaled swap fee applied to pools created without
	// an explicit fee.
	DefaultSwapFee uint64

	// MaxQuoteTokens caps the number of tokens accepted per pool.
	MaxQuoteTokens uint64

	// PersistQuotes controls whether served quotes are recorded as receipts.
	PersistQuotes bool
)

// LoadConfig loads configuration from environment variables and sets the global config vars.
// All environment variables are required and must be set.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	ServiceName, err = getEnv("PRICER_SERVICE_NAME")
	if err != nil {
		return err
	}

	DefaultSwapFee, err = getEnvAsUint64("PRICER_DEFAULT_SWAP_FEE")
	if err != nil {
		return err
	}

	MaxQuoteTokens, err = getEnvAsUint64("PRICER_MAX_QUOTE_TOKENS")
	if err != nil {
		return err
	}

	PersistQuotes, err = getEnvAsBool("PRICER_PERSIST_QUOTES")
	if err != nil {
		return err
	}

	log.Debug().
		Str("ServiceName", ServiceName).
		Uint64("DefaultSwapFee", DefaultSwapFee).
		Uint64("MaxQuoteTokens", MaxQuoteTokens).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvAsUint64 retrieves an environment variable as a uint64. Returns error if not set or invalid.
func getEnvAsUint64(key string) (uint64, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid uint64, got: " + valueStr)
	}
	return value, nil
}

// getEnvAsBool retrieves an environment variable as a bool. Returns error if not set or invalid.
func getEnvAsBool(key string) (bool, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return false, err
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return false, errors.New("environment variable " + key + " must be a valid bool, got: " + valueStr)
	}
	return value, nil
}
