package main

import (
	"os"
	"strconv"

	"github.com/ospreylabs/poolpricer/internal/config"
	"github.com/ospreylabs/poolpricer/internal/logger"
	"github.com/ospreylabs/poolpricer/internal/state"
	"github.com/ospreylabs/poolpricer/internal/web"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// main is the entry point for the pool pricing service.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if logFile := os.Getenv("LOG_FILE"); logFile != "" {
		if err := logger.InitializeWithFile(os.Getenv("LOG_LEVEL"), logFile); err != nil {
			log.Fatal().Err(err).Str("path", logFile).Msg("Failed to open log file")
		}
	} else {
		logger.Initialize(os.Getenv("LOG_LEVEL"))
	}
	log.Info().Str("service", config.ServiceName).Msg("Pool pricing service starting...")

	// Initialize Database Connection
	dbCfg := state.DBConfig{
		Host: os.Getenv("DB_HOST"), Port: mustAtoi(os.Getenv("DB_PORT"), 5432),
		User: os.Getenv("DB_USER"), Password: os.Getenv("DB_PASSWORD"),
		DBName: os.Getenv("DB_NAME"), SSLMode: os.Getenv("DB_SSLMODE"),
	}
	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer state.CloseDB()
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	// --- 2. Start Web Server ---
	webPort := os.Getenv("WEB_PORT")
	if webPort == "" {
		webPort = "8080"
	}

	webServer := web.NewWebServer(webPort)
	log.Info().Str("port", webPort).Str("url", "http://localhost:"+webPort).Msg("Starting quote API")
	if err := webServer.Start(); err != nil {
		log.Fatal().Err(err).Msg("Web server failed")
	}
}

// Helper to convert string to int with a default value
func mustAtoi(s string, defaultValue int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}
