// Package config loads application configuration from environment variables
// (with optional .env file support).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration.
type Config struct {
	// Database
	DBPath string

	// Analysis parameters
	StartingCapital decimal.Decimal // Seeds the equity curve; 0 is valid
	PeriodsPerYear  int             // Sharpe annualization factor
	RiskFraction    float64         // Fraction of equity risked per trade

	// Logging
	LogLevel string
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars).
	_ = godotenv.Load()

	cfg := &Config{}
	var errs []string

	cfg.DBPath = getEnv("DB_PATH", "./data/trades.db")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.PeriodsPerYear = getEnvAsInt("PERIODS_PER_YEAR", 252)
	if cfg.PeriodsPerYear <= 0 {
		errs = append(errs, "PERIODS_PER_YEAR must be positive")
	}
	cfg.RiskFraction = getEnvAsFloat("RISK_FRACTION", 0.01)
	if cfg.RiskFraction <= 0 || cfg.RiskFraction >= 1 {
		errs = append(errs, "RISK_FRACTION must be between 0 and 1")
	}

	capitalStr := getEnv("STARTING_CAPITAL", "0")
	capital, err := decimal.NewFromString(capitalStr)
	if err != nil {
		errs = append(errs, fmt.Sprintf("STARTING_CAPITAL %q is not a valid number", capitalStr))
	} else if capital.IsNegative() {
		errs = append(errs, "STARTING_CAPITAL must not be negative")
	} else {
		cfg.StartingCapital = capital
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

// getEnv reads an environment variable or returns the default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as an integer or returns the
// default value.
func getEnvAsInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

// getEnvAsFloat reads an environment variable as a float or returns the
// default value.
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
			return value
		}
	}
	return defaultValue
}
