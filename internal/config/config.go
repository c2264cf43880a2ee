package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ndewijer/Investment-Portfolio-Analytics/internal/model"
)

// Config holds all configuration for the application
type Config struct {
	Database  DatabaseConfig
	Logging   LoggingConfig
	Analytics AnalyticsConfig
	Scheduler SchedulerConfig
	Server    ServerConfig
	CORS      CORSConfig
	Security  SecurityConfig
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level  string
	Pretty bool
}

// AnalyticsConfig holds defaults for valuation and performance calculations
type AnalyticsConfig struct {
	ReportingCurrency model.Currency
}

// SchedulerConfig controls the periodic snapshot job
type SchedulerConfig struct {
	Enabled          bool
	SnapshotSchedule string // cron expression
	SnapshotPeriod   model.Period
	Concurrency      int
	PerformanceDays  int // trailing window of the performance job
}

// ServerConfig holds the operational HTTP listener (health, version, metrics)
type ServerConfig struct {
	Enabled bool
	Port    string
	Host    string
	Addr    string // Combined host:port for convenience
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig holds encryption keys
type SecurityConfig struct {
	FernetKeys []string // first key encrypts, all keys decrypt
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	currency, err := model.NewCurrency(getEnv("REPORTING_CURRENCY", "EUR"))
	if err != nil {
		return nil, fmt.Errorf("invalid REPORTING_CURRENCY: %w", err)
	}

	period, err := model.ParsePeriod(getEnv("SNAPSHOT_PERIOD", "daily"))
	if err != nil {
		return nil, fmt.Errorf("invalid SNAPSHOT_PERIOD: %w", err)
	}

	concurrency, err := strconv.Atoi(getEnv("SNAPSHOT_CONCURRENCY", "4"))
	if err != nil || concurrency < 1 {
		return nil, fmt.Errorf("invalid SNAPSHOT_CONCURRENCY: must be a positive integer")
	}

	performanceDays, err := strconv.Atoi(getEnv("PERFORMANCE_WINDOW_DAYS", "30"))
	if err != nil || performanceDays < 1 {
		return nil, fmt.Errorf("invalid PERFORMANCE_WINDOW_DAYS: must be a positive integer")
	}

	config := &Config{
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/portfolio_analytics.db"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnvBool("LOG_PRETTY", false),
		},
		Analytics: AnalyticsConfig{
			ReportingCurrency: currency,
		},
		Scheduler: SchedulerConfig{
			Enabled:          getEnvBool("SNAPSHOT_ENABLED", true),
			SnapshotSchedule: getEnv("SNAPSHOT_SCHEDULE", "0 2 * * *"),
			SnapshotPeriod:   period,
			Concurrency:      concurrency,
			PerformanceDays:  performanceDays,
		},
		Server: ServerConfig{
			Enabled: getEnvBool("SERVER_ENABLED", true),
			Port:    getEnv("SERVER_PORT", "5002"),
			Host:    getEnv("SERVER_HOST", "localhost"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
		},
		Security: SecurityConfig{
			FernetKeys: splitList(getEnv("FERNET_KEYS", "")),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
