package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// PostingConfig tunes the optimistic retry loop around balance updates.
type PostingConfig struct {
	MaxAttempts  int
	RetryBackoff time.Duration
}

// IntegrityJobConfig tunes the scheduled integrity and reconciliation sweeps.
type IntegrityJobConfig struct {
	Enabled                bool
	CheckInterval          time.Duration
	ReconciliationInterval time.Duration
	BatchSize              int
}

// RateLimitConfig holds limiter rates in ulule formatted form, e.g. "60-M".
type RateLimitConfig struct {
	PostingRate string
}

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool
	Posting      PostingConfig
	IntegrityJob IntegrityJobConfig
	RateLimit    RateLimitConfig
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("POSTING_MAX_ATTEMPTS", 5)
	viper.SetDefault("POSTING_RETRY_BACKOFF", "10ms")
	viper.SetDefault("INTEGRITY_JOB_ENABLED", true)
	viper.SetDefault("INTEGRITY_CHECK_INTERVAL", "1h")
	viper.SetDefault("RECONCILIATION_INTERVAL", "24h")
	viper.SetDefault("INTEGRITY_BATCH_SIZE", 500)
	viper.SetDefault("POSTING_RATE_LIMIT", "60-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.Posting = PostingConfig{
		MaxAttempts:  viper.GetInt("POSTING_MAX_ATTEMPTS"),
		RetryBackoff: parseDurationOrDefault("POSTING_RETRY_BACKOFF", 10*time.Millisecond),
	}

	cfg.IntegrityJob = IntegrityJobConfig{
		Enabled:                viper.GetBool("INTEGRITY_JOB_ENABLED"),
		CheckInterval:          parseDurationOrDefault("INTEGRITY_CHECK_INTERVAL", time.Hour),
		ReconciliationInterval: parseDurationOrDefault("RECONCILIATION_INTERVAL", 24*time.Hour),
		BatchSize:              viper.GetInt("INTEGRITY_BATCH_SIZE"),
	}

	cfg.RateLimit = RateLimitConfig{
		PostingRate: viper.GetString("POSTING_RATE_LIMIT"),
	}

	return cfg, nil
}

func parseDurationOrDefault(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}
