package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the process-level settings. Auction rules (tiers, base
// price, squad sizes) live in the database, not here.
type Config struct {
	Addr        string
	DatabaseURL string
	LogLevel    string
	ResetDelay  time.Duration
}

// Load reads .env if present, then the environment, applying defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:        getenv("ADDR", ":8080"),
		DatabaseURL: getenv("DATABASE_URL", "host=localhost port=5432 user=auction password=auction dbname=auction sslmode=disable"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		ResetDelay:  2 * time.Second,
	}

	if raw := os.Getenv("RESET_DELAY"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parsing RESET_DELAY: %w", err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("RESET_DELAY must be positive, got %s", d)
		}
		cfg.ResetDelay = d
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
