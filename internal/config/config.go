package config

import (
	"fmt"
	"os"
	"strconv"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN builds the lib/pq connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Config is the full service configuration, loaded from the environment.
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig

	// Remote publication settings
	Source struct {
		URL            string
		TimeoutSeconds int
	}

	// Ingestion pipeline settings
	Ingest struct {
		MatchThreshold float64 // a match is accepted only strictly above this ratio
		CheckHour      int     // hour of day for the daily expiry check

		Cache struct {
			RosterKey  string
			TTLSeconds int
		}
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load reads configuration from environment variables, falling back to
// defaults suitable for local development.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "pharmanio")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "10"), 10)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.Source.URL = getEnv("SOURCE_URL", "https://www.opham.com/urgence/pharmacie")
	cfg.Source.TimeoutSeconds = parseInt(getEnv("SOURCE_TIMEOUT", "10"), 10)

	cfg.Ingest.MatchThreshold = parseFloat(getEnv("MATCH_THRESHOLD", "0.4"), 0.4)
	cfg.Ingest.CheckHour = parseInt(getEnv("CHECK_HOUR", "6"), 6)
	cfg.Ingest.Cache.RosterKey = getEnv("CACHE_ROSTER_KEY", "pharmanio:roster:current")
	cfg.Ingest.Cache.TTLSeconds = parseInt(getEnv("CACHE_ROSTER_TTL", "86400"), 86400)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	if cfg.Ingest.MatchThreshold < 0 || cfg.Ingest.MatchThreshold >= 1 {
		return nil, fmt.Errorf("invalid match threshold: %v", cfg.Ingest.MatchThreshold)
	}
	if cfg.Ingest.CheckHour < 0 || cfg.Ingest.CheckHour > 23 {
		return nil, fmt.Errorf("invalid check hour: %d", cfg.Ingest.CheckHour)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(value string, defaultValue int) int {
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return defaultValue
}

func parseFloat(value string, defaultValue float64) float64 {
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return defaultValue
}
