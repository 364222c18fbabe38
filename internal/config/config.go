package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Recompute strategies for the dashboard summary after a transaction
// mutation. Sync recalculates inside the request; deferred hands the range
// to the background worker over AMQP.
const (
	RecomputeSync     = "sync"
	RecomputeDeferred = "deferred"
)

type Config struct {
	// HTTP Server
	Port string

	// Database. A postgres:// URL selects the postgres backend, anything
	// else is treated as a SQLite file path.
	DatabaseURL string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration

	// CORS origin allow-pattern (anchored regexp).
	AllowedOriginPattern string

	// Dashboard recompute strategy: "sync" or "deferred".
	RecomputeStrategy string

	// AMQP (required only for the deferred strategy and the worker)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Pagination default for transaction listing.
	DefaultPageSize int
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8000"),
		DatabaseURL: getEnv("DATABASE_URL", "./data/financeiro.db"),

		JWTSecret: getEnv("SECRET_KEY", ""),
		TokenTTL:  getEnvDuration("ACCESS_TOKEN_TTL", 30*time.Minute),

		AllowedOriginPattern: getEnv("ALLOWED_ORIGIN_PATTERN",
			`^https?://(localhost(:\d+)?|.*\.vercel\.app)$`),

		RecomputeStrategy: getEnv("RECOMPUTE_STRATEGY", RecomputeSync),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "financeiro"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "recalc_dashboard"),

		DefaultPageSize: getEnvInt("DEFAULT_PAGE_SIZE", 100),
	}
}

// Validate checks the configuration and returns an error describing every
// problem found. Called once at startup so a bad deployment fails fast.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DatabaseURL == "" {
		errs = append(errs, "database URL cannot be empty")
	}

	if c.JWTSecret == "" {
		errs = append(errs, "SECRET_KEY must be set")
	}

	if c.TokenTTL < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid token TTL %v: must be at least 1 minute", c.TokenTTL))
	}

	if _, err := regexp.Compile(c.AllowedOriginPattern); err != nil {
		errs = append(errs, fmt.Sprintf("invalid origin pattern '%s': %v", c.AllowedOriginPattern, err))
	}

	switch c.RecomputeStrategy {
	case RecomputeSync:
	case RecomputeDeferred:
		if c.AMQPURL == "" {
			errs = append(errs, "AMQP_URL is required for the deferred recompute strategy")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid recompute strategy '%s': must be 'sync' or 'deferred'", c.RecomputeStrategy))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.DefaultPageSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid default page size %d: must be at least 1", c.DefaultPageSize))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// UsesPostgres reports whether the database URL selects the postgres
// backend.
func (c *Config) UsesPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") ||
		strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
