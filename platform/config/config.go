// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides settings for the asynq task queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetMatchSweepInterval() time.Duration
}

// PhoneConfig provides settings for phone number normalization.
type PhoneConfig interface {
	GetPhoneDefaultRegion() string
}

// MatchingConfig provides settings for the lead-property matching engine.
type MatchingConfig interface {
	PhoneConfig
	GetMatchMaxCandidates() int
	GetMatchEvaluationTimeout() time.Duration
	GetMatchPairConcurrency() int
	GetMatchTriggerDedupWindow() time.Duration
	GetContactPhonePolicy() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                     string
	HTTPAddr                string
	DatabaseURL             string
	MigrationsEnabled       bool
	JWTAccessSecret         string
	CORSAllowAll            bool
	CORSOrigins             []string
	CORSAllowCreds          bool
	RedisURL                string
	RedisTLSInsecure        bool
	AsynqQueueName          string
	AsynqConcurrency        int
	PhoneDefaultRegion      string
	MatchMaxCandidates      int
	MatchEvaluationTimeout  time.Duration
	MatchPairConcurrency    int
	MatchTriggerDedupWindow time.Duration
	ContactPhonePolicy      string
	MatchSweepInterval      time.Duration
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string          { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool    { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string    { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int     { return c.AsynqConcurrency }
func (c *Config) IsAsyncTriggersEnabled() bool { return c.RedisURL != "" }
func (c *Config) GetMatchSweepInterval() time.Duration {
	return c.MatchSweepInterval
}

// PhoneConfig implementation
func (c *Config) GetPhoneDefaultRegion() string { return c.PhoneDefaultRegion }

// MatchingConfig implementation
func (c *Config) GetMatchMaxCandidates() int                { return c.MatchMaxCandidates }
func (c *Config) GetMatchEvaluationTimeout() time.Duration  { return c.MatchEvaluationTimeout }
func (c *Config) GetMatchPairConcurrency() int              { return c.MatchPairConcurrency }
func (c *Config) GetMatchTriggerDedupWindow() time.Duration { return c.MatchTriggerDedupWindow }
func (c *Config) GetContactPhonePolicy() string             { return c.ContactPhonePolicy }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                     getEnv("APP_ENV", "development"),
		HTTPAddr:                getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		MigrationsEnabled:       strings.EqualFold(getEnv("MIGRATIONS_ENABLED", "true"), "true"),
		JWTAccessSecret:         getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:            corsAllowAll,
		CORSOrigins:             corsOrigins,
		CORSAllowCreds:          strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RedisURL:                getEnv("REDIS_URL", ""),
		RedisTLSInsecure:        strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:          getEnv("ASYNQ_QUEUE", "matching"),
		AsynqConcurrency:        mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		PhoneDefaultRegion:      strings.ToUpper(getEnv("PHONE_DEFAULT_REGION", "BR")),
		MatchMaxCandidates:      mustInt(getEnv("MATCH_MAX_CANDIDATES", "500")),
		MatchEvaluationTimeout:  mustDuration(getEnv("MATCH_EVALUATION_TIMEOUT", "30s")),
		MatchPairConcurrency:    mustInt(getEnv("MATCH_PAIR_CONCURRENCY", "4")),
		MatchTriggerDedupWindow: mustDuration(getEnv("MATCH_TRIGGER_DEDUP_WINDOW", "10s")),
		ContactPhonePolicy:      strings.ToLower(getEnv("CONTACT_PHONE_POLICY", "snapshot")),
		MatchSweepInterval:      mustDuration(getEnv("MATCH_SWEEP_INTERVAL", "0")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if !cfg.CORSAllowAll && len(cfg.CORSOrigins) == 0 {
		return nil, fmt.Errorf("CORS_ORIGINS must list at least one origin when CORS_ALLOW_ALL is false")
	}
	if cfg.MatchMaxCandidates < 1 {
		return nil, fmt.Errorf("MATCH_MAX_CANDIDATES must be a positive integer")
	}
	if cfg.MatchEvaluationTimeout <= 0 {
		return nil, fmt.Errorf("MATCH_EVALUATION_TIMEOUT must be a positive duration")
	}
	switch cfg.ContactPhonePolicy {
	case "snapshot", "snapshot_with_current":
	default:
		return nil, fmt.Errorf("CONTACT_PHONE_POLICY must be snapshot or snapshot_with_current")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
