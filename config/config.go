// Package config loads runtime settings for the chat service from the
// environment, with an optional .env file for local development.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every tunable the service reads at startup.
type Config struct {
	Port            string
	AllowedOrigins  []string
	MaxMessageSize  int64
	RatePerSecond   float64
	RateBurst       int
	SendBufferSize  int
	PingInterval    time.Duration
	ShutdownTimeout time.Duration
	ActivityHistory int
	LogLevel        string
}

// Default returns the configuration used when no environment overrides are set.
func Default() Config {
	return Config{
		Port:            "3000",
		AllowedOrigins:  []string{"*"},
		MaxMessageSize:  8192,
		RatePerSecond:   10,
		RateBurst:       20,
		SendBufferSize:  256,
		PingInterval:    20 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		ActivityHistory: 100,
		LogLevel:        "info",
	}
}

// Load reads a local .env file if present, then overlays environment
// variables on top of Default.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] Ignoring .env: %v", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() Config {
	cfg := Default()

	cfg.Port = getEnv("PORT", cfg.Port)
	if origins := splitCSV(os.Getenv("CORS_ALLOWED_ORIGINS")); len(origins) > 0 {
		cfg.AllowedOrigins = origins
	}
	cfg.MaxMessageSize = int64(getEnvInt("MAX_MESSAGE_SIZE", int(cfg.MaxMessageSize)))
	cfg.RatePerSecond = getEnvFloat("MESSAGE_RATE_PER_SECOND", cfg.RatePerSecond)
	cfg.RateBurst = getEnvInt("MESSAGE_RATE_BURST", cfg.RateBurst)
	cfg.SendBufferSize = getEnvInt("SEND_BUFFER_SIZE", cfg.SendBufferSize)
	cfg.PingInterval = getEnvDuration("PING_INTERVAL", cfg.PingInterval)
	cfg.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.ActivityHistory = getEnvInt("ACTIVITY_HISTORY", cfg.ActivityHistory)
	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", cfg.LogLevel))

	return cfg
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

// AllowsAllOrigins reports whether the origin allowlist is a wildcard.
func (c Config) AllowsAllOrigins() bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return len(c.AllowedOrigins) == 0
}

// getEnv returns the env var or a default.
func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// getEnvInt parses a positive int env var with a fallback.
func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && i > 0 {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}

// getEnvDuration accepts Go duration strings ("15s") or a bare number of seconds.
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return def
}

// splitCSV trims and filters a comma-separated list.
func splitCSV(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
