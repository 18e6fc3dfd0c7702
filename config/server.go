package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Server holds the HTTP server settings read from the environment.
type Server struct {
	Port            string
	GinMode         string
	LogLevel        string
	SeedCatalog     bool
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	ProductCacheTTL time.Duration
	RateLimit       int
	TrustedProxies  []string
}

// LoadServer reads PORT, GIN_MODE, LOG_LEVEL, SEED_CATALOG, REDIS_ADDR,
// REDIS_PASSWORD, REDIS_DB, PRODUCT_CACHE_TTL and RATE_LIMIT. An empty
// REDIS_ADDR disables the product cache.
func LoadServer() (Server, error) {
	cfg := Server{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		TrustedProxies: []string{"127.0.0.1"},
	}

	var err error
	if cfg.SeedCatalog, err = boolEnv("SEED_CATALOG", false); err != nil {
		return Server{}, err
	}
	if cfg.RedisDB, err = intEnv("REDIS_DB", 0); err != nil {
		return Server{}, err
	}
	if cfg.RateLimit, err = intEnv("RATE_LIMIT", 50); err != nil {
		return Server{}, err
	}
	if cfg.ProductCacheTTL, err = durationEnv("PRODUCT_CACHE_TTL", 5*time.Minute); err != nil {
		return Server{}, err
	}

	if cfg.RateLimit <= 0 {
		return Server{}, fmt.Errorf("RATE_LIMIT must be positive, got %d", cfg.RateLimit)
	}
	return cfg, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
