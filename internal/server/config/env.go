package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays configuration from environment variables. It runs last,
// so deployment environments can override file and flag values; this is the
// intended channel for SECRET_KEY.
//
// Duration variables accept time.ParseDuration syntax ("30m", "720h").
// Unparsable values are ignored, keeping the previously loaded value.
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv("ADDRESS"); ok {
		config.EndpointAddrHTTP = v
	}
	if v, ok := os.LookupEnv("DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("REDIS_ADDR"); ok {
		config.RedisAddr = v
	}
	if v, ok := os.LookupEnv("REDIS_PASSWORD"); ok {
		config.RedisPassword = v
	}
	if v, ok := os.LookupEnv("REDIS_DB"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			config.RedisDB = n
		}
	}
	if v, ok := os.LookupEnv("SECRET_KEY"); ok {
		config.SecretKey = v
	}
	if v, ok := os.LookupEnv("SIGNING_ALGORITHM"); ok {
		config.SigningAlgorithm = v
	}
	if v, ok := os.LookupEnv("ACCESS_TOKEN_VALIDITY"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.AccessTokenValidity = d
		}
	}
	if v, ok := os.LookupEnv("REFRESH_TOKEN_VALIDITY"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.RefreshTokenValidity = d
		}
	}
	if v, ok := os.LookupEnv("CACHE_TTL"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.CacheTTL = d
		}
	}
}
