package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/onomatheater/blog-api/internal/flagx"
	"github.com/onomatheater/blog-api/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "30m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddrHTTP     string         `json:"endpoint_addr_http"`
	DatabaseDSN          string         `json:"database_dsn"`
	RedisAddr            string         `json:"redis_addr"`
	RedisPassword        string         `json:"redis_password"`
	RedisDB              *int           `json:"redis_db"`
	SecretKey            string         `json:"secret_key"`
	SigningAlgorithm     string         `json:"signing_algorithm"`
	AccessTokenValidity  timex.Duration `json:"access_token_validity"`
	RefreshTokenValidity timex.Duration `json:"refresh_token_validity"`
	CacheTTL             timex.Duration `json:"cache_ttl"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path is taken from the -c or -config command-line flags; if
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics. Zero values in the file leave
// the corresponding Config fields untouched, so a partial overlay is fine.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.RedisAddr != "" {
		config.RedisAddr = c.RedisAddr
	}
	if c.RedisPassword != "" {
		config.RedisPassword = c.RedisPassword
	}
	if c.RedisDB != nil {
		config.RedisDB = *c.RedisDB
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.SigningAlgorithm != "" {
		config.SigningAlgorithm = c.SigningAlgorithm
	}
	if c.AccessTokenValidity.Duration != 0 {
		config.AccessTokenValidity = time.Duration(c.AccessTokenValidity.Duration)
	}
	if c.RefreshTokenValidity.Duration != 0 {
		config.RefreshTokenValidity = time.Duration(c.RefreshTokenValidity.Duration)
	}
	if c.CacheTTL.Duration != 0 {
		config.CacheTTL = time.Duration(c.CacheTTL.Duration)
	}
}
