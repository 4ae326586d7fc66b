package config

import (
	"flag"
	"os"
	"time"

	"github.com/onomatheater/blog-api/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-x string   Redis address (e.g., "localhost:6379")
//	-s string   JWT HMAC secret key
//	-m string   JWT signing algorithm (HS256, HS384, HS512)
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-l int      listing cache TTL, seconds
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes
//     using flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers and then converted to
//     time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-x", "-s", "-m", "-t", "-r", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RedisAddr, "x", config.RedisAddr, "redis address")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.SigningAlgorithm, "m", config.SigningAlgorithm, "JWT signing algorithm")

	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidity.Minutes()), "access_token_validity (in minutes)")
	refreshTokenValidity := fs.Int("r", int(config.RefreshTokenValidity.Minutes()), "refresh_token_validity (in minutes)")
	cacheTTL := fs.Int("l", int(config.CacheTTL.Seconds()), "listing cache TTL (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidity = time.Duration(*accessTokenValidity) * time.Minute
	config.RefreshTokenValidity = time.Duration(*refreshTokenValidity) * time.Minute
	config.CacheTTL = time.Duration(*cacheTTL) * time.Second
}
