package config

import (
	"flag"
	"os"
	"time"

	"github.com/ttttiu/WAS/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      token expiration, hours
//	-l int      minimum password length
//	-m int      maximum failed login attempts before lockout
//	-n int      salt length, bytes
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes
//     using flagx.FilterArgs, avoiding collisions with other components.
//   - The token lifetime is accepted as an integer in hours and then
//     converted to a time.Duration value.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-l", "-m", "-n"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenExpiration := fs.Int("t", int(config.TokenExpiration.Hours()), "token expiration (in hours)")

	fs.IntVar(&config.MinPasswordLength, "l", config.MinPasswordLength, "minimum password length")
	fs.IntVar(&config.MaxLoginAttempts, "m", config.MaxLoginAttempts, "maximum failed login attempts")
	fs.IntVar(&config.SaltLength, "n", config.SaltLength, "salt length (in bytes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenExpiration = time.Duration(*tokenExpiration) * time.Hour
}
