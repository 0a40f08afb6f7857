package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The struct is built once at startup and passed
// by value into the components that need it; nothing reads the environment
// after Load returns.
type Config struct {
	Env           string // application environment (e.g. "dev", "prod")
	Port          string // HTTP port to listen on
	DBUser        string // database username
	DBPass        string // database password (optional)
	DBHost        string // database host address
	DBPort        string // database port number
	DBName        string // database name
	JWTSecret     string // secret used to sign access tokens; mandatory
	TokenTTLSec   int    // access token time-to-live in seconds
	BcryptCost    int    // bcrypt cost for password hashing
}

// Load reads configuration values from environment variables and returns a
// Config.  The signing secret and database coordinates are enforced by
// must(); a missing value causes the process to exit with a fatal log
// message before it ever serves a request.  Token lifetime and bcrypt cost
// fall back to policy defaults when unset.
func Load() Config {
	return Config{
		Env:         getenv("APP_ENV", "dev"),            // environment (dev/test/prod)
		Port:        getenv("APP_PORT", "8080"),          // port to bind the HTTP server
		DBUser:      must("DB_USER"),                     // database user
		DBPass:      os.Getenv("DB_PASS"),                // database password (empty allowed)
		DBHost:      must("DB_HOST"),                     // database host
		DBPort:      must("DB_PORT"),                     // database port
		DBName:      must("DB_NAME"),                     // database name
		JWTSecret:   must("JWT_SECRET"),                  // secret used for signing tokens
		TokenTTLSec: getenvInt("TOKEN_TTL_SECONDS", 3600), // access token TTL in seconds
		BcryptCost:  getenvInt("BCRYPT_COST", 12),        // bcrypt cost factor
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// getenv returns the value of an environment variable or a default when the
// variable is unset or empty.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getenvInt is like getenv but converts the value to an integer.  A value
// that is present but not a valid integer is a configuration mistake and
// aborts startup rather than silently falling back.
func getenvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
