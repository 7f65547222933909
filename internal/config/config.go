package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings splits the prefix lists
	"time"    // time holds the parsed token lifetimes
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  Secrets and expiries are loaded here once
// and handed to the token codec as an explicit options value; no package
// reads them from the environment afterwards.
type Config struct {
	Env               string        // application environment (e.g. "dev", "prod")
	Port              string        // HTTP port to listen on
	DBUser            string        // database username
	DBPass            string        // database password (optional)
	DBHost            string        // database host address
	DBPort            string        // database port number
	DBName            string        // database name
	AccessSecret      string        // secret used to sign access tokens
	RefreshSecret     string        // secret used to sign refresh tokens
	AccessTTL         time.Duration // access token lifetime
	RefreshTTL        time.Duration // refresh token lifetime
	BcryptCost        int           // bcrypt cost for password hashing
	ProtectedPrefixes []string      // page path prefixes requiring a session
	AdminPrefixes     []string      // subset additionally requiring an admin role
	SecureCookies     bool          // mark auth cookies Secure (off for local dev)
}

// Load reads configuration values from environment variables and returns
// a Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Expiries accept
// Go duration syntax plus a "d" day suffix ("15m", "12h", "7d").
func Load() Config {
	return Config{
		Env:               must("APP_ENV"),
		Port:              must("APP_PORT"),
		DBUser:            must("DB_USER"),
		DBPass:            os.Getenv("DB_PASS"), // empty allowed
		DBHost:            must("DB_HOST"),
		DBPort:            must("DB_PORT"),
		DBName:            must("DB_NAME"),
		AccessSecret:      must("JWT_ACCESS_SECRET"),
		RefreshSecret:     must("JWT_REFRESH_SECRET"),
		AccessTTL:         expiry("ACCESS_TOKEN_EXPIRES", "15m"),
		RefreshTTL:        expiry("REFRESH_TOKEN_EXPIRES", "7d"),
		BcryptCost:        intDefault("BCRYPT_COST", 10),
		ProtectedPrefixes: prefixes("PROTECTED_PREFIXES", "/dashboard,/admin"),
		AdminPrefixes:     prefixes("ADMIN_PREFIXES", "/admin"),
		SecureCookies:     os.Getenv("APP_ENV") != "dev",
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

// intDefault reads an integer variable, falling back when unset and
// exiting on an unparseable value.
func intDefault(key string, def int) int {
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

// expiry parses a token lifetime.  time.ParseDuration has no day unit,
// so a trailing "d" is translated into hours first.
func expiry(key, def string) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		s = def
	}
	d, err := ParseExpiry(s)
	if err != nil {
		log.Fatalf("invalid duration for %s: %q", key, s)
	}
	return d
}

// ParseExpiry parses Go duration syntax extended with a "d" suffix for
// whole days, the convention the token lifetime variables use.
func ParseExpiry(s string) (time.Duration, error) {
	if n, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(n)
		if err != nil {
			return 0, err
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

// prefixes splits a comma-separated list of path prefixes.
func prefixes(key, def string) []string {
	s := os.Getenv(key)
	if s == "" {
		s = def
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
