package config // package config loads agent configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values.  Each field maps to
// one environment variable.  Secrets and identifiers stay strings;
// durations and costs are parsed into their used types.
type Config struct {
	Env            string        // application environment (e.g. "dev", "prod")
	Port           string        // HTTP port the local facade listens on
	GatewayBaseURL string        // base URL of the central reservation gateway
	GatewayTimeout time.Duration // per-request timeout for gateway calls
	DBPath         string        // path of the local credential database
	SessionSecret  string        // secret used to sign local session JWTs
	SessionTTLMin  int           // session token time-to-live in minutes
	BcryptCost     int           // bcrypt cost for locally cached passwords
	SyncInterval   time.Duration // deferred credential sync interval
}

// Load reads configuration from the environment.  Required variables
// are enforced by must(); everything else falls back to a default that
// suits a single-site kiosk deployment.
func Load() Config {
	return Config{
		Env:            envStr("APP_ENV", "dev"),
		Port:           envStr("APP_PORT", "8085"),
		GatewayBaseURL: must("GATEWAY_BASE_URL"),
		GatewayTimeout: envDur("GATEWAY_TIMEOUT", 15*time.Second),
		DBPath:         envStr("DB_PATH", "evcharge-agent.db"),
		SessionSecret:  must("SESSION_SECRET"),
		SessionTTLMin:  envInt("SESSION_TOKEN_TTL_MIN", 480),
		BcryptCost:     envInt("BCRYPT_COST", 10),
		SyncInterval:   envDur("SYNC_INTERVAL", time.Minute),
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
