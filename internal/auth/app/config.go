package app

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/aussiebroadwan/pressauth/internal/auth/service"
	"github.com/aussiebroadwan/pressauth/pkg/bruteforce"
	"github.com/aussiebroadwan/pressauth/pkg/httpx"
)

// Brute-force store backends.
const (
	BruteStoreMemory   = "memory"
	BruteStoreSQLite   = "sqlite"
	BruteStorePostgres = "postgres"
)

type Config struct {
	DatabaseFile string // Optional: path to SQLite database file (default: ./auth.db)
	PepperFile   string // Optional: path to file containing pepper for password hashing (default: ./pepper)

	AccessTTL    time.Duration // ACCESS_TOKEN_TTL_MINUTES (default: 60)
	RefreshTTL   time.Duration // default: 14 days
	RefreshGrace time.Duration // lifetime left to a superseded access token (default: 5m)
	ResetTTL     time.Duration // default: 24h
	ResetURL     string        // base of the link handed to the reset notifier

	AdminClientID     string
	AdminClientSecret string
	OwnerEmail        string // Optional: seeds the first account
	OwnerPassword     string

	BruteStore       string // memory, sqlite or postgres (default: sqlite)
	BruteDatabaseURL string // Required when BruteStore is postgres
	BruteLimit       int
	BruteWindow      time.Duration

	SentryDSN string // Optional: enables panic reporting

	TrustedProxies string // Optional: comma separated IPs/CIDRs whose X-Forwarded-For is believed

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

// LoadConfig reads the environment, after loading a .env file from the
// working directory when one exists.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PepperFile:   getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),

		AccessTTL:    time.Duration(getEnvIntOrDefault("ACCESS_TOKEN_TTL_MINUTES", 60)) * time.Minute,
		RefreshTTL:   getEnvDurationOrDefault("REFRESH_TOKEN_TTL", service.DefaultRefreshTTL),
		RefreshGrace: getEnvDurationOrDefault("REFRESH_GRACE_PERIOD", service.DefaultRefreshGrace),
		ResetTTL:     getEnvDurationOrDefault("RESET_TOKEN_TTL", service.DefaultResetTTL),
		ResetURL:     getEnvOrDefault("RESET_URL", "http://localhost:2368/ghost/reset/"),

		AdminClientID:     getEnvOrDefault("ADMIN_CLIENT_ID", service.DefaultAdminClientID),
		AdminClientSecret: getEnvOrDefault("ADMIN_CLIENT_SECRET", service.DefaultAdminClientSecret),
		OwnerEmail:        os.Getenv("OWNER_EMAIL"),
		OwnerPassword:     os.Getenv("OWNER_PASSWORD"),

		BruteStore:       getEnvOrDefault("BRUTE_STORE", BruteStoreSQLite),
		BruteDatabaseURL: os.Getenv("BRUTE_DATABASE_URL"),
		BruteLimit:       getEnvIntOrDefault("BRUTE_LIMIT", bruteforce.DefaultLimit),
		BruteWindow:      getEnvDurationOrDefault("BRUTE_WINDOW", bruteforce.DefaultWindow),

		SentryDSN: os.Getenv("SENTRY_DSN"),

		TrustedProxies: os.Getenv("TRUSTED_PROXIES"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

// Validate rejects settings the application cannot start with.
func (c Config) Validate() error {
	switch c.BruteStore {
	case BruteStoreMemory, BruteStoreSQLite:
	case BruteStorePostgres:
		if c.BruteDatabaseURL == "" {
			return fmt.Errorf("BRUTE_DATABASE_URL is required when BRUTE_STORE=%s", BruteStorePostgres)
		}
	default:
		return fmt.Errorf("unknown BRUTE_STORE %q", c.BruteStore)
	}

	if c.AccessTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL_MINUTES must be positive")
	}
	if c.RefreshGrace >= c.AccessTTL {
		return fmt.Errorf("REFRESH_GRACE_PERIOD (%s) must be shorter than the access token TTL (%s)", c.RefreshGrace, c.AccessTTL)
	}
	if c.BruteLimit < 1 {
		return fmt.Errorf("BRUTE_LIMIT must be at least 1")
	}
	if (c.OwnerEmail == "") != (c.OwnerPassword == "") {
		return fmt.Errorf("OWNER_EMAIL and OWNER_PASSWORD must be set together")
	}
	if _, err := httpx.ParseTrustedProxies(c.TrustedProxies); err != nil {
		return fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
