package app

import (
	"os"
	"strconv"
	"time"

	"github.com/quillboard/quillboard/internal/identity/service"
	"github.com/quillboard/quillboard/pkg/jwtx"
)

type Config struct {
	Issuer         string // Issuer claim for session tokens
	RootSecretFile string // Path to root secret file; falls back to IDENTITY_ROOT_SECRET env
	DatabaseFile   string // Path to SQLite database file (default: ./identity.db)
	PepperFile     string // Path to file containing pepper for password hashing (default: ./pepper)

	SessionTTL   time.Duration // Session token lifetime (default: 90 days)
	BlacklistTTL time.Duration // Revoked-token blacklist entry lifetime (default: 24h)
	ResetTTL     time.Duration // Password reset token lifetime (default: 24h)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	CookieSecure         bool          // Secure flag on the session cookie (default: true)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired-row sweep interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		Issuer:         getEnvOrDefault("IDENTITY_ISSUER", "quillboard-identity"),
		RootSecretFile: os.Getenv("IDENTITY_ROOT_SECRET_FILE"),
		DatabaseFile:   getEnvOrDefault("IDENTITY_DATABASE_FILE", "identity.db"),
		PepperFile:     getEnvOrDefault("IDENTITY_PEPPER_FILE", "pepper"),

		SessionTTL:   getEnvDurationOrDefault("SESSION_TTL", jwtx.DefaultSessionTTL),
		BlacklistTTL: getEnvDurationOrDefault("BLACKLIST_TTL", service.DefaultBlacklistTTL),
		ResetTTL:     getEnvDurationOrDefault("RESET_TTL", service.DefaultResetTTL),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		CookieSecure:         getEnvBoolOrDefault("COOKIE_SECURE", true),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
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

	return defaultValue
}
