package app

import (
	"os"
	"strconv"
	"time"

	"github.com/tradepost/tradepost-auth/internal/auth/service"
	"github.com/tradepost/tradepost-auth/pkg/jwtx"
	"github.com/tradepost/tradepost-auth/pkg/ratelimit"
)

type Config struct {
	Issuer      string // Optional: issuer claim for tokens (default: tradepost-auth)
	TokenSecret string // Required: HS256 signing secret, min 32 bytes

	SessionTTL time.Duration // Optional: session token lifetime (default: 1h)
	RefreshTTL time.Duration // Optional: refresh token lifetime (default: 7 days)
	ResetTTL   time.Duration // Optional: reset token lifetime (default: 30m)

	DatabaseFile string // Optional: path to SQLite database file (default: ./auth.db)
	PepperFile   string // Optional: path to file containing pepper for password hashing (default: ./pepper)

	AdminEmail    string // Optional: seed an admin account on startup when set together with AdminPassword
	AdminPassword string // Optional: initial password for the seeded admin account

	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)
	Port      int    // HTTP server port (default: 8080)

	MaxBodyBytes         int64         // Request body cap for JSON endpoints (default: 64 KiB)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	EventRetention       time.Duration // Security event retention (default: 90 days)

	LoginLimit ratelimit.Limit // Attempt limit for login, keyed by IP+email
	ResetLimit ratelimit.Limit // Attempt limit for password reset requests
	RefreshLim ratelimit.Limit // Attempt limit for refresh, keyed by IP
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:      getEnvOrDefault("AUTH_ISSUER", "tradepost-auth"),
		TokenSecret: os.Getenv("AUTH_TOKEN_SECRET"),

		SessionTTL: getEnvDurationOrDefault("AUTH_SESSION_TTL", jwtx.DefaultSessionTTL),
		RefreshTTL: getEnvDurationOrDefault("AUTH_REFRESH_TTL", jwtx.DefaultRefreshTTL),
		ResetTTL:   getEnvDurationOrDefault("AUTH_RESET_TTL", jwtx.DefaultResetTTL),

		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PepperFile:   getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),

		AdminEmail:    os.Getenv("AUTH_ADMIN_EMAIL"),
		AdminPassword: os.Getenv("AUTH_ADMIN_PASSWORD"),

		Env:       getEnvOrDefault("ENV", "dev"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
		Port:      getEnvIntOrDefault("PORT", 8080),

		MaxBodyBytes:         int64(getEnvIntOrDefault("MAX_BODY_BYTES", 64*1024)),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		EventRetention:       getEnvDurationOrDefault("EVENT_RETENTION", 90*24*time.Hour),

		LoginLimit: ratelimit.Limit{
			Window:      getEnvDurationOrDefault("ATTEMPTS_LOGIN_WINDOW", 15*time.Minute),
			MaxAttempts: getEnvIntOrDefault("ATTEMPTS_LOGIN_MAX", 5),
		},
		ResetLimit: ratelimit.Limit{
			Window:      getEnvDurationOrDefault("ATTEMPTS_RESET_WINDOW", time.Hour),
			MaxAttempts: getEnvIntOrDefault("ATTEMPTS_RESET_MAX", 3),
		},
		RefreshLim: ratelimit.Limit{
			Window:      getEnvDurationOrDefault("ATTEMPTS_REFRESH_WINDOW", time.Minute),
			MaxAttempts: getEnvIntOrDefault("ATTEMPTS_REFRESH_MAX", 30),
		},
	}

	return cfg
}

// AttemptLimits maps the configured limits onto the service rate classes.
func (c Config) AttemptLimits() map[ratelimit.Class]ratelimit.Limit {
	return map[ratelimit.Class]ratelimit.Limit{
		service.ClassLogin:         c.LoginLimit,
		service.ClassPasswordReset: c.ResetLimit,
		service.ClassRefresh:       c.RefreshLim,
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

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
