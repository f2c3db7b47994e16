// Package middleware provides HTTP middleware components for the jobmon API.
package middleware

import (
	"time"

	"github.com/jobmon-io/jobmon/internal/config"
)

// Config holds rate limiter configuration.
//
// Rate limits specify requests per second (RPS) for three tiers:
//   - Global: Applied to all requests
//   - Per-caller: Applied to requests with an authenticated caller identity
//   - Anonymous: Applied to requests without a forwarded token
//
// Burst capacity allows temporary bursts above sustained rate.
// If burst fields are 0, they are computed automatically as 2 x rate.
type Config struct {
	// Rate limits (requests per second)
	GlobalRPS    int // Default: 100
	CallerRPS    int // Default: 20
	AnonymousRPS int // Default: 10

	// Optional burst capacity overrides (0 = compute automatically as 2 x rate)
	GlobalBurst    int
	CallerBurst    int
	AnonymousBurst int

	// Memory cleanup configuration
	CleanupInterval time.Duration // Default: 5 minutes
	IdleTimeout     time.Duration // Default: 1 hour
	MaxCallers      int           // Default: 10,000
}

// LoadConfig loads middleware config from environment variables with fallback to defaults.
//
// Default burst capacity: 2 x rate (allows 2-second burst)
// Default cleanup: every 5 minutes, removes callers idle >1 hour
// Default max callers: 10,000 (prevents unbounded memory growth).
func LoadConfig() *Config {
	return &Config{
		// Rate limits
		GlobalRPS:    config.GetEnvInt("JOBMON_GLOBAL_RPS", defaultGlobalRPS),
		CallerRPS:    config.GetEnvInt("JOBMON_CALLER_RPS", defaultCallerRPS),
		AnonymousRPS: config.GetEnvInt("JOBMON_ANON_RPS", defaultAnonymousRPS),

		// Burst overrides (0 = auto-compute)
		GlobalBurst:    config.GetEnvInt("JOBMON_GLOBAL_BURST", 0),
		CallerBurst:    config.GetEnvInt("JOBMON_CALLER_BURST", 0),
		AnonymousBurst: config.GetEnvInt("JOBMON_ANON_BURST", 0),

		// Cleanup configuration
		CleanupInterval: config.GetEnvDuration(
			"JOBMON_RATE_LIMIT_CLEANUP_INTERVAL", rateLimiterCleanupInterval,
		),
		IdleTimeout: config.GetEnvDuration("JOBMON_RATE_LIMIT_IDLE_TIMEOUT", rateLimiterIdleTimeout),
		MaxCallers:  config.GetEnvInt("JOBMON_RATE_LIMIT_MAX_CALLERS", maxCallers),
	}
}
