package ai

import "sync/atomic"

// debugLoggingEnabled guards per-tick debug logging of the roam loop.
// Set via EnableDebugLogging() from main.go after parsing config.LogLevel.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging enables or disables per-tick debug logging.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled returns true if per-tick debug logging is enabled.
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
