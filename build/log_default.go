//go:build !stdlog && !nolog

package build

// LoggingType is a log type that routes subsystems through the application's
// backend.
const LoggingType = LogTypeDefault
