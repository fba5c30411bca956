//go:build stdlog && !nolog

package build

// LoggingType is a log type that writes every subsystem to stdout.
const LoggingType = LogTypeStdOut
