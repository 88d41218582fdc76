package xsdc

// Logger is the logging contract used across the generator. Implementations
// live in internal/logging; NullLogger is available for tests.
type Logger interface {
	// Verbose logs detailed diagnostic information. No-op unless verbose
	// output was requested.
	Verbose(format string, args ...interface{})

	// Info logs informational messages about normal operations.
	Info(format string, args ...interface{})

	// Error logs error messages.
	Error(format string, args ...interface{})
}
