package logger

import (
	"context"
)

// Logger is the structured logging surface shared by every package in this
// module. Components that log declare a narrower local interface with just
// the *WithContext methods they use, which *LoggerClient satisfies.
type Logger interface {
	Debug(msg string, err error, fields ...map[string]interface{})
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})

	// Fatal logs and terminates the process.
	Fatal(msg string, err error, fields ...map[string]interface{})

	// Context-aware variants attach trace/span IDs when tracing is enabled.

	DebugWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	FatalWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}
