package logger

// Log levels accepted by Config.Level.
const (
	// Debug logs everything, including per-candidate resolution traces.
	Debug = "debug"

	// Info logs lifecycle events and resolver construction summaries.
	Info = "info"

	// Warning logs only degraded conditions and errors.
	Warning = "warning"

	// Error logs only failures.
	Error = "error"
)

// Config controls the zap logger built by NewLoggerClient.
type Config struct {
	// Level is the minimum level written: "debug", "info", "warning" or "error".
	// Unknown values fall back to "info".
	Level string `yaml:"level" env:"OBSERVER_LOG_LEVEL" envDefault:"info"`

	// EnableTracing adds "trace_id" and "span_id" fields to entries written
	// through the *WithContext methods when the context carries a recording span.
	EnableTracing bool `yaml:"enable_tracing" env:"OBSERVER_LOG_TRACING"`

	// ServiceName populates the "service" field of every entry.
	ServiceName string `yaml:"service_name" env:"OBSERVER_SERVICE_NAME" envDefault:"observer-resolver"`

	// CallerSkip is the number of wrapper frames skipped when reporting the
	// caller. 0 means 1, which is right for direct calls on *LoggerClient.
	CallerSkip int `yaml:"caller_skip" env:"OBSERVER_LOG_CALLER_SKIP"`
}
