package tracer

// Config controls span export for the resolver service.
type Config struct {
	// ServiceName is attached to every span as service.name.
	ServiceName string `yaml:"service_name" env:"OBSERVER_SERVICE_NAME" envDefault:"observer-resolver"`

	// AppEnv is reported as deployment.environment, e.g. "staging".
	AppEnv string `yaml:"app_env" env:"OBSERVER_APP_ENV" envDefault:"development"`

	// EnableExport turns on the OTLP/HTTP exporter. Spans are still created
	// and propagated when it is off.
	EnableExport bool `yaml:"enable_export" env:"OBSERVER_TRACE_EXPORT"`

	// Endpoint overrides the collector URL, e.g. "http://collector:4318".
	// Empty falls back to the OTEL_EXPORTER_OTLP_* environment variables.
	Endpoint string `yaml:"endpoint" env:"OBSERVER_TRACE_ENDPOINT"`

	// SampleRatio is the fraction of root spans kept, in [0, 1].
	// Zero means sample everything.
	SampleRatio float64 `yaml:"sample_ratio" env:"OBSERVER_TRACE_SAMPLE_RATIO"`
}
