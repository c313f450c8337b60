package metaclient

import (
	"context"
	"time"
)

// Config holds the metadata endpoint settings.
type Config struct {
	// URL is the service base URL, e.g. "http://metadata:8080".
	URL string `yaml:"url" env:"URL"`

	// Username for basic auth (optional).
	Username string `yaml:"username" env:"USERNAME"`

	// Password for basic auth (optional).
	Password string `yaml:"password" env:"PASSWORD" json:"-"` //nolint:gosec

	// Timeout bounds each HTTP request.
	//
	// Default: 10s
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`

	// RootType is treated as an ancestor of every class.
	//
	// Default: "java.lang.Object"
	RootType string `yaml:"root_type" env:"ROOT_TYPE"`

	// PropagateTrace adds W3C trace headers to requests when a Tracer is set.
	PropagateTrace bool `yaml:"propagate_trace" env:"PROPAGATE_TRACE" envDefault:"true"`
}

// Logger is the subset of logger.Logger used by the client.
type Logger interface {
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// Tracer is the subset of tracer.Tracer used to propagate trace context.
type Tracer interface {
	GetCarrier(ctx context.Context) map[string]string
}
