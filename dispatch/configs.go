package dispatch

import (
	"context"
	"time"
)

// Config holds the Kafka settings of the dispatch pipeline.
type Config struct {
	// Brokers is the list of Kafka bootstrap addresses.
	Brokers []string `env:"BROKERS" envSeparator:","`

	// InputTopic carries candidate class names, one per message value.
	InputTopic string `env:"INPUT_TOPIC" envDefault:"observer.candidates"`

	// OutputTopic receives one Resolution record per candidate.
	OutputTopic string `env:"OUTPUT_TOPIC" envDefault:"observer.resolutions"`

	// GroupID is the consumer group of the input reader.
	GroupID string `env:"GROUP_ID" envDefault:"observer-resolver"`

	// Default: 1 byte
	MinBytes int `env:"MIN_BYTES"`

	// Default: 10MB
	MaxBytes int `env:"MAX_BYTES"`

	// MaxWait bounds how long a fetch waits for MinBytes.
	// Default: 10s
	MaxWait time.Duration `env:"MAX_WAIT"`

	// StartOffset applies when the group has no committed offset.
	// Default: FirstOffset
	StartOffset int64 `env:"START_OFFSET"`

	// RequiredAcks for the output writer.
	// Default: RequireAll (-1)
	RequiredAcks int `env:"REQUIRED_ACKS"`

	// Default: 10s
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT"`

	// Default: 10
	MaxAttempts int `env:"MAX_ATTEMPTS"`

	// CompressionCodec is one of gzip, snappy, lz4, zstd or empty for none.
	CompressionCodec string `env:"COMPRESSION"`

	// FetchBackoff is the pause after a failed fetch before trying again.
	// Default: 1s
	FetchBackoff time.Duration `env:"FETCH_BACKOFF"`

	TLS TLSConfig `envPrefix:"TLS_"`

	SASL SASLConfig `envPrefix:"SASL_"`
}

// TLSConfig enables TLS towards the brokers.
type TLSConfig struct {
	Enabled            bool   `env:"ENABLED"`
	CACertPath         string `env:"CA_CERT"`
	ClientCertPath     string `env:"CLIENT_CERT"`
	ClientKeyPath      string `env:"CLIENT_KEY"`
	InsecureSkipVerify bool   `env:"INSECURE_SKIP_VERIFY"`
}

// SASLConfig enables SASL authentication.
type SASLConfig struct {
	Enabled bool `env:"ENABLED"`

	// Mechanism is PLAIN, SCRAM-SHA-256 or SCRAM-SHA-512.
	Mechanism string `env:"MECHANISM" envDefault:"PLAIN"`
	Username  string `env:"USERNAME"`
	Password  string `env:"PASSWORD"`
}

// Logger is the subset of logger.Logger the pipeline writes to.
type Logger interface {
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// Default values for configuration
const (
	DefaultMinBytes     = 1
	DefaultMaxBytes     = 10e6 // 10MB
	DefaultMaxWait      = 10 * time.Second
	DefaultStartOffset  = -2 // FirstOffset
	DefaultRequiredAcks = -1 // WaitForAll
	DefaultWriteTimeout = 10 * time.Second
	DefaultMaxAttempts  = 10
	DefaultFetchBackoff = time.Second
)

func (c Config) withDefaults() Config {
	if c.MinBytes == 0 {
		c.MinBytes = DefaultMinBytes
	}
	if c.MaxBytes == 0 {
		c.MaxBytes = DefaultMaxBytes
	}
	if c.MaxWait == 0 {
		c.MaxWait = DefaultMaxWait
	}
	if c.StartOffset == 0 {
		c.StartOffset = DefaultStartOffset
	}
	if c.RequiredAcks == 0 {
		c.RequiredAcks = DefaultRequiredAcks
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.FetchBackoff == 0 {
		c.FetchBackoff = DefaultFetchBackoff
	}
	return c
}
