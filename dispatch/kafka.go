package dispatch

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"
)

// NewKafkaReader returns a consumer-group reader on cfg.InputTopic.
// Offsets are committed explicitly by the pipeline.
func NewKafkaReader(cfg Config, logger Logger) (*kafka.Reader, error) {
	cfg = cfg.withDefaults()
	if len(cfg.Brokers) == 0 {
		return nil, ErrNoBrokers
	}
	dialer, err := newDialer(cfg)
	if err != nil {
		return nil, err
	}
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.InputTopic,
		GroupID:        cfg.GroupID,
		MinBytes:       cfg.MinBytes,
		MaxBytes:       cfg.MaxBytes,
		MaxWait:        cfg.MaxWait,
		StartOffset:    cfg.StartOffset,
		CommitInterval: 0,
		Dialer:         dialer,
		ErrorLogger:    errorLogger(logger, cfg.InputTopic),
	}), nil
}

// NewKafkaWriter returns a synchronous writer on cfg.OutputTopic.
func NewKafkaWriter(cfg Config, logger Logger) (*kafka.Writer, error) {
	cfg = cfg.withDefaults()
	if len(cfg.Brokers) == 0 {
		return nil, ErrNoBrokers
	}
	dialer, err := newDialer(cfg)
	if err != nil {
		return nil, err
	}

	wc := kafka.WriterConfig{
		Brokers:      cfg.Brokers,
		Topic:        cfg.OutputTopic,
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.MaxAttempts,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: cfg.RequiredAcks,
		Dialer:       dialer,
		ErrorLogger:  errorLogger(logger, cfg.OutputTopic),
	}
	switch cfg.CompressionCodec {
	case "":
	case "gzip":
		wc.CompressionCodec = &compress.GzipCodec
	case "snappy":
		wc.CompressionCodec = &compress.SnappyCodec
	case "lz4":
		wc.CompressionCodec = &compress.Lz4Codec
	case "zstd":
		wc.CompressionCodec = &compress.ZstdCodec
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCompression, cfg.CompressionCodec)
	}
	return kafka.NewWriter(wc), nil
}

func newDialer(cfg Config) (*kafka.Dialer, error) {
	dialer := &kafka.Dialer{
		Timeout:   cfg.WriteTimeout,
		DualStack: true,
	}
	if cfg.TLS.Enabled {
		tlsConfig, err := newTLSConfig(cfg.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
		dialer.TLS = tlsConfig
	}
	if cfg.SASL.Enabled {
		mechanism, err := newSASLMechanism(cfg.SASL)
		if err != nil {
			return nil, err
		}
		dialer.SASLMechanism = mechanism
	}
	return dialer, nil
}

func newTLSConfig(cfg TLSConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
	}
	if cfg.CACertPath != "" {
		pem, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("read CA cert: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("parse CA cert %s", cfg.CACertPath)
		}
		tlsConfig.RootCAs = pool
	}
	if cfg.ClientCertPath != "" && cfg.ClientKeyPath != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCertPath, cfg.ClientKeyPath)
		if err != nil {
			return nil, fmt.Errorf("load client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}
	return tlsConfig, nil
}

func newSASLMechanism(cfg SASLConfig) (sasl.Mechanism, error) {
	switch cfg.Mechanism {
	case "PLAIN":
		return plain.Mechanism{Username: cfg.Username, Password: cfg.Password}, nil
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, cfg.Username, cfg.Password)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, cfg.Username, cfg.Password)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedMechanism, cfg.Mechanism)
}

// errorLogger routes kafka-go internal errors to logger. Without a logger
// they are dropped.
func errorLogger(logger Logger, topic string) kafka.LoggerFunc {
	return func(msg string, args ...interface{}) {
		if logger == nil {
			return
		}
		if len(args) > 0 {
			msg = fmt.Sprintf(msg, args...)
		}
		logger.ErrorWithContext(context.Background(), "kafka internal error", nil, map[string]interface{}{
			"topic": topic,
			"error": msg,
		})
	}
}
