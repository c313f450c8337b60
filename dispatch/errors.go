package dispatch

import "errors"

var (
	// ErrNoBrokers is returned when no Kafka broker address is configured.
	ErrNoBrokers = errors.New("no kafka brokers configured")

	// ErrUnsupportedMechanism is returned for an unknown SASL mechanism.
	ErrUnsupportedMechanism = errors.New("unsupported SASL mechanism")

	// ErrUnsupportedCompression is returned for an unknown compression codec.
	ErrUnsupportedCompression = errors.New("unsupported compression codec")

	// ErrResolveFailed wraps a lookup failure that may succeed on retry. The
	// input message is left uncommitted and nothing is published.
	ErrResolveFailed = errors.New("resolve candidate failed")

	// ErrPublishFailed wraps a failed write of a resolution record. The input
	// message is left uncommitted.
	ErrPublishFailed = errors.New("publish resolution failed")

	// ErrCommitFailed wraps a failed offset commit.
	ErrCommitFailed = errors.New("commit offset failed")
)
