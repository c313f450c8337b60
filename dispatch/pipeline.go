// Package dispatch streams candidate class names from Kafka through a
// resolver and publishes who must be notified.
//
// Each input message value is one candidate name. For every message the
// pipeline writes one JSON Resolution to the output topic, keyed by the
// candidate, and only then commits the input offset. A candidate whose
// metadata cannot be found still yields a record, with Error set. Any other
// lookup failure leaves the offset uncommitted so the message is redelivered.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/aalemi-dev/observer-lab/metadata"
	"github.com/aalemi-dev/observer-lab/observability"
	"github.com/aalemi-dev/observer-lab/registry"
	"github.com/aalemi-dev/observer-lab/resolver"
	"github.com/aalemi-dev/observer-lab/tracer"
)

// Resolution is the record published for each candidate.
type Resolution struct {
	ID         uuid.UUID `json:"id"`
	Candidate  string    `json:"candidate"`
	Observers  []string  `json:"observers"`
	ResolvedAt time.Time `json:"resolved_at"`
	Error      string    `json:"error,omitempty"`
}

// Resolver is what the pipeline needs from *resolver.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, name string) (resolver.Set, error)
}

// Reader is the consuming side; *kafka.Reader implements it.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Writer is the producing side; *kafka.Writer implements it.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Pipeline connects a Reader, a Resolver and a Writer.
type Pipeline struct {
	resolver Resolver
	reader   Reader
	writer   Writer

	fetchBackoff time.Duration
	now          func() time.Time

	logger   Logger
	observer observability.Observer
	tracer   tracer.Tracer
}

// NewPipeline returns a pipeline. cfg only contributes FetchBackoff here;
// broker settings are consumed by NewKafkaReader and NewKafkaWriter.
func NewPipeline(cfg Config, r Resolver, reader Reader, writer Writer) (*Pipeline, error) {
	if r == nil || reader == nil || writer == nil {
		return nil, fmt.Errorf("dispatch: resolver, reader and writer are required")
	}
	cfg = cfg.withDefaults()
	return &Pipeline{
		resolver:     r,
		reader:       reader,
		writer:       writer,
		fetchBackoff: cfg.FetchBackoff,
		now:          time.Now,
	}, nil
}

// WithLogger attaches a logger to the pipeline.
func (p *Pipeline) WithLogger(l Logger) *Pipeline {
	p.logger = l
	return p
}

// WithObserver attaches an operation observer to the pipeline.
func (p *Pipeline) WithObserver(o observability.Observer) *Pipeline {
	p.observer = o
	return p
}

// WithTracer continues traces carried in message headers and forwards them
// on the published records.
func (p *Pipeline) WithTracer(t tracer.Tracer) *Pipeline {
	p.tracer = t
	return p
}

// Run consumes until ctx is cancelled or the reader is closed, in which
// case it returns nil. It returns an error wrapping ErrResolveFailed,
// ErrPublishFailed or ErrCommitFailed when a lookup fails for a reason other
// than an unknown class, or the output cannot be written, or the offset
// cannot be committed. The message is then redelivered to the group.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logInfo(ctx, "dispatch pipeline started", nil)
	defer p.logInfo(context.Background(), "dispatch pipeline stopped", nil)

	for {
		msg, err := p.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return nil
			}
			p.logWarn(ctx, "failed to fetch candidate", err, nil)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(p.fetchBackoff):
			}
			continue
		}

		if err := p.Handle(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// Handle resolves the candidate in msg, publishes the resolution and
// commits msg.
func (p *Pipeline) Handle(ctx context.Context, msg kafka.Message) (err error) {
	start := time.Now()
	candidate := strings.TrimSpace(string(msg.Value))

	var size int64
	defer func() {
		p.observeOperation(msg.Topic, candidate, time.Since(start), err, size)
	}()

	if p.tracer != nil {
		ctx = p.tracer.SetCarrierOnContext(ctx, carrierFromHeaders(msg.Headers))
		var span tracer.Span
		ctx, span = p.tracer.StartSpan(ctx, "dispatch.message")
		defer span.End()
		span.SetAttributes(map[string]interface{}{
			"candidate": candidate,
			"topic":     msg.Topic,
			"partition": msg.Partition,
			"offset":    msg.Offset,
		})
		defer func() {
			if err != nil {
				span.RecordError(err)
			}
		}()
	}

	res, err := p.resolve(ctx, candidate)
	if err != nil {
		p.logError(ctx, "candidate resolution failed", err, map[string]interface{}{"candidate": candidate})
		return fmt.Errorf("%w: %q: %w", ErrResolveFailed, candidate, err)
	}

	value, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("%w: encode %q: %w", ErrPublishFailed, candidate, err)
	}
	size = int64(len(value))

	out := kafka.Message{
		Key:     []byte(candidate),
		Value:   value,
		Headers: []kafka.Header{{Key: "content-type", Value: []byte("application/json")}},
	}
	if p.tracer != nil {
		out.Headers = append(out.Headers, headersFromCarrier(p.tracer.GetCarrier(ctx))...)
	}

	if err := p.writer.WriteMessages(ctx, out); err != nil {
		p.logError(ctx, "failed to publish resolution", err, map[string]interface{}{"candidate": candidate})
		return fmt.Errorf("%w: %q: %w", ErrPublishFailed, candidate, err)
	}
	if err := p.reader.CommitMessages(ctx, msg); err != nil {
		p.logError(ctx, "failed to commit candidate offset", err, map[string]interface{}{
			"partition": msg.Partition,
			"offset":    msg.Offset,
		})
		return fmt.Errorf("%w: partition %d offset %d: %w", ErrCommitFailed, msg.Partition, msg.Offset, err)
	}
	return nil
}

// resolve builds the record for candidate. Unknown classes and empty names
// become records carrying Error; any other failure is returned so the
// message is not committed.
func (p *Pipeline) resolve(ctx context.Context, candidate string) (Resolution, error) {
	res := Resolution{
		ID:        uuid.New(),
		Candidate: candidate,
		Observers: []string{},
	}
	set, err := p.resolver.Resolve(ctx, candidate)
	res.ResolvedAt = p.now().UTC()
	if err != nil {
		if !isFinal(err) {
			return Resolution{}, err
		}
		res.Error = err.Error()
		p.logWarn(ctx, "candidate not resolved", err, map[string]interface{}{"candidate": candidate})
		return res, nil
	}
	res.Observers = registry.IDs(set.Slice())
	return res, nil
}

// isFinal reports whether retrying the lookup cannot change the outcome.
func isFinal(err error) bool {
	return metadata.IsNotFound(err) || errors.Is(err, resolver.ErrEmptyName)
}

func carrierFromHeaders(headers []kafka.Header) map[string]string {
	carrier := make(map[string]string, len(headers))
	for _, h := range headers {
		carrier[h.Key] = string(h.Value)
	}
	return carrier
}

func headersFromCarrier(carrier map[string]string) []kafka.Header {
	headers := make([]kafka.Header, 0, len(carrier))
	for k, v := range carrier {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return headers
}

func (p *Pipeline) observeOperation(topic, candidate string, duration time.Duration, err error, size int64) {
	if p.observer == nil {
		return
	}
	p.observer.ObserveOperation(observability.OperationContext{
		Component:   observability.ComponentDispatch,
		Operation:   "dispatch",
		Resource:    topic,
		SubResource: candidate,
		Duration:    duration,
		Error:       err,
		Size:        size,
	})
}

func (p *Pipeline) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if p.logger != nil {
		p.logger.InfoWithContext(ctx, msg, nil, fields)
	}
}

func (p *Pipeline) logWarn(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if p.logger != nil {
		p.logger.WarnWithContext(ctx, msg, err, fields)
	}
}

func (p *Pipeline) logError(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if p.logger != nil {
		p.logger.ErrorWithContext(ctx, msg, err, fields)
	}
}
