package registry

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/aalemi-dev/observer-lab/observability"
)

// ObjectStore loads and publishes snapshots in an S3-compatible bucket.
type ObjectStore struct {
	client *minio.Client
	cfg    ObjectStoreConfig

	observer observability.Observer
	logger   Logger
}

// NewObjectStore creates a client for cfg. No request is made.
func NewObjectStore(cfg ObjectStoreConfig) (*ObjectStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("object store endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("object store bucket is required")
	}
	if cfg.Key == "" {
		cfg.Key = "observers.yaml"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}
	return &ObjectStore{client: client, cfg: cfg}, nil
}

// WithObserver sets the operation observer and returns s.
func (s *ObjectStore) WithObserver(o observability.Observer) *ObjectStore {
	s.observer = o
	return s
}

// WithLogger sets the logger and returns s.
func (s *ObjectStore) WithLogger(l Logger) *ObjectStore {
	s.logger = l
	return s
}

// Load downloads and parses the configured object.
func (s *ObjectStore) Load(ctx context.Context) (snap *Snapshot, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		observe(s.observer, "load_snapshot", s.cfg.Bucket, s.cfg.Key, time.Since(start), err, snap)
	}()

	obj, err := s.client.GetObject(ctx, s.cfg.Bucket, s.cfg.Key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.translate(err)
	}
	defer func() { _ = obj.Close() }()

	// GetObject is lazy; Stat surfaces a missing key before decoding.
	info, err := obj.Stat()
	if err != nil {
		return nil, s.translate(err)
	}

	snap, err = Decode(obj, FormatFor(s.cfg.Key))
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.InfoWithContext(ctx, "snapshot loaded", nil, map[string]interface{}{
			"bucket":    s.cfg.Bucket,
			"key":       s.cfg.Key,
			"etag":      info.ETag,
			"observers": len(snap.Definitions),
			"classes":   len(snap.Classes),
		})
	}
	return snap, nil
}

// Publish encodes snap in the key's format and uploads it, creating the
// bucket if needed.
func (s *ObjectStore) Publish(ctx context.Context, snap *Snapshot) (err error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		observe(s.observer, "publish_snapshot", s.cfg.Bucket, s.cfg.Key, time.Since(start), err, snap)
	}()

	format := FormatFor(s.cfg.Key)
	data, err := snap.Marshal(format)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := s.ensureBucket(ctx); err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, s.cfg.Bucket, s.cfg.Key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: format.ContentType()})
	if err != nil {
		return fmt.Errorf("upload snapshot %s/%s: %w", s.cfg.Bucket, s.cfg.Key, err)
	}
	return nil
}

func (s *ObjectStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.cfg.Bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.cfg.Bucket, err)
	}
	return nil
}

func (s *ObjectStore) translate(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%w: %s/%s", ErrSnapshotNotFound, s.cfg.Bucket, s.cfg.Key)
	}
	return fmt.Errorf("fetch snapshot %s/%s: %w", s.cfg.Bucket, s.cfg.Key, err)
}
