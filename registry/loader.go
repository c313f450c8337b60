package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/aalemi-dev/observer-lab/observability"
)

// Loader fetches an observer snapshot.
type Loader interface {
	Load(ctx context.Context) (*Snapshot, error)
}

// FileLoader loads a snapshot from the local filesystem.
type FileLoader struct {
	Path string

	observer observability.Observer
}

// NewFileLoader returns a loader for path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{Path: path}
}

// WithObserver sets the operation observer and returns l.
func (l *FileLoader) WithObserver(o observability.Observer) *FileLoader {
	l.observer = o
	return l
}

// Load reads and parses the file. ctx is only checked before reading.
func (l *FileLoader) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	s, err := LoadFile(l.Path)
	observe(l.observer, "load_snapshot", "file", l.Path, time.Since(start), err, s)
	return s, err
}

// NewLoader returns the loader selected by cfg.
func NewLoader(cfg Config) (Loader, error) {
	if cfg.ObjectStore.Bucket != "" {
		store, err := NewObjectStore(cfg.ObjectStore)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("snapshot source is not configured: set a path or an object store bucket")
	}
	return NewFileLoader(cfg.Path), nil
}

func observe(o observability.Observer, operation, resource, subResource string, d time.Duration, err error, s *Snapshot) {
	if o == nil {
		return
	}
	var size int64
	if s != nil {
		size = int64(len(s.Definitions))
	}
	o.ObserveOperation(observability.OperationContext{
		Component:   observability.ComponentRegistry,
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Duration:    d,
		Error:       err,
		Size:        size,
	})
}
