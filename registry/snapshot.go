package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aalemi-dev/observer-lab/metadata"
	"github.com/aalemi-dev/observer-lab/resolver"
)

// Format is a snapshot encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor picks the encoding from a file name or object key. Anything that
// does not end in .json is treated as YAML.
func FormatFor(name string) Format {
	if strings.EqualFold(filepath.Ext(name), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// ContentType returns the MIME type used when storing f.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "application/yaml"
}

// Snapshot is an observer registry together with optional class metadata.
//
//	observers:
//	  - id: audit
//	    event_type: java.lang.Object
//	  - id: runnables
//	    event_type: javax.enterprise.inject.spi.ProcessAnnotatedType<? extends java.lang.Runnable>
//	    required_annotations: [Transactional]
//	classes:
//	  - name: com.example.Widget
//	    supertypes: [java.lang.Runnable]
type Snapshot struct {
	Definitions Definitions          `json:"observers" yaml:"observers"`
	Classes     []metadata.ClassInfo `json:"classes,omitempty" yaml:"classes,omitempty"`

	observers []resolver.Observer
}

// Observers returns the parsed registry in declaration order. It implements
// resolver.Source.
func (s *Snapshot) Observers() []resolver.Observer {
	return s.observers
}

// Index builds an in-memory metadata service from s.Classes.
func (s *Snapshot) Index(opts ...metadata.IndexOption) (*metadata.Index, error) {
	return metadata.NewIndex(s.Classes, opts...)
}

func (s *Snapshot) prepare() error {
	observers, err := s.Definitions.Observers()
	if err != nil {
		return err
	}
	s.observers = observers
	return nil
}

// Decode reads a snapshot in format f and parses its definitions.
func Decode(r io.Reader, f Format) (*Snapshot, error) {
	s := &Snapshot{}

	var err error
	switch f {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		err = dec.Decode(s)
	default:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		err = dec.Decode(s)
		if err == io.EOF {
			err = nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s snapshot: %w", f, err)
	}

	if err := s.prepare(); err != nil {
		return nil, err
	}
	return s, nil
}

// Encode writes s in format f.
func (s *Snapshot) Encode(w io.Writer, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	}
}

// Marshal returns s encoded in format f.
func (s *Snapshot) Marshal(f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Encode(&buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoadFile reads the snapshot at path, choosing the format by extension.
func LoadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, path)
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return Decode(f, FormatFor(path))
}
