// Package metaclient fetches class metadata from a remote HTTP service.
//
// The service answers GET {url}/classes/{name} with a JSON document:
//
//	{
//	  "name": "com.example.Widget",
//	  "supertypes": ["com.example.Base", "java.lang.Runnable", "java.io.Serializable"],
//	  "annotations": ["Transactional"]
//	}
//
// supertypes lists every ancestor, not only the direct ones. A 404 means the
// class is unknown.
package metaclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aalemi-dev/observer-lab/metadata"
	"github.com/aalemi-dev/observer-lab/observability"
)

// maxErrorBody caps how much of an error response is kept in the error.
const maxErrorBody = 512

// Class is the service's answer for one class. Unlike metadata.ClassInfo,
// whose Supertypes are the direct ones, Ancestors lists every ancestor.
type Class struct {
	Name        string   `json:"name"`
	Ancestors   []string `json:"supertypes,omitempty"`
	Annotations []string `json:"annotations,omitempty"`
}

// Client is a metadata.Service over HTTP. It is safe for concurrent use.
type Client struct {
	url        string
	httpClient *http.Client
	cfg        Config
	root       string

	observer observability.Observer
	logger   Logger
	tracer   Tracer
}

var _ metadata.Service = (*Client)(nil)

// NewClient validates cfg and returns a client. No request is made.
func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("metadata service URL is required")
	}
	if _, err := url.ParseRequestURI(cfg.URL); err != nil {
		return nil, fmt.Errorf("invalid metadata service URL: %w", err)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	root := cfg.RootType
	if root == "" {
		root = metadata.DefaultRootType
	}

	return &Client{
		url:        strings.TrimRight(cfg.URL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		root:       root,
	}, nil
}

// WithObserver sets the operation observer and returns c.
func (c *Client) WithObserver(o observability.Observer) *Client {
	c.observer = o
	return c
}

// WithLogger sets the logger and returns c.
func (c *Client) WithLogger(l Logger) *Client {
	c.logger = l
	return c
}

// WithTracer sets the tracer used for header propagation and returns c.
func (c *Client) WithTracer(t Tracer) *Client {
	c.tracer = t
	return c
}

// Fetch returns the raw record of name.
func (c *Client) Fetch(ctx context.Context, name string) (info Class, err error) {
	start := time.Now()
	status := 0
	defer func() {
		c.observeOperation("fetch", name, time.Since(start), err, status)
	}()

	endpoint := c.url + "/classes/" + url.PathEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return info, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.Username != "" {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}
	if c.tracer != nil && c.cfg.PropagateTrace {
		for k, v := range c.tracer.GetCarrier(ctx) {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.httpClient.Do(req) //nolint:gosec
	if err != nil {
		c.logError(ctx, "metadata request failed", err, name)
		return info, fmt.Errorf("failed to fetch class %s: %w", name, err)
	}
	defer func() { _ = resp.Body.Close() }()
	status = resp.StatusCode

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return info, metadata.NotFound(name)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		err := fmt.Errorf("metadata service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		c.logError(ctx, "metadata service error", err, name)
		return info, err
	}

	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return Class{}, fmt.Errorf("failed to decode class %s: %w", name, err)
	}
	if info.Name == "" {
		info.Name = name
	} else if info.Name != name {
		c.logWarn(ctx, "metadata service answered for a different class", name, info.Name)
	}
	return info, nil
}

// Lookup implements metadata.Service.
func (c *Client) Lookup(ctx context.Context, name string) (metadata.ClassMetadata, error) {
	info, err := c.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	return metadata.NewClassMetadata(name, c.root, info.Ancestors, info.Annotations), nil
}

func (c *Client) observeOperation(operation, name string, d time.Duration, err error, status int) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveOperation(observability.OperationContext{
		Component: observability.ComponentClient,
		Operation: operation,
		Resource:  name,
		Duration:  d,
		Error:     err,
		Metadata:  map[string]interface{}{"status_code": status},
	})
}

func (c *Client) logError(ctx context.Context, msg string, err error, name string) {
	if c.logger != nil {
		c.logger.ErrorWithContext(ctx, msg, err, map[string]interface{}{"class": name})
	}
}

func (c *Client) logWarn(ctx context.Context, msg, requested, answered string) {
	if c.logger != nil {
		c.logger.WarnWithContext(ctx, msg, nil, map[string]interface{}{"class": requested, "answered": answered})
	}
}
