// Package dataset loads the salary table once per process from a URL or a local file.
package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	gbytes "github.com/labstack/gommon/bytes"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"salaries/internal/engine"
)

// DefaultURL is the published salary dataset.
const DefaultURL = "https://raw.githubusercontent.com/vqrca/dashboard_salarios_dados/refs/heads/main/dados-imersao-final.csv"

// DefaultTimeout bounds a remote fetch.
const DefaultTimeout = 30 * time.Second

// FetchError describes a failure to retrieve the dataset.
type FetchError struct {
	Location string
	Message  string
	Cause    error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.Location, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch %s: %s", e.Location, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Source loads the dataset on first use and serves the cached table afterwards.
// Concurrent first callers share a single load.
type Source struct {
	location string
	client   *http.Client
	logger   zerolog.Logger

	group singleflight.Group

	mu    sync.RWMutex
	store *engine.ColumnStore
}

// Option configures a Source.
type Option func(*Source)

// WithTimeout sets the HTTP client timeout for remote locations.
func WithTimeout(d time.Duration) Option {
	return func(s *Source) {
		s.client.Timeout = d
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Source) {
		s.client = c
	}
}

// WithLogger sets the logger used for load events.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Source) {
		s.logger = l
	}
}

// NewSource creates a Source for an http(s) URL or a file path.
func NewSource(location string, opts ...Option) *Source {
	s := &Source{
		location: location,
		client:   &http.Client{Timeout: DefaultTimeout},
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the configured dataset location.
func (s *Source) Location() string {
	return s.location
}

// Store returns the loaded table, loading it on the first call.
// A failed load is not cached; the next call retries.
func (s *Source) Store(ctx context.Context) (*engine.ColumnStore, error) {
	s.mu.RLock()
	store := s.store
	s.mu.RUnlock()
	if store != nil {
		return store, nil
	}

	v, err, _ := s.group.Do(s.location, func() (interface{}, error) {
		s.mu.RLock()
		cached := s.store
		s.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		loaded, err := s.load(ctx)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.store = loaded
		s.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*engine.ColumnStore), nil
}

func (s *Source) load(ctx context.Context) (*engine.ColumnStore, error) {
	start := time.Now()
	s.logger.Info().Str("location", s.location).Msg("loading dataset")

	body, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	counter := &countingReader{r: body}
	store, err := engine.LoadColumnar(counter)
	if err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", s.location, err)
	}

	s.logger.Info().
		Str("location", s.location).
		Int("rows", store.Len()).
		Str("size", gbytes.Format(counter.n)).
		Dur("elapsed", time.Since(start)).
		Msg("dataset loaded")
	return store, nil
}

func (s *Source) open(ctx context.Context) (io.ReadCloser, error) {
	u, err := url.Parse(s.location)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		f, ferr := os.Open(s.location)
		if ferr != nil {
			return nil, &FetchError{Location: s.location, Message: "failed to open file", Cause: ferr}
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.location, nil)
	if err != nil {
		return nil, &FetchError{Location: s.location, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &FetchError{Location: s.location, Message: "HTTP request failed", Cause: err}
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, &FetchError{Location: s.location, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}
	return resp.Body, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
