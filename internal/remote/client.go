// Package remote is the client side of the roadmap snapshot contract:
//
//	GET    /roadmap/modules
//	POST   /roadmap/modules-bulk
//	POST   /roadmap/modules/{id}
//	DELETE /roadmap/modules/reset
//
// Every call carries a bearer token and a request id, and is bounded by the
// configured timeout. Writes are retried a bounded number of times when the
// store is unavailable; reads are not.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"roadmap/internal/api"
	"roadmap/internal/catalog"
	"roadmap/internal/config"
	"roadmap/internal/logging"
)

const (
	defaultTimeout  = 5 * time.Second
	defaultBackoff  = 200 * time.Millisecond
	maxResponseBody = 8 << 20
	requestIDHeader = "X-Request-ID"
)

// ErrUnavailable marks failures that may succeed on retry: transport errors,
// timeouts, and 5xx responses.
var ErrUnavailable = errors.New("remote store unavailable")

// StatusError is a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("remote store returned %d", e.Code)
	}
	return fmt.Sprintf("remote store returned %d: %s", e.Code, e.Body)
}

// Unwrap classifies server-side failures as ErrUnavailable.
func (e *StatusError) Unwrap() error {
	if e.Code >= http.StatusInternalServerError || e.Code == http.StatusTooManyRequests {
		return ErrUnavailable
	}
	return nil
}

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option customises Client construction.
type Option func(*Client)

// WithTimeout bounds each request attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithLogger sets the logger used for retry warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "remote")
	}
}

// WithWriteAttempts sets how many times a write is tried in total.
func WithWriteAttempts(attempts int) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
	}
}

// WithBackoff sets the base delay between write attempts.
func WithBackoff(delay time.Duration) Option {
	return func(c *Client) {
		if delay >= 0 {
			c.backoff = delay
		}
	}
}

// Client talks to a roadmap snapshot store.
type Client struct {
	baseURL  string
	token    string
	http     HTTPDoer
	timeout  time.Duration
	attempts int
	backoff  time.Duration
	logger   *slog.Logger
}

// New constructs a client for baseURL.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:    strings.TrimSpace(token),
		http:     &http.Client{},
		timeout:  defaultTimeout,
		attempts: 1,
		backoff:  defaultBackoff,
		logger:   logging.NewComponentLogger(nil, "remote"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig builds a client from the [remote] section.
func NewFromConfig(cfg *config.Config, logger *slog.Logger, opts ...Option) *Client {
	base := []Option{
		WithTimeout(cfg.RemoteTimeout()),
		WithWriteAttempts(cfg.Remote.WriteAttempts),
		WithLogger(logger),
	}
	return New(cfg.Remote.BaseURL, cfg.Remote.Token, append(base, opts...)...)
}

// BaseURL returns the configured store URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Fetch reads the snapshot. Records that cannot be decoded at all are
// skipped; fields that cannot be decoded are left absent.
func (c *Client) Fetch(ctx context.Context) ([]catalog.Patch, error) {
	var envelope api.RawEnvelope
	if err := c.do(ctx, http.MethodGet, "/roadmap/modules", nil, &envelope); err != nil {
		return nil, err
	}
	patches, skipped := api.ToPatches(envelope.Modules)
	if skipped > 0 {
		logging.WarnWithContext(c.logger, "skipped malformed snapshot records", "remote_malformed_records",
			logging.Int("skipped", skipped),
			logging.String(logging.FieldErrorHint, "run roadmap sync to rewrite the snapshot"),
			logging.String(logging.FieldImpact, "catalog values used for skipped modules"),
		)
	}
	return patches, nil
}

// ReplaceAll overwrites the snapshot with modules.
func (c *Client) ReplaceAll(ctx context.Context, modules []catalog.Module) error {
	body := api.ModulesEnvelope{Modules: api.FromModules(modules)}
	return c.write(ctx, http.MethodPost, "/roadmap/modules-bulk", body, nil)
}

// Upsert writes one module record.
func (c *Client) Upsert(ctx context.Context, module catalog.Module) error {
	path := "/roadmap/modules/" + url.PathEscape(module.ID)
	return c.write(ctx, http.MethodPost, path, api.FromModule(module), nil)
}

// Reset clears the snapshot and returns how many records were removed.
func (c *Client) Reset(ctx context.Context) (int64, error) {
	var resp api.ResetResponse
	if err := c.write(ctx, http.MethodDelete, "/roadmap/modules/reset", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Removed, nil
}

// Files lists the attachments of one module.
func (c *Client) Files(ctx context.Context, id string) (api.Attachments, error) {
	var resp api.Attachments
	err := c.do(ctx, http.MethodGet, "/roadmap/files/"+url.PathEscape(id), nil, &resp)
	return resp, err
}

// Health queries the store health endpoint.
func (c *Client) Health(ctx context.Context) (api.HealthResponse, error) {
	var resp api.HealthResponse
	err := c.do(ctx, http.MethodGet, "/healthz", nil, &resp)
	return resp, err
}

func (c *Client) write(ctx context.Context, method, path string, body, out any) error {
	var err error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		err = c.do(ctx, method, path, body, out)
		if err == nil || !errors.Is(err, ErrUnavailable) || attempt == c.attempts {
			return err
		}
		logging.WarnWithContext(c.logger, "remote write failed; retrying", "remote_write_retry",
			logging.String("path", path),
			logging.Int("attempt", attempt),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that roadmapd is running"),
			logging.String(logging.FieldImpact, "write delayed"),
		)
		timer := time.NewTimer(c.backoff * time.Duration(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
		case <-timer.C:
		}
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.baseURL == "" {
		return fmt.Errorf("%w: no base url configured", ErrUnavailable)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	requestID, ok := logging.RequestIDFromContext(ctx)
	if !ok {
		requestID = uuid.NewString()
	}
	req.Header.Set(requestIDHeader, requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("%w: read %s %s: %w", ErrUnavailable, method, path, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &StatusError{Code: resp.StatusCode, Body: errorMessage(data)}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func errorMessage(data []byte) string {
	var payload api.ErrorResponse
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	msg := strings.TrimSpace(string(data))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
