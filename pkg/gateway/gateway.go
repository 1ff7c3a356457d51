package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ecoaction/ecoaction/pkg/log"
	"github.com/ecoaction/ecoaction/pkg/metrics"
	"github.com/rs/zerolog"
)

// Resource identifies a backend collection.
type Resource string

const (
	ResourceUsers          Resource = "users"
	ResourceMissions       Resource = "missions"
	ResourceParticipations Resource = "participations"
)

// DefaultTimeout is the fixed per-call timeout applied to every request.
const DefaultTimeout = 10 * time.Second

// Client is a typed request/response wrapper around the REST backend.
// It normalizes transport failures into *NetworkError, non-2xx responses
// into *ServerError (404 into ErrNotFound), and performs no retries;
// retry policy belongs to the caller.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the fixed per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a gateway client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
		logger:  log.WithComponent("gateway"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	return c
}

// List fetches a collection, optionally filtered by equality params
// (and the free-text "q" param for missions). The result is decoded into out.
func (c *Client) List(ctx context.Context, resource Resource, filters url.Values, out any) error {
	endpoint := "/" + string(resource)
	if len(filters) > 0 {
		endpoint += "?" + filters.Encode()
	}
	return c.do(ctx, http.MethodGet, endpoint, nil, out)
}

// Get fetches a single entity by id.
func (c *Client) Get(ctx context.Context, resource Resource, id string, out any) error {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/%s/%s", resource, id), nil, out)
}

// Create posts a new entity and decodes the backend's stored form into out.
func (c *Client) Create(ctx context.Context, resource Resource, body any, out any) error {
	return c.do(ctx, http.MethodPost, "/"+string(resource), body, out)
}

// Patch applies a partial update to an entity and decodes the updated
// entity into out.
func (c *Client) Patch(ctx context.Context, resource Resource, id string, partial any, out any) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/%s/%s", resource, id), partial, out)
}

// do performs one HTTP round trip with the fixed timeout and normalizes
// failures into the gateway error taxonomy.
func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	timer := metrics.NewTimer()
	resp, err := c.http.Do(req)
	timer.ObserveDuration(metrics.RequestDuration.WithLabelValues(method))
	if err != nil {
		metrics.RequestFailuresTotal.WithLabelValues(method).Inc()
		return normalizeTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RequestFailuresTotal.WithLabelValues(method).Inc()
		return c.normalizeStatus(method, endpoint, resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// normalizeStatus converts a non-2xx response into ErrNotFound or
// *ServerError, taking the message from the body when present.
func (c *Client) normalizeStatus(method, endpoint string, resp *http.Response) error {
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, endpoint, ErrNotFound)
	}

	message := http.StatusText(resp.StatusCode)
	var body struct {
		Message string `json:"message"`
	}
	if data, err := io.ReadAll(io.LimitReader(resp.Body, 4096)); err == nil {
		if json.Unmarshal(data, &body) == nil && body.Message != "" {
			message = body.Message
		}
	}

	c.logger.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Msg("request rejected by backend")

	return &ServerError{Status: resp.StatusCode, Message: message}
}

// normalizeTransport converts transport-level failures into *NetworkError,
// distinguishing timeouts from unreachability.
func normalizeTransport(err error) error {
	timeout := errors.Is(err, context.DeadlineExceeded)
	var netErr net.Error
	if !timeout && errors.As(err, &netErr) && netErr.Timeout() {
		timeout = true
	}
	var urlErr *url.Error
	if !timeout && errors.As(err, &urlErr) && urlErr.Timeout() {
		timeout = true
	}
	return &NetworkError{Timeout: timeout, Err: err}
}
