package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/UnknownOlympus/verdeando/internal/metrics"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public verdeando backend.
const DefaultBaseURL = "https://verdeandoback.onrender.com"

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the verdeando REST API. It holds no session state: calls that need
// authentication take the bearer token explicitly.
type Client struct {
	client  HTTPClient       // HTTP client for making requests
	baseURL string           // Base URL of the backend, without trailing slash
	limiter *rate.Limiter    // Client-side rate limiter
	metrics *metrics.Metrics // Request duration and error counters
	log     *slog.Logger     // Logger for logging operations
}

// Config holds the settings used by NewClient.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit int // requests per second, 0 disables limiting
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// NewClient creates a backend client with a default net/http transport.
func NewClient(cfg Config) *Client {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit)
	}

	return NewClientWithHTTP(&http.Client{Timeout: cfg.Timeout}, cfg.BaseURL, limiter, cfg.Metrics, cfg.Logger)
}

// NewClientWithHTTP allows injecting a custom HTTP client.
func NewClientWithHTTP(
	client HTTPClient,
	baseURL string,
	limiter *rate.Limiter,
	m *metrics.Metrics,
	log *slog.Logger,
) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		limiter: limiter,
		metrics: m,
		log:     log,
	}
}

// request describes a single backend call.
type request struct {
	endpoint    string // metrics label, stable across ids
	method      string
	path        string
	token       string
	body        io.Reader
	contentType string
}

func jsonRequest(endpoint, method, path, token string, payload any) (request, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return request{}, fmt.Errorf("failed to encode %s payload: %w", endpoint, err)
	}

	return request{
		endpoint:    endpoint,
		method:      method,
		path:        path,
		token:       token,
		body:        bytes.NewReader(raw),
		contentType: "application/json",
	}, nil
}

// do executes the request and decodes a successful JSON body into out (when non-nil).
func (c *Client) do(ctx context.Context, r request, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	c.log.DebugContext(ctx, "Backend request", "endpoint", r.endpoint, "method", r.method, "request_id", requestID)

	startTime := time.Now()
	resp, err := c.client.Do(req)
	c.metrics.BackendRequestSeconds.WithLabelValues(r.endpoint).Observe(time.Since(startTime).Seconds())
	if err != nil {
		c.metrics.BackendErrors.WithLabelValues("network").Inc()
		return &NetworkError{Endpoint: r.endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.BackendErrors.WithLabelValues("network").Inc()
		return &NetworkError{Endpoint: r.endpoint, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.metrics.BackendErrors.WithLabelValues("rejected").Inc()
		rejection := &RejectionError{
			Endpoint: r.endpoint,
			Status:   resp.StatusCode,
			Message:  rejectionMessage(resp.StatusCode, body),
		}
		c.log.WarnContext(ctx, "Backend rejected request",
			"endpoint", r.endpoint,
			"status", resp.StatusCode,
			"message", rejection.Message,
			"request_id", requestID)
		return rejection
	}

	if out == nil {
		return nil
	}

	if err = json.Unmarshal(body, out); err != nil {
		c.metrics.BackendErrors.WithLabelValues("malformed").Inc()
		c.log.ErrorContext(ctx, "Failed to parse backend response", "endpoint", r.endpoint, "error", err)
		return fmt.Errorf("%w: %s: %w", ErrMalformedPayload, r.endpoint, err)
	}

	return nil
}

// decode runs do and then converts the wire value, counting conversion failures as malformed.
func decode[W any, T any](ctx context.Context, c *Client, r request, convert func(W) (T, error)) (T, error) {
	var (
		wire W
		zero T
	)
	if err := c.do(ctx, r, &wire); err != nil {
		return zero, err
	}

	out, err := convert(wire)
	if err != nil {
		if errors.Is(err, ErrMalformedPayload) {
			c.metrics.BackendErrors.WithLabelValues("malformed").Inc()
		}
		return zero, err
	}

	return out, nil
}

func rejectionMessage(status int, body []byte) string {
	var payload struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Message) > 0 {
		var text string
		if json.Unmarshal(payload.Message, &text) == nil && text != "" {
			return text
		}
		// Validation pipes on the backend answer with a list of messages.
		var list []string
		if json.Unmarshal(payload.Message, &list) == nil && len(list) > 0 {
			return strings.Join(list, "; ")
		}
	}

	return fmt.Sprintf("Error %d: %s", status, http.StatusText(status))
}

// decodeList runs do and converts every element of a JSON array. Elements that fail
// conversion are skipped, logged and counted as malformed; the rest of the list is kept.
func decodeList[W any, T any](
	ctx context.Context,
	c *Client,
	r request,
	convert func(W, string) (T, error),
) ([]T, error) {
	var wire []W
	if err := c.do(ctx, r, &wire); err != nil {
		return nil, err
	}

	out := make([]T, 0, len(wire))
	for idx, item := range wire {
		converted, err := convert(item, r.endpoint)
		if err != nil {
			c.metrics.BackendErrors.WithLabelValues("malformed").Inc()
			c.log.WarnContext(ctx, "Skipping malformed backend entry",
				"endpoint", r.endpoint,
				"index", idx,
				"error", err)
			continue
		}
		out = append(out, converted)
	}

	return out, nil
}
