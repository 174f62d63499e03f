// Package rest is the JSON-over-HTTP transport shared by the inventory,
// catalog and policy clients.
//
// Every call carries basic auth, an X-FromAppId header and a fresh
// X-TransactionId. Calls pass through a rate limiter and a circuit breaker,
// are retried according to a RetryPolicy, and are recorded as Prometheus
// metrics and OpenTelemetry spans.
package rest

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
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	HeaderFromAppID     = "X-FromAppId"
	HeaderTransactionID = "X-TransactionId"

	defaultAppID   = "SO"
	maxErrorBody   = 512
	defaultTimeout = 30 * time.Second
)

type (
	// Config describes one remote service.
	Config struct {
		// Name labels metrics, spans and the circuit breaker.
		Name string

		// BaseURL is prefixed to every path, e.g. "https://aai:8443/aai/v24".
		BaseURL string

		Username string
		Password string

		// AppID is sent as X-FromAppId. Defaults to "SO".
		AppID string

		// Timeout bounds a single attempt. Defaults to 30s.
		Timeout time.Duration

		Retry RetryPolicy

		// RateLimit is the sustained requests per second. Zero disables
		// limiting.
		RateLimit float64
		Burst     int

		// BreakerFailures is the number of consecutive failures that opens
		// the breaker. Zero disables the breaker.
		BreakerFailures uint32

		// BreakerTimeout is how long the breaker stays open.
		BreakerTimeout time.Duration
	}

	// Client performs JSON calls against one service.
	Client struct {
		cfg     Config
		base    string
		http    *http.Client
		limiter *rate.Limiter
		breaker *gobreaker.CircuitBreaker
		metrics *Metrics
		tracer  trace.Tracer
		logger  *slog.Logger
		txID    func() string
	}

	// Option configures a Client.
	Option func(*Client)

	// Request describes one call.
	Request struct {
		Method string
		Path   string
		Query  url.Values
		Body   any
	}
)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithTracer sets the tracer. Defaults to otel.Tracer("bbflow/rest").
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTransactionIDs overrides the X-TransactionId generator.
func WithTransactionIDs(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.txID = fn
		}
	}
}

// New creates a Client for cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if cfg.Name == "" {
		cfg.Name = "rest"
	}
	if cfg.AppID == "" {
		cfg.AppID = defaultAppID
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = 1
	}
	if err := cfg.Retry.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:    cfg,
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		http:   &http.Client{Timeout: cfg.Timeout},
		tracer: otel.Tracer("bbflow/rest"),
		logger: slog.Default(),
		txID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}

	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	if cfg.BreakerFailures > 0 {
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    cfg.Name,
			Timeout: cfg.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.BreakerFailures
			},
			IsSuccessful: func(err error) bool {
				return err == nil || !isServerFailure(err)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				c.logger.Warn("Circuit breaker state changed",
					slog.String("client", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()))
				c.metrics.breakerState(name, breakerGauge(to))
			},
		})
		c.metrics.breakerState(cfg.Name, 0)
	}
	return c, nil
}

// Name returns the configured client name.
func (c *Client) Name() string {
	return c.cfg.Name
}

// Do performs req, retrying per the client's policy, and decodes a 2xx JSON
// body into out when out is non-nil. Non-2xx responses are returned as
// *StatusError.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	var body []byte
	if req.Body != nil {
		var err error
		body, err = json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt < c.cfg.Retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			c.metrics.retry(c.cfg.Name)
			delay := computeBackoff(attempt-1, c.cfg.Retry.BaseDelay, c.cfg.Retry.MaxDelay)
			if err := sleep(ctx, delay); err != nil {
				return err
			}
		}

		data, err := c.attempt(ctx, req, body)
		if err == nil {
			if out == nil || len(bytes.TrimSpace(data)) == 0 {
				return nil
			}
			if err := json.Unmarshal(data, out); err != nil {
				return fmt.Errorf("failed to decode %s response: %w", c.cfg.Name, err)
			}
			return nil
		}

		lastErr = err
		if !c.cfg.Retry.retryable(err) {
			return err
		}
	}
	return lastErr
}

// Get is Do with GET.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post is Do with POST and a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

func (c *Client) attempt(ctx context.Context, req Request, body []byte) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if c.breaker == nil {
		return c.send(ctx, req, body)
	}

	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.send(ctx, req, body)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%s: %w", c.cfg.Name, ErrCircuitOpen)
	}
	data, _ := res.([]byte)
	return data, err
}

func (c *Client) send(ctx context.Context, req Request, body []byte) ([]byte, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target := c.base + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	ctx, span := c.tracer.Start(ctx, c.cfg.Name+" "+method, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", req.Path),
		attribute.String("bbflow.client", c.cfg.Name),
	)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	txID := c.txID()
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set(HeaderFromAppID, c.cfg.AppID)
	httpReq.Header.Set(HeaderTransactionID, txID)
	if c.cfg.Username != "" {
		httpReq.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}
	span.SetAttributes(attribute.String("bbflow.transaction_id", txID))

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	dur := time.Since(start)
	if err != nil {
		c.metrics.observe(c.cfg.Name, method, 0, dur)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error("REST request failed",
			slog.String("client", c.cfg.Name),
			slog.String("method", method),
			slog.String("path", req.Path),
			slog.Duration("duration", dur),
			slog.Any("error", err))
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	c.metrics.observe(c.cfg.Name, method, resp.StatusCode, dur)
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{
			Method:     method,
			Path:       req.Path,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(data), maxErrorBody),
		}
		if resp.StatusCode != http.StatusNotFound {
			span.SetStatus(codes.Error, statusErr.Error())
			c.logger.Error("REST error response",
				slog.String("client", c.cfg.Name),
				slog.String("method", method),
				slog.String("path", req.Path),
				slog.Int("status_code", resp.StatusCode),
				slog.String("transaction_id", txID))
		}
		return nil, statusErr
	}
	return data, nil
}

// isServerFailure reports whether err should count against the breaker:
// transport errors and 5xx responses.
func isServerFailure(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500
	}
	return true
}

func breakerGauge(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
