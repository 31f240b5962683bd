// Package advisory holds the HTTP client for the analysis backend. Requests
// are slow (minutes) and the upstream is flaky, so the client retries with a
// fixed backoff and a generous per-attempt deadline.
package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultEndpoint is the production analysis webhook.
	DefaultEndpoint = "https://n8n.estdev.cloud/webhook/8d5563f9-d123-4b03-8de5-923dce86e6d8"

	// DefaultMaxAttempts bounds retries for one Analyze call.
	DefaultMaxAttempts = 3

	// DefaultAttemptTimeout is the deadline for a single attempt. Analysis
	// legitimately runs for minutes, so this is deliberately long.
	DefaultAttemptTimeout = 10 * time.Minute

	// DefaultRetryBackoff is the fixed pause between attempts.
	DefaultRetryBackoff = 3 * time.Second
)

// Result is the backend's answer to an analysis request. Status is
// normalized to 200 on any successful HTTP exchange, so callers branch on
// Error alone.
type Result struct {
	Error  bool   `json:"error"`
	Status int    `json:"status"`
	URL    string `json:"url,omitempty"`
	Name   string `json:"name,omitempty"`
}

// RequestError reports that every attempt failed. Err holds the last
// attempt's failure.
type RequestError struct {
	Attempts int
	Err      error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("analysis request failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// statusError is a non-2xx response from the backend.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("backend returned status %d", e.code)
}

// Options configures a Client. Zero values pick the defaults.
type Options struct {
	Endpoint       string
	HTTPClient     *http.Client
	MaxAttempts    int
	AttemptTimeout time.Duration
	RetryBackoff   time.Duration
	Logger         *zap.Logger

	// Sleep is the inter-attempt pause, injectable for tests. It must
	// honor ctx cancellation.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Client submits analysis requests with retry.
type Client struct {
	endpoint       string
	httpClient     *http.Client
	maxAttempts    int
	attemptTimeout time.Duration
	backoff        time.Duration
	sleep          func(ctx context.Context, d time.Duration) error
	logger         *zap.Logger
}

// NewClient builds a Client, filling unset options with defaults.
func NewClient(opts Options) *Client {
	c := &Client{
		endpoint:       opts.Endpoint,
		httpClient:     opts.HTTPClient,
		maxAttempts:    opts.MaxAttempts,
		attemptTimeout: opts.AttemptTimeout,
		backoff:        opts.RetryBackoff,
		sleep:          opts.Sleep,
		logger:         opts.Logger,
	}
	if c.endpoint == "" {
		c.endpoint = DefaultEndpoint
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = DefaultMaxAttempts
	}
	if c.attemptTimeout <= 0 {
		c.attemptTimeout = DefaultAttemptTimeout
	}
	if c.backoff <= 0 {
		c.backoff = DefaultRetryBackoff
	}
	if c.sleep == nil {
		c.sleep = sleepContext
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

type analysisRequest struct {
	Message string `json:"message"`
}

// Analyze submits the message with its identifiers and waits for the
// backend's verdict. Any 2xx response is terminal, even when the payload
// flags an error; non-2xx and transport failures are retried until the
// attempt budget runs out.
func (c *Client) Analyze(ctx context.Context, message, companyID, userID string) (*Result, error) {
	payload, err := json.Marshal(analysisRequest{
		Message: fmt.Sprintf("Company ID: %s, User ID: %s, Message: %s", companyID, userID, message),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding analysis request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		res, err := c.attempt(ctx, payload)
		if err == nil {
			c.logger.Info("analysis complete",
				zap.Int("attempt", attempt),
				zap.Bool("payload_error", res.Error))
			return res, nil
		}
		lastErr = err

		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusBadGateway {
			c.logger.Warn("backend gateway error, will retry",
				zap.Int("attempt", attempt),
				zap.Int("remaining", c.maxAttempts-attempt))
		} else {
			c.logger.Warn("analysis attempt failed",
				zap.Int("attempt", attempt),
				zap.Error(err))
		}

		if ctx.Err() != nil {
			break
		}
		if attempt < c.maxAttempts {
			if err := c.sleep(ctx, c.backoff); err != nil {
				lastErr = err
				break
			}
		}
	}

	return nil, &RequestError{Attempts: c.maxAttempts, Err: lastErr}
}

func (c *Client) attempt(ctx context.Context, payload []byte) (*Result, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("attempt timed out after %s: %w", c.attemptTimeout, err)
		}
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &statusError{code: resp.StatusCode}
	}

	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	res.Status = http.StatusOK
	return &res, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
