// Package fetch performs rate limited JSON GET requests with retries, for the outbound
// catalog and species clients.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/listenupapp/binderkeep/internal/errors"
)

const (
	defaultRequestsPerSecond = 10
	defaultRequestTimeout    = 30 * time.Second
	defaultMaxRetries        = 3
	defaultInitialBackoff    = 1 * time.Second
	maxBackoff               = 16 * time.Second
	userAgent                = "binderkeep/1.0"
)

// Config configures a Client. Zero values use the defaults.
type Config struct {
	RequestsPerSecond float64
	Timeout           time.Duration
	MaxRetries        int
	InitialBackoff    time.Duration
}

// Client is a rate limited JSON HTTP client.
type Client struct {
	name           string
	httpClient     *http.Client
	rateLimiter    *rate.Limiter
	maxRetries     int
	initialBackoff time.Duration
	logger         *slog.Logger
}

// New creates a client. name prefixes error messages ("catalog: rate limited").
func New(name string, cfg Config, logger *slog.Logger) *Client {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = defaultMaxRetries
	}
	backoff := cfg.InitialBackoff
	if backoff <= 0 {
		backoff = defaultInitialBackoff
	}

	return &Client{
		name:           name,
		httpClient:     &http.Client{Timeout: timeout},
		rateLimiter:    rate.NewLimiter(rate.Limit(rps), 1),
		maxRetries:     retries,
		initialBackoff: backoff,
		logger:         logger,
	}
}

// GetJSON fetches endpoint and decodes the body into result.
//
// Network errors, 429 and 5xx responses are retried with exponential backoff; a 404 is
// errors.ErrNotFound and exhausted retries are errors.ErrUnavailable.
func (c *Client) GetJSON(ctx context.Context, endpoint string, result any) error {
	var lastErr error
	backoff := c.initialBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, backoff); err != nil {
				return err
			}
			backoff = min(backoff*2, maxBackoff)
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		retry, err := c.attempt(ctx, endpoint, result, &backoff)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			return err
		}
		c.logger.Debug("request failed, retrying", "client", c.name, "url", endpoint, "attempt", attempt+1, "error", err)
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// attempt performs one request. retry reports whether the failure is transient.
func (c *Client) attempt(ctx context.Context, endpoint string, result any, backoff *time.Duration) (retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return true, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return true, fmt.Errorf("failed to read response body: %w", err)
		}
		if err := json.Unmarshal(body, result); err != nil {
			return false, fmt.Errorf("failed to parse JSON response: %w", err)
		}
		return false, nil

	case resp.StatusCode == http.StatusNotFound:
		return false, errors.NotFoundf("%s: %s not found", c.name, endpoint)

	case resp.StatusCode == http.StatusTooManyRequests:
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			*backoff = time.Duration(secs) * time.Second
		}
		return true, errors.Unavailable(c.name + ": rate limited (HTTP 429)")

	case resp.StatusCode >= 500:
		return true, errors.Unavailablef("%s: server error (HTTP %d)", c.name, resp.StatusCode)

	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return false, fmt.Errorf("%s request failed with status %d: %s", c.name, resp.StatusCode, body)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
