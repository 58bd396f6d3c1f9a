// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the rate-limited, retrying HTTP client used by
// the ingest stage.
package httputil

import (
	"context"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// retryable responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

// MaxRetryAfter caps how long a server-provided Retry-After is honored.
var MaxRetryAfter = time.Minute

const defaultMaxRetries = 5

// Client wraps an http.Client with a request rate limit and retries on
// HTTP 429 and 503.
type Client struct {
	// HTTP performs the requests. Nil means http.DefaultClient.
	HTTP *http.Client

	// Limiter, when set, is waited on before every attempt.
	Limiter *rate.Limiter

	// MaxRetries is the number of retries after the first attempt
	// (default 5).
	MaxRetries int

	// Logger receives one line per retry. Nil means slog.Default().
	Logger *slog.Logger
}

// NewClient returns a Client that makes at most rps requests per second.
// A non-positive rps disables the limit.
func NewClient(httpClient *http.Client, rps float64) *Client {
	c := &Client{HTTP: httpClient}
	if rps > 0 {
		c.Limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return c
}

// Do executes req and retries on HTTP 429 (Too Many Requests) and 503
// (Service Unavailable). The wait is the response's Retry-After when
// present, otherwise RetryBaseDelay doubled per attempt.
//
// The body of every retried response is drained and closed. If ctx is
// cancelled while waiting, Do returns ctx.Err(). After exhausting
// retries the last response is returned so the caller can inspect it.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	maxRetries := c.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	for attempt := 0; ; attempt++ {
		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if !retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := backoffFor(resp, attempt)
		logger.Warn("retrying request",
			"url", req.URL.Redacted(),
			"status", resp.StatusCode,
			"backoff", backoff,
			"attempt", attempt+1,
			"max_retries", maxRetries)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// DoWithRetry runs req through an unlimited Client built from client.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	return (&Client{HTTP: client, MaxRetries: maxRetries}).Do(ctx, req)
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

func backoffFor(resp *http.Response, attempt int) time.Duration {
	if s := resp.Header.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs >= 0 {
			return min(time.Duration(secs)*time.Second, MaxRetryAfter)
		}
	}
	return time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
}
