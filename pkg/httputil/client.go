package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wonny/tickerscope/pkg/config"
	"github.com/wonny/tickerscope/pkg/logger"
	"github.com/wonny/tickerscope/pkg/ratelimit"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

// ErrStatus is returned (wrapped) when the final attempt got a non-2xx response
var ErrStatus = errors.New("unexpected status code")

// Client is an HTTP client wrapper with retry logic and logging
// ⭐ SSOT: 모든 외부 HTTP 요청은 이 클라이언트를 통해서만 수행
type Client struct {
	httpClient  *http.Client
	logger      *logger.Logger
	retryConfig RetryConfig
	timeout     time.Duration
	limiter     *ratelimit.Limiter
	headers     map[string]string
}

// RetryConfig holds retry configuration.
// Backoff is linear: attempt N waits N*Delay before retrying.
type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
}

// New creates a client with a per-attempt timeout
// ⭐ SSOT: http.Client 인스턴스는 여기서만 생성
func New(log *logger.Logger, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{},
		logger:     log,
		timeout:    timeout,
		retryConfig: RetryConfig{
			MaxAttempts: 3,
			Delay:       time.Second,
		},
		headers: map[string]string{"User-Agent": defaultUserAgent},
	}
}

// NewForProvider builds a client from a provider config and its limiter
func NewForProvider(cfg config.ProviderConfig, limiter *ratelimit.Limiter, log *logger.Logger) *Client {
	return New(log, cfg.Timeout).
		WithRetry(cfg.MaxAttempts, cfg.RetryDelay).
		WithRateLimiter(limiter)
}

// WithRetry configures retry behavior
func (c *Client) WithRetry(maxAttempts int, delay time.Duration) *Client {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	c.retryConfig.MaxAttempts = maxAttempts
	c.retryConfig.Delay = delay
	return c
}

// DisableRetry makes every call a single attempt
func (c *Client) DisableRetry() *Client {
	c.retryConfig.MaxAttempts = 1
	return c
}

// WithRateLimiter sets the limiter held around every attempt
func (c *Client) WithRateLimiter(limiter *ratelimit.Limiter) *Client {
	c.limiter = limiter
	return c
}

// WithHeader sets a header sent with every request
func (c *Client) WithHeader(key, value string) *Client {
	c.headers[key] = value
	return c
}

// GetBody performs a GET request and returns the body of a 2xx response
func (c *Client) GetBody(ctx context.Context, url string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, url, "", nil)
}

// GetJSON performs a GET request and decodes the JSON body into dest
func (c *Client) GetJSON(ctx context.Context, url string, dest interface{}) error {
	body, err := c.GetBody(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// PostJSON performs a POST request with a JSON body
func (c *Client) PostJSON(ctx context.Context, url string, data interface{}) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return c.do(ctx, http.MethodPost, url, "application/json", payload)
}

// do executes the request with retry logic and logging
func (c *Client) do(ctx context.Context, method, url, contentType string, payload []byte) ([]byte, error) {
	startTime := time.Now()

	var (
		body    []byte
		lastErr error
	)
	for attempt := 1; attempt <= c.retryConfig.MaxAttempts; attempt++ {
		var retryable bool
		body, retryable, lastErr = c.attempt(ctx, method, url, contentType, payload)
		if lastErr == nil {
			c.logger.WithFields(map[string]interface{}{
				"method":   method,
				"url":      url,
				"attempt":  attempt,
				"duration": time.Since(startTime),
			}).Debug("HTTP request completed")
			return body, nil
		}

		if !retryable || attempt == c.retryConfig.MaxAttempts {
			break
		}

		delay := time.Duration(attempt) * c.retryConfig.Delay
		c.logger.WithFields(map[string]interface{}{
			"attempt": attempt,
			"delay":   delay,
			"url":     url,
			"error":   lastErr.Error(),
		}).Warn("Retrying HTTP request")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"method":   method,
		"url":      url,
		"duration": time.Since(startTime),
		"error":    lastErr.Error(),
	}).Warn("HTTP request failed")

	return nil, lastErr
}

// attempt performs one rate-limited, time-bounded request
func (c *Client) attempt(ctx context.Context, method, url, contentType string, payload []byte) ([]byte, bool, error) {
	if c.limiter != nil {
		if err := c.limiter.Acquire(ctx); err != nil {
			return nil, false, err
		}
		defer c.limiter.Release()
	}

	attemptCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, url, reader)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create %s request: %w", method, err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// transport errors and timeouts are retryable unless the caller gave up
		return nil, ctx.Err() == nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, IsRetryableStatus(resp.StatusCode), fmt.Errorf("%w: %d from %s", ErrStatus, resp.StatusCode, url)
	}

	return body, false, nil
}

// IsRetryableStatus checks if a status code should be retried
func IsRetryableStatus(statusCode int) bool {
	return statusCode >= 500 || statusCode == http.StatusTooManyRequests
}
