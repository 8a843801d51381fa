package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds a single request to the scoring API.
	DefaultTimeout = 15 * time.Second

	// maxErrorBody caps how much of an error response body is captured.
	maxErrorBody = 4096
)

var (
	// ErrTimeout is returned when a request is aborted by its timeout.
	ErrTimeout = errors.New("request timeout")

	// ErrInvalidJSON is returned when a 2xx response body cannot be
	// decoded as JSON.
	ErrInvalidJSON = errors.New("invalid JSON response from server")
)

// HTTPError represents a non-2xx response from the upstream API. The
// body is captured best-effort; a failure reading it never masks the
// status.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, http.StatusText(e.Status))
}

// Client performs single JSON requests against the scoring API with a
// fixed per-request timeout and default JSON headers.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a client for the given base URL. A zero timeout
// falls back to DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    &http.Client{},
		logger:  logger.Named("fetch"),
	}
}

// GetJSON performs a GET against path and decodes the response body
// into v. The body is decoded as JSON regardless of the declared
// content type; an unexpected content type is only logged.
func (c *Client) GetJSON(ctx context.Context, path string, v any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			c.logger.Error("request timed out",
				zap.String("url", url),
				zap.Duration("timeout", c.timeout))
			return fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
		}
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug("request completed",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		httpErr := &HTTPError{Status: resp.StatusCode}
		if body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)); readErr == nil {
			httpErr.Body = string(body)
		}
		return httpErr
	}

	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		c.logger.Warn("response is not declared as JSON",
			zap.String("url", url),
			zap.String("content_type", ct))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		c.logger.Error("failed to decode response body",
			zap.String("url", url),
			zap.Error(err))
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return nil
}
