package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/amishk599/shiftline/internal/model"
)

// Connector is a decorator that retries transient ListPage and FetchDetail
// failures with exponential backoff and jitter.
type Connector struct {
	inner      model.Connector
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// NewConnector wraps a Connector with retry logic.
// maxRetries is the number of additional attempts after the first failure.
// baseDelay is the delay before the first retry, doubled on each subsequent retry.
func NewConnector(inner model.Connector, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *Connector {
	return &Connector{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

// ListPage implements model.Connector.
func (c *Connector) ListPage(ctx context.Context, cursor string) (model.ListingPage, error) {
	return do(ctx, c, "list page", func() (model.ListingPage, error) {
		return c.inner.ListPage(ctx, cursor)
	})
}

// FetchDetail implements model.Connector. On final failure the listing as
// last returned by the inner connector comes back with the error.
func (c *Connector) FetchDetail(ctx context.Context, l model.RawListing) (model.RawListing, error) {
	out, err := do(ctx, c, "detail "+l.SourceID, func() (model.RawListing, error) {
		return c.inner.FetchDetail(ctx, l)
	})
	if err != nil && out.SourceID == "" {
		out = l
	}
	return out, err
}

// Close forwards to the inner connector when it holds resources.
func (c *Connector) Close() error {
	if cl, ok := c.inner.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}

func do[T any](ctx context.Context, c *Connector, op string, fn func() (T, error)) (T, error) {
	v, err := fn()
	if err == nil || !isRetryable(ctx, err) {
		return v, err
	}

	lastErr := err
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		delay := c.backoffDelay(attempt, lastErr)

		c.logger.Warn("retrying after transient error",
			"op", op,
			"attempt", attempt,
			"max_retries", c.maxRetries,
			"delay", delay,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			return v, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}

		v, err = fn()
		if err == nil {
			return v, nil
		}
		if !isRetryable(ctx, err) {
			return v, err
		}
		lastErr = err
	}

	return v, lastErr
}

// backoffDelay computes the delay for a given attempt with ±30% jitter.
// If the error includes a Retry-After duration (HTTP 429), that takes precedence.
func (c *Connector) backoffDelay(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	// Exponential: baseDelay * 2^(attempt-1)
	delay := c.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}

	// Apply ±30% jitter
	jitter := float64(delay) * 0.3
	delay = time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)

	return delay
}

// isRetryable returns true if the error represents a transient failure worth
// retrying. A per-step timeout is transient; anything after the parent
// context is done is not.
func isRetryable(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}

	if errors.Is(err, context.Canceled) {
		return false
	}

	var (
		cfgErr     *model.ConfigError
		extractErr *model.ExtractionError
		validErr   *model.ValidationError
	)
	if errors.As(err, &cfgErr) || errors.As(err, &extractErr) || errors.As(err, &validErr) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		// 429 Too Many Requests and 5xx are retryable; other 4xx are not.
		return httpErr.StatusCode == 429 || httpErr.StatusCode >= 500
	}

	// Network errors and step timeouts are retryable.
	return true
}
