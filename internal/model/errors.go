package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// ConfigError is fatal: unknown employer, missing credentials, bad config.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return "config: " + e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

// FetchError is a transient network, API or page-load failure.
type FetchError struct {
	Op      string // e.g. "list page", "detail", "goto"
	Timeout bool
	Err     error
}

func (e *FetchError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("fetch %s: timeout: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractionError means an expected DOM or content pattern was not found.
// It is never fatal; callers fall back to a best-effort value.
type ExtractionError struct {
	Field string
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Field, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ValidationError rejects a single record with an itemized reason list.
type ValidationError struct {
	SourceID string
	Errors   []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid job %s: %s", e.SourceID, strings.Join(e.Errors, "; "))
}

// PersistenceError is a store-level failure on a single upsert.
type PersistenceError struct {
	SourceID string
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist job %s: %v", e.SourceID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsConfigError reports whether err is fatal configuration trouble.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
