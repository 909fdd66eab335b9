package persist

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"time"

	"github.com/matzehuels/cardspace/pkg/errors"
)

// DefaultKey is the key the dataset is stored under.
const DefaultKey = "cardspace"

// Backend is a key/value document store.
type Backend interface {
	// Name identifies the backend in logs and metrics.
	Name() string

	// Get returns the stored bytes. ok is false when key is absent.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key, replacing any previous value.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases connections and handles.
	Close() error
}

// =============================================================================
// Retries
// =============================================================================

// RetryableError wraps an error to indicate it should trigger a retry.
type RetryableError struct{ Err error }

// Retryable wraps an error as a RetryableError.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Error returns the error message of the wrapped error.
func (e *RetryableError) Error() string { return e.Err.Error() }

// Unwrap returns the wrapped error.
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable checks if an error is wrapped with RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return stderrors.As(err, &re)
}

// Attempts is how often RetryWithBackoff calls fn at most.
const Attempts = 3

// BaseDelay is the wait before the second attempt; it doubles after each
// further failure.
var BaseDelay = time.Second

// RetryWithBackoff retries fn with exponential backoff. Only errors wrapped
// with Retryable trigger retries.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	delay := BaseDelay
	var lastErr error

	for i := 0; i < Attempts; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < Attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// =============================================================================
// Helpers
// =============================================================================

// Hash computes the SHA-256 of data as 64 hex characters.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// backendErr wraps a driver error as a BACKEND error, keeping the retry
// marker visible to IsRetryable.
func backendErr(name string, err error, op string) error {
	if err == nil {
		return nil
	}
	wrapped := errors.Wrap(errors.ErrCodeBackend, err, "%s: %s failed", name, op)
	if IsRetryable(err) {
		return Retryable(wrapped)
	}
	return wrapped
}
