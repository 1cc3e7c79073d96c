package providers

import (
	"context"
	"errors"
	"time"
)

// maxRetries is the number of retries after the first attempt.
const maxRetries = 3

// backoffBase is the delay before the first retry; it doubles per attempt.
var backoffBase = time.Second

type rateLimitError struct{}

func (e *rateLimitError) Error() string { return "rate limited" }

type serverError struct {
	statusCode int
	body       string
}

func (e *serverError) Error() string { return "server error: " + e.body }

type authError struct {
	message string
}

func (e *authError) Error() string {
	return "authentication error: " + e.message
}

// IsAuthError checks if an error is an authentication error.
func IsAuthError(err error) bool {
	var ae *authError
	return errors.As(err, &ae)
}

func isRetryable(err error) bool {
	var rl *rateLimitError
	var se *serverError
	return errors.As(err, &rl) || errors.As(err, &se)
}

func retryWithBackoff(ctx context.Context, retries int, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		lastErr = fn()
		if lastErr == nil || !isRetryable(lastErr) {
			return lastErr
		}

		if attempt < retries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoffBase << uint(attempt)):
			}
		}
	}
	return lastErr
}
