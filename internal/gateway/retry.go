package gateway

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// ErrRetryable marks a transport/response condition worth retrying under the
// gateway's backoff policy (5xx responses, network errors, 429, whose
// Retry-After header, when present, sets the wait).
var ErrRetryable = coreerrors.New("RETRYABLE_ERROR", "retryable gateway error")

// RetryConfig configures exponential-backoff retry.
type RetryConfig struct {
	MaxAttempts int           // total attempts, including the first
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryConfig is the default retry policy: 3 attempts total, starting
// at a 1-second base delay.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: 8 * time.Second}
}

// Retry runs operation under DefaultRetryConfig.
func Retry[T any](ctx context.Context, operation func() (T, error)) (T, error) {
	return RetryWithConfig(ctx, DefaultRetryConfig(), operation)
}

// RetryWithConfig runs operation, retrying on a retryable error (per
// IsRetryable) with exponential backoff plus jitter, up to cfg.MaxAttempts.
// A non-retryable error (ordinary 4xx) returns immediately.
func RetryWithConfig[T any](ctx context.Context, cfg RetryConfig, operation func() (T, error)) (T, error) {
	var result T
	var err error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		result, err = operation()
		if err == nil {
			return result, nil
		}
		if !IsRetryable(err) {
			return result, err
		}
		if attempt < cfg.MaxAttempts-1 {
			delay := retryAfterDelay(err)
			if delay == 0 {
				delay = backoffDelay(attempt, cfg.BaseDelay, cfg.MaxDelay)
			}
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return result, ctx.Err()
			case <-timer.C:
			}
		}
	}
	return result, err
}

func backoffDelay(attempt int, base, maxDelay time.Duration) time.Duration {
	delay := base * (1 << attempt)
	if delay > maxDelay {
		delay = maxDelay
	}
	half := delay / 2
	if half <= 0 {
		return delay
	}
	return half + time.Duration(rand.Int63n(int64(half))) //nolint:gosec // G404: jitter does not need cryptographic randomness
}

// IsRetryable reports whether err should trigger another attempt: wrapped
// ErrRetryable, a deadline, or a *statusError flagged retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRetryable) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.retryable
	}
	return false
}

// statusError carries an HTTP response's status code and whether the
// request is retryable under this package's policy (5xx, or 429, with any
// Retry-After value kept as the wait): no retry on ordinary 4xx.
type statusError struct {
	statusCode int
	body       string
	retryAfter time.Duration
	retryable  bool
}

func (e *statusError) Error() string {
	return "gateway: unexpected status " + strconv.Itoa(e.statusCode) + ": " + e.body
}

func newStatusError(resp *http.Response, body string) *statusError {
	se := &statusError{statusCode: resp.StatusCode, body: body}
	switch {
	case resp.StatusCode >= 500:
		se.retryable = true
	case resp.StatusCode == http.StatusTooManyRequests:
		se.retryable = true
		se.retryAfter = ParseRetryAfter(resp.Header.Get("Retry-After"))
	}
	return se
}

func retryAfterDelay(err error) time.Duration {
	var se *statusError
	if errors.As(err, &se) {
		return se.retryAfter
	}
	return 0
}

// ParseRetryAfter parses a Retry-After header's seconds value, returning 0 if
// it is absent or malformed.
func ParseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// APIError converts a failed gateway call into a structured API error
// carrying the response status code and body as details.
func APIError(err error) error {
	ce := &coreerrors.CoreError{
		Code:     "API_ERROR",
		Message:  "remote API call failed",
		Cause:    err,
		ExitCode: coreerrors.ExitGeneral,
	}
	var se *statusError
	if errors.As(err, &se) {
		ce.Details = map[string]string{
			"statusCode": strconv.Itoa(se.statusCode),
			"details":    se.body,
		}
	}
	return ce
}
