package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithConfig_SucceedsAfterRetryableFailures(t *testing.T) {
	t.Parallel()
	attempts := 0
	cfg := RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond}

	result, err := RetryWithConfig(context.Background(), cfg, func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", ErrRetryable
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithConfig_StopsOnNonRetryableError(t *testing.T) {
	t.Parallel()
	attempts := 0
	cfg := DefaultRetryConfig()

	_, err := RetryWithConfig(context.Background(), cfg, func() (string, error) {
		attempts++
		return "", errors.New("permanent failure")
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryWithConfig_RespectsContextCancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := RetryConfig{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: 2 * time.Second}

	_, err := RetryWithConfig(ctx, cfg, func() (string, error) {
		return "", ErrRetryable
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()
	assert.True(t, IsRetryable(ErrRetryable))
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(errors.New("boom")))

	resp := &http.Response{StatusCode: http.StatusServiceUnavailable}
	assert.True(t, IsRetryable(newStatusError(resp, "down")))

	resp2 := &http.Response{StatusCode: http.StatusBadRequest}
	assert.False(t, IsRetryable(newStatusError(resp2, "bad")))
}

func TestParseRetryAfter(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 5*time.Second, ParseRetryAfter("5"))
	assert.Equal(t, time.Duration(0), ParseRetryAfter(""))
	assert.Equal(t, time.Duration(0), ParseRetryAfter("not-a-number"))
}

func TestAPIError_IncludesStatusDetails(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("nope"))
	}))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	wrapped := APIError(newStatusError(resp, "nope"))
	assert.Contains(t, wrapped.Error(), "remote API call failed")
}
