package retry

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBusiness = errors.New("business")

func testConfig() *Config {
	return &Config{
		MaxAttempts:       3,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2,
		IsRetryable:       func(err error) bool { return !errors.Is(err, errBusiness) },
	}
}

func TestDoRetriesTransientErrors(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), testConfig(), slog.Default(), "list", func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("connection refused")
		}
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, got)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnNonRetryableError(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), testConfig(), slog.Default(), "get", func(context.Context) (int, error) {
		calls++
		return 0, errBusiness
	})
	assert.Same(t, errBusiness, err)
	assert.Equal(t, 1, calls)
}

func TestDoWrapsLastErrorWhenExhausted(t *testing.T) {
	cause := errors.New("timeout")
	_, err := Do(context.Background(), testConfig(), slog.Default(), "count", func(context.Context) (int, error) {
		return 0, cause
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
}

func TestDoHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	_, err := Do(ctx, testConfig(), slog.Default(), "list", func(context.Context) (int, error) {
		calls++
		return 0, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestCalculateBackoffIsCapped(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, time.Millisecond, calculateBackoff(0, cfg))
	assert.Equal(t, 2*time.Millisecond, calculateBackoff(1, cfg))
	assert.Equal(t, 5*time.Millisecond, calculateBackoff(10, cfg))
}
