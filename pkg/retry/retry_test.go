package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"audiofetch/pkg/config"
	errs "audiofetch/pkg/errors"
	"audiofetch/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExponentialBackoff(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   1 * time.Second,
		Multiplier: 2.0,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 0},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, 1 * time.Second},
		{6, 1 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, backoff.NextDelay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestExponentialBackoffJitterStaysInRange(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.3,
	}

	for i := 0; i < 50; i++ {
		delay := backoff.NextDelay(2)
		assert.GreaterOrEqual(t, delay, 140*time.Millisecond)
		assert.LessOrEqual(t, delay, 260*time.Millisecond)
	}
}

func TestDefaultConfigMakesOneAttempt(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return errs.New(errs.ErrorTypeNetwork, 0, "connection reset")
	}, nil)

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, errs.ErrorTypeNetwork, errs.TypeOf(err))
}

func TestRetryUntilSuccess(t *testing.T) {
	attempts := 0
	log := logger.NewTestLogger()
	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		Logger:      log,
	}

	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errs.New(errs.ErrorTypeServerError, 503, "unavailable")
		}
		return nil
	}, cfg)

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Len(t, log.GetMessagesByLevel("WARN"), 2)
}

func TestRetryExhausted(t *testing.T) {
	attempts := 0
	cfg := &Config{MaxAttempts: 3, Backoff: &ConstantBackoff{Delay: time.Millisecond}}

	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return errors.New("flaky")
	}, cfg)

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Contains(t, err.Error(), "max retry attempts (3) exceeded")
}

func TestNonRetryableStopsImmediately(t *testing.T) {
	attempts := 0
	cfg := &Config{MaxAttempts: 5, Backoff: &ConstantBackoff{Delay: time.Millisecond}}

	err := Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return errs.New(errs.ErrorTypeNotFound, 404, "gone")
	}, cfg)

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, errs.ErrorTypeNotFound, errs.TypeOf(err))
}

func TestCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: time.Minute},
		OnRetry:     func(int, error, time.Duration) { cancel() },
	}

	err := Do(ctx, func(ctx context.Context) error {
		return errors.New("flaky")
	}, cfg)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	cfg := &Config{MaxAttempts: 2, Backoff: &ConstantBackoff{}}

	got, err := DoWithResult(context.Background(), func(ctx context.Context) (string, error) {
		attempts++
		if attempts == 1 {
			return "", errors.New("first try fails")
		}
		return "ok", nil
	}, cfg)

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestFromSettings(t *testing.T) {
	cfg := FromSettings(config.RetryConfig{
		MaxAttempts: 4,
		BaseDelay:   time.Second,
		MaxDelay:    5 * time.Second,
		Multiplier:  3,
	}, nil)

	assert.Equal(t, 4, cfg.MaxAttempts)
	assert.Equal(t, 3*time.Second, cfg.Backoff.NextDelay(2))
	assert.Equal(t, 5*time.Second, cfg.Backoff.NextDelay(3))
}

func TestDefaultRetryIf(t *testing.T) {
	assert.False(t, DefaultRetryIf(nil))
	assert.False(t, DefaultRetryIf(context.Canceled))
	assert.False(t, DefaultRetryIf(errs.New(errs.ErrorTypeClientError, 403, "forbidden")))
	assert.True(t, DefaultRetryIf(errs.New(errs.ErrorTypeRateLimit, 429, "slow down")))
	assert.True(t, DefaultRetryIf(errors.New("unknown")))
}

func TestWait(t *testing.T) {
	require.NoError(t, Wait(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Wait(ctx, time.Hour), context.Canceled)
	assert.ErrorIs(t, Wait(ctx, 0), context.Canceled)
}
