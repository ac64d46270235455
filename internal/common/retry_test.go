package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/schoolpay/internal/service"
)

func fastRetry(attempts int) service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestWithRetry(t *testing.T) {
	flaky := errors.New("flaky")

	tests := []struct {
		wantErr   error
		failures  []error
		name      string
		attempts  int
		wantCalls int
	}{
		{
			name:      "succeeds first time",
			attempts:  3,
			wantCalls: 1,
		},
		{
			name:      "succeeds after failures",
			failures:  []error{flaky, flaky},
			attempts:  3,
			wantCalls: 3,
		},
		{
			name:      "exhausts attempts",
			failures:  []error{flaky, flaky, flaky, flaky},
			attempts:  3,
			wantCalls: 3,
			wantErr:   ErrMaxRetries,
		},
		{
			name:      "permanent error stops",
			failures:  []error{&RetryableError{Err: flaky, Retryable: false}},
			attempts:  3,
			wantCalls: 1,
			wantErr:   flaky,
		},
		{
			name:      "unauthorized stops",
			failures:  []error{NewAPIError(401, "expired")},
			attempts:  3,
			wantCalls: 1,
			wantErr:   ErrUnauthorized,
		},
		{
			name:      "rate limit retries",
			failures:  []error{ErrRateLimit},
			attempts:  2,
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := WithRetry(context.Background(), func() error {
				calls++
				if calls <= len(tt.failures) {
					return tt.failures[calls-1]
				}
				return nil
			}, fastRetry(tt.attempts))

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestWithRetry_LastErrorIsWrapped(t *testing.T) {
	last := errors.New("still broken")
	err := WithRetry(context.Background(), func() error { return last }, fastRetry(2))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaxRetries)
	assert.ErrorIs(t, err, last)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := WithRetry(ctx, func() error {
		calls++
		cancel()
		return errors.New("fail")
	}, service.RetryOptions{MaxAttempts: 5, InitialDelay: time.Second})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "", want: slog.LevelInfo},
		{input: "INFO", want: slog.LevelInfo},
		{input: "warning", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "verbose", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetupLogger(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	logger, err := SetupLogger(&buf, "warn", "json")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "school_id", "s1")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"school_id":"s1"`)

	_, err = SetupLogger(&buf, "info", "xml")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
