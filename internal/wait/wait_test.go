package wait

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUntil_TrueImmediately(t *testing.T) {
	calls := 0
	err := Until(context.Background(), "immediate", func(ctx context.Context) (bool, error) {
		calls++
		return true, nil
	}, PollOptions{Timeout: time.Second, Interval: time.Millisecond})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestUntil_TrueAfterPolls(t *testing.T) {
	calls := 0
	err := Until(context.Background(), "eventually", func(ctx context.Context) (bool, error) {
		calls++
		return calls >= 3, nil
	}, PollOptions{Timeout: time.Second, Interval: time.Millisecond})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestUntil_Timeout(t *testing.T) {
	err := Until(context.Background(), "never", func(ctx context.Context) (bool, error) {
		return false, nil
	}, PollOptions{Timeout: 10 * time.Millisecond, Interval: time.Millisecond})

	require.Error(t, err)
	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, "never", timeoutErr.Name)
	assert.Nil(t, timeoutErr.Last)
}

func TestUntil_TimeoutCarriesLastPredicateError(t *testing.T) {
	probeErr := errors.New("element detached")
	err := Until(context.Background(), "flaky", func(ctx context.Context) (bool, error) {
		return false, probeErr
	}, PollOptions{Timeout: 10 * time.Millisecond, Interval: time.Millisecond})

	require.Error(t, err)
	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.ErrorIs(t, err, probeErr)
}

func TestUntil_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Until(ctx, "cancelled", func(ctx context.Context) (bool, error) {
		return false, nil
	}, PollOptions{Timeout: time.Second, Interval: time.Millisecond})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), "once", func(ctx context.Context) error {
		calls++
		return nil
	}, RetryOptions{Attempts: 3})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), "flaky", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, RetryOptions{Attempts: 5})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	lastErr := errors.New("still broken")
	calls := 0
	err := Do(context.Background(), "broken", func(ctx context.Context) error {
		calls++
		return lastErr
	}, RetryOptions{Attempts: 3})

	require.Error(t, err)
	assert.Equal(t, 3, calls)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.ErrorIs(t, err, lastErr)
}

func TestDo_NonRetryableSurfacesImmediately(t *testing.T) {
	fatal := errors.New("fatal")
	calls := 0
	err := Do(context.Background(), "fatal", func(ctx context.Context) error {
		calls++
		return fatal
	}, RetryOptions{
		Attempts:  5,
		Retryable: func(err error) bool { return !errors.Is(err, fatal) },
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, fatal)

	var exhausted *ExhaustedError
	assert.False(t, errors.As(err, &exhausted))
}

func TestDo_ZeroAttemptsMeansOne(t *testing.T) {
	calls := 0
	err := Do(context.Background(), "default", func(ctx context.Context) error {
		calls++
		return errors.New("nope")
	}, RetryOptions{})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelledBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, "cancelled", func(c context.Context) error {
		calls++
		cancel()
		return errors.New("transient")
	}, RetryOptions{Attempts: 5, Backoff: time.Millisecond})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
