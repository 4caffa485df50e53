// Package wait provides the polling and retry primitives every
// network-dependent or UI-dependent wait in the engine goes through.
// No caller is allowed an unbounded loop or a bare sleep in place of a
// real condition check; pacing lives in named option sets instead.
package wait

import (
	"context"
	"time"
)

// Predicate is an idempotent check against live browser state. Returning an
// error means the state could not be inspected yet; polling continues and the
// last error is carried into the timeout failure.
type Predicate func(ctx context.Context) (bool, error)

// Action is a possibly side-effecting operation invoked under retry.
type Action func(ctx context.Context) error

// PollOptions names the pacing for one Until call site.
type PollOptions struct {
	Timeout  time.Duration
	Interval time.Duration
}

// RetryOptions names the bounds for one Do call site. Retryable filters which
// errors are worth another attempt; nil means every error is retryable.
type RetryOptions struct {
	Attempts  int
	Backoff   time.Duration
	Retryable func(error) bool
}

// Until polls pred every Interval until it reports true, the Timeout elapses,
// or ctx is done. The zero Interval defaults to 500ms.
func Until(ctx context.Context, name string, pred Predicate, opts PollOptions) error {
	interval := opts.Interval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}

	deadline := time.Now().Add(opts.Timeout)
	var lastErr error
	for {
		ok, err := pred(ctx)
		if err != nil {
			lastErr = err
		} else if ok {
			return nil
		}

		if time.Now().After(deadline) {
			return &TimeoutError{Name: name, Timeout: opts.Timeout, Last: lastErr}
		}

		select {
		case <-ctx.Done():
			return &TimeoutError{Name: name, Timeout: opts.Timeout, Last: ctx.Err()}
		case <-time.After(interval):
		}
	}
}

// Do invokes action up to Attempts times, sleeping Backoff between attempts.
// A non-retryable error surfaces immediately; exhausting the attempts returns
// an ExhaustedError wrapping the last failure.
func Do(ctx context.Context, name string, action Action, opts RetryOptions) error {
	attempts := opts.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return &ExhaustedError{Name: name, Attempts: attempt - 1, Last: err}
		}

		err := action(ctx)
		if err == nil {
			return nil
		}
		if opts.Retryable != nil && !opts.Retryable(err) {
			return err
		}
		lastErr = err

		if attempt < attempts && opts.Backoff > 0 {
			select {
			case <-ctx.Done():
				return &ExhaustedError{Name: name, Attempts: attempt, Last: lastErr}
			case <-time.After(opts.Backoff):
			}
		}
	}
	return &ExhaustedError{Name: name, Attempts: attempts, Last: lastErr}
}
