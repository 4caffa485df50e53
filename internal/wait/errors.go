package wait

import (
	"fmt"
	"time"
)

// TimeoutError is returned by Until when the condition never held.
type TimeoutError struct {
	Name    string
	Timeout time.Duration
	Last    error
}

func (e *TimeoutError) Error() string {
	if e.Last != nil {
		return fmt.Sprintf("wait %q timed out after %s: %v", e.Name, e.Timeout, e.Last)
	}
	return fmt.Sprintf("wait %q timed out after %s", e.Name, e.Timeout)
}

func (e *TimeoutError) Unwrap() error {
	return e.Last
}

// ExhaustedError is returned by Do when every attempt failed.
type ExhaustedError struct {
	Name     string
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry %q exhausted after %d attempts: %v", e.Name, e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}
