package retry

import (
	"errors"
	"time"
)

// CeilingError reports a run stopped by MaxAttemptsCount or MaxAttemptsTime.
// Its message is the ceiling's; errors.Is matches both the ceiling sentinel
// (retrier.ErrMaxAttemptsReached or retrier.ErrMaxAttemptTimeReached) and the
// last error the caller reported.
type CeilingError struct {
	// Reason is the ceiling sentinel.
	Reason error

	// Cause is the error of the last attempt. May be nil.
	Cause error

	// Attempts is the number of attempts issued.
	Attempts int

	// Elapsed is the time since Start when the run stopped.
	Elapsed time.Duration
}

func (e *CeilingError) Error() string {
	return e.Reason.Error()
}

func (e *CeilingError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Reason}
	}
	return []error{e.Reason, e.Cause}
}

// RetryAfter wraps err so that Run schedules the next attempt after d
// instead of following the growth curve.
func RetryAfter(err error, d time.Duration) error {
	if err == nil {
		return nil
	}
	return &retryAfterError{err: err, delay: d}
}

type retryAfterError struct {
	err   error
	delay time.Duration
}

func (e *retryAfterError) Error() string {
	return e.err.Error()
}

func (e *retryAfterError) Unwrap() error {
	return e.err
}

// delayOverride extracts a RetryAfter delay from err.
func delayOverride(err error) (time.Duration, bool) {
	var ra *retryAfterError
	if errors.As(err, &ra) {
		return ra.delay, true
	}
	return 0, false
}
