package retrier

import "time"

// ErrorClassifier determines whether an error is transient (retryable) or fatal.
type ErrorClassifier interface {
	// IsTransient returns true if the error is temporary and the operation should be retried.
	IsTransient(err error) bool
}

// DelayStrategy maps a zero-based step of a retry sequence to a delay.
type DelayStrategy interface {
	// DelayFor returns the delay for the given step (0 = first retry).
	// random supplies values in [0, 1) for jitter; nil means no jitter source.
	DelayFor(step int, random func() float64) time.Duration
}
