package retrier

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	_, err := future.Wait(ctx)
//	if errors.Is(err, retrier.ErrMaxAttemptTimeReached) {
//	    // Give up: the time budget is spent
//	}
var (
	// ErrInvalidConfig indicates the provided policy or configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidInitialDelay indicates an initial delay below one DelayUnit.
	ErrInvalidInitialDelay = fmt.Errorf("%w: initial delay must be at least 1ms", ErrInvalidConfig)

	// ErrInvalidMaxDelay indicates a maximum delay below one DelayUnit.
	ErrInvalidMaxDelay = fmt.Errorf("%w: max delay must be at least 1ms", ErrInvalidConfig)

	// ErrInvalidRange indicates a maximum delay that does not exceed the initial delay.
	ErrInvalidRange = fmt.Errorf("%w: max delay must be greater than initial delay", ErrInvalidConfig)

	// ErrInvalidJitter indicates a randomisation factor outside [0, 1].
	ErrInvalidJitter = fmt.Errorf("%w: randomisation factor must be between 0 and 1", ErrInvalidConfig)

	// ErrInvalidFactor indicates a growth factor below 1.
	ErrInvalidFactor = fmt.Errorf("%w: factor must be at least 1", ErrInvalidConfig)

	// ErrInvalidFailLimit indicates a non-positive fail limit.
	ErrInvalidFailLimit = fmt.Errorf("%w: number of retries must be greater than 0", ErrInvalidConfig)

	// ErrMaxAttemptsReached indicates the attempt count ceiling was hit.
	ErrMaxAttemptsReached = errors.New(MaxAttemptsCountMessage)

	// ErrMaxAttemptTimeReached indicates the next attempt would cross the time ceiling.
	ErrMaxAttemptTimeReached = errors.New(MaxAttemptTimeMessage)

	// ErrCancelled indicates the run was cancelled before it settled.
	ErrCancelled = errors.New("retry cancelled")

	// ErrConnectionFailed indicates a probed service never became reachable.
	ErrConnectionFailed = errors.New("connection failed")
)

// usagePatterns are fragments of the errors cobra returns for command-line misuse.
var usagePatterns = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"arg(s), received",
	"required flag",
	"invalid argument",
	"missing required argument",
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrCancelled):
		return ExitCancelled
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrMaxAttemptsReached), errors.Is(err, ErrMaxAttemptTimeReached):
		return ExitRetriesExhausted
	}

	errStr := err.Error()
	for _, pattern := range usagePatterns {
		if strings.Contains(errStr, pattern) {
			return ExitUsageError
		}
	}

	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
