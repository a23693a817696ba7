package retrier

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess          = 0  // Command completed successfully
	ExitGeneralError     = 1  // Unknown or unclassified error
	ExitUsageError       = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic            = 3  // Internal panic (unexpected crash)
	ExitConfigError      = 10 // Invalid retry policy or configuration
	ExitConnectionError  = 11 // Failed to connect to a probed service
	ExitRetriesExhausted = 12 // Attempt count or time ceiling reached
	ExitCancelled        = 13 // Run cancelled before it settled
)

const (
	// DelayUnit is the granularity of computed backoff delays.
	// Delay bounds are validated against it and computed delays are rounded to it.
	DelayUnit = time.Millisecond

	// DefaultFactor is the growth multiplier applied when a policy leaves it unset.
	DefaultFactor = 2.0

	// DefaultMinDelay is the default base delay used by the CLI.
	DefaultMinDelay = 100 * time.Millisecond

	// DefaultMaxDelay is the default delay cap used by the CLI.
	DefaultMaxDelay = 30 * time.Second

	// DefaultMaxAttempts is the default attempt ceiling used by the CLI.
	DefaultMaxAttempts = 5

	// MaxAttemptTimeMessage is the literal message of ErrMaxAttemptTimeReached.
	// Callers may match on it.
	MaxAttemptTimeMessage = "Maximum attempt time limit reached"

	// MaxAttemptsCountMessage is the literal message of ErrMaxAttemptsReached.
	MaxAttemptsCountMessage = "Maximum attempts count reached"
)
