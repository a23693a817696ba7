// Package retrier holds the contracts shared by the backoff generator, the
// retry scheduler and the retrier command: logging and clock interfaces,
// error classification, sentinel errors, exit codes and defaults.
//
// Implementations live in sibling packages:
//   - pkg/backoff: exponential delay sequence with jitter and a fail limit
//   - pkg/retry: timer-driven attempt scheduler with a settle-once Future
package retrier
