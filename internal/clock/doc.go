// Package clock provides implementations of the retrier.Clock interface.
//
// Available implementations:
//   - Real: wall-clock time backed by time.AfterFunc
//   - Manual: virtual time advanced explicitly by tests; due callbacks run
//     synchronously on the goroutine calling Advance, in deadline order
package clock
