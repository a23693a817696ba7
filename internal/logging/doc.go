// Package logging provides concrete implementations of the retrier.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: Writes formatted messages to stderr (or any io.Writer)
//   - NullLogger: Discards all messages (the default for library use)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
