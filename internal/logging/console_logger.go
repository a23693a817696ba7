package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/vvka-141/retrier/pkg/retrier"
)

// ConsoleLogger writes log messages to stderr.
// Safe for concurrent use by multiple goroutines.
type ConsoleLogger struct {
	verbose    bool
	timestamps bool
	prefix     string
	out        io.Writer
	now        func() time.Time
	mu         *sync.Mutex
}

// ConsoleOption configures a ConsoleLogger.
type ConsoleOption func(*ConsoleLogger)

// WithWriter redirects output away from stderr.
func WithWriter(w io.Writer) ConsoleOption {
	return func(l *ConsoleLogger) {
		l.out = w
	}
}

// WithTimestamps prefixes each line with an RFC 3339 timestamp.
func WithTimestamps(now func() time.Time) ConsoleOption {
	return func(l *ConsoleLogger) {
		l.timestamps = true
		if now != nil {
			l.now = now
		}
	}
}

// NewConsoleLogger creates a new ConsoleLogger.
// If verbose is true, Verbose() calls will produce output.
// If verbose is false, Verbose() calls are no-ops.
func NewConsoleLogger(verbose bool, opts ...ConsoleOption) *ConsoleLogger {
	l := &ConsoleLogger{
		verbose: verbose,
		out:     os.Stderr,
		now:     time.Now,
		mu:      &sync.Mutex{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// With returns a logger that prefixes every message with "[prefix] ".
// The returned logger shares the writer and lock of the receiver.
func (l *ConsoleLogger) With(prefix string) retrier.Logger {
	clone := *l
	clone.prefix = clone.prefix + "[" + prefix + "] "
	return &clone
}

// Verbose logs detailed diagnostic information if verbose mode is enabled.
func (l *ConsoleLogger) Verbose(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.write("[VERBOSE] ", format, args)
}

// Info logs informational messages about normal operations.
func (l *ConsoleLogger) Info(format string, args ...interface{}) {
	l.write("", format, args)
}

// Error logs error messages.
func (l *ConsoleLogger) Error(format string, args ...interface{}) {
	l.write("[ERROR] ", format, args)
}

func (l *ConsoleLogger) write(level, format string, args []interface{}) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	stamp := ""
	if l.timestamps {
		stamp = l.now().Format(time.RFC3339) + " "
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.out, stamp+level+l.prefix+msg+"\n")
}
