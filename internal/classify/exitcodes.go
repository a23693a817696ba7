package classify

import (
	"errors"
	"os/exec"
)

// ExitCodes treats a command as permanently failed when it exits with one of
// the listed statuses. Every other error is transient.
type ExitCodes struct {
	fatal map[int]struct{}
}

// NewExitCodes creates an ExitCodes classifier for the given fatal statuses.
func NewExitCodes(fatal ...int) *ExitCodes {
	c := &ExitCodes{fatal: make(map[int]struct{}, len(fatal))}
	for _, code := range fatal {
		c.fatal[code] = struct{}{}
	}
	return c
}

// IsTransient reports false only for *exec.ExitError values with a fatal status.
func (c *ExitCodes) IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		_, fatal := c.fatal[exitErr.ExitCode()]
		return !fatal
	}
	return true
}
