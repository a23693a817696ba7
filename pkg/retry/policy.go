package retry

import (
	"fmt"
	"time"

	"github.com/vvka-141/retrier/pkg/backoff"
	"github.com/vvka-141/retrier/pkg/retrier"
)

// Policy bounds a retry run.
type Policy struct {
	// Min is the base delay of the growth curve. Must be at least 1ms.
	Min time.Duration

	// Max caps the growth curve. Must be greater than Min.
	Max time.Duration

	// Initial delays the first attempt. Zero fires it on the next timer tick.
	Initial time.Duration

	// MaxAttemptsCount stops the run after this many attempts. Zero means no limit.
	MaxAttemptsCount int

	// MaxAttemptsTime stops the run when the next attempt would start later
	// than this long after Start. Zero means no limit.
	MaxAttemptsTime time.Duration

	// Factor is the growth multiplier. Zero means retrier.DefaultFactor.
	Factor float64

	// RandomisationFactor adds up to this fraction of jitter (0.0-1.0).
	RandomisationFactor float64
}

// Curve returns the backoff policy the retry delays follow.
func (p Policy) Curve() backoff.Policy {
	return backoff.Policy{
		InitialDelay:        p.Min,
		MaxDelay:            p.Max,
		Factor:              p.Factor,
		RandomisationFactor: p.RandomisationFactor,
	}
}

// Validate checks the growth curve first, then the run bounds.
func (p Policy) Validate() error {
	if err := p.Curve().Validate(); err != nil {
		return err
	}
	if p.Initial < 0 {
		return fmt.Errorf("%w: initial delay must not be negative, got %v", retrier.ErrInvalidConfig, p.Initial)
	}
	if p.MaxAttemptsCount < 0 {
		return fmt.Errorf("%w: max attempts count must not be negative, got %d", retrier.ErrInvalidConfig, p.MaxAttemptsCount)
	}
	if p.MaxAttemptsTime < 0 {
		return fmt.Errorf("%w: max attempts time must not be negative, got %v", retrier.ErrInvalidConfig, p.MaxAttemptsTime)
	}
	return nil
}
