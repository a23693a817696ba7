package backoff

import (
	"fmt"
	"math"
	"time"

	"github.com/vvka-141/retrier/pkg/retrier"
)

var _ retrier.DelayStrategy = Policy{}

// Policy describes an exponential delay curve.
type Policy struct {
	// InitialDelay is the delay at step 0. Must be at least 1ms.
	InitialDelay time.Duration

	// MaxDelay caps every delay. Must be at least 1ms and greater than InitialDelay.
	MaxDelay time.Duration

	// Factor is the per-step growth multiplier. Zero means retrier.DefaultFactor.
	Factor float64

	// RandomisationFactor is the fraction of jitter added on top of the
	// deterministic curve (0.0-1.0). A value of 0.2 scales each delay by a
	// random multiplier in [1, 1.2].
	RandomisationFactor float64
}

// Validate checks the policy bounds in a fixed order: initial delay, max
// delay, range, randomisation factor, factor.
func (p Policy) Validate() error {
	if p.InitialDelay < retrier.DelayUnit {
		return fmt.Errorf("%w, got %v", retrier.ErrInvalidInitialDelay, p.InitialDelay)
	}
	if p.MaxDelay < retrier.DelayUnit {
		return fmt.Errorf("%w, got %v", retrier.ErrInvalidMaxDelay, p.MaxDelay)
	}
	if p.MaxDelay <= p.InitialDelay {
		return fmt.Errorf("%w, got initial %v and max %v", retrier.ErrInvalidRange, p.InitialDelay, p.MaxDelay)
	}
	if p.RandomisationFactor < 0 || p.RandomisationFactor > 1 {
		return fmt.Errorf("%w, got %v", retrier.ErrInvalidJitter, p.RandomisationFactor)
	}
	if p.Factor != 0 && p.Factor < 1 {
		return fmt.Errorf("%w, got %v", retrier.ErrInvalidFactor, p.Factor)
	}
	return nil
}

// WithDefaults returns a copy with unset fields filled in.
func (p Policy) WithDefaults() Policy {
	if p.Factor == 0 {
		p.Factor = retrier.DefaultFactor
	}
	return p
}

// DelayFor returns the delay for step without any side effects:
//
//	min(round(m * InitialDelay * Factor^step), MaxDelay)
//
// where m is 1 when RandomisationFactor is 0 and 1 + random()*RandomisationFactor
// otherwise. Delays are rounded to whole milliseconds. A nil random is
// treated as a source that always returns 0.
func (p Policy) DelayFor(step int, random func() float64) time.Duration {
	if step < 0 {
		step = 0
	}
	p = p.WithDefaults()

	multiplier := 1.0
	if p.RandomisationFactor > 0 && random != nil {
		multiplier = 1 + random()*p.RandomisationFactor
	}

	initialMs := float64(p.InitialDelay) / float64(retrier.DelayUnit)
	maxMs := float64(p.MaxDelay) / float64(retrier.DelayUnit)

	// Pow overflows to +Inf for large steps, which the cap absorbs.
	delayMs := math.Round(multiplier * initialMs * math.Pow(p.Factor, float64(step)))
	if delayMs > maxMs || math.IsInf(delayMs, 0) || math.IsNaN(delayMs) {
		return p.MaxDelay
	}
	return time.Duration(delayMs) * retrier.DelayUnit
}
