package backoff

import (
	"fmt"
	"sync"
	"time"

	"github.com/vvka-141/retrier/internal/notify"
	"github.com/vvka-141/retrier/pkg/retrier"
)

// Backoff is a stateful exponential delay generator with an observable
// schedule/notify cycle and an optional fail limit.
type Backoff struct {
	policy Policy
	opts   options

	dispatch notify.Dispatcher

	mu         sync.Mutex
	step       int
	failLimit  int
	inProgress bool
	timer      retrier.Timer
	timerGen   uint64

	onBackoff []func(step int, delay time.Duration)
	onReady   []func(step int, delay time.Duration)
	onFail    []func(err error)
}

// Exponential validates policy and returns a Backoff positioned at step 0.
// Nothing is constructed when validation fails.
func Exponential(policy Policy, opts ...Option) (*Backoff, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Backoff{
		policy: policy.WithDefaults(),
		opts:   newOptions(opts),
	}, nil
}

// Policy returns the effective policy, defaults applied.
func (b *Backoff) Policy() Policy {
	return b.policy
}

// OnBackoff registers a handler called when a cycle is scheduled.
func (b *Backoff) OnBackoff(fn func(step int, delay time.Duration)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onBackoff = append(b.onBackoff, fn)
}

// OnReady registers a handler called when a cycle's delay has elapsed.
func (b *Backoff) OnReady(fn func(step int, delay time.Duration)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onReady = append(b.onReady, fn)
}

// OnFail registers a handler called when Backoff finds the fail limit reached.
func (b *Backoff) OnFail(fn func(err error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onFail = append(b.onFail, fn)
}

// Next returns the delay for the current step and advances the step.
// It does not touch any pending cycle.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.advanceLocked()
}

// Backoff starts a cycle: it consumes one step, emits backoff(step, delay)
// and emits ready(step, delay) once delay has elapsed. It is a no-op while a
// cycle is in progress. When a fail limit is set and the step has reached it,
// Backoff emits fail(err) and resets instead. err may be nil. The reset
// happens before fail handlers run, so a handler sees step 0 and may start a
// new cycle.
func (b *Backoff) Backoff(err error) {
	b.mu.Lock()
	if b.inProgress {
		b.mu.Unlock()
		return
	}

	if b.failLimit > 0 && b.step >= b.failLimit {
		b.opts.logger.Verbose("backoff: fail limit %d reached: %v", b.failLimit, err)
		handlers := append([]func(error){}, b.onFail...)
		b.dispatch.Enqueue(func() {
			for _, h := range handlers {
				h(err)
			}
		})
		b.resetLocked()
		b.mu.Unlock()

		b.dispatch.Drain()
		return
	}

	step := b.step
	delay := b.advanceLocked()
	b.inProgress = true
	handlers := append([]func(int, time.Duration){}, b.onBackoff...)
	// Queued before the timer is armed so ready can never overtake it.
	b.dispatch.Enqueue(func() {
		for _, h := range handlers {
			h(step, delay)
		}
	})
	b.timerGen++
	gen := b.timerGen
	b.timer = b.opts.clock.AfterFunc(delay, func() { b.fire(gen, step, delay) })
	b.mu.Unlock()

	b.opts.logger.Verbose("backoff: step %d scheduled in %v", step, delay)
	b.dispatch.Drain()
}

// FailAfter sets the number of cycles after which Backoff emits fail.
func (b *Backoff) FailAfter(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w, got %d", retrier.ErrInvalidFailLimit, n)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failLimit = n
	return nil
}

// Reset cancels any pending cycle and rewinds to step 0.
// The fail limit is kept.
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetLocked()
}

// Step returns the current position in the sequence.
func (b *Backoff) Step() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.step
}

// InProgress reports whether a cycle is waiting for its delay to elapse.
func (b *Backoff) InProgress() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inProgress
}

func (b *Backoff) advanceLocked() time.Duration {
	delay := b.policy.DelayFor(b.step, b.opts.random)
	b.step++
	return delay
}

func (b *Backoff) resetLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	// Invalidates callbacks that were already queued when the timer stopped.
	b.timerGen++
	b.inProgress = false
	b.step = 0
}

func (b *Backoff) fire(gen uint64, step int, delay time.Duration) {
	b.mu.Lock()
	if gen != b.timerGen {
		b.mu.Unlock()
		return
	}
	b.inProgress = false
	b.timer = nil
	handlers := append([]func(int, time.Duration){}, b.onReady...)
	b.dispatch.Enqueue(func() {
		for _, h := range handlers {
			h(step, delay)
		}
	})
	b.mu.Unlock()

	b.dispatch.Drain()
}
