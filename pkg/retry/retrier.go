package retry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vvka-141/retrier/internal/logging"
	"github.com/vvka-141/retrier/internal/notify"
	"github.com/vvka-141/retrier/pkg/backoff"
	"github.com/vvka-141/retrier/pkg/retrier"
)

// State is the position of a Retrier in its lifecycle.
type State int

const (
	// StateIdle is the state before Start.
	StateIdle State = iota
	// StateScheduled means a timer is pending for the next attempt.
	StateScheduled
	// StateAttempting means an attempt notification fired and the outcome is awaited.
	StateAttempting
	// StateSettled is terminal: the future has settled and no notification follows.
	StateSettled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScheduled:
		return "scheduled"
	case StateAttempting:
		return "attempting"
	case StateSettled:
		return "settled"
	}
	return "unknown"
}

// Retrier drives repeated attempts of a caller-defined action on a timer
// until the caller reports success, the run is cancelled, or a ceiling is hit.
//
// A Retrier is single-use: one Start (or Run) per instance.
type Retrier[T any] struct {
	policy Policy
	curve  backoff.Policy
	opts   options
	logger retrier.Logger
	runID  uuid.UUID

	ctx       context.Context
	cancelCtx context.CancelFunc

	dispatch notify.Dispatcher

	mu        sync.Mutex
	state     State
	attempt   int
	startedAt time.Time
	future    *Future[T]
	timer     retrier.Timer
	timerGen  uint64

	onAttempt   []func()
	onSucceeded []func(result T)
	onFailed    []func(err error)
	onCancelled []func()
}

// New validates policy and returns an idle Retrier.
func New[T any](policy Policy, opts ...Option) (*Retrier[T], error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	o := newOptions(opts)
	id := uuid.New()
	ctx, cancel := context.WithCancel(context.Background())

	return &Retrier[T]{
		policy:    policy,
		curve:     policy.Curve().WithDefaults(),
		opts:      o,
		logger:    logging.Scoped(o.logger, "run "+id.String()[:8]),
		runID:     id,
		ctx:       ctx,
		cancelCtx: cancel,
		future:    newFuture[T](),
	}, nil
}

// OnAttempt registers a handler called each time an attempt is due. The
// handler (or whoever it hands off to) must eventually call Succeeded,
// Failed or FailedAfter.
func (r *Retrier[T]) OnAttempt(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onAttempt = append(r.onAttempt, fn)
}

// OnSucceeded registers a handler called with the result when the run succeeds.
func (r *Retrier[T]) OnSucceeded(fn func(result T)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onSucceeded = append(r.onSucceeded, fn)
}

// OnFailed registers a handler called with the terminal error when the run fails.
func (r *Retrier[T]) OnFailed(fn func(err error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onFailed = append(r.onFailed, fn)
}

// OnCancelled registers a handler called when the run is cancelled.
func (r *Retrier[T]) OnCancelled(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onCancelled = append(r.onCancelled, fn)
}

// Start schedules the first attempt after the policy's Initial delay and
// returns the outcome future. A zero Initial delay still goes through the
// clock, so no attempt fires before Start returns. Later calls return the
// same future and do nothing else.
func (r *Retrier[T]) Start() *Future[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateIdle {
		return r.future
	}
	r.startedAt = r.opts.clock.Now()
	r.state = StateScheduled
	r.scheduleLocked(r.policy.Initial)
	r.logger.Verbose("started, first attempt in %v", r.policy.Initial)
	return r.future
}

// Succeeded settles the run with result. It is a no-op once settled.
func (r *Retrier[T]) Succeeded(result T) {
	r.mu.Lock()
	if r.state == StateSettled {
		r.mu.Unlock()
		return
	}
	r.settleLocked()
	r.future.resolve(result)
	handlers := append([]func(T){}, r.onSucceeded...)
	r.dispatch.Enqueue(func() {
		for _, h := range handlers {
			h(result)
		}
	})
	attempts := r.attempt
	r.mu.Unlock()

	r.logger.Verbose("succeeded after %d attempt(s)", attempts)
	r.dispatch.Drain()
}

// Failed reports that the current attempt failed and schedules the next one
// on the growth curve, unless a ceiling stops the run. It is ignored unless
// an attempt is awaiting its outcome.
func (r *Retrier[T]) Failed(err error) {
	r.fail(err, 0, false)
}

// FailedAfter is Failed with the next attempt scheduled after delay instead
// of the growth curve's value. The override applies to this step only.
func (r *Retrier[T]) FailedAfter(err error, delay time.Duration) {
	r.fail(err, delay, true)
}

// Cancel stops the run: the pending timer is cancelled, the future is
// rejected with retrier.ErrCancelled and a cancelled notification fires.
// An attempt already in flight is not interrupted, but the context handed to
// Run actions is cancelled. No-op once settled.
func (r *Retrier[T]) Cancel() {
	r.mu.Lock()
	if r.state == StateSettled {
		r.mu.Unlock()
		return
	}
	r.settleLocked()
	r.future.reject(retrier.ErrCancelled)
	handlers := append([]func(){}, r.onCancelled...)
	r.dispatch.Enqueue(func() {
		for _, h := range handlers {
			h()
		}
	})
	r.mu.Unlock()

	r.logger.Verbose("cancelled")
	r.dispatch.Drain()
}

// Future returns the outcome future. It settles only after Start.
func (r *Retrier[T]) Future() *Future[T] {
	return r.future
}

// AttemptNumber returns the number of attempts issued so far.
func (r *Retrier[T]) AttemptNumber() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempt
}

// State returns the current lifecycle state.
func (r *Retrier[T]) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// RunID identifies this run in log lines.
func (r *Retrier[T]) RunID() uuid.UUID {
	return r.runID
}

func (r *Retrier[T]) fail(err error, override time.Duration, hasOverride bool) {
	r.mu.Lock()
	if r.state != StateAttempting {
		state := r.state
		r.mu.Unlock()
		r.logger.Verbose("ignoring failure reported while %s: %v", state, err)
		return
	}

	elapsed := r.opts.clock.Now().Sub(r.startedAt)

	if c := r.opts.classifier; c != nil && err != nil && !c.IsTransient(err) {
		r.logger.Verbose("attempt %d failed with a fatal error: %v", r.attempt, err)
		r.rejectLocked(err)
		return
	}

	if limit := r.policy.MaxAttemptsCount; limit > 0 && r.attempt >= limit {
		r.logger.Verbose("attempt %d failed, attempt limit %d reached: %v", r.attempt, limit, err)
		r.rejectLocked(&CeilingError{
			Reason:   retrier.ErrMaxAttemptsReached,
			Cause:    err,
			Attempts: r.attempt,
			Elapsed:  elapsed,
		})
		return
	}

	delay := override
	if !hasOverride {
		delay = r.curve.DelayFor(r.attempt-1, r.opts.random)
	}
	if delay < 0 {
		delay = 0
	}

	if limit := r.policy.MaxAttemptsTime; limit > 0 && elapsed+delay > limit {
		r.logger.Verbose("attempt %d failed, next attempt at %v would pass the %v limit: %v",
			r.attempt, elapsed+delay, limit, err)
		r.rejectLocked(&CeilingError{
			Reason:   retrier.ErrMaxAttemptTimeReached,
			Cause:    err,
			Attempts: r.attempt,
			Elapsed:  elapsed,
		})
		return
	}

	r.state = StateScheduled
	r.scheduleLocked(delay)
	attempt := r.attempt
	r.mu.Unlock()

	r.logger.Verbose("attempt %d failed, retrying in %v: %v", attempt, delay, err)
}

// rejectLocked settles the run with err, releases the lock and emits failed.
func (r *Retrier[T]) rejectLocked(err error) {
	r.settleLocked()
	r.future.reject(err)
	handlers := append([]func(error){}, r.onFailed...)
	r.dispatch.Enqueue(func() {
		for _, h := range handlers {
			h(err)
		}
	})
	r.mu.Unlock()

	r.dispatch.Drain()
}

func (r *Retrier[T]) settleLocked() {
	r.stopTimerLocked()
	r.state = StateSettled
	r.cancelCtx()
}

func (r *Retrier[T]) scheduleLocked(delay time.Duration) {
	r.stopTimerLocked()
	gen := r.timerGen
	r.timer = r.opts.clock.AfterFunc(delay, func() { r.fire(gen) })
}

// stopTimerLocked stops the pending timer and invalidates any callback that
// was already queued.
func (r *Retrier[T]) stopTimerLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.timerGen++
}

func (r *Retrier[T]) fire(gen uint64) {
	r.mu.Lock()
	if gen != r.timerGen || r.state != StateScheduled {
		r.mu.Unlock()
		return
	}
	r.timer = nil
	r.state = StateAttempting
	r.attempt++
	attempt := r.attempt
	handlers := append([]func(){}, r.onAttempt...)
	// Queued under the lock so a concurrent Cancel cannot overtake it.
	r.dispatch.Enqueue(func() {
		for _, h := range handlers {
			h()
		}
	})
	r.mu.Unlock()

	r.logger.Verbose("attempt %d", attempt)
	r.dispatch.Drain()
}
