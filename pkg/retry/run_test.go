package retry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/retrier/pkg/retrier"
)

// flakyAction fails until it has been called failUntil times, then returns value.
type flakyAction struct {
	calls     int
	failUntil int
	err       error
	value     int
}

func (a *flakyAction) run(ctx context.Context) (int, error) {
	a.calls++
	if a.calls < a.failUntil {
		return 0, a.err
	}
	return a.value, nil
}

func TestRun_ResolvesAfterRejections(t *testing.T) {
	r, c, ev := newTestRetrier[int](t, basicPolicy())
	action := &flakyAction{failUntil: 4, err: errors.New("transient"), value: 42}

	future := r.Run(action.run)
	assert.Zero(t, action.calls, "Run must not call the action synchronously")

	c.Advance(time.Minute)

	v, err := future.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 4, action.calls)
	assert.Equal(t, []string{"attempt", "attempt", "attempt", "attempt", "succeeded"}, ev.log)
}

func TestRun_RejectsOnCountCeiling(t *testing.T) {
	policy := basicPolicy()
	policy.MaxAttemptsCount = 3
	r, c, _ := newTestRetrier[int](t, policy)
	opErr := errors.New("transient")
	action := &flakyAction{failUntil: 100, err: opErr}

	future := r.Run(action.run)
	c.Advance(time.Minute)

	_, err := future.Wait(context.Background())
	assert.ErrorIs(t, err, retrier.ErrMaxAttemptsReached)
	assert.ErrorIs(t, err, opErr)
	assert.Equal(t, 3, action.calls)
}

func TestRun_RejectsOnTimeCeiling(t *testing.T) {
	policy := Policy{Min: 100 * time.Millisecond, Max: 10 * time.Second, MaxAttemptsTime: time.Second}
	r, c, _ := newTestRetrier[int](t, policy)
	action := &flakyAction{failUntil: 100, err: errors.New("transient")}

	future := r.Run(action.run)
	c.Advance(time.Minute)

	_, err := future.Wait(context.Background())
	require.Error(t, err)
	assert.Equal(t, retrier.MaxAttemptTimeMessage, err.Error())
	// Attempts at 0, 100, 300, 700ms; the next would start at 1500ms.
	assert.Equal(t, 4, action.calls)
}

func TestRun_RetryAfterOverridesDelay(t *testing.T) {
	r, c, ev := newTestRetrier[int](t, basicPolicy())
	calls := 0
	future := r.Run(func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, RetryAfter(errors.New("429"), 300*time.Millisecond)
		}
		return calls, nil
	})

	c.Advance(299 * time.Millisecond)
	assert.Equal(t, 1, calls)
	c.Advance(time.Millisecond)

	v, err := future.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, []time.Duration{0, 300, 300}, millis(ev.at))
}

func TestRun_ContextCancelledOnSettle(t *testing.T) {
	r, c, _ := newTestRetrier[int](t, basicPolicy())
	var actionCtx context.Context
	r.Run(func(ctx context.Context) (int, error) {
		actionCtx = ctx
		return 0, errors.New("transient")
	})

	c.Advance(0)
	require.NotNil(t, actionCtx)
	assert.NoError(t, actionCtx.Err())

	r.Cancel()
	assert.ErrorIs(t, actionCtx.Err(), context.Canceled)
}

func TestRun_SecondCallDoesNotSubscribeAgain(t *testing.T) {
	r, c, _ := newTestRetrier[int](t, basicPolicy())
	first, second := 0, 0

	f1 := r.Run(func(ctx context.Context) (int, error) { first++; return 1, nil })
	f2 := r.Run(func(ctx context.Context) (int, error) { second++; return 2, nil })
	c.Advance(time.Second)

	assert.Same(t, f1, f2)
	assert.Equal(t, 1, first)
	assert.Zero(t, second)
}

func TestRetryAfter_NilError(t *testing.T) {
	assert.NoError(t, RetryAfter(nil, time.Second))
}

func TestRetryAfter_Unwraps(t *testing.T) {
	base := errors.New("busy")
	err := RetryAfter(base, time.Second)

	assert.ErrorIs(t, err, base)
	assert.Equal(t, "busy", err.Error())
	d, ok := delayOverride(err)
	assert.True(t, ok)
	assert.Equal(t, time.Second, d)
}

func TestFuture_WaitRespectsContext(t *testing.T) {
	f := newFuture[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := f.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, f.Settled())
}

func TestFuture_SettlesOnce(t *testing.T) {
	f := newFuture[string]()

	assert.True(t, f.resolve("a"))
	assert.False(t, f.resolve("b"))
	assert.False(t, f.reject(errors.New("c")))

	v, err := f.Wait(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "a", v)
	<-f.Done()
}

func TestRun_RealClock(t *testing.T) {
	var calls atomic.Int32
	r, err := New[string](Policy{Min: time.Millisecond, Max: 5 * time.Millisecond, MaxAttemptsCount: 10})
	require.NoError(t, err)

	future := r.Run(func(ctx context.Context) (string, error) {
		if calls.Add(1) < 3 {
			return "", errors.New("not yet")
		}
		return "ready", nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	v, err := future.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ready", v)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCancel_RealClockFromAnotherGoroutine(t *testing.T) {
	r, err := New[int](Policy{Min: time.Millisecond, Max: 2 * time.Millisecond})
	require.NoError(t, err)

	cancelled := make(chan struct{})
	r.OnCancelled(func() { close(cancelled) })
	future := r.Run(func(ctx context.Context) (int, error) {
		return 0, errors.New("never succeeds")
	})

	time.AfterFunc(20*time.Millisecond, r.Cancel)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = future.Wait(ctx)
	assert.ErrorIs(t, err, retrier.ErrCancelled)

	select {
	case <-cancelled:
	case <-ctx.Done():
		t.Fatal("cancelled notification not delivered")
	}
}

// gateLogger stalls the first Verbose call with the given format until
// release is closed.
type gateLogger struct {
	format  string
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGateLogger(format string) *gateLogger {
	return &gateLogger{format: format, entered: make(chan struct{}), release: make(chan struct{})}
}

func (l *gateLogger) Verbose(format string, args ...interface{}) {
	if format != l.format {
		return
	}
	l.once.Do(func() {
		close(l.entered)
		<-l.release
	})
}

func (l *gateLogger) Info(format string, args ...interface{})  {}
func (l *gateLogger) Error(format string, args ...interface{}) {}

func TestCancel_DuringAttemptDispatchKeepsOrder(t *testing.T) {
	gate := newGateLogger("attempt %d")
	r, err := New[int](Policy{Min: 10 * time.Millisecond, Max: 20 * time.Millisecond}, WithLogger(gate))
	require.NoError(t, err)

	var mu sync.Mutex
	var log []string
	add := func(kind string) {
		mu.Lock()
		defer mu.Unlock()
		log = append(log, kind)
	}
	r.OnAttempt(func() { add("attempt") })
	r.OnCancelled(func() { add("cancelled") })

	future := r.Start()
	select {
	case <-gate.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first attempt never fired")
	}

	// The timer goroutine has committed the attempt but not yet delivered it.
	r.Cancel()
	close(gate.release)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = future.Wait(ctx)
	assert.ErrorIs(t, err, retrier.ErrCancelled)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(log) == 2
	}, 5*time.Second, time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"attempt", "cancelled"}, log)
	assert.Equal(t, StateSettled, r.State())
}
