package retry

import "context"

// Action is the operation Run retries. The context is cancelled once the run
// settles, including by Cancel.
type Action[T any] func(ctx context.Context) (T, error)

// Run subscribes action to attempts and starts the run. A nil error from
// action settles the run with its value; an error counts as a failed attempt
// (use RetryAfter to override the next delay). Run on a started Retrier
// returns its future without subscribing.
//
// Example:
//
//	r, err := retry.New[*http.Response](retry.Policy{
//	    Min:              100 * time.Millisecond,
//	    Max:              5 * time.Second,
//	    MaxAttemptsCount: 5,
//	})
//	if err != nil {
//	    return err
//	}
//	resp, err := r.Run(func(ctx context.Context) (*http.Response, error) {
//	    return client.Do(req.WithContext(ctx))
//	}).Wait(ctx)
func (r *Retrier[T]) Run(action Action[T]) *Future[T] {
	r.mu.Lock()
	started := r.state != StateIdle
	r.mu.Unlock()
	if started {
		return r.future
	}

	r.OnAttempt(func() {
		value, err := action(r.ctx)
		if err != nil {
			if d, ok := delayOverride(err); ok {
				r.FailedAfter(err, d)
				return
			}
			r.Failed(err)
			return
		}
		r.Succeeded(value)
	})
	return r.Start()
}
