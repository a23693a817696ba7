// Package retry schedules repeated attempts of a fallible action.
//
// A Retrier moves through idle → scheduled → attempting → (scheduled |
// settled). Callers either drive it through events:
//
//	r, err := retry.New[string](retry.Policy{Min: 10 * time.Millisecond, Max: time.Second})
//	if err != nil {
//	    return err
//	}
//	r.OnAttempt(func() {
//	    go func() {
//	        body, err := fetch()
//	        if err != nil {
//	            r.Failed(err)
//	            return
//	        }
//	        r.Succeeded(body)
//	    }()
//	})
//	body, err := r.Start().Wait(ctx)
//
// or hand Run an action and wait on the returned Future.
//
// # Ceilings
//
// MaxAttemptsCount and MaxAttemptsTime are checked when a failure is
// reported, before the next attempt is scheduled. A run stopped by a ceiling
// fails with a *CeilingError; errors.Is matches both the ceiling sentinel and
// the error of the last attempt. The time ceiling's message is exactly
// retrier.MaxAttemptTimeMessage.
//
// # Thread Safety
//
// Methods may be called from any goroutine. Notifications are delivered one
// at a time, in state-machine order, and handlers may call back into the
// Retrier. Attempts are never overlapped: one attempt is in flight at a time.
package retry
