package retrier

import "time"

// Clock abstracts time so schedulers can be driven deterministically in tests.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc runs f in its own goroutine (or, for test clocks, inline)
	// once d has elapsed and returns a handle that can stop it.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a one-shot scheduled callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped the timer; false means it already fired or was stopped.
	Stop() bool
}
