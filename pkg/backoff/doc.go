// Package backoff produces capped, optionally jittered exponential delay
// sequences and drives an observable schedule/notify cycle around them.
//
// # Example Usage
//
//	b, err := backoff.Exponential(backoff.Policy{
//	    InitialDelay: 10 * time.Millisecond,
//	    MaxDelay:     time.Second,
//	})
//	if err != nil {
//	    return err
//	}
//
//	b.Next() // 10ms
//	b.Next() // 20ms
//	b.Reset()
//
// # Backoff Cycles
//
// Backoff(err) starts a cycle: it emits a backoff notification, waits for the
// computed delay and emits a ready notification. The caller retries from the
// ready handler and calls Backoff again on the next failure. With a fail limit
// set via FailAfter, the call that finds the limit reached emits fail instead
// and resets the generator.
//
//	b.OnReady(func(step int, delay time.Duration) { go attempt() })
//	b.OnFail(func(err error) { log.Printf("giving up: %v", err) })
//	if err := b.FailAfter(5); err != nil {
//	    return err
//	}
//
// Next and Backoff advance the same step counter.
//
// # Thread Safety
//
// Backoff instances are safe for concurrent use; notifications are delivered
// one at a time in the order the state changes occurred.
package backoff
