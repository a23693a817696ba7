// Package notify delivers state-machine notifications in a single total order.
package notify

import "sync"

// Dispatcher runs queued notifications one at a time, outside the caller's
// state lock. The goroutine that finds the dispatcher idle drains the queue;
// any goroutine that drains while another drain is running (including a
// handler calling back into its owner) returns immediately and its
// notifications are delivered by the draining goroutine after the current
// one returns.
//
// Owners call Enqueue while holding their state lock, so the queue order is
// the order of state transitions, and Drain after releasing it.
//
// The zero value is ready to use.
type Dispatcher struct {
	mu       sync.Mutex
	queue    []func()
	draining bool
}

// Enqueue appends fns without running them. It never blocks on handlers and
// is safe to call with the owner's lock held.
func (d *Dispatcher) Enqueue(fns ...func()) {
	d.mu.Lock()
	d.queue = append(d.queue, fns...)
	d.mu.Unlock()
}

// Drain delivers queued notifications unless a drain is already running.
// Must not be called with the owner's lock held.
func (d *Dispatcher) Drain() {
	d.mu.Lock()
	if d.draining || len(d.queue) == 0 {
		d.mu.Unlock()
		return
	}
	d.draining = true
	d.mu.Unlock()

	d.drain()
}

// Dispatch is Enqueue followed by Drain.
func (d *Dispatcher) Dispatch(fns ...func()) {
	d.Enqueue(fns...)
	d.Drain()
}

func (d *Dispatcher) drain() {
	finished := false
	defer func() {
		if finished {
			return
		}
		// A panicking handler must not wedge the dispatcher.
		d.mu.Lock()
		d.draining = false
		d.mu.Unlock()
	}()

	for {
		d.mu.Lock()
		if len(d.queue) == 0 {
			d.draining = false
			finished = true
			d.mu.Unlock()
			return
		}
		fn := d.queue[0]
		d.queue[0] = nil
		d.queue = d.queue[1:]
		d.mu.Unlock()

		fn()
	}
}
