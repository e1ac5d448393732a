// Package debounce delays publishing a value until its input has been quiet
// for a fixed period.
package debounce

import (
	"sync"
	"time"
)

// timer is the part of *time.Timer the debouncer needs.
type timer interface {
	Stop() bool
}

type afterFunc func(d time.Duration, f func()) timer

func realAfterFunc(d time.Duration, f func()) timer {
	return time.AfterFunc(d, f)
}

// Debouncer publishes the most recent input once no new input arrived for delay.
// Every new input restarts the wait, so intermediate values are never published.
// An input equal to the latest one is ignored and does not restart the wait.
type Debouncer[T comparable] struct {
	mu       sync.Mutex
	delay    time.Duration
	latest   T
	value    T
	gen      uint64 // bumped on every restart; stale callbacks compare against it
	pending  timer
	after    afterFunc
	onChange func(T)
}

// New creates a debouncer whose published value starts at initial.
// onChange may be nil; when set it runs on the timer goroutine after each publish.
func New[T comparable](initial T, delay time.Duration, onChange func(T)) *Debouncer[T] {
	return newWithTimer(initial, delay, onChange, realAfterFunc)
}

func newWithTimer[T comparable](initial T, delay time.Duration, onChange func(T), after afterFunc) *Debouncer[T] {
	return &Debouncer[T]{
		delay:    delay,
		latest:   initial,
		value:    initial,
		after:    after,
		onChange: onChange,
	}
}

// Set records a new input and (re)starts the quiet period.
func (d *Debouncer[T]) Set(v T) {
	d.mu.Lock()
	if v == d.latest {
		d.mu.Unlock()
		return
	}
	d.latest = v
	d.gen++
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}

	gen := d.gen
	if d.delay <= 0 {
		d.mu.Unlock()
		d.publish(gen, v)
		return
	}

	d.pending = d.after(d.delay, func() { d.publish(gen, v) })
	d.mu.Unlock()
}

func (d *Debouncer[T]) publish(gen uint64, v T) {
	d.mu.Lock()
	if gen != d.gen {
		// superseded by a later Set or by Stop
		d.mu.Unlock()
		return
	}
	d.pending = nil
	if d.value == v {
		d.mu.Unlock()
		return
	}
	d.value = v
	cb := d.onChange
	d.mu.Unlock()

	if cb != nil {
		cb(v)
	}
}

// Value returns the last published value.
func (d *Debouncer[T]) Value() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value
}

// Pending reports whether an input is waiting for its quiet period to elapse.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Stop cancels any pending publish. The published value is left unchanged and
// the latest input is reset to it, so setting the same input again schedules anew.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
	d.latest = d.value
}
