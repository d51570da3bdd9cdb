// Package clock abstracts the wall clock and timer scheduling so that
// time-driven components can be tested deterministically.
package clock

import (
	"sync"
	"time"
)

// Clock provides the current time and schedules callbacks
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a handle to a scheduled callback
type Timer interface {
	// Stop cancels the callback. It returns false if the callback already ran or was stopped.
	Stop() bool
}

type realClock struct{}

// New returns a Clock backed by the system time
func New() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type repeating struct {
	mu      sync.Mutex
	stopped bool
	current Timer
}

// Every calls f every d until the returned Timer is stopped. The next call is
// scheduled after f returns, so calls never overlap.
func Every(c Clock, d time.Duration, f func()) Timer {
	r := &repeating{}
	r.schedule(c, d, f)
	return r
}

func (r *repeating) schedule(c Clock, d time.Duration, f func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	r.current = c.AfterFunc(d, func() {
		if r.isStopped() {
			return
		}
		f()
		r.schedule(c, d, f)
	})
}

func (r *repeating) isStopped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopped
}

func (r *repeating) Stop() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return false
	}
	r.stopped = true
	if r.current != nil {
		r.current.Stop()
	}
	return true
}
