package schedule

import (
	"sync"
	"time"
)

// Ticker calls a function repeatedly at a fixed interval until stopped.
type Ticker struct {
	clock    Clock
	interval time.Duration
	fn       func()

	mu      sync.Mutex
	timer   Timer
	stopped bool
}

// Every starts a ticker that calls fn every interval. The first call happens
// one interval from now.
func Every(clock Clock, interval time.Duration, fn func()) *Ticker {
	t := &Ticker{clock: clock, interval: interval, fn: fn}
	t.mu.Lock()
	t.armLocked()
	t.mu.Unlock()
	return t
}

func (t *Ticker) armLocked() {
	t.timer = t.clock.AfterFunc(t.interval, t.fire)
}

func (t *Ticker) fire() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.armLocked()
	t.mu.Unlock()

	t.fn()
}

// Stop cancels the ticker. No call to fn starts after Stop returns.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
	}
}
