package core

import (
	"sync"
	"time"
)

// Debouncer runs fn once after a quiet period. Every Trigger restarts the
// pending window, so a burst of triggers produces a single run after the
// burst ends.
type Debouncer struct {
	mu     sync.Mutex
	window time.Duration
	fn     func()
	timer  *time.Timer
}

func NewDebouncer(window time.Duration, fn func()) *Debouncer {
	return &Debouncer{window: window, fn: fn}
}

// Trigger schedules (or reschedules) the pending run.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fn)
}

// Stop clears any pending run.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
