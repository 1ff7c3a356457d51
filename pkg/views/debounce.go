package views

import (
	"sync"
	"time"
)

// DefaultQuietPeriod is the debounce window applied to search input before
// it reaches FilterMissions.
const DefaultQuietPeriod = 500 * time.Millisecond

// Debouncer coalesces rapid triggers into one callback after a quiet
// period. Each Trigger cancels the previously scheduled task before
// scheduling its own, so only the last input in a burst fires.
type Debouncer struct {
	mu    sync.Mutex
	quiet time.Duration
	timer *time.Timer
}

// NewDebouncer creates a debouncer with the given quiet period;
// zero takes DefaultQuietPeriod.
func NewDebouncer(quiet time.Duration) *Debouncer {
	if quiet == 0 {
		quiet = DefaultQuietPeriod
	}
	return &Debouncer{quiet: quiet}
}

// Trigger schedules fn to run after the quiet period, superseding any
// pending task.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, fn)
}

// Stop cancels any pending task.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
