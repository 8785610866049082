package client

import (
	"sync"
	"time"
)

const defaultDebounce = 300 * time.Millisecond

// Debouncer coalesces a burst of calls into one: each Do resets the timer,
// and only the last function runs once the burst goes quiet. Used by
// search-as-you-type to guarantee at most one in-flight query per burst of
// keystrokes. It cancels pending work only; a function already started runs
// to completion.
type Debouncer struct {
	// Delay before the pending function fires; 0 means 300ms.
	Delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// Do schedules fn, cancelling any previously pending call.
func (d *Debouncer) Do(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	delay := d.Delay
	if delay <= 0 {
		delay = defaultDebounce
	}
	d.timer = time.AfterFunc(delay, fn)
}

// Stop cancels any pending call without running it.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
