package observe

import (
	"sync"
	"time"
)

// Throttler runs fn at most once per interval. The first call runs
// immediately; calls inside the window collapse into one trailing run
// at the end of the window.
type Throttler struct {
	interval time.Duration
	fn       func()
	now      func() time.Time

	mu       sync.Mutex
	lastRun  time.Time
	trailing *time.Timer
	stopped  bool
}

// NewThrottler returns a Throttler for fn.
func NewThrottler(interval time.Duration, fn func()) *Throttler {
	return &Throttler{interval: interval, fn: fn, now: time.Now}
}

// Call runs fn now or schedules the trailing run.
func (t *Throttler) Call() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	now := t.now()
	if t.interval <= 0 || t.lastRun.IsZero() || now.Sub(t.lastRun) >= t.interval {
		t.lastRun = now
		t.mu.Unlock()
		t.fn()
		return
	}
	if t.trailing == nil {
		wait := t.interval - now.Sub(t.lastRun)
		t.trailing = time.AfterFunc(wait, t.fireTrailing)
	}
	t.mu.Unlock()
}

// Stop cancels the trailing run; later Calls are ignored.
func (t *Throttler) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	if t.trailing != nil {
		t.trailing.Stop()
		t.trailing = nil
	}
}

func (t *Throttler) fireTrailing() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.trailing = nil
	t.lastRun = t.now()
	t.mu.Unlock()
	t.fn()
}
