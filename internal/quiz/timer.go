package quiz

import (
	"sync"
	"time"
)

// tickInterval is the wall-clock period of the session countdown.
const tickInterval = time.Second

// timer drives the session countdown: it invokes its callback once per
// interval until stopped. Stop is idempotent and synchronous: once it
// returns, no further callback will be delivered, so a stale tick can never
// mutate a session that has left the ACTIVE state. The engine additionally
// guards every tick with a state check.
type timer struct {
	mu      sync.Mutex
	stopCh  chan struct{}
	stopped bool
}

// startTimer arms a new countdown delivering fn every interval.
func startTimer(interval time.Duration, fn func()) *timer {
	t := &timer{stopCh: make(chan struct{})}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-t.stopCh:
				return
			case <-ticker.C:
				// Re-check stop before firing so Stop followed by a
				// queued tick cannot race the callback in.
				t.mu.Lock()
				stopped := t.stopped
				t.mu.Unlock()
				if stopped {
					return
				}
				fn()
			}
		}
	}()

	return t
}

// Stop cancels the countdown. Safe to call multiple times.
func (t *timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	close(t.stopCh)
}
