package renamebatch

import (
	"sync"
	"time"
)

//rateLimiter throttles the aggregate request rate across all workers.
//It records the timestamp of the last request start and makes the next
//acquirer wait until at least interval has elapsed since it. This is a
//global gap between starts, not a per-worker delay.
type rateLimiter struct {
	mu        sync.Mutex
	interval  time.Duration
	lastStart time.Time
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

//Acquire blocks until a request slot is available, then records the
//caller's start time. Returns false if cancel fires while waiting.
func (l *rateLimiter) Acquire(cancel <-chan struct{}) bool {
	if l.interval <= 0 {
		return true
	}
	for {
		l.mu.Lock()
		now := time.Now()
		next := l.lastStart.Add(l.interval)
		if l.lastStart.IsZero() || !now.Before(next) {
			l.lastStart = now
			l.mu.Unlock()
			return true
		}
		wait := next.Sub(now)
		l.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
			//another worker may have taken the slot meanwhile, re-check
		case <-cancel:
			timer.Stop()
			return false
		}
	}
}
