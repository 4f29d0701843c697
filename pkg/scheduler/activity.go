package scheduler

import (
	"context"
	"sync"
	"time"
)

// Activity records the time of the most recent user activity.
type Activity struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

// NewActivity returns a tracker with no recorded activity.
func NewActivity() *Activity {
	return &Activity{now: time.Now}
}

// Touch records activity now.
func (a *Activity) Touch() {
	a.mu.Lock()
	a.last = a.now()
	a.mu.Unlock()
}

// Last returns the most recent activity time (zero if none).
func (a *Activity) Last() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

// WaitSettled blocks until at least window has elapsed since the last
// activity. Activity recorded while waiting extends the wait.
func (a *Activity) WaitSettled(ctx context.Context, window time.Duration) error {
	for {
		remaining := window - a.now().Sub(a.Last())
		if remaining <= 0 {
			return nil
		}
		timer := time.NewTimer(remaining)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
