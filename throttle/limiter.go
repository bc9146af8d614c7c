package throttle

import (
	"sync"
	"time"
)

// FixedWindow caps the number of call starts per non-sliding time window.
// Windows are measured from the limiter's own boundaries, not from each
// call. Calls over quota wait in FIFO order until a window with spare
// capacity opens; nothing is ever dropped.
type FixedWindow struct {
	capacity int
	window   time.Duration

	mu    sync.Mutex
	start time.Time
	used  int
	queue []chan struct{}
	timer *time.Timer
}

func NewFixedWindow(capacity int, window time.Duration) *FixedWindow {
	if capacity < 1 {
		capacity = 1
	}
	return &FixedWindow{capacity: capacity, window: window}
}

// Window reports the configured window duration.
func (l *FixedWindow) Window() time.Duration { return l.window }

// Admit blocks until the call may start. Returns immediately when the
// current window has spare capacity and nobody is queued ahead.
func (l *FixedWindow) Admit() {
	l.mu.Lock()
	l.roll(time.Now())
	if len(l.queue) == 0 && l.used < l.capacity {
		l.used++
		l.mu.Unlock()
		return
	}
	ch := make(chan struct{})
	l.queue = append(l.queue, ch)
	l.arm(time.Now())
	l.mu.Unlock()
	<-ch
}

// Queued reports how many calls are currently waiting.
func (l *FixedWindow) Queued() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// roll advances to the current window and drains queued waiters, oldest
// first, up to capacity per window. When a rollover finds nothing
// queued, the next window starts at the call that observes it rather
// than on the old grid; snapping forward would let that call land
// mid-window and start less than one window before the next drained
// waiter. Caller holds l.mu.
func (l *FixedWindow) roll(now time.Time) {
	if l.start.IsZero() {
		l.start = now
		return
	}
	for now.Sub(l.start) >= l.window {
		if len(l.queue) == 0 {
			l.start = now
			l.used = 0
			return
		}
		l.start = l.start.Add(l.window)
		l.used = 0
		for l.used < l.capacity && len(l.queue) > 0 {
			ch := l.queue[0]
			l.queue = l.queue[1:]
			l.used++
			close(ch)
		}
	}
}

// arm schedules a wake-up at the next window boundary if one is not
// already pending. Caller holds l.mu.
func (l *FixedWindow) arm(now time.Time) {
	if l.timer != nil {
		return
	}
	d := l.start.Add(l.window).Sub(now)
	if d < 0 {
		d = 0
	}
	l.timer = time.AfterFunc(d, l.wake)
}

func (l *FixedWindow) wake() {
	l.mu.Lock()
	l.timer = nil
	now := time.Now()
	l.roll(now)
	if len(l.queue) > 0 {
		l.arm(now)
	}
	l.mu.Unlock()
}
