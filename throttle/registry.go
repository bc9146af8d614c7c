package throttle

import (
	"math/rand"
	"sync"
	"time"
)

// Per-recipient pacing defaults. The platform flags accounts that send
// to the same contact on a fixed beat, so each recipient gets its own
// interval somewhere in this range, chosen once and kept for the life
// of the process.
const (
	DefaultMinInterval = 1 * time.Second
	DefaultMaxInterval = 3 * time.Second
)

// Registry hands out one capacity-1 FixedWindow per recipient id,
// creating it on first observation. Entries are never evicted.
type Registry struct {
	minInterval time.Duration
	maxInterval time.Duration

	mu        sync.Mutex
	rng       *rand.Rand
	throttles map[string]*FixedWindow
}

type RegistryOption func(*Registry)

// WithIntervalRange overrides the [min, max) window range. Tests use
// this to shrink the pacing to milliseconds.
func WithIntervalRange(min, max time.Duration) RegistryOption {
	return func(r *Registry) {
		r.minInterval = min
		r.maxInterval = max
	}
}

// WithRand replaces the random source used to draw windows, for
// deterministic tests.
func WithRand(rng *rand.Rand) RegistryOption {
	return func(r *Registry) { r.rng = rng }
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		minInterval: DefaultMinInterval,
		maxInterval: DefaultMaxInterval,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		throttles:   make(map[string]*FixedWindow),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// For returns the recipient's throttle, creating it on first use. The
// window is drawn once; repeat calls always return the same limiter.
func (r *Registry) For(recipient string) *FixedWindow {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.throttles[recipient]; ok {
		return t
	}
	window := r.minInterval
	if span := r.maxInterval - r.minInterval; span > 0 {
		window += time.Duration(r.rng.Int63n(int64(span)))
	}
	t := NewFixedWindow(1, window)
	r.throttles[recipient] = t
	return t
}

// Len reports how many recipients have been observed.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.throttles)
}
