package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrOpenCircuit is returned when the breaker refuses a call.
var ErrOpenCircuit = errors.New("resilience: circuit open")

type state int

const (
	stateClosed state = iota
	stateOpen
	stateHalfOpen
)

// Breaker is a failure-counting circuit breaker. After Threshold
// consecutive failures it opens for Cooldown, then lets a single probe
// through before closing again.
type Breaker struct {
	Threshold int
	Cooldown  time.Duration

	mu       sync.Mutex
	st       state
	failures int
	openedAt time.Time
	now      func() time.Time
}

// NewBreaker constructs a closed breaker.
func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &Breaker{Threshold: threshold, Cooldown: cooldown, now: time.Now}
}

// Allow reports whether a call may proceed.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.st {
	case stateClosed:
		return true
	case stateOpen:
		if b.now().Sub(b.openedAt) >= b.Cooldown {
			b.st = stateHalfOpen
			return true
		}
		return false
	default: // half-open: one probe at a time
		return false
	}
}

// Report records the outcome of a call previously allowed through.
func (b *Breaker) Report(ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ok {
		b.st = stateClosed
		b.failures = 0
		return
	}
	b.failures++
	if b.st == stateHalfOpen || b.failures >= b.Threshold {
		b.st = stateOpen
		b.openedAt = b.now()
		b.failures = 0
	}
}
