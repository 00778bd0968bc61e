package cache

import (
	"sync"
	"time"
)

type state int

const (
	closed   state = iota // Redis calls pass
	open                  // Redis is skipped; the ranking comes from SQL
	halfOpen              // one Redis call is checking whether it is back
)

// breaker stops cache traffic after consecutive Redis failures, so a dead
// Redis costs one dial timeout per openFor window instead of one per request.
type breaker struct {
	mu               sync.Mutex
	st               state
	consecutiveFails int
	failThreshold    int
	openFor          time.Duration
	nextTryAt        time.Time
	recheckInFlight    bool
	now              func() time.Time
}

func newBreaker(threshold int, openFor time.Duration) *breaker {
	if threshold <= 0 {
		threshold = 3
	}
	if openFor <= 0 {
		openFor = 15 * time.Second
	}
	return &breaker{failThreshold: threshold, openFor: openFor, now: time.Now}
}

// acquire reports whether the next ranking lookup may touch Redis. While
// Redis is considered down, one lookup per openFor window is let through to
// find out whether it came back.
func (b *breaker) acquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.st {
	case open:
		if b.now().After(b.nextTryAt) && !b.recheckInFlight {
			b.st = halfOpen
			b.recheckInFlight = true
			return true
		}
		return false
	case halfOpen:
		if !b.recheckInFlight {
			b.recheckInFlight = true
			return true
		}
		return false
	default:
		return true
	}
}

// onSuccess records a Redis reply and resumes normal caching.
func (b *breaker) onSuccess() {
	b.mu.Lock()
	b.consecutiveFails = 0
	b.st = closed
	b.recheckInFlight = false
	b.mu.Unlock()
}

// onFailure records a Redis error. Once failThreshold errors arrive in a row,
// or the recovery check fails, ranking reads go straight to SQL for openFor.
func (b *breaker) onFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.st == halfOpen {
		b.st = open
		b.nextTryAt = b.now().Add(b.openFor)
		b.recheckInFlight = false
		return
	}

	b.consecutiveFails++
	if b.consecutiveFails >= b.failThreshold {
		b.st = open
		b.nextTryAt = b.now().Add(b.openFor)
	}
}
