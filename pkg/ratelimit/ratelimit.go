// Package ratelimit implements sliding-window attempt limiting for
// credential endpoints. Attempts are tracked per (key, class); each class
// (login, password-reset, ...) carries its own window and maximum. The
// limiter is an injectable interface so single-instance deployments can use
// the in-memory store while multi-instance ones back it with a shared cache,
// without changing call sites.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Class names a group of endpoints sharing one limit configuration.
type Class string

// Limit configures one class: at most MaxAttempts within a trailing Window.
type Limit struct {
	Window      time.Duration
	MaxAttempts int
}

// Decision is the outcome of a single attempt check.
type Decision struct {
	// Allowed reports whether this attempt may proceed. When it is true the
	// attempt has already been recorded.
	Allowed bool

	// RetryAfter is how long the caller should wait before the next attempt
	// can succeed. Only meaningful when Allowed is false.
	RetryAfter time.Duration
}

// Limiter tracks attempts per (key, class). Implementations must be safe for
// concurrent use and must fail closed: an attempt that cannot be recorded
// reliably still counts.
type Limiter interface {
	// Check records an attempt for key within class and reports whether it
	// is allowed under the class limit.
	Check(ctx context.Context, key string, class Class) Decision

	// Reset clears the recorded attempts for key within class. Called after
	// a successful authentication so earlier failures stop counting.
	Reset(ctx context.Context, key string, class Class)
}

const sweepInterval = 5 * time.Minute

// Memory is the in-process Limiter. A single mutex serializes concurrent
// checks for the same key so two simultaneous requests can never both read
// "count < max" before either records its attempt.
type Memory struct {
	mu        sync.Mutex
	limits    map[Class]Limit
	attempts  map[string][]time.Time
	lastSweep time.Time
}

// NewMemory builds an in-memory limiter for the given class configuration.
func NewMemory(limits map[Class]Limit) *Memory {
	cp := make(map[Class]Limit, len(limits))
	for c, l := range limits {
		cp[c] = l
	}
	return &Memory{
		limits:    cp,
		attempts:  make(map[string][]time.Time),
		lastSweep: time.Now(),
	}
}

func (m *Memory) Check(_ context.Context, key string, class Class) Decision {
	m.mu.Lock()
	defer m.mu.Unlock()

	limit, ok := m.limits[class]
	if !ok || limit.MaxAttempts <= 0 {
		// Unconfigured class: no limit to enforce.
		return Decision{Allowed: true}
	}

	now := time.Now()
	m.maybeSweep(now)

	k := bucketKey(key, class)
	kept := purge(m.attempts[k], now.Add(-limit.Window))

	if len(kept) >= limit.MaxAttempts {
		m.attempts[k] = kept
		// The oldest surviving attempt frees a slot once it ages out of the
		// window.
		retry := kept[0].Add(limit.Window).Sub(now)
		if retry < time.Second {
			retry = time.Second
		}
		return Decision{Allowed: false, RetryAfter: retry}
	}

	m.attempts[k] = append(kept, now)
	return Decision{Allowed: true}
}

func (m *Memory) Reset(_ context.Context, key string, class Class) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.attempts, bucketKey(key, class))
}

// purge drops timestamps at or before cutoff. Entries are appended in time
// order, so the survivors are a suffix.
func purge(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	return ts[i:]
}

// maybeSweep drops fully-aged buckets so ephemeral keys don't accumulate
// forever. Runs at most once per sweepInterval, under the caller's lock.
func (m *Memory) maybeSweep(now time.Time) {
	if now.Sub(m.lastSweep) < sweepInterval {
		return
	}
	m.lastSweep = now

	var maxWindow time.Duration
	for _, l := range m.limits {
		if l.Window > maxWindow {
			maxWindow = l.Window
		}
	}
	cutoff := now.Add(-maxWindow)
	for k, ts := range m.attempts {
		if len(purge(ts, cutoff)) == 0 {
			delete(m.attempts, k)
		}
	}
}

func bucketKey(key string, class Class) string {
	return string(class) + "\x00" + key
}
