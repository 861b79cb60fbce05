// Package ratelimit provides a shared gate bounding how fast and how many
// concurrent requests may be issued against a translation provider. The
// gate enforces per-second and per-minute sliding windows plus a
// concurrency ceiling, and optionally adapts its pacing in response to
// observed throttling.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	// maxAdaptiveDelay caps the adaptive delay growth.
	maxAdaptiveDelay = 30 * time.Second
	// initialAdaptiveDelay seeds the adaptive delay on the first throttling
	// signal when no base delay is configured, since doubling zero is inert.
	initialAdaptiveDelay = time.Second
	// pollInterval is how often Acquire re-checks the in-flight ceiling
	// when no window-based wait duration can be computed.
	pollInterval = 25 * time.Millisecond
)

// Limits bounds request throughput for one provider.
type Limits struct {
	PerMinute     int
	PerSecond     int
	MaxConcurrent int
}

// defaultLimits holds conservative per-provider-family defaults, applied
// when the caller supplies no explicit override.
var defaultLimits = map[string]Limits{
	"google":   {PerMinute: 300, PerSecond: 10, MaxConcurrent: 5},
	"openai":   {PerMinute: 60, PerSecond: 3, MaxConcurrent: 3},
	"ollama":   {PerMinute: 600, PerSecond: 10, MaxConcurrent: 2},
	"mymemory": {PerMinute: 30, PerSecond: 1, MaxConcurrent: 1},
}

// genericLimits is the fallback for unknown provider families.
var genericLimits = Limits{PerMinute: 60, PerSecond: 1, MaxConcurrent: 2}

// DefaultLimits returns the default limits for a provider family.
func DefaultLimits(provider string) Limits {
	if l, ok := defaultLimits[provider]; ok {
		return l
	}
	return genericLimits
}

// Config controls a Limiter. Zero-valued Limits fields fall back to the
// provider family default field-by-field.
type Config struct {
	Provider  string
	Limits    Limits
	BaseDelay time.Duration
	Adaptive  bool
}

// Stats is a read-only snapshot of the limiter, for observability.
type Stats struct {
	Delay              time.Duration
	InFlight           int
	MaxConcurrent      int
	RequestsLastMinute int
}

// Limiter is the shared gate. All methods are safe for concurrent use.
type Limiter struct {
	mu sync.Mutex

	limits    Limits
	window    []time.Time
	inFlight  int
	ceiling   int // adaptive concurrency ceiling
	delay     time.Duration
	baseDelay time.Duration
	adaptive  bool
}

// New creates a Limiter from cfg, filling unset limit fields from the
// provider family defaults.
func New(cfg Config) *Limiter {
	def := DefaultLimits(cfg.Provider)
	limits := cfg.Limits
	if limits.PerMinute <= 0 {
		limits.PerMinute = def.PerMinute
	}
	if limits.PerSecond <= 0 {
		limits.PerSecond = def.PerSecond
	}
	if limits.MaxConcurrent <= 0 {
		limits.MaxConcurrent = def.MaxConcurrent
	}

	return &Limiter{
		limits:    limits,
		ceiling:   limits.MaxConcurrent,
		delay:     cfg.BaseDelay,
		baseDelay: cfg.BaseDelay,
		adaptive:  cfg.Adaptive,
	}
}

// Acquire blocks until a request slot is available: in-flight below the
// concurrency ceiling, both sliding windows below their limits, and the
// adaptive delay elapsed since the call began. All conditions are
// re-evaluated after every wait; the final check and the slot commit
// happen atomically under one lock.
func (l *Limiter) Acquire(ctx context.Context) error {
	start := time.Now()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		l.mu.Lock()
		now := time.Now()
		l.prune(now)

		wait := pollInterval
		switch {
		case l.inFlight >= l.ceiling:
			// No deterministic wait: a slot frees on Release. Poll.

		case l.countSince(now.Add(-time.Minute)) >= l.limits.PerMinute:
			wait = l.windowWait(now, time.Minute)

		case l.countSince(now.Add(-time.Second)) >= l.limits.PerSecond:
			wait = l.windowWait(now, time.Second)

		case l.delay > 0 && now.Sub(start) < l.delay:
			wait = l.delay - now.Sub(start)

		default:
			l.window = append(l.window, now)
			l.inFlight++
			l.mu.Unlock()
			return nil
		}
		l.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Release frees a slot taken by Acquire. It must be called on every exit
// path of a guarded call, regardless of outcome.
func (l *Limiter) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inFlight > 0 {
		l.inFlight--
	}
}

// Throttled records a throttling signal from the provider. In adaptive
// mode the current delay doubles (capped at 30s) and the concurrency
// ceiling shrinks by 20%, floored at 1. A zero delay is first seeded to
// initialAdaptiveDelay so the doubling has something to act on.
func (l *Limiter) Throttled() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.adaptive {
		return
	}

	if l.delay <= 0 {
		l.delay = initialAdaptiveDelay
	} else {
		l.delay *= 2
	}
	if l.delay > maxAdaptiveDelay {
		l.delay = maxAdaptiveDelay
	}

	l.ceiling = l.ceiling * 4 / 5
	if l.ceiling < 1 {
		l.ceiling = 1
	}
}

// Succeeded records a successful request. In adaptive mode a delay that
// grew past the base decays by 5%, floored at the base delay.
func (l *Limiter) Succeeded() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.adaptive || l.delay <= l.baseDelay {
		return
	}

	l.delay = time.Duration(float64(l.delay) * 0.95)
	if l.delay < l.baseDelay {
		l.delay = l.baseDelay
	}
}

// Stats returns a snapshot of the limiter state.
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	l.prune(now)
	return Stats{
		Delay:              l.delay,
		InFlight:           l.inFlight,
		MaxConcurrent:      l.ceiling,
		RequestsLastMinute: l.countSince(now.Add(-time.Minute)),
	}
}

// prune drops timestamps older than the widest window. Must hold mu.
func (l *Limiter) prune(now time.Time) {
	cutoff := now.Add(-time.Minute)
	i := 0
	for i < len(l.window) && l.window[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		l.window = append(l.window[:0], l.window[i:]...)
	}
}

// countSince counts window timestamps at or after cutoff. Must hold mu.
func (l *Limiter) countSince(cutoff time.Time) int {
	n := 0
	for i := len(l.window) - 1; i >= 0; i-- {
		if l.window[i].Before(cutoff) {
			break
		}
		n++
	}
	return n
}

// windowWait returns how long until the oldest timestamp inside the given
// window exits it. Must hold mu.
func (l *Limiter) windowWait(now time.Time, window time.Duration) time.Duration {
	cutoff := now.Add(-window)
	for _, ts := range l.window {
		if !ts.Before(cutoff) {
			wait := ts.Add(window).Sub(now)
			if wait < pollInterval {
				wait = pollInterval
			}
			return wait
		}
	}
	return pollInterval
}
