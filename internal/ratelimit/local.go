package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/haulmatic/fleetguard/internal/clock"
)

type localEntry struct {
	tokens float64
	ts     time.Time
}

// LocalBucket is the in-process fallback used when redis is not
// configured. Single-process scope only.
type LocalBucket struct {
	mu      sync.Mutex
	clock   clock.Clock
	buckets map[string]*localEntry
}

func NewLocalBucket(c clock.Clock) *LocalBucket {
	return &LocalBucket{
		clock:   c,
		buckets: map[string]*localEntry{},
	}
}

func (l *LocalBucket) Allow(_ context.Context, key string, rate float64, burst int) (Result, error) {
	if key == "" {
		return Result{}, errors.New("rate limiter key is empty")
	}
	if rate <= 0 || burst <= 0 {
		return Result{}, errors.New("rate limiter rate and burst must be positive")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	entry, ok := l.buckets[key]
	if !ok {
		entry = &localEntry{tokens: float64(burst), ts: now}
		l.buckets[key] = entry
	} else {
		delta := now.Sub(entry.ts)
		if delta < 0 {
			delta = 0
		}
		entry.tokens = min(float64(burst), entry.tokens+delta.Seconds()*rate)
		entry.ts = now
	}

	if entry.tokens >= 1 {
		entry.tokens--
		return Result{Allowed: true, Remaining: int(entry.tokens)}, nil
	}

	retry := time.Duration((1 - entry.tokens) / rate * float64(time.Second))
	return Result{Allowed: false, Remaining: 0, RetryAfter: retry}, nil
}
