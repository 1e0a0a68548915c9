package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/haulmatic/fleetguard/internal/ratelimit"
)

const lockKeyPrefix = "fleetguard:scheduler:lock:"

// runLocks prevents two overlapping runs of the same job. With redis
// configured the lock is shared across processes; otherwise it only
// guards this process.
type runLocks struct {
	locker *ratelimit.Locker

	mu   sync.Mutex
	held map[string]bool
}

func newRunLocks(locker *ratelimit.Locker) *runLocks {
	return &runLocks{
		locker: locker,
		held:   map[string]bool{},
	}
}

// acquire returns a release func and whether the lock was taken. A held
// lock is not an error; the caller skips the run.
func (l *runLocks) acquire(ctx context.Context, job string, ttl time.Duration) (func(), bool, error) {
	if l.locker != nil {
		key := lockKeyPrefix + job
		token, ok, err := l.locker.TryLock(ctx, key, ttl)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
		return func() {
			_ = l.locker.Release(context.WithoutCancel(ctx), key, token)
		}, true, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[job] {
		return nil, false, nil
	}
	l.held[job] = true
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, job)
	}, true, nil
}
