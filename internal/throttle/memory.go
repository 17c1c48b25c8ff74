package throttle

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type attempts struct {
	failures    int64
	lockedUntil time.Time
}

// MemoryThrottle keeps lockout state in a bounded, expiring LRU. It is used
// when no Redis is configured; state is per process.
type MemoryThrottle struct {
	mu     sync.Mutex
	cache  *expirable.LRU[string, attempts]
	policy Policy
	now    func() time.Time
}

func NewMemoryThrottle(size int, policy Policy) *MemoryThrottle {
	return &MemoryThrottle{
		cache:  expirable.NewLRU[string, attempts](size, nil, policy.Window),
		policy: policy,
		now:    time.Now,
	}
}

func (t *MemoryThrottle) Locked(_ context.Context, id string) (time.Duration, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.cache.Get(id)
	if !ok {
		return 0, nil
	}
	if remaining := a.lockedUntil.Sub(t.now()); remaining > 0 {
		return remaining, nil
	}
	return 0, nil
}

func (t *MemoryThrottle) Fail(_ context.Context, id string) (time.Duration, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, _ := t.cache.Get(id)
	a.failures++
	lock := t.policy.LockFor(a.failures)
	if lock > 0 {
		a.lockedUntil = t.now().Add(lock)
	}
	t.cache.Add(id, a)
	return lock, nil
}

func (t *MemoryThrottle) Reset(_ context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cache.Remove(id)
	return nil
}
