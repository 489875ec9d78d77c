// Package concurrency provides per-key mutual exclusion for mutations.
package concurrency

import (
	"context"
	"sync"
)

// State of a key
type State string

const (
	StateIdle   State = "idle"
	StateLocked State = "locked"
)

type keyState struct {
	waiters []chan struct{}
}

// LockManager serializes work per key. Waiters are served in arrival order and
// ownership is handed directly from the releasing holder to the next waiter,
// so a late arrival can never overtake a queued one. Idle keys hold no memory.
type LockManager struct {
	mu    sync.Mutex
	locks map[string]*keyState
}

// NewLockManager creates a new LockManager
func NewLockManager() *LockManager {
	return &LockManager{locks: make(map[string]*keyState)}
}

// ReleaseFunc returns the lock. It is safe to call more than once.
type ReleaseFunc func()

// Acquire blocks until key is held by the caller or ctx is done.
// The returned ReleaseFunc must be called on every exit path.
func (lm *LockManager) Acquire(ctx context.Context, key string) (ReleaseFunc, error) {
	lm.mu.Lock()
	st, held := lm.locks[key]
	if !held {
		lm.locks[key] = &keyState{}
		lm.mu.Unlock()
		return lm.releaser(key), nil
	}

	ready := make(chan struct{})
	st.waiters = append(st.waiters, ready)
	lm.mu.Unlock()

	select {
	case <-ready:
		return lm.releaser(key), nil
	case <-ctx.Done():
		lm.mu.Lock()
		if removeWaiter(st, ready) {
			lm.mu.Unlock()
			return nil, ctx.Err()
		}
		lm.mu.Unlock()
		// Ownership was handed over while we were giving up; pass it on.
		lm.release(key)
		return nil, ctx.Err()
	}
}

// TryAcquire takes key only if it is idle.
func (lm *LockManager) TryAcquire(key string) (ReleaseFunc, bool) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	if _, held := lm.locks[key]; held {
		return nil, false
	}
	lm.locks[key] = &keyState{}
	return lm.releaser(key), true
}

// WithLock runs fn while holding key, releasing it however fn returns.
func (lm *LockManager) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	release, err := lm.Acquire(ctx, key)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx)
}

// State reports whether key is currently held.
func (lm *LockManager) State(key string) State {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	if _, held := lm.locks[key]; held {
		return StateLocked
	}
	return StateIdle
}

// QueueLen returns the number of callers waiting on key.
func (lm *LockManager) QueueLen(key string) int {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	if st, held := lm.locks[key]; held {
		return len(st.waiters)
	}
	return 0
}

// Keys returns the number of keys currently held.
func (lm *LockManager) Keys() int {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return len(lm.locks)
}

func (lm *LockManager) releaser(key string) ReleaseFunc {
	var once sync.Once
	return func() {
		once.Do(func() { lm.release(key) })
	}
}

func (lm *LockManager) release(key string) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	st, held := lm.locks[key]
	if !held {
		return
	}
	if len(st.waiters) == 0 {
		delete(lm.locks, key)
		return
	}
	next := st.waiters[0]
	st.waiters[0] = nil
	st.waiters = st.waiters[1:]
	close(next)
}

func removeWaiter(st *keyState, ready chan struct{}) bool {
	for i, w := range st.waiters {
		if w == ready {
			st.waiters = append(st.waiters[:i], st.waiters[i+1:]...)
			return true
		}
	}
	return false
}
