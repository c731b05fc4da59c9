package cartstore

import (
	"context"
	"sync"
	"time"
)

// Registry はセッションごとのStoreを持つ。
// グローバルなカートは持たず、handlerにはこれをDIする。
type Registry struct {
	mu      sync.RWMutex
	carts   map[string]*Store
	idleTTL time.Duration
	now     func() time.Time
}

type Option func(*Registry)

// テスト用に時計を差し替える
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// idleTTL <= 0 ならSweepで消さない
func NewRegistry(idleTTL time.Duration, opts ...Option) *Registry {
	r := &Registry{
		carts:   make(map[string]*Store),
		idleTTL: idleTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get はセッションのStoreを返す（無ければ作る）。
func (r *Registry) Get(sessionID string) *Store {
	r.mu.RLock()
	s, ok := r.carts[sessionID]
	if ok {
		// Sweepと排他にするためRLock中にtouchする
		s.touch()
		r.mu.RUnlock()
		return s
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.carts[sessionID]; ok {
		s.touch()
		return s
	}
	s = newStore(r.now)
	r.carts[sessionID] = s
	return s
}

// Lookup は作らずに探すだけ。
func (r *Registry) Lookup(sessionID string) (*Store, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.carts[sessionID]
	return s, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.carts)
}

// Sweep はidleTTLを超えて触られていないカートを捨て、捨てた数を返す。
func (r *Registry) Sweep() int {
	if r.idleTTL <= 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, s := range r.carts {
		if s.idleFor(now) > r.idleTTL {
			delete(r.carts, id)
			removed++
		}
	}
	return removed
}

// Run はctxが終わるまでinterval毎にSweepする。
func (r *Registry) Run(ctx context.Context, interval time.Duration, onSweep func(removed int)) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			n := r.Sweep()
			if onSweep != nil && n > 0 {
				onSweep(n)
			}
		}
	}
}
