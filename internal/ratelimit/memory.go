package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter keeps per-key request instants in process memory.
// Counters are lost on restart.
type MemoryLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewMemoryLimiter(limit int, window time.Duration, opts ...Option) *MemoryLimiter {
	s := newSettings(opts)
	return &MemoryLimiter{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    s.now,
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	recent := m.prune(m.hits[key], now)

	if len(recent) >= m.limit {
		m.hits[key] = recent
		return false, nil
	}

	m.hits[key] = append(recent, now)
	return true, nil
}

// Sweep drops keys whose window has emptied and returns how many were removed.
func (m *MemoryLimiter) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for key, stamps := range m.hits {
		recent := m.prune(stamps, now)
		if len(recent) == 0 {
			delete(m.hits, key)
			removed++
			continue
		}
		m.hits[key] = recent
	}
	return removed
}

// Run sweeps every interval until ctx is done. A non-positive interval
// falls back to DefaultSweepInterval.
func (m *MemoryLimiter) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Keys reports how many clients are currently tracked.
func (m *MemoryLimiter) Keys() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.hits)
}

// prune keeps instants younger than the window. stamps is ordered oldest
// first, so everything before the first young entry is dropped.
func (m *MemoryLimiter) prune(stamps []time.Time, now time.Time) []time.Time {
	for i, t := range stamps {
		if now.Sub(t) < m.window {
			return stamps[i:]
		}
	}
	return stamps[:0]
}

var _ Limiter = (*MemoryLimiter)(nil)
