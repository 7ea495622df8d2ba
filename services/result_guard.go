package services

import (
	"sync"
	"sync/atomic"
	"time"
)

// ResultGuard drops responses from superseded reads. Each read takes a
// ticket with Begin; only the holder of the latest ticket may apply its result.
type ResultGuard struct {
	latest atomic.Uint64
}

// Begin starts a read and supersedes every earlier ticket
func (g *ResultGuard) Begin() uint64 {
	return g.latest.Add(1)
}

// Accept reports whether the read holding ticket is still the latest
func (g *ResultGuard) Accept(ticket uint64) bool {
	return g.latest.Load() == ticket
}

// GuardRegistry hands out one ResultGuard per visitor key
type GuardRegistry struct {
	mu      sync.Mutex
	max     int
	guards  map[string]*guardEntry
	nowFunc func() time.Time
}

type guardEntry struct {
	guard    *ResultGuard
	lastSeen time.Time
}

// NewGuardRegistry creates a registry that keeps at most max visitors,
// evicting the least recently seen when full
func NewGuardRegistry(max int) *GuardRegistry {
	if max <= 0 {
		max = 1024
	}
	return &GuardRegistry{max: max, guards: make(map[string]*guardEntry), nowFunc: time.Now}
}

// Guard returns the guard for key, creating it if needed
func (r *GuardRegistry) Guard(key string) *ResultGuard {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.nowFunc()
	if e, ok := r.guards[key]; ok {
		e.lastSeen = now
		return e.guard
	}

	if len(r.guards) >= r.max {
		var oldestKey string
		var oldest time.Time
		for k, e := range r.guards {
			if oldestKey == "" || e.lastSeen.Before(oldest) {
				oldestKey, oldest = k, e.lastSeen
			}
		}
		delete(r.guards, oldestKey)
	}

	e := &guardEntry{guard: &ResultGuard{}, lastSeen: now}
	r.guards[key] = e
	return e.guard
}

// Len returns the number of tracked visitors
func (r *GuardRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.guards)
}
