// Package flood rate-limits bot commands per user.
package flood

import (
	"sync"
	"time"
)

const (
	// window is the sliding window commands are counted over
	window = time.Minute
	// sweepInterval is how often idle users are forgotten
	sweepInterval = 10 * time.Minute
	// idleTimeout is how long a user may stay silent before being forgotten
	idleTimeout = 10 * time.Minute
)

// Gate limits how many commands each user may issue per minute.
// A limit of zero or less disables limiting.
type Gate struct {
	limit int
	now   func() time.Time

	mu    sync.Mutex
	users map[string]*history

	done     chan struct{}
	stopOnce sync.Once
}

// history is the recent command times of one user
type history struct {
	times    []time.Time
	lastSeen time.Time
}

// Stats describes the gate for monitoring
type Stats struct {
	TrackedUsers   int `json:"tracked_users"`
	LimitPerMinute int `json:"limit_per_minute"`
}

// New creates a Gate and starts its background sweeper.
func New(limitPerMinute int) *Gate {
	g := &Gate{
		limit: limitPerMinute,
		now:   time.Now,
		users: make(map[string]*history),
		done:  make(chan struct{}),
	}

	go g.sweepLoop()

	return g
}

// Stop ends the background sweeper. It is safe to call more than once.
func (g *Gate) Stop() {
	g.stopOnce.Do(func() { close(g.done) })
}

// Allow records a command from userID and reports whether it may run.
// Rejected commands are not counted.
func (g *Gate) Allow(userID string) bool {
	if g.limit <= 0 {
		return true
	}

	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	h, ok := g.users[userID]
	if !ok {
		h = &history{times: make([]time.Time, 0, g.limit)}
		g.users[userID] = h
	}
	h.lastSeen = now

	cutoff := now.Add(-window)
	kept := h.times[:0]
	for _, ts := range h.times {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	h.times = kept

	if len(h.times) >= g.limit {
		return false
	}

	h.times = append(h.times, now)
	return true
}

// Stats returns a snapshot of the gate state
func (g *Gate) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()

	return Stats{
		TrackedUsers:   len(g.users),
		LimitPerMinute: g.limit,
	}
}

func (g *Gate) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.sweep()
		case <-g.done:
			return
		}
	}
}

// sweep forgets users idle for longer than idleTimeout
func (g *Gate) sweep() {
	g.mu.Lock()
	defer g.mu.Unlock()

	cutoff := g.now().Add(-idleTimeout)
	for userID, h := range g.users {
		if h.lastSeen.Before(cutoff) {
			delete(g.users, userID)
		}
	}
}
