package flood

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests move time forward without sleeping
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestGate(limit int) (*Gate, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	g := New(limit)
	g.now = clock.Now
	return g, clock
}

func TestGate_Allow_BlocksOverLimit(t *testing.T) {
	g, _ := newTestGate(3)
	defer g.Stop()

	for i := 0; i < 3; i++ {
		if !g.Allow("user1") {
			t.Errorf("Command %d should be allowed", i+1)
		}
	}

	if g.Allow("user1") {
		t.Error("4th command should be blocked")
	}
}

func TestGate_Allow_SlidingWindow(t *testing.T) {
	g, clock := newTestGate(2)
	defer g.Stop()

	g.Allow("user1")
	clock.Advance(30 * time.Second)
	g.Allow("user1")

	if g.Allow("user1") {
		t.Error("Third command inside the window should be blocked")
	}

	// First command leaves the window, second is still inside it
	clock.Advance(31 * time.Second)
	if !g.Allow("user1") {
		t.Error("Command should be allowed once the oldest entry expired")
	}
	if g.Allow("user1") {
		t.Error("Window should be full again")
	}
}

func TestGate_Allow_PerUser(t *testing.T) {
	g, _ := newTestGate(1)
	defer g.Stop()

	if !g.Allow("user1") {
		t.Error("user1 first command should be allowed")
	}
	if !g.Allow("user2") {
		t.Error("user2 should have its own budget")
	}
	if g.Allow("user1") {
		t.Error("user1 second command should be blocked")
	}
}

func TestGate_Allow_Disabled(t *testing.T) {
	for _, limit := range []int{0, -1} {
		t.Run(fmt.Sprintf("limit_%d", limit), func(t *testing.T) {
			g, _ := newTestGate(limit)
			defer g.Stop()

			for i := 0; i < 100; i++ {
				if !g.Allow("user1") {
					t.Fatalf("Command %d should be allowed when limiting is disabled", i+1)
				}
			}
			if stats := g.Stats(); stats.TrackedUsers != 0 {
				t.Errorf("Expected no tracked users, got %d", stats.TrackedUsers)
			}
		})
	}
}

func TestGate_Sweep(t *testing.T) {
	g, clock := newTestGate(5)
	defer g.Stop()

	g.Allow("user1")
	clock.Advance(5 * time.Minute)
	g.Allow("user2")

	clock.Advance(6 * time.Minute)
	g.sweep()

	stats := g.Stats()
	if stats.TrackedUsers != 1 {
		t.Errorf("Expected 1 tracked user after sweep, got %d", stats.TrackedUsers)
	}
	if stats.LimitPerMinute != 5 {
		t.Errorf("Expected limit 5, got %d", stats.LimitPerMinute)
	}
}

func TestGate_StopTwice(t *testing.T) {
	g := New(1)
	g.Stop()
	g.Stop()
}

func TestGate_ConcurrentAccess(t *testing.T) {
	g, _ := newTestGate(50)
	defer g.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if g.Allow("user1") {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	if allowed != 50 {
		t.Errorf("Expected exactly 50 allowed commands, got %d", allowed)
	}
}
