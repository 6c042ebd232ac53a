package flood

import (
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestGate(t *testing.T, limit int) (*Floodgate, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	fg := New(limit, WithClock(clock.Now))
	t.Cleanup(fg.Stop)
	return fg, clock
}

func TestFloodgate_Allow_NormalUsage(t *testing.T) {
	fg, _ := newTestGate(t, 3)

	for i := 0; i < 3; i++ {
		if ok, _ := fg.Allow("10.0.0.1"); !ok {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	ok, retry := fg.Allow("10.0.0.1")
	if ok {
		t.Error("4th request should be blocked")
	}
	if retry != windowDuration {
		t.Errorf("Retry after = %v, want %v", retry, windowDuration)
	}
}

func TestFloodgate_Allow_SlidingWindow(t *testing.T) {
	fg, clock := newTestGate(t, 2)

	fg.Allow("client")
	clock.Advance(30 * time.Second)
	fg.Allow("client")

	if ok, retry := fg.Allow("client"); ok || retry != 30*time.Second {
		t.Errorf("Third request should be blocked for 30s, got ok=%v retry=%v", ok, retry)
	}

	clock.Advance(31 * time.Second)
	if ok, _ := fg.Allow("client"); !ok {
		t.Error("Request should be allowed once the first one left the window")
	}

	if ok, _ := fg.Allow("client"); ok {
		t.Error("Window should be full again")
	}
}

func TestFloodgate_Allow_PerClient(t *testing.T) {
	fg, _ := newTestGate(t, 1)

	if ok, _ := fg.Allow("a"); !ok {
		t.Error("First request from a should be allowed")
	}
	if ok, _ := fg.Allow("b"); !ok {
		t.Error("Clients should have separate limits")
	}
	if ok, _ := fg.Allow("a"); ok {
		t.Error("Second request from a should be blocked")
	}
}

func TestFloodgate_Allow_Disabled(t *testing.T) {
	fg, _ := newTestGate(t, 0)

	for i := 0; i < 100; i++ {
		if ok, _ := fg.Allow("client"); !ok {
			t.Fatal("A zero limit should never block")
		}
	}

	if stats := fg.GetStats(); stats.ActiveClients != 0 {
		t.Errorf("Disabled gate should not track clients, got %d", stats.ActiveClients)
	}
}

func TestFloodgate_Sweep(t *testing.T) {
	fg, clock := newTestGate(t, 5)

	fg.Allow("old")
	clock.Advance(idleTimeout + time.Second)
	fg.Allow("new")

	fg.sweep()

	stats := fg.GetStats()
	if stats.ActiveClients != 1 {
		t.Errorf("Expected 1 active client after sweep, got %d", stats.ActiveClients)
	}
	if stats.LimitPerMinute != 5 || stats.WindowSeconds != 60 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

func TestFloodgate_ConcurrentAccess(t *testing.T) {
	fg, _ := newTestGate(t, 50)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if ok, _ := fg.Allow("shared"); ok {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	if allowed != 50 {
		t.Errorf("Expected exactly 50 allowed requests, got %d", allowed)
	}
}

func TestFloodgate_StopTwice(t *testing.T) {
	fg := New(1)
	fg.Stop()
	fg.Stop()
}
