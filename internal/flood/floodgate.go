// Package flood rate limits shuffle requests per client with a sliding window.
package flood

import (
	"sync"
	"time"
)

const (
	// windowDuration is the sliding window requests are counted in
	windowDuration = 60 * time.Second
	// cleanupInterval is how often idle clients are swept
	cleanupInterval = 10 * time.Minute
	// idleTimeout is how long a client may stay silent before it is forgotten
	idleTimeout = 10 * time.Minute
)

// Floodgate limits how many requests each client may make per minute.
// A limit of zero or less lets everything through.
type Floodgate struct {
	limitPerMinute int
	clients        map[string]*clientEntry
	mutex          sync.Mutex
	now            func() time.Time
	stopCleanup    chan struct{}
	stopOnce       sync.Once
}

type clientEntry struct {
	timestamps []time.Time
	lastSeen   time.Time
}

// Option configures a Floodgate.
type Option func(*Floodgate)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(fg *Floodgate) {
		fg.now = now
	}
}

// New creates a Floodgate and starts its background sweeper. Call Stop to end it.
func New(limitPerMinute int, opts ...Option) *Floodgate {
	fg := &Floodgate{
		limitPerMinute: limitPerMinute,
		clients:        make(map[string]*clientEntry),
		now:            time.Now,
		stopCleanup:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(fg)
	}

	go fg.cleanup()

	return fg
}

// Stop stops the background sweeper. It is safe to call more than once.
func (fg *Floodgate) Stop() {
	fg.stopOnce.Do(func() {
		close(fg.stopCleanup)
	})
}

// Allow records a request from clientID and reports whether it may proceed.
// When it may not, the returned duration is how long until the oldest
// request in the window expires.
func (fg *Floodgate) Allow(clientID string) (bool, time.Duration) {
	if fg.limitPerMinute <= 0 {
		return true, 0
	}

	now := fg.now()

	fg.mutex.Lock()
	defer fg.mutex.Unlock()

	entry, exists := fg.clients[clientID]
	if !exists {
		entry = &clientEntry{
			timestamps: make([]time.Time, 0, fg.limitPerMinute+1),
		}
		fg.clients[clientID] = entry
	}
	entry.lastSeen = now

	windowStart := now.Add(-windowDuration)
	valid := entry.timestamps[:0]
	for _, ts := range entry.timestamps {
		if ts.After(windowStart) {
			valid = append(valid, ts)
		}
	}
	entry.timestamps = valid

	if len(entry.timestamps) >= fg.limitPerMinute {
		return false, entry.timestamps[0].Add(windowDuration).Sub(now)
	}

	entry.timestamps = append(entry.timestamps, now)
	return true, 0
}

func (fg *Floodgate) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fg.sweep()
		case <-fg.stopCleanup:
			return
		}
	}
}

// sweep forgets clients idle for longer than idleTimeout.
func (fg *Floodgate) sweep() {
	fg.mutex.Lock()
	defer fg.mutex.Unlock()

	cutoff := fg.now().Add(-idleTimeout)
	for key, entry := range fg.clients {
		if entry.lastSeen.Before(cutoff) {
			delete(fg.clients, key)
		}
	}
}

// GetStats returns statistics about the floodgate for monitoring
func (fg *Floodgate) GetStats() Stats {
	fg.mutex.Lock()
	defer fg.mutex.Unlock()

	return Stats{
		ActiveClients:  len(fg.clients),
		LimitPerMinute: fg.limitPerMinute,
		WindowSeconds:  int(windowDuration.Seconds()),
	}
}

// Stats contains floodgate statistics
type Stats struct {
	ActiveClients  int `json:"active_clients"`
	LimitPerMinute int `json:"limit_per_minute"`
	WindowSeconds  int `json:"window_seconds"`
}
