package store

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"smartshuffle/internal/core"
)

// OrderedDedup collects tracks keyed by URI. Putting a URI again replaces the
// stored track and moves it to the end, so the final order is last-insertion order.
type OrderedDedup struct {
	cache *lru.Cache[string, core.Track]
}

// NewOrderedDedup creates a store able to hold capacity distinct URIs without eviction.
func NewOrderedDedup(capacity int) *OrderedDedup {
	if capacity < 1 {
		capacity = 1
	}

	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[string, core.Track](capacity)

	return &OrderedDedup{cache: cache}
}

// Put inserts track, replacing any earlier track with the same URI.
// It reports whether the URI was new.
func (d *OrderedDedup) Put(track core.Track) bool {
	existed := d.cache.Contains(track.URI)
	// Add on an existing key refreshes it to most recent.
	d.cache.Add(track.URI, track)
	return !existed
}

// Has reports whether uri has been put.
func (d *OrderedDedup) Has(uri string) bool {
	return d.cache.Contains(uri)
}

// Len returns the number of distinct URIs stored.
func (d *OrderedDedup) Len() int {
	return d.cache.Len()
}

// Tracks returns the stored tracks from first to last insertion.
func (d *OrderedDedup) Tracks() []core.Track {
	return d.cache.Values()
}
