// Package store provides the lookup and deduplication structures used by the shuffler.
package store

import (
	"github.com/bits-and-blooms/bloom/v3"
)

// historyFalsePositiveRate keeps the prefilter tight for histories of a few dozen tracks.
const historyFalsePositiveRate = 0.001

// History answers recency-rank queries over a recently played list.
type History struct {
	ranks map[string]int
	bloom *bloom.BloomFilter
	uris  []string
}

// NewHistory indexes uris, ordered most recent first. Each URI keeps the rank
// of its first occurrence.
func NewHistory(uris []string) *History {
	capacity := len(uris)
	if capacity == 0 {
		capacity = 1
	}

	h := &History{
		ranks: make(map[string]int, len(uris)),
		bloom: bloom.NewWithEstimates(uint(capacity), historyFalsePositiveRate),
		uris:  uris,
	}

	for i, uri := range uris {
		if uri == "" {
			continue
		}
		if _, exists := h.ranks[uri]; exists {
			continue
		}
		h.ranks[uri] = i + 1
		h.bloom.AddString(uri)
	}

	return h
}

// Rank returns the 1-based recency rank of uri and whether it was recently played.
func (h *History) Rank(uri string) (int, bool) {
	if !h.bloom.TestString(uri) {
		return 0, false
	}

	rank, exists := h.ranks[uri]
	return rank, exists
}

// Len returns the number of history entries, duplicates included.
func (h *History) Len() int {
	return len(h.uris)
}

// Size returns the number of distinct URIs indexed.
func (h *History) Size() int {
	return len(h.ranks)
}
