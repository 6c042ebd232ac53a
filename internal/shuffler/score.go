package shuffler

import (
	"math"

	"go.uber.org/zap"

	"smartshuffle/internal/core"
	"smartshuffle/internal/store"
)

// RandomSpan is the inclusive upper bound of the random score component.
const RandomSpan = 1000

// RecencyBias is the score penalty for a track last played rank plays ago
// (1 = most recent): min(0, -weight*tanh(spread/rank)). The penalty tends to
// -weight as rank approaches 1 and relaxes toward 0 as rank grows. Ranks
// below 1 carry no penalty.
func RecencyBias(rank int, weight, spread float64) float64 {
	if rank <= 0 {
		return 0
	}
	return math.Min(0, -weight*math.Tanh(spread/float64(rank)))
}

// newEntries annotates tracks with their recency rank.
func newEntries(tracks []core.Track, history *store.History) []core.ScoredEntry {
	entries := make([]core.ScoredEntry, len(tracks))
	for i := range tracks {
		entries[i].Track = tracks[i]
		entries[i].RecencyRank, entries[i].Recent = history.Rank(tracks[i].URI)
	}
	return entries
}

func (s *Shuffler) score(entry *core.ScoredEntry) float64 {
	return s.recencyBias(entry) + float64(s.rng.IntN(RandomSpan+1))
}

func (s *Shuffler) recencyBias(entry *core.ScoredEntry) float64 {
	if !entry.Recent {
		return 0
	}

	if entry.RecencyRank <= 0 {
		s.logger.Warn("Recency rank should never be below 1",
			zap.String("uri", entry.Track.URI),
			zap.Int("rank", entry.RecencyRank))
		s.metrics.RecordRecencyAnomaly()
		return 0
	}

	return RecencyBias(entry.RecencyRank, s.config.RecencyWeight, s.config.RecencySpread)
}
