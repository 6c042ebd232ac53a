package shuffler

import (
	"smartshuffle/internal/core"
	"smartshuffle/internal/store"
)

// interleave merges independently ordered playlists. Each round every playlist
// gets BagFactor tickets; the bag is shuffled and each drawn ticket pops the
// front of its playlist. A URI drawn again replaces its earlier copy and
// moves to the end. Assembly stops once queueLimit distinct URIs are held,
// possibly mid-round, or when every playlist is exhausted.
func (s *Shuffler) interleave(playlists [][]core.ScoredEntry, queueLimit, total int) []core.Track {
	dedup := store.NewOrderedDedup(total)
	cursors := make([]int, len(playlists))
	remaining := total

	full := func() bool {
		return queueLimit > 0 && dedup.Len() >= queueLimit
	}

	bag := make([]int, 0, len(playlists)*s.config.BagFactor)
	for remaining > 0 && !full() {
		bag = bag[:0]
		for i := range playlists {
			for range s.config.BagFactor {
				bag = append(bag, i)
			}
		}

		s.rng.Shuffle(len(bag), func(i, j int) {
			bag[i], bag[j] = bag[j], bag[i]
		})

		for _, idx := range bag {
			if cursors[idx] >= len(playlists[idx]) {
				continue
			}

			dedup.Put(playlists[idx][cursors[idx]].Track)
			cursors[idx]++
			remaining--

			if full() {
				break
			}
		}
	}

	return dedup.Tracks()
}
