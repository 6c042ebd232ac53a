package shuffler

import (
	"smartshuffle/internal/core"
)

const (
	keyArtist = "artist"
	keyAlbum  = "album"
)

// decluster breaks up consecutive same-artist (or same-album) runs. Artist
// mode wins when both are requested.
func (s *Shuffler) decluster(entries []core.ScoredEntry, opts core.ShuffleOptions) {
	var (
		name string
		key  func(*core.Track) string
	)

	switch {
	case opts.NoDoubleArtist:
		name, key = keyArtist, s.artistKey
	case opts.NoDoubleAlbum:
		name, key = keyAlbum, s.albumKey
	default:
		return
	}

	keys := make([]string, len(entries))
	for i := range entries {
		keys[i] = key(&entries[i].Track)
	}

	swaps := declusterBy(entries, keys)
	s.metrics.RecordDeclusterSwaps(name, swaps)
}

// declusterBy makes one left-to-right repair pass. Whenever position i repeats
// the key of i-1 it is swapped with the first later position holding a
// different key. Runs with no such position are left in place. keys is kept
// aligned with entries. Returns the number of swaps.
func declusterBy(entries []core.ScoredEntry, keys []string) int {
	swaps := 0
	for i := 1; i < len(entries)-1; i++ {
		if keys[i] != keys[i-1] {
			continue
		}
		for j := i + 1; j < len(entries); j++ {
			if keys[j] != keys[i] {
				entries[i], entries[j] = entries[j], entries[i]
				keys[i], keys[j] = keys[j], keys[i]
				swaps++
				break
			}
		}
	}
	return swaps
}

func (s *Shuffler) artistKey(t *core.Track) string {
	if s.normalizer != nil {
		return s.normalizer.NormalizeArtist(t.PrimaryArtist())
	}
	return t.PrimaryArtist()
}

func (s *Shuffler) albumKey(t *core.Track) string {
	if s.normalizer != nil {
		return s.normalizer.NormalizeAlbum(t.AlbumName())
	}
	return t.AlbumName()
}
