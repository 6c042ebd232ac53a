package shuffler

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"smartshuffle/internal/core"
	"smartshuffle/internal/store"
)

const (
	reportRecentHeader   = "RECENTLY PLAYED TRACKS"
	reportShuffledHeader = "SHUFFLED LIST"
	reportColumns        = "Recently Played | Song | Artist"
	reportNotRecent      = "NA"
)

// writeReport appends a human-readable dump of the history and the queue to
// the debug sink. Failures are logged and never affect the queue.
func (s *Shuffler) writeReport(recentlyPlayed, queue []core.Track, history *store.History) {
	if s.debugSink == nil {
		s.logger.Debug("Debug report requested but no sink configured")
		return
	}

	var b strings.Builder
	b.WriteString(reportRecentHeader + "\n")
	for i := range recentlyPlayed {
		fmt.Fprintf(&b, "%d | %s | %s\n", i+1, recentlyPlayed[i].Name, recentlyPlayed[i].PrimaryArtist())
	}

	b.WriteString(reportShuffledHeader + "\n")
	b.WriteString(reportColumns + "\n")
	for i := range queue {
		rank := reportNotRecent
		if r, recent := history.Rank(queue[i].URI); recent {
			rank = strconv.Itoa(r)
		}
		fmt.Fprintf(&b, "%s | %s | %s\n", rank, queue[i].Name, queue[i].PrimaryArtist())
	}

	s.sinkMu.Lock()
	defer s.sinkMu.Unlock()

	if _, err := io.WriteString(s.debugSink, b.String()); err != nil {
		s.logger.Warn("Failed to write debug report", zap.Error(err))
	}
}
