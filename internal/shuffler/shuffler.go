// Package shuffler implements the scoring-and-reordering engine that turns
// candidate tracks and the recently played history into a queue.
//
// A single playlist is scored (recency penalty plus a random draw), sorted by
// descending score and optionally declustered by artist or album. Several
// playlists are shuffled independently and then interleaved by drawing from
// a randomly shuffled bag of playlist tickets.
package shuffler

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"smartshuffle/internal/core"
	"smartshuffle/internal/store"
	"smartshuffle/pkg/fuzzy"
)

const (
	modeSingle   = "single"
	modeMultiple = "multiple"
)

// Shuffler orders tracks. It is safe for concurrent use.
type Shuffler struct {
	config     core.ShuffleConfig
	logger     *zap.Logger
	rng        Rand
	metrics    core.MetricsRecorder
	normalizer *fuzzy.Normalizer

	sinkMu    sync.Mutex
	debugSink io.Writer
}

type Option func(*Shuffler)

// WithRand replaces the clock- or config-seeded random source.
func WithRand(r Rand) Option {
	return func(s *Shuffler) {
		s.rng = &lockedRand{src: r}
	}
}

func WithMetrics(m core.MetricsRecorder) Option {
	return func(s *Shuffler) {
		s.metrics = m
	}
}

// WithDebugSink sets where debug reports are written.
func WithDebugSink(w io.Writer) Option {
	return func(s *Shuffler) {
		s.debugSink = w
	}
}

func New(config *core.ShuffleConfig, logger *zap.Logger, opts ...Option) *Shuffler {
	s := &Shuffler{
		config:  *config,
		logger:  logger,
		rng:     &lockedRand{src: NewRand(config.Seed)},
		metrics: core.NopRecorder{},
	}

	if s.config.BagFactor < 1 {
		s.config.BagFactor = core.DefaultBagFactor
	}
	if s.config.NormalizeKeys {
		s.normalizer = fuzzy.NewNormalizer()
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ShuffleSinglePlaylist returns tracks reordered by score. The result is a
// permutation of tracks.
func (s *Shuffler) ShuffleSinglePlaylist(tracks, recentlyPlayed []core.Track,
	opts core.ShuffleOptions) ([]core.Track, error) {
	start := time.Now()

	if err := core.ValidateTracks(tracks, opts); err != nil {
		s.metrics.RecordError("shuffler", "malformed_track")
		return nil, fmt.Errorf("failed to shuffle playlist: %w", err)
	}

	history := newHistory(recentlyPlayed)
	entries := s.order(tracks, history, opts)

	queue := make([]core.Track, len(entries))
	for i := range entries {
		queue[i] = entries[i].Track
	}

	if opts.Debug {
		s.writeReport(recentlyPlayed, queue, history)
	}

	s.metrics.RecordShuffle(modeSingle, len(queue), time.Since(start))
	s.logger.Debug("Shuffled playlist",
		zap.Int("tracks", len(queue)),
		zap.Int("recently_played", history.Size()))

	return queue, nil
}

// ShuffleMultiplePlaylists shuffles each playlist on its own and interleaves
// the results into a queue of at most queueLimit distinct tracks. A
// non-positive queueLimit takes every distinct track.
func (s *Shuffler) ShuffleMultiplePlaylists(playlists [][]core.Track, recentlyPlayed []core.Track,
	queueLimit int, opts core.ShuffleOptions) ([]core.Track, error) {
	start := time.Now()

	for i, tracks := range playlists {
		if err := core.ValidateTracks(tracks, opts); err != nil {
			s.metrics.RecordError("shuffler", "malformed_track")
			return nil, fmt.Errorf("failed to shuffle playlist %d: %w", i, err)
		}
	}

	history := newHistory(recentlyPlayed)

	ordered := make([][]core.ScoredEntry, len(playlists))
	total := 0
	for i, tracks := range playlists {
		ordered[i] = s.order(tracks, history, opts)
		total += len(tracks)
	}

	queue := s.interleave(ordered, queueLimit, total)

	if opts.Debug {
		s.writeReport(recentlyPlayed, queue, history)
	}

	s.metrics.RecordShuffle(modeMultiple, len(queue), time.Since(start))
	s.logger.Debug("Shuffled playlists",
		zap.Int("playlists", len(playlists)),
		zap.Int("candidates", total),
		zap.Int("queue_limit", queueLimit),
		zap.Int("tracks", len(queue)))

	return queue, nil
}

// order scores, sorts and declusters one playlist.
func (s *Shuffler) order(tracks []core.Track, history *store.History,
	opts core.ShuffleOptions) []core.ScoredEntry {
	entries := newEntries(tracks, history)
	for i := range entries {
		entries[i].Score = s.score(&entries[i])
	}

	slices.SortStableFunc(entries, func(a, b core.ScoredEntry) int {
		return cmp.Compare(b.Score, a.Score)
	})

	s.decluster(entries, opts)
	return entries
}

func newHistory(recentlyPlayed []core.Track) *store.History {
	uris := make([]string, len(recentlyPlayed))
	for i := range recentlyPlayed {
		uris[i] = recentlyPlayed[i].URI
	}
	return store.NewHistory(uris)
}
