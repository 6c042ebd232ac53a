package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Orchestrator fetches playlists and history, shuffles them and submits the
// result to the playback queue.
type Orchestrator struct {
	config   *Config
	spotify  SpotifyClient
	shuffler Shuffler
	metrics  MetricsRecorder
	logger   *zap.Logger
}

func NewOrchestrator(
	config *Config,
	spotify SpotifyClient,
	shuffler Shuffler,
	metrics MetricsRecorder,
	logger *zap.Logger,
) *Orchestrator {
	if metrics == nil {
		metrics = NopRecorder{}
	}

	return &Orchestrator{
		config:   config,
		spotify:  spotify,
		shuffler: shuffler,
		metrics:  metrics,
		logger:   logger,
	}
}

// Run builds a queue from playlistIDs and, unless DryRun is set, submits it.
func (o *Orchestrator) Run(ctx context.Context, playlistIDs []string) (*QueueResult, error) {
	queue, err := o.BuildQueue(ctx, playlistIDs)
	if err != nil {
		return nil, err
	}

	result := &QueueResult{Tracks: queue, DryRun: o.config.App.DryRun}
	if o.config.App.DryRun {
		o.logger.Info("Dry run, not submitting queue", zap.Int("tracks", len(queue)))
		return result, nil
	}

	submitted, err := o.Submit(ctx, queue)
	result.Submitted = submitted
	if err != nil {
		return result, err
	}

	return result, nil
}

// BuildQueue fetches the playlists concurrently along with the recently played
// history and shuffles them. A single playlist goes through the single
// playlist path and is trimmed at submission; several are interleaved.
func (o *Orchestrator) BuildQueue(ctx context.Context, playlistIDs []string) ([]Track, error) {
	if len(playlistIDs) == 0 {
		return nil, ErrNoPlaylists
	}

	playlists := make([][]Track, len(playlistIDs))
	var recentlyPlayed []Track

	g, gCtx := errgroup.WithContext(ctx)
	limit := o.config.App.FetchConcurrency
	if limit < 1 {
		limit = DefaultFetchConcurrency
	}
	g.SetLimit(limit)

	g.Go(func() error {
		tracks, err := o.spotify.GetRecentlyPlayed(gCtx)
		if err != nil {
			return fmt.Errorf("failed to fetch recently played: %w", err)
		}
		recentlyPlayed = tracks
		return nil
	})

	for i, id := range playlistIDs {
		g.Go(func() error {
			tracks, err := o.spotify.GetPlaylistTracks(gCtx, id)
			if err != nil {
				return fmt.Errorf("failed to fetch playlist %s: %w", id, err)
			}
			playlists[i] = tracks
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		o.metrics.RecordError("orchestrator", "fetch")
		return nil, err
	}

	opts := o.config.App.ShuffleOptions()

	var (
		queue []Track
		err   error
	)
	if len(playlists) == 1 {
		queue, err = o.shuffler.ShuffleSinglePlaylist(playlists[0], recentlyPlayed, opts)
	} else {
		queue, err = o.shuffler.ShuffleMultiplePlaylists(playlists, recentlyPlayed, o.config.App.QueueLimit, opts)
	}
	if err != nil {
		return nil, err
	}

	o.logger.Info("Built queue",
		zap.Int("playlists", len(playlistIDs)),
		zap.Int("recently_played", len(recentlyPlayed)),
		zap.Int("tracks", len(queue)))

	return queue, nil
}

// Submit adds tracks to the playback queue in order, stopping after
// QueueLimit tracks when the limit is positive. It returns how many were added.
func (o *Orchestrator) Submit(ctx context.Context, tracks []Track) (int, error) {
	limit := o.config.App.QueueLimit
	submitted := 0

	for i := range tracks {
		if limit > 0 && submitted >= limit {
			break
		}

		if err := o.spotify.AddToQueue(ctx, &tracks[i]); err != nil {
			o.metrics.RecordError("orchestrator", "submit")
			o.metrics.RecordQueued(submitted)
			return submitted, err
		}
		submitted++
	}

	o.metrics.RecordQueued(submitted)
	o.logger.Info("Queued tracks", zap.Int("count", submitted))

	return submitted, nil
}
