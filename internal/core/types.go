package core

import (
	"context"
	"strings"
	"time"
)

// spotifyTrackURIPrefix is the URI prefix of every Spotify track.
const spotifyTrackURIPrefix = "spotify:track:"

// Artist is the subset of a Spotify artist object the shuffler reads.
type Artist struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Album is the subset of a Spotify album object the shuffler reads.
type Album struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Track mirrors the Spotify track object. Identity is the URI.
type Track struct {
	URI        string   `json:"uri"`
	ID         string   `json:"id,omitempty"`
	Name       string   `json:"name"`
	Artists    []Artist `json:"artists"`
	Album      *Album   `json:"album,omitempty"`
	DurationMs int      `json:"duration_ms,omitempty"`
}

// PrimaryArtist returns the first listed artist name, or "" when the track has none.
func (t *Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0].Name
}

// AlbumName returns the album name, or "" when the track has no album.
func (t *Track) AlbumName() string {
	if t.Album == nil {
		return ""
	}
	return t.Album.Name
}

// TrackID returns the Spotify ID, derived from the URI when the ID field is empty.
func (t *Track) TrackID() string {
	if t.ID != "" {
		return t.ID
	}
	return strings.TrimPrefix(t.URI, spotifyTrackURIPrefix)
}

// Duration returns the track length.
func (t *Track) Duration() time.Duration {
	return time.Duration(t.DurationMs) * time.Millisecond
}

// ScoredEntry is a candidate track annotated for a single shuffle call.
type ScoredEntry struct {
	Track Track
	Score float64
	// RecencyRank is the 1-based position in the recently played history.
	// Only meaningful when Recent is true.
	RecencyRank int
	Recent      bool
}

// ShuffleOptions controls the optional behaviour of a shuffle call.
type ShuffleOptions struct {
	NoDoubleArtist bool `json:"no_double_artist"`
	NoDoubleAlbum  bool `json:"no_double_album"`
	Debug          bool `json:"debug"`
}

type Playlist struct {
	ID         string
	Name       string
	TrackCount int
	Owner      string
}

// QueueResult describes the outcome of a queue run.
type QueueResult struct {
	Tracks    []Track
	Submitted int
	DryRun    bool
}

// Shuffler is the scoring-and-reordering engine.
type Shuffler interface {
	ShuffleSinglePlaylist(tracks, recentlyPlayed []Track, opts ShuffleOptions) ([]Track, error)
	ShuffleMultiplePlaylists(playlists [][]Track, recentlyPlayed []Track, queueLimit int,
		opts ShuffleOptions) ([]Track, error)
}

type SpotifyClient interface {
	ListPlaylists(ctx context.Context) ([]Playlist, error)
	GetPlaylistTracks(ctx context.Context, playlistID string) ([]Track, error)
	GetRecentlyPlayed(ctx context.Context) ([]Track, error)
	AddToQueue(ctx context.Context, track *Track) error
}

// MetricsRecorder receives shuffle and queue statistics.
type MetricsRecorder interface {
	RecordShuffle(mode string, tracks int, duration time.Duration)
	RecordDeclusterSwaps(key string, swaps int)
	RecordRecencyAnomaly()
	RecordQueued(count int)
	RecordError(component, errorType string)
}

// NopRecorder discards all metrics.
type NopRecorder struct{}

func (NopRecorder) RecordShuffle(string, int, time.Duration) {}
func (NopRecorder) RecordDeclusterSwaps(string, int)         {}
func (NopRecorder) RecordRecencyAnomaly()                    {}
func (NopRecorder) RecordQueued(int)                         {}
func (NopRecorder) RecordError(string, string)               {}
