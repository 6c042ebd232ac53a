package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"
)

// Mock implementations for testing

type mockSpotifyClient struct {
	mu        sync.Mutex
	playlists map[string][]Track
	recent    []Track
	queued    []string
	fetchErr  error
	queueErr  error
	failAfter int
}

func (m *mockSpotifyClient) ListPlaylists(_ context.Context) ([]Playlist, error) {
	var playlists []Playlist
	for id, tracks := range m.playlists {
		playlists = append(playlists, Playlist{ID: id, TrackCount: len(tracks)})
	}
	return playlists, nil
}

func (m *mockSpotifyClient) GetPlaylistTracks(_ context.Context, playlistID string) ([]Track, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.playlists[playlistID], nil
}

func (m *mockSpotifyClient) GetRecentlyPlayed(_ context.Context) ([]Track, error) {
	return m.recent, nil
}

func (m *mockSpotifyClient) AddToQueue(_ context.Context, track *Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queueErr != nil && len(m.queued) >= m.failAfter {
		return m.queueErr
	}
	m.queued = append(m.queued, track.URI)
	return nil
}

type mockShuffler struct {
	singleCalls   int
	multipleCalls int
	lastLimit     int
	lastRecent    []Track
	lastOpts      ShuffleOptions
	lastPlaylists [][]Track
}

func (m *mockShuffler) ShuffleSinglePlaylist(tracks, recent []Track, opts ShuffleOptions) ([]Track, error) {
	m.singleCalls++
	m.lastRecent = recent
	m.lastOpts = opts
	m.lastPlaylists = [][]Track{tracks}
	return tracks, nil
}

func (m *mockShuffler) ShuffleMultiplePlaylists(playlists [][]Track, recent []Track, limit int,
	opts ShuffleOptions) ([]Track, error) {
	m.multipleCalls++
	m.lastLimit = limit
	m.lastRecent = recent
	m.lastOpts = opts
	m.lastPlaylists = playlists
	var out []Track
	for _, p := range playlists {
		out = append(out, p...)
	}
	return out, nil
}

type mockRecorder struct {
	NopRecorder
	queued int
	errors []string
}

func (m *mockRecorder) RecordQueued(count int) {
	m.queued += count
}

func (m *mockRecorder) RecordError(component, errorType string) {
	m.errors = append(m.errors, component+":"+errorType)
}

func tracks(uris ...string) []Track {
	out := make([]Track, len(uris))
	for i, uri := range uris {
		out[i] = Track{URI: uri, Name: uri, Artists: []Artist{{Name: "artist"}}}
	}
	return out
}

func newTestOrchestrator(config *Config, spotify *mockSpotifyClient, shuffler *mockShuffler,
	recorder *mockRecorder) *Orchestrator {
	return NewOrchestrator(config, spotify, shuffler, recorder, zap.NewNop())
}

func TestOrchestrator_SinglePlaylistTrimmedAtSubmit(t *testing.T) {
	config := DefaultConfig()
	config.App.QueueLimit = 2

	spotify := &mockSpotifyClient{
		playlists: map[string][]Track{"p1": tracks("a", "b", "c")},
		recent:    tracks("z"),
	}
	shuffler := &mockShuffler{}
	recorder := &mockRecorder{}

	result, err := newTestOrchestrator(config, spotify, shuffler, recorder).Run(context.Background(), []string{"p1"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if shuffler.singleCalls != 1 || shuffler.multipleCalls != 0 {
		t.Errorf("Expected the single playlist path, got single=%d multiple=%d",
			shuffler.singleCalls, shuffler.multipleCalls)
	}

	if len(shuffler.lastRecent) != 1 || shuffler.lastRecent[0].URI != "z" {
		t.Errorf("Recently played not passed through: %+v", shuffler.lastRecent)
	}

	if !shuffler.lastOpts.NoDoubleArtist {
		t.Error("Expected NoDoubleArtist to be on by default")
	}

	if len(result.Tracks) != 3 {
		t.Errorf("Expected the full shuffled list in the result, got %d", len(result.Tracks))
	}

	if result.Submitted != 2 || len(spotify.queued) != 2 {
		t.Errorf("Expected 2 submitted tracks, got result=%d queued=%v", result.Submitted, spotify.queued)
	}

	if recorder.queued != 2 {
		t.Errorf("Expected 2 recorded queued tracks, got %d", recorder.queued)
	}
}

func TestOrchestrator_MultiplePlaylistsKeepOrder(t *testing.T) {
	config := DefaultConfig()
	config.App.QueueLimit = 10

	spotify := &mockSpotifyClient{
		playlists: map[string][]Track{
			"p1": tracks("a", "b"),
			"p2": tracks("c"),
			"p3": tracks("d", "e"),
		},
	}
	shuffler := &mockShuffler{}

	result, err := newTestOrchestrator(config, spotify, shuffler, &mockRecorder{}).
		Run(context.Background(), []string{"p3", "p1", "p2"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if shuffler.multipleCalls != 1 || shuffler.lastLimit != 10 {
		t.Errorf("Expected one multiple playlist call with limit 10, got calls=%d limit=%d",
			shuffler.multipleCalls, shuffler.lastLimit)
	}

	want := []string{"d", "e", "a", "b", "c"}
	for i, uri := range want {
		if result.Tracks[i].URI != uri {
			t.Fatalf("Playlists were not passed in request order: got %+v", result.Tracks)
		}
	}
}

func TestOrchestrator_DryRunSkipsSubmit(t *testing.T) {
	config := DefaultConfig()
	config.App.DryRun = true

	spotify := &mockSpotifyClient{playlists: map[string][]Track{"p1": tracks("a")}}

	result, err := newTestOrchestrator(config, spotify, &mockShuffler{}, &mockRecorder{}).
		Run(context.Background(), []string{"p1"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !result.DryRun || result.Submitted != 0 || len(spotify.queued) != 0 {
		t.Errorf("Dry run should not submit anything: %+v queued=%v", result, spotify.queued)
	}
}

func TestOrchestrator_NoPlaylists(t *testing.T) {
	_, err := newTestOrchestrator(DefaultConfig(), &mockSpotifyClient{}, &mockShuffler{}, &mockRecorder{}).
		Run(context.Background(), nil)
	if !errors.Is(err, ErrNoPlaylists) {
		t.Errorf("Run() error = %v, want ErrNoPlaylists", err)
	}
}

func TestOrchestrator_FetchError(t *testing.T) {
	fetchErr := errors.New("boom")
	recorder := &mockRecorder{}
	spotify := &mockSpotifyClient{fetchErr: fetchErr}

	_, err := newTestOrchestrator(DefaultConfig(), spotify, &mockShuffler{}, recorder).
		Run(context.Background(), []string{"p1", "p2"})
	if !errors.Is(err, fetchErr) {
		t.Errorf("Run() error = %v, want wrapped fetch error", err)
	}

	if len(recorder.errors) != 1 || recorder.errors[0] != "orchestrator:fetch" {
		t.Errorf("Expected one fetch error metric, got %v", recorder.errors)
	}
}

func TestOrchestrator_SubmitStopsOnError(t *testing.T) {
	spotify := &mockSpotifyClient{queueErr: ErrNoActiveDevice, failAfter: 1}
	recorder := &mockRecorder{}
	o := newTestOrchestrator(DefaultConfig(), spotify, &mockShuffler{}, recorder)

	submitted, err := o.Submit(context.Background(), tracks("a", "b", "c"))
	if !errors.Is(err, ErrNoActiveDevice) {
		t.Errorf("Submit() error = %v, want ErrNoActiveDevice", err)
	}

	if submitted != 1 || recorder.queued != 1 {
		t.Errorf("Expected 1 submitted track before the failure, got %d (recorded %d)", submitted, recorder.queued)
	}
}

func TestOrchestrator_SubmitUnbounded(t *testing.T) {
	config := DefaultConfig()
	config.App.QueueLimit = 0

	spotify := &mockSpotifyClient{}
	submitted, err := newTestOrchestrator(config, spotify, &mockShuffler{}, &mockRecorder{}).
		Submit(context.Background(), tracks("a", "b", "c"))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if submitted != 3 {
		t.Errorf("Expected every track submitted without a limit, got %d", submitted)
	}
}
