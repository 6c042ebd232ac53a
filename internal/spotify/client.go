// Package spotify provides the Spotify Web API boundary: reading playlists and
// playback history, and submitting shuffled tracks to the playback queue.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"smartshuffle/internal/core"
)

const (
	// PlaylistPageSize is the page size for the current user's playlists
	PlaylistPageSize = 50
	// PlaylistItemsPageSize is the page size for playlist items
	PlaylistItemsPageSize = 100
	// RecentlyPlayedLimit is the maximum history the API returns
	RecentlyPlayedLimit = 50
)

type Client struct {
	config *core.SpotifyConfig
	logger *zap.Logger
	client *spotify.Client
	auth   *spotifyauth.Authenticator
}

type TokenData struct {
	Token *oauth2.Token `json:"token"`
}

func NewClient(config *core.SpotifyConfig, logger *zap.Logger) *Client {
	auth := spotifyauth.New(
		spotifyauth.WithScopes(
			spotifyauth.ScopePlaylistReadPrivate,
			spotifyauth.ScopeUserReadRecentlyPlayed,
			spotifyauth.ScopeUserModifyPlaybackState,
		),
		spotifyauth.WithClientID(config.ClientID),
		spotifyauth.WithClientSecret(config.ClientSecret),
	)

	return &Client{
		config: config,
		logger: logger,
		auth:   auth,
	}
}

// NewClientWithAPI wraps an already authenticated API client.
func NewClientWithAPI(config *core.SpotifyConfig, logger *zap.Logger, api *spotify.Client) *Client {
	c := NewClient(config, logger)
	c.client = api
	return c
}

// Authenticate builds the API client from the token stored at TokenPath.
// Obtaining that token is left to the caller.
func (c *Client) Authenticate(ctx context.Context) error {
	token, err := c.loadToken()
	if err != nil {
		return fmt.Errorf("failed to load token from %s: %w: %w", c.config.TokenPath, core.ErrNotAuthenticated, err)
	}

	client := spotify.New(c.auth.Client(ctx, token))

	user, err := client.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("saved token rejected: %w: %w", core.ErrNotAuthenticated, err)
	}

	c.client = client
	c.logger.Info("Authenticated successfully", zap.String("user", user.DisplayName))
	return nil
}

// ListPlaylists returns every playlist of the current user.
func (c *Client) ListPlaylists(ctx context.Context) ([]core.Playlist, error) {
	if c.client == nil {
		return nil, core.ErrNotAuthenticated
	}

	var playlists []core.Playlist
	offset := 0

	for {
		page, err := c.client.CurrentUsersPlaylists(ctx,
			spotify.Limit(PlaylistPageSize), spotify.Offset(offset))
		if err != nil {
			return nil, fmt.Errorf("failed to get playlists: %w", err)
		}

		for i := range page.Playlists {
			playlist := &page.Playlists[i]
			playlists = append(playlists, core.Playlist{
				ID:         string(playlist.ID),
				Name:       playlist.Name,
				TrackCount: int(playlist.Tracks.Total), //nolint:gosec // Spotify playlist counts are reasonable for int conversion
				Owner:      playlist.Owner.DisplayName,
			})
		}

		if len(page.Playlists) < PlaylistPageSize {
			break
		}

		offset += PlaylistPageSize
	}

	c.logger.Debug("Retrieved playlists", zap.Int("count", len(playlists)))
	return playlists, nil
}

// GetPlaylistTracks returns the tracks of a playlist in playlist order.
// Episodes, local files and removed items are skipped.
func (c *Client) GetPlaylistTracks(ctx context.Context, playlistID string) ([]core.Track, error) {
	if c.client == nil {
		return nil, core.ErrNotAuthenticated
	}

	spotifyPlaylistID := spotify.ID(playlistID)
	var tracks []core.Track
	offset := 0

	for {
		items, err := c.client.GetPlaylistItems(ctx, spotifyPlaylistID,
			spotify.Limit(PlaylistItemsPageSize), spotify.Offset(offset))
		if err != nil {
			return nil, fmt.Errorf("failed to get playlist items: %w", err)
		}

		for i := range items.Items {
			item := &items.Items[i]
			if item.IsLocal || item.Track.Track == nil {
				continue
			}
			tracks = append(tracks, convertFullTrack(item.Track.Track))
		}

		if len(items.Items) < PlaylistItemsPageSize {
			break
		}

		offset += PlaylistItemsPageSize
	}

	c.logger.Info("Retrieved playlist tracks",
		zap.String("playlistID", playlistID),
		zap.Int("count", len(tracks)))

	return tracks, nil
}

// GetRecentlyPlayed returns the playback history, most recent first.
func (c *Client) GetRecentlyPlayed(ctx context.Context) ([]core.Track, error) {
	if c.client == nil {
		return nil, core.ErrNotAuthenticated
	}

	items, err := c.client.PlayerRecentlyPlayedOpt(ctx, &spotify.RecentlyPlayedOptions{
		Limit: RecentlyPlayedLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get recently played: %w", err)
	}

	tracks := make([]core.Track, 0, len(items))
	for i := range items {
		tracks = append(tracks, convertSimpleTrack(&items[i].Track))
	}

	c.logger.Debug("Retrieved recently played", zap.Int("count", len(tracks)))
	return tracks, nil
}

// AddToQueue appends a track to the user's playback queue. A missing active
// device is reported as core.ErrNoActiveDevice.
func (c *Client) AddToQueue(ctx context.Context, track *core.Track) error {
	if c.client == nil {
		return core.ErrNotAuthenticated
	}

	if err := c.client.QueueSong(ctx, spotify.ID(track.TrackID())); err != nil {
		var apiErr spotify.Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return fmt.Errorf("failed to add %s to queue: %w: %w", track.URI, core.ErrNoActiveDevice, err)
		}
		return fmt.Errorf("failed to add %s to queue: %w", track.URI, err)
	}

	c.logger.Debug("Track added to queue",
		zap.String("uri", track.URI),
		zap.String("name", track.Name))

	return nil
}

func convertFullTrack(track *spotify.FullTrack) core.Track {
	t := convertSimpleTrack(&track.SimpleTrack)
	t.Album = &core.Album{
		ID:   string(track.Album.ID),
		Name: track.Album.Name,
	}
	return t
}

func convertSimpleTrack(track *spotify.SimpleTrack) core.Track {
	artists := make([]core.Artist, 0, len(track.Artists))
	for _, artist := range track.Artists {
		artists = append(artists, core.Artist{
			ID:   string(artist.ID),
			Name: artist.Name,
		})
	}

	return core.Track{
		URI:        string(track.URI),
		ID:         string(track.ID),
		Name:       track.Name,
		Artists:    artists,
		DurationMs: int(track.Duration),
	}
}

func (c *Client) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(c.config.TokenPath)
	if err != nil {
		return nil, err
	}

	var tokenData TokenData
	if err := json.Unmarshal(data, &tokenData); err != nil {
		return nil, err
	}

	if tokenData.Token == nil {
		return nil, fmt.Errorf("token file has no token")
	}

	return tokenData.Token, nil
}
