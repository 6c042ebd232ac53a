package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"smartshuffle/internal/core"
	"smartshuffle/internal/i18n"
	"smartshuffle/pkg/text"
)

func withGlobals(t *testing.T, cfg *core.Config) {
	t.Helper()
	prevConfig, prevLocalizer := config, localizer
	config = cfg
	localizer = i18n.NewLocalizer(cfg.App.Language)
	t.Cleanup(func() {
		config, localizer = prevConfig, prevLocalizer
	})
}

func TestFlagToEnvVar(t *testing.T) {
	tests := map[string]string{
		"queue-limit":       "SMARTSHUFFLE_QUEUE_LIMIT",
		"no-double-artist":  "SMARTSHUFFLE_NO_DOUBLE_ARTIST",
		"spotify-client-id": "SMARTSHUFFLE_SPOTIFY_CLIENT_ID",
	}

	for flag, want := range tests {
		if got := flagToEnvVar(flag); got != want {
			t.Errorf("flagToEnvVar(%q) = %q, want %q", flag, got, want)
		}
	}
}

func TestBuildConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Set("queue-limit", 40)
	viper.Set("no-double-artist", false)
	viper.Set("no-double-album", true)
	viper.Set("bag-factor", 0)
	viper.Set("recency-weight", 250.0)
	viper.Set("recency-spread", 5.0)
	viper.Set("seed", uint64(7))
	viper.Set("language", "xx")
	viper.Set("server-port", 9000)

	cfg := buildConfig()

	if cfg.App.QueueLimit != 40 || cfg.App.NoDoubleArtist || !cfg.App.NoDoubleAlbum {
		t.Errorf("Unexpected app config %+v", cfg.App)
	}
	if cfg.Shuffle.BagFactor != core.DefaultBagFactor {
		t.Errorf("Invalid bag factor should fall back to %d, got %d", core.DefaultBagFactor, cfg.Shuffle.BagFactor)
	}
	if cfg.Shuffle.Seed != 7 {
		t.Errorf("Seed = %d, want 7", cfg.Shuffle.Seed)
	}
	if cfg.App.Language != i18n.DefaultLanguage {
		t.Errorf("Unsupported language should fall back to %s, got %s", i18n.DefaultLanguage, cfg.App.Language)
	}
	if cfg.Server.Host != defaultServerHost || cfg.Server.Port != 9000 {
		t.Errorf("Unexpected server config %+v", cfg.Server)
	}
	if cfg.Spotify.TokenPath == "" {
		t.Error("Token path should keep its default")
	}
}

func TestUserMessage(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Spotify.TokenPath = "/tmp/token.json"
	withGlobals(t, cfg)

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"No device", fmt.Errorf("queue: %w", core.ErrNoActiveDevice), "No active Spotify device found"},
		{"No playlists", core.ErrNoPlaylists, "No playlists given"},
		{"Invalid playlist", fmt.Errorf("parse: %w", text.ErrInvalidPlaylistRef), "not a playlist ID"},
		{"Not authenticated", fmt.Errorf("auth: %w", core.ErrNotAuthenticated), "/tmp/token.json"},
		{
			"Malformed track",
			fmt.Errorf("shuffle: %w", &core.MalformedTrackError{Index: 3, URI: "u", Field: core.FieldAlbum}),
			"Track 3 (u) is missing its album.",
		},
		{"Unknown", errors.New("boom"), "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := userMessage(tt.err); !strings.Contains(got, tt.want) {
				t.Errorf("userMessage() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestPrintQueue(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.App.QueueLimit = 2
	withGlobals(t, cfg)

	tracks := []core.Track{
		{URI: "a", Name: "Song A", Artists: []core.Artist{{Name: "X"}}},
		{URI: "b", Name: "Song B", Artists: []core.Artist{{Name: "Y"}}},
		{URI: "c", Name: "Song C", Artists: []core.Artist{{Name: "Z"}}},
	}

	var out bytes.Buffer
	printQueue(&out, &core.QueueResult{Tracks: tracks, DryRun: true})

	want := "  1. X - Song A\n  2. Y - Song B\nDry run: shuffled 2 tracks, nothing was queued.\n"
	if out.String() != want {
		t.Errorf("printQueue() = %q, want %q", out.String(), want)
	}

	out.Reset()
	printQueue(&out, &core.QueueResult{Tracks: tracks[:1], Submitted: 1})
	if !strings.HasSuffix(out.String(), "Queued 1 tracks.\n") {
		t.Errorf("printQueue() = %q, want a queued summary", out.String())
	}
}

func TestGenerateEnvExampleContent(t *testing.T) {
	content := generateEnvExampleContent(rootCmd)

	for _, want := range []string{
		"SMARTSHUFFLE_QUEUE_LIMIT=20",
		"SMARTSHUFFLE_NO_DOUBLE_ARTIST=true",
		"SMARTSHUFFLE_RECENCY_WEIGHT=250",
		"SMARTSHUFFLE_DEBUG_LOG_PATH=queue.log",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("Expected .env example to contain %q", want)
		}
	}

	if strings.Contains(content, "SMARTSHUFFLE_GENERATE_ENV_EXAMPLE") {
		t.Error(".env example should not include generate-env-example")
	}
}
