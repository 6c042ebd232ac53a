package core

import (
	"time"

	"smartshuffle/internal/i18n"
)

const (
	// DefaultQueueLimit is the number of tracks queued when no limit is given
	DefaultQueueLimit = 20
	// DefaultBagFactor is the number of tickets each playlist gets per interleave round
	DefaultBagFactor = 2
	// DefaultRecencyWeight is K in the recency penalty -K*tanh(C/rank)
	DefaultRecencyWeight = 250.0
	// DefaultRecencySpread is C in the recency penalty -K*tanh(C/rank)
	DefaultRecencySpread = 5.0
	// DefaultServerPort is the HTTP API port
	DefaultServerPort = 8080
	// DefaultRateLimitPerMinute bounds shuffle API calls per client
	DefaultRateLimitPerMinute = 30
	// DefaultFetchConcurrency bounds parallel playlist fetches
	DefaultFetchConcurrency = 4
	// DefaultDebugLogPath is where debug reports are appended
	DefaultDebugLogPath = "queue.log"
)

type Config struct {
	Spotify SpotifyConfig
	Server  ServerConfig
	Log     LogConfig
	Shuffle ShuffleConfig
	App     AppConfig
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	TokenPath    string
}

type ServerConfig struct {
	Host               string
	Port               int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	RateLimitPerMinute int
}

type LogConfig struct {
	Level  string
	Format string
}

// ShuffleConfig tunes the scoring and interleaving engine.
type ShuffleConfig struct {
	RecencyWeight float64
	RecencySpread float64
	BagFactor     int
	NormalizeKeys bool
	// Seed fixes the random source; 0 seeds from the clock.
	Seed         uint64
	DebugLogPath string
}

type AppConfig struct {
	QueueLimit       int
	NoDoubleArtist   bool
	NoDoubleAlbum    bool
	Debug            bool
	DryRun           bool
	FetchConcurrency int
	Language         string
}

func DefaultConfig() *Config {
	return &Config{
		Spotify: SpotifyConfig{
			TokenPath: "./spotify_token.json",
		},
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               DefaultServerPort,
			ReadTimeout:        10 * time.Second,
			WriteTimeout:       10 * time.Second,
			RateLimitPerMinute: DefaultRateLimitPerMinute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Shuffle: ShuffleConfig{
			RecencyWeight: DefaultRecencyWeight,
			RecencySpread: DefaultRecencySpread,
			BagFactor:     DefaultBagFactor,
			DebugLogPath:  DefaultDebugLogPath,
		},
		App: AppConfig{
			QueueLimit:       DefaultQueueLimit,
			NoDoubleArtist:   true,
			FetchConcurrency: DefaultFetchConcurrency,
			Language:         i18n.DefaultLanguage,
		},
	}
}

// ShuffleOptions returns the per-call options configured for the CLI.
func (c *AppConfig) ShuffleOptions() ShuffleOptions {
	return ShuffleOptions{
		NoDoubleArtist: c.NoDoubleArtist,
		NoDoubleAlbum:  c.NoDoubleAlbum,
		Debug:          c.Debug,
	}
}
