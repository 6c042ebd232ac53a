// Package main provides the SmartShuffle CLI application entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"smartshuffle/internal/core"
	httpserver "smartshuffle/internal/http"
	"smartshuffle/internal/i18n"
	"smartshuffle/internal/shuffler"
	"smartshuffle/internal/spotify"
	"smartshuffle/pkg/text"
)

const (
	envPrefix         = "SMARTSHUFFLE"
	defaultServerHost = "0.0.0.0"
	debugLogFileMode  = 0o600
)

var (
	cfgFile   string
	config    *core.Config
	logger    *zap.Logger
	localizer *i18n.Localizer
)

var rootCmd = &cobra.Command{
	Use:   "smartshuffle",
	Short: "SmartShuffle - recency-aware Spotify shuffling",
	Long: `SmartShuffle reorders Spotify playlists so recently played tracks sink toward the end,
breaks up runs of the same artist or album, and interleaves several playlists into one queue.`,
	RunE:          runRoot,
	SilenceErrors: true,
	SilenceUsage:  true,
}

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Shuffle playlists and add the result to the playback queue",
	Example: `  smartshuffle queue --playlist 37i9dQZF1DXcBWIGoYBM5M
  smartshuffle queue --playlist ID1 --playlist ID2 --queue-limit 40 --dry-run`,
	RunE: runQueue,
}

var playlistsCmd = &cobra.Command{
	Use:   "playlists",
	Short: "List the current user's playlists",
	RunE:  runPlaylists,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the shuffle API, health checks and metrics over HTTP",
	RunE:  runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", userMessage(err))
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is .env)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	supportedLangs := strings.Join(i18n.GetSupportedLanguages(), ", ")
	flags.String("language", i18n.DefaultLanguage, fmt.Sprintf("Message language (%s)", supportedLangs))

	flags.String("spotify-client-id", "", "Spotify client ID")
	flags.String("spotify-client-secret", "", "Spotify client secret")
	flags.String("spotify-token-path", "./spotify_token.json", "Path of the saved Spotify OAuth token")

	flags.Int("queue-limit", core.DefaultQueueLimit, "Maximum number of tracks to queue (0 means no limit)")
	flags.Bool("no-double-artist", true, "Avoid the same artist twice in a row")
	flags.Bool("no-double-album", false, "Avoid the same album twice in a row (ignored with --no-double-artist)")
	flags.Bool("debug", false, "Append a shuffle report to the debug log")
	flags.Bool("dry-run", false, "Shuffle and print without queueing")
	flags.Int("fetch-concurrency", core.DefaultFetchConcurrency, "Maximum parallel playlist fetches")

	flags.Float64("recency-weight", core.DefaultRecencyWeight, "Largest recency penalty")
	flags.Float64("recency-spread", core.DefaultRecencySpread, "How many plays back the recency penalty reaches")
	flags.Int("bag-factor", core.DefaultBagFactor, "Tickets per playlist in each interleave round")
	flags.Bool("normalize-keys", false, "Compare artist and album names after normalization")
	flags.Uint64("seed", 0, "Random seed (0 seeds from the clock)")
	flags.String("debug-log-path", core.DefaultDebugLogPath, "File the debug report is appended to")

	flags.String("server-host", defaultServerHost, "HTTP server host")
	flags.Int("server-port", core.DefaultServerPort, "HTTP server port")
	flags.Int("rate-limit-per-minute", core.DefaultRateLimitPerMinute,
		"Maximum shuffle API requests per client per minute (0 disables)")

	flags.Bool("generate-env-example", false, "Generate .env.example file from current configuration and exit")

	if err := viper.BindPFlags(flags); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}

	queueCmd.Flags().StringSlice("playlist", nil, "Playlist ID, URI or share link to shuffle (repeat for several)")

	rootCmd.AddCommand(queueCmd, playlistsCmd, serveCmd)
}

func initConfig() {
	envFile := ".env"
	if cfgFile != "" {
		envFile = cfgFile
	}

	if err := gotenv.Load(envFile); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	config = buildConfig()
	logger = buildLogger(config.Log.Level)
	localizer = i18n.NewLocalizer(config.App.Language)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	configureSpotify(cfg)
	configureServer(cfg)
	configureShuffle(cfg)
	configureApp(cfg)

	return cfg
}

func configureSpotify(cfg *core.Config) {
	cfg.Spotify.ClientID = viper.GetString("spotify-client-id")
	cfg.Spotify.ClientSecret = viper.GetString("spotify-client-secret")
	if path := viper.GetString("spotify-token-path"); path != "" {
		cfg.Spotify.TokenPath = path
	}
}

func configureServer(cfg *core.Config) {
	cfg.Server.Host = viper.GetString("server-host")
	if cfg.Server.Host == "" {
		cfg.Server.Host = defaultServerHost
	}
	cfg.Server.Port = viper.GetInt("server-port")
	cfg.Server.RateLimitPerMinute = viper.GetInt("rate-limit-per-minute")
	cfg.Log.Level = viper.GetString("log-level")
}

func configureShuffle(cfg *core.Config) {
	cfg.Shuffle.RecencyWeight = viper.GetFloat64("recency-weight")
	cfg.Shuffle.RecencySpread = viper.GetFloat64("recency-spread")
	if cfg.Shuffle.RecencyWeight < 0 || cfg.Shuffle.RecencySpread <= 0 {
		fmt.Fprintf(os.Stderr, "Warning: Invalid recency parameters (weight %v, spread %v), using defaults\n",
			cfg.Shuffle.RecencyWeight, cfg.Shuffle.RecencySpread)
		cfg.Shuffle.RecencyWeight = core.DefaultRecencyWeight
		cfg.Shuffle.RecencySpread = core.DefaultRecencySpread
	}

	cfg.Shuffle.BagFactor = viper.GetInt("bag-factor")
	if cfg.Shuffle.BagFactor < 1 {
		fmt.Fprintf(os.Stderr, "Warning: Invalid bag factor (%d), using default (%d)\n",
			cfg.Shuffle.BagFactor, core.DefaultBagFactor)
		cfg.Shuffle.BagFactor = core.DefaultBagFactor
	}

	cfg.Shuffle.NormalizeKeys = viper.GetBool("normalize-keys")
	cfg.Shuffle.Seed = viper.GetUint64("seed")
	cfg.Shuffle.DebugLogPath = viper.GetString("debug-log-path")
}

func configureApp(cfg *core.Config) {
	cfg.App.QueueLimit = viper.GetInt("queue-limit")
	cfg.App.NoDoubleArtist = viper.GetBool("no-double-artist")
	cfg.App.NoDoubleAlbum = viper.GetBool("no-double-album")
	cfg.App.Debug = viper.GetBool("debug")
	cfg.App.DryRun = viper.GetBool("dry-run")

	cfg.App.FetchConcurrency = viper.GetInt("fetch-concurrency")
	if cfg.App.FetchConcurrency < 1 {
		cfg.App.FetchConcurrency = core.DefaultFetchConcurrency
	}

	cfg.App.Language = viper.GetString("language")
	if cfg.App.Language == "" {
		cfg.App.Language = i18n.DefaultLanguage
	}
	if !i18n.IsSupported(cfg.App.Language) {
		fmt.Fprintf(os.Stderr, "Warning: Unsupported language '%s', falling back to '%s'. Supported languages: %s\n",
			cfg.App.Language, i18n.DefaultLanguage, strings.Join(i18n.GetSupportedLanguages(), ", "))
		cfg.App.Language = i18n.DefaultLanguage
	}
}

func buildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

// userMessage maps known failures to a localized message.
func userMessage(err error) string {
	if localizer == nil {
		return err.Error()
	}

	var malformed *core.MalformedTrackError
	switch {
	case errors.As(err, &malformed):
		return localizer.T("error.malformed_track", malformed.Index, malformed.URI, malformed.Field)
	case errors.Is(err, core.ErrNoActiveDevice):
		return localizer.T("error.no_active_device")
	case errors.Is(err, core.ErrNoPlaylists):
		return localizer.T("error.no_playlists")
	case errors.Is(err, text.ErrInvalidPlaylistRef):
		return localizer.T("error.invalid_playlist")
	case errors.Is(err, core.ErrNotAuthenticated):
		return localizer.T("error.not_authenticated", config.Spotify.TokenPath)
	default:
		return fmt.Sprintf("%s (%v)", localizer.T("error.generic"), err)
	}
}

func runRoot(cmd *cobra.Command, _ []string) error {
	if viper.GetBool("generate-env-example") {
		return generateEnvExample(cmd)
	}
	return cmd.Help()
}

// newShuffler builds the engine with an optional debug sink. The returned
// cleanup must be called once the shuffler is no longer used.
func newShuffler(metrics core.MetricsRecorder, withSink bool) (*shuffler.Shuffler, func(), error) {
	opts := []shuffler.Option{shuffler.WithMetrics(metrics)}
	cleanup := func() {}

	if withSink && config.Shuffle.DebugLogPath != "" {
		sink, err := os.OpenFile(config.Shuffle.DebugLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, debugLogFileMode)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open debug log %s: %w", config.Shuffle.DebugLogPath, err)
		}
		opts = append(opts, shuffler.WithDebugSink(sink))
		cleanup = func() {
			if err := sink.Close(); err != nil {
				logger.Warn("Failed to close debug log", zap.Error(err))
			}
		}
	}

	return shuffler.New(&config.Shuffle, logger.Named("shuffler"), opts...), cleanup, nil
}

func authenticatedSpotify(ctx context.Context) (*spotify.Client, error) {
	client := spotify.NewClient(&config.Spotify, logger.Named("spotify"))
	if err := client.Authenticate(ctx); err != nil {
		return nil, fmt.Errorf("failed to authenticate with Spotify: %w", err)
	}
	return client, nil
}

func runQueue(cmd *cobra.Command, _ []string) error {
	refs, err := cmd.Flags().GetStringSlice("playlist")
	if err != nil {
		return err
	}

	playlistIDs, err := text.NewParser().PlaylistIDs(refs)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	defer logger.Sync() //nolint:errcheck // stderr sync errors are not actionable

	logger.Info("Starting SmartShuffle queue run",
		zap.Strings("playlists", playlistIDs),
		zap.Int("queue_limit", config.App.QueueLimit),
		zap.Bool("dry_run", config.App.DryRun))

	spotifyClient, err := authenticatedSpotify(ctx)
	if err != nil {
		return err
	}

	engine, cleanup, err := newShuffler(core.NopRecorder{}, config.App.Debug)
	if err != nil {
		return err
	}
	defer cleanup()

	orchestrator := core.NewOrchestrator(config, spotifyClient, engine, nil, logger.Named("orchestrator"))
	result, err := orchestrator.Run(ctx, playlistIDs)
	if result != nil {
		printQueue(cmd.OutOrStdout(), result)
	}
	if err != nil {
		logger.Error("Queue run failed", zap.Error(err))
		return err
	}

	return nil
}

func printQueue(w io.Writer, result *core.QueueResult) {
	shown := result.Tracks
	if limit := config.App.QueueLimit; limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for i := range shown {
		fmt.Fprintln(w, localizer.T("format.track", i+1, shown[i].PrimaryArtist(), shown[i].Name))
	}

	if result.DryRun {
		fmt.Fprintln(w, localizer.T("success.dry_run", len(shown)))
		return
	}
	fmt.Fprintln(w, localizer.T("success.queued", result.Submitted))
}

func runPlaylists(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	spotifyClient, err := authenticatedSpotify(ctx)
	if err != nil {
		return err
	}

	playlists, err := spotifyClient.ListPlaylists(ctx)
	if err != nil {
		return err
	}

	for _, p := range playlists {
		fmt.Fprintln(cmd.OutOrStdout(), localizer.T("format.playlist", p.ID, p.Name, p.TrackCount))
	}
	return nil
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	metrics := httpserver.NewMetrics()
	engine, cleanup, err := newShuffler(metrics, true)
	if err != nil {
		return err
	}
	defer cleanup()

	server := httpserver.NewServer(&config.Server, engine, metrics, localizer, logger.Named("http"))

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(gCtx)
	})

	logger.Info("SmartShuffle started successfully",
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)),
		zap.String("language", localizer.Language()))

	if err := g.Wait(); err != nil {
		logger.Error("SmartShuffle stopped with error", zap.Error(err))
		return err
	}

	logger.Info("SmartShuffle stopped gracefully")
	return nil
}

func generateEnvExample(cmd *cobra.Command) error {
	fmt.Println("Generating .env.example file from current configuration...")

	content := generateEnvExampleContent(cmd)

	if err := os.WriteFile(".env.example", []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write .env.example: %w", err)
	}

	fmt.Println("✅ Successfully generated .env.example file")
	return nil
}

// envExampleSkip lists flags that make no sense as environment settings.
var envExampleSkip = map[string]bool{
	"config":               true,
	"generate-env-example": true,
	"help":                 true,
}

func generateEnvExampleContent(cmd *cobra.Command) string {
	var content strings.Builder

	content.WriteString("# =============================================================================\n")
	content.WriteString("# SmartShuffle Configuration\n")
	content.WriteString("# =============================================================================\n")
	content.WriteString("#\n")
	content.WriteString("# Copy this file to .env and update with your values\n")
	content.WriteString("# All environment variables have CLI flag equivalents (use --help to see them)\n")
	content.WriteString("#\n")
	fmt.Fprintf(&content, "# Format: %s_<SETTING>=value\n", envPrefix)
	content.WriteString("# CLI equivalent: --<setting>\n")
	content.WriteString("# =============================================================================\n\n")

	cmd.Root().PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if envExampleSkip[f.Name] {
			return
		}
		fmt.Fprintf(&content, "# %s (default: %s)\n", f.Usage, f.DefValue)
		fmt.Fprintf(&content, "%s=%s\n\n", flagToEnvVar(f.Name), f.DefValue)
	})

	return content.String()
}

func flagToEnvVar(flagName string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}
