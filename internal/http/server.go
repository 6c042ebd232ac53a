package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"smartshuffle/internal/core"
	"smartshuffle/internal/flood"
	"smartshuffle/internal/i18n"
)

const (
	endpointShuffle         = "/v1/shuffle"
	endpointShuffleMultiple = "/v1/shuffle/multiple"

	// maxRequestBytes caps shuffle request bodies
	maxRequestBytes = 8 << 20
	shutdownTimeout = 10 * time.Second
)

type Server struct {
	config  *core.ServerConfig
	logger  *zap.Logger
	server  *http.Server
	metrics *Metrics
	gate    *flood.Floodgate
}

// ShuffleRequest is the body of POST /v1/shuffle.
type ShuffleRequest struct {
	Tracks         []core.Track        `json:"tracks"`
	RecentlyPlayed []core.Track        `json:"recently_played"`
	Options        core.ShuffleOptions `json:"options"`
}

// ShuffleMultipleRequest is the body of POST /v1/shuffle/multiple.
type ShuffleMultipleRequest struct {
	Playlists      [][]core.Track      `json:"playlists"`
	RecentlyPlayed []core.Track        `json:"recently_played"`
	QueueLimit     int                 `json:"queue_limit"`
	Options        core.ShuffleOptions `json:"options"`
}

type ShuffleResponse struct {
	Tracks []core.Track `json:"tracks"`
}

type errorResponse struct {
	Error string `json:"error"`
	Index *int   `json:"index,omitempty"`
	URI   string `json:"uri,omitempty"`
	Field string `json:"field,omitempty"`
}

// api holds what the shuffle handlers need.
type api struct {
	shuffler  core.Shuffler
	gate      *flood.Floodgate
	localizer *i18n.Localizer
	metrics   *Metrics
	logger    *zap.Logger
}

func NewServer(
	config *core.ServerConfig,
	shuffler core.Shuffler,
	metrics *Metrics,
	localizer *i18n.Localizer,
	logger *zap.Logger,
) *Server {
	gate := flood.New(config.RateLimitPerMinute)

	a := &api{
		shuffler:  shuffler,
		gate:      gate,
		localizer: localizer,
		metrics:   metrics,
		logger:    logger,
	}

	return &Server{
		config:  config,
		logger:  logger,
		server:  createHTTPServer(config, setupRoutes(a, logger)),
		metrics: metrics,
		gate:    gate,
	}
}

func createHTTPServer(config *core.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
		Handler:           handler,
		ReadTimeout:       config.ReadTimeout,
		ReadHeaderTimeout: config.ReadTimeout,
		WriteTimeout:      config.WriteTimeout,
	}
}

func setupRoutes(a *api, logger *zap.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", statusHandler(logger, `{"status":"ok","service":"smartshuffle"}`))
	mux.HandleFunc("/readyz", statusHandler(logger, `{"status":"ready","service":"smartshuffle"}`))
	mux.Handle("/metrics", a.metrics.Handler())
	mux.HandleFunc(endpointShuffle, a.handleShuffle)
	mux.HandleFunc(endpointShuffleMultiple, a.handleShuffleMultiple)
	mux.HandleFunc("/", homeHandler(logger))

	return mux
}

func statusHandler(logger *zap.Logger, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(body)); err != nil {
			logger.Debug("Failed to write status response", zap.Error(err))
		}
	}
}

func homeHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>SmartShuffle</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        .header { color: #333; }
        .endpoint { margin: 10px 0; }
        .endpoint a { text-decoration: none; color: #0066cc; }
        .endpoint a:hover { text-decoration: underline; }
    </style>
</head>
<body>
    <h1 class="header">🔀 SmartShuffle</h1>
    <p>Recency-aware Spotify playlist shuffling</p>

    <h2>Endpoints</h2>
    <div class="endpoint">🔀 <code>POST /v1/shuffle</code> - Shuffle one playlist</div>
    <div class="endpoint">🔀 <code>POST /v1/shuffle/multiple</code> - Shuffle and interleave playlists</div>
    <div class="endpoint">📊 <a href="/metrics">Metrics</a> - Prometheus metrics</div>
    <div class="endpoint">💚 <a href="/healthz">Health</a> - Health check</div>
    <div class="endpoint">✅ <a href="/readyz">Ready</a> - Readiness check</div>
</body>
</html>`)); err != nil {
			logger.Debug("Failed to write home page", zap.Error(err))
		}
	}
}

func (a *api) handleShuffle(w http.ResponseWriter, r *http.Request) {
	var req ShuffleRequest
	if !a.admit(w, r, endpointShuffle, &req) {
		return
	}

	tracks, err := a.shuffler.ShuffleSinglePlaylist(req.Tracks, req.RecentlyPlayed, req.Options)
	a.respond(w, endpointShuffle, tracks, err)
}

func (a *api) handleShuffleMultiple(w http.ResponseWriter, r *http.Request) {
	var req ShuffleMultipleRequest
	if !a.admit(w, r, endpointShuffleMultiple, &req) {
		return
	}

	tracks, err := a.shuffler.ShuffleMultiplePlaylists(req.Playlists, req.RecentlyPlayed, req.QueueLimit, req.Options)
	a.respond(w, endpointShuffleMultiple, tracks, err)
}

// admit checks method and rate limit and decodes the body into req. It writes
// the error response itself and returns false when the request must stop.
func (a *api) admit(w http.ResponseWriter, r *http.Request, endpoint string, req any) bool {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		a.writeError(w, endpoint, http.StatusMethodNotAllowed, errorResponse{
			Error: a.localizer.T("error.method_not_allowed"),
		})
		return false
	}

	if ok, retryAfter := a.gate.Allow(clientID(r)); !ok {
		a.metrics.RecordRateLimited()
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
		a.writeError(w, endpoint, http.StatusTooManyRequests, errorResponse{
			Error: a.localizer.T("error.rate_limited"),
		})
		return false
	}

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(req); err != nil {
		a.logger.Debug("Rejected shuffle request body", zap.String("endpoint", endpoint), zap.Error(err))
		a.metrics.RecordError("http", "bad_request")
		a.writeError(w, endpoint, http.StatusBadRequest, errorResponse{
			Error: a.localizer.T("error.bad_request"),
		})
		return false
	}

	return true
}

func (a *api) respond(w http.ResponseWriter, endpoint string, tracks []core.Track, err error) {
	var malformed *core.MalformedTrackError
	switch {
	case err == nil:
		if tracks == nil {
			tracks = []core.Track{}
		}
		a.writeJSON(w, endpoint, http.StatusOK, ShuffleResponse{Tracks: tracks})
	case errors.As(err, &malformed):
		a.writeError(w, endpoint, http.StatusUnprocessableEntity, errorResponse{
			Error: a.localizer.T("error.malformed_track", malformed.Index, malformed.URI, malformed.Field),
			Index: &malformed.Index,
			URI:   malformed.URI,
			Field: malformed.Field,
		})
	default:
		a.logger.Error("Shuffle failed", zap.String("endpoint", endpoint), zap.Error(err))
		a.metrics.RecordError("http", "shuffle")
		a.writeError(w, endpoint, http.StatusInternalServerError, errorResponse{
			Error: a.localizer.T("error.generic"),
		})
	}
}

func (a *api) writeError(w http.ResponseWriter, endpoint string, status int, body errorResponse) {
	a.writeJSON(w, endpoint, status, body)
}

func (a *api) writeJSON(w http.ResponseWriter, endpoint string, status int, body any) {
	a.metrics.RecordRequest(endpoint, status)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.logger.Debug("Failed to write response", zap.String("endpoint", endpoint), zap.Error(err))
	}
}

// clientID keys the rate gate by remote host.
func clientID(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr),
		zap.Int("rate_limit_per_minute", s.config.RateLimitPerMinute))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
		s.gate.Stop()
	}()

	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

func (s *Server) GetMetrics() *Metrics {
	return s.metrics
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
