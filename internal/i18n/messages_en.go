package i18n

// englishMessages contains all English translations.
var englishMessages = map[string]string{
	// Error messages
	"error.generic":            "Something went wrong. Please try again.",
	"error.no_active_device":   "No active Spotify device found. Start playback somewhere and try again.",
	"error.no_playlists":       "No playlists given. Pass at least one playlist ID.",
	"error.invalid_playlist":   "That is not a playlist ID, spotify:playlist: URI or playlist link.",
	"error.malformed_track":    "Track %d (%s) is missing its %s.",
	"error.not_authenticated":  "Not logged in to Spotify. Expected a token file at %s.",
	"error.rate_limited":       "Too many shuffle requests. Please wait a moment.",
	"error.bad_request":        "The request body could not be read.",
	"error.method_not_allowed": "Method not allowed.",

	// Success messages
	"success.queued":  "Queued %d tracks.",
	"success.dry_run": "Dry run: shuffled %d tracks, nothing was queued.",

	// Format helpers for listings
	"format.track":    "%3d. %s - %s",
	"format.playlist": "%s  %s (%d tracks)",
}
