package i18n

// berneseGermanMessages contains all Bernese Swiss German (Bärndütsch) translations
var berneseGermanMessages = map[string]string{
	// Error messages
	"error.generic":            "Öppis isch schief gloffe. Probier's haut nomau, bitte.",
	"error.no_active_device":   "Kes aktivs Spotify-Grät gfunde. Start irgendwo d Wiedergab und probier's nomau.",
	"error.no_playlists":       "Kei Playliste agä. Gib mindestens ei Playlist-ID a.",
	"error.invalid_playlist":   "Das isch ke Playlist-ID, ke spotify:playlist:-URI und o ke Playlist-Link.",
	"error.malformed_track":    "Track %d (%s) fäut %s.",
	"error.not_authenticated":  "Nid bi Spotify agmäudet. Ds Token-File sött bi %s sii.",
	"error.rate_limited":       "Z'vieu Aafrage. Wart bitzeli und probier's nomau.",
	"error.bad_request":        "D Aafrag het nid chönne gläse wärde.",
	"error.method_not_allowed": "Die Methode geit nid.",

	// Success messages
	"success.queued":  "%d Lieder i d Warteschlange gsteckt.",
	"success.dry_run": "Probelouf: %d Lieder gmischlet, nüt isch i d Warteschlange cho.",

	// Format helpers for listings
	"format.track":    "%3d. %s - %s",
	"format.playlist": "%s  %s (%d Lieder)",
}
