package core

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across packages.
var (
	ErrMalformedTrack   = errors.New("malformed track")
	ErrNotAuthenticated = errors.New("client not authenticated")
	ErrNoActiveDevice   = errors.New("no active device")
	ErrNoPlaylists      = errors.New("no playlists selected")
)

// Track fields checked by ValidateTracks.
const (
	FieldURI     = "uri"
	FieldArtists = "artists"
	FieldAlbum   = "album"
)

// MalformedTrackError reports a track missing a field the shuffler depends on.
type MalformedTrackError struct {
	Index int
	URI   string
	Field string
}

func (e *MalformedTrackError) Error() string {
	if e.URI == "" {
		return fmt.Sprintf("malformed track at index %d: missing %s", e.Index, e.Field)
	}
	return fmt.Sprintf("malformed track %s at index %d: missing %s", e.URI, e.Index, e.Field)
}

func (e *MalformedTrackError) Is(target error) bool {
	return target == ErrMalformedTrack
}

// ValidateTracks fails fast on the first track lacking a URI or the
// declustering key selected by opts.
func ValidateTracks(tracks []Track, opts ShuffleOptions) error {
	for i := range tracks {
		t := &tracks[i]
		if t.URI == "" {
			return &MalformedTrackError{Index: i, Field: FieldURI}
		}
		switch {
		case opts.NoDoubleArtist:
			if len(t.Artists) == 0 {
				return &MalformedTrackError{Index: i, URI: t.URI, Field: FieldArtists}
			}
		case opts.NoDoubleAlbum:
			if t.Album == nil {
				return &MalformedTrackError{Index: i, URI: t.URI, Field: FieldAlbum}
			}
		}
	}
	return nil
}
