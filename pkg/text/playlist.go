// Package text turns user-supplied playlist references into Spotify IDs.
package text

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// minPartsForPlaylistURI is the part count of "spotify:playlist:<id>".
const minPartsForPlaylistURI = 3

var (
	// ErrInvalidPlaylistRef is returned for references no playlist ID can be read from.
	ErrInvalidPlaylistRef = errors.New("invalid playlist reference")

	spotifyIDRegex = regexp.MustCompile(`^[0-9A-Za-z]+$`)

	spotifyDomains = map[string]bool{
		"open.spotify.com": true,
		"play.spotify.com": true,
		"spotify.com":      true,
	}
)

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// PlaylistID accepts a bare ID, a spotify:playlist: URI (including the older
// spotify:user:<name>:playlist: form) or an open.spotify.com share link.
func (p *Parser) PlaylistID(ref string) (string, error) {
	ref = p.normalizeText(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidPlaylistRef)
	}

	var id string
	switch {
	case strings.HasPrefix(ref, "spotify:"):
		id = p.idFromURI(ref)
	case strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://"):
		id = p.idFromURL(ref)
	default:
		id = ref
	}

	if !spotifyIDRegex.MatchString(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPlaylistRef, ref)
	}
	return id, nil
}

// PlaylistIDs resolves every reference, failing on the first bad one.
func (p *Parser) PlaylistIDs(refs []string) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		id, err := p.PlaylistID(ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (p *Parser) normalizeText(text string) string {
	text = norm.NFKC.String(text)
	return strings.TrimRight(strings.TrimSpace(text), ".,!?;")
}

func (p *Parser) idFromURI(uri string) string {
	parts := strings.Split(uri, ":")
	if len(parts) < minPartsForPlaylistURI {
		return ""
	}
	for i, part := range parts {
		if part == "playlist" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}

func (p *Parser) idFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}

	if !spotifyDomains[strings.ToLower(u.Hostname())] {
		return ""
	}

	// share links may carry locale prefixes such as /intl-de/
	pathParts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, part := range pathParts {
		if part == "playlist" && i+1 < len(pathParts) {
			return pathParts[i+1]
		}
	}
	return ""
}
