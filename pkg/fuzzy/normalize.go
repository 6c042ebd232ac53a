// Package fuzzy normalizes artist and album names so spelling variants compare equal.
package fuzzy

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	editionRegex    = regexp.MustCompile(`(?i)\s*[\(\[]\s*(?:remaster(?:ed)?|deluxe|expanded|anniversary|special)[^\)\]]*[\)\]]\s*`)
	punctRegex      = regexp.MustCompile(`[^\p{L}\p{N}\s&]+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

func (n *Normalizer) NormalizeArtist(artist string) string {
	artist = n.basicNormalize(artist)

	artist = strings.ReplaceAll(artist, " and ", " & ")
	artist = strings.TrimPrefix(artist, "the ")

	return artist
}

// NormalizeAlbum folds edition suffixes so "Abbey Road (Remastered)" matches "Abbey Road".
func (n *Normalizer) NormalizeAlbum(album string) string {
	album = editionRegex.ReplaceAllString(album, " ")
	return n.basicNormalize(album)
}

func (n *Normalizer) basicNormalize(text string) string {
	text = norm.NFKD.String(text)

	var result strings.Builder
	for _, r := range text {
		if !unicode.IsMark(r) {
			result.WriteRune(r)
		}
	}
	text = result.String()

	text = punctRegex.ReplaceAllString(text, " ")
	text = whitespaceRegex.ReplaceAllString(text, " ")

	text = strings.ToLower(text)
	text = strings.TrimSpace(text)

	return text
}
