package fuzzy

import (
	"testing"
)

// runStringTransformationTest is a helper to run tests for string transformation functions.
func runStringTransformationTest(t *testing.T, testName string,
	transformFunc func(string) string, testCases []struct {
		name     string
		input    string
		expected string
	}) {
	t.Helper()
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			result := transformFunc(tt.input)
			if result != tt.expected {
				t.Errorf("%s() = %q, want %q", testName, result, tt.expected)
			}
		})
	}
}

func TestNormalizer_NormalizeArtist(t *testing.T) {
	normalizer := NewNormalizer()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Simple artist name",
			input:    "Radiohead",
			expected: "radiohead",
		},
		{
			name:     "Leading article",
			input:    "The Beatles",
			expected: "beatles",
		},
		{
			name:     "Artist with and",
			input:    "Simon and Garfunkel",
			expected: "simon & garfunkel",
		},
		{
			name:     "Artist with ampersand kept",
			input:    "Simon & Garfunkel",
			expected: "simon & garfunkel",
		},
		{
			name:     "Artist with punctuation",
			input:    "P!nk",
			expected: "p nk",
		},
		{
			name:     "Artist with accents",
			input:    "Björk",
			expected: "bjork",
		},
		{
			name:     "Extra whitespace",
			input:    "  Daft   Punk ",
			expected: "daft punk",
		},
	}

	runStringTransformationTest(t, "NormalizeArtist", normalizer.NormalizeArtist, tests)
}

func TestNormalizer_NormalizeAlbum(t *testing.T) {
	normalizer := NewNormalizer()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Simple album",
			input:    "OK Computer",
			expected: "ok computer",
		},
		{
			name:     "Remastered edition",
			input:    "Abbey Road (Remastered 2009)",
			expected: "abbey road",
		},
		{
			name:     "Deluxe edition in brackets",
			input:    "Random Access Memories [Deluxe Edition]",
			expected: "random access memories",
		},
		{
			name:     "Accents",
			input:    "Homogénic",
			expected: "homogenic",
		},
		{
			name:     "Live suffix is kept",
			input:    "Alive (Live)",
			expected: "alive live",
		},
	}

	runStringTransformationTest(t, "NormalizeAlbum", normalizer.NormalizeAlbum, tests)
}

func TestNormalizer_VariantsCompareEqual(t *testing.T) {
	normalizer := NewNormalizer()

	if normalizer.NormalizeArtist("Sigur Rós") != normalizer.NormalizeArtist("sigur ros") {
		t.Error("Accent variants of an artist should normalize to the same key")
	}

	if normalizer.NormalizeAlbum("Kid A") == normalizer.NormalizeAlbum("Amnesiac") {
		t.Error("Different albums must not normalize to the same key")
	}
}
