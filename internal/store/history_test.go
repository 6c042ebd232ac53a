package store

import (
	"fmt"
	"testing"
)

func TestHistory_Rank(t *testing.T) {
	history := NewHistory([]string{"a", "b", "a", "", "c"})

	tests := []struct {
		uri        string
		wantRank   int
		wantRecent bool
	}{
		{"a", 1, true},
		{"b", 2, true},
		{"c", 5, true},
		{"missing", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			rank, recent := history.Rank(tt.uri)
			if rank != tt.wantRank || recent != tt.wantRecent {
				t.Errorf("Rank(%q) = (%d, %v), want (%d, %v)", tt.uri, rank, recent, tt.wantRank, tt.wantRecent)
			}
		})
	}

	if history.Len() != 5 {
		t.Errorf("Len() = %d, want 5", history.Len())
	}

	if history.Size() != 3 {
		t.Errorf("Size() = %d, want 3", history.Size())
	}
}

func TestHistory_Empty(t *testing.T) {
	history := NewHistory(nil)

	if _, recent := history.Rank("a"); recent {
		t.Error("Empty history should not report any track as recent")
	}
}

func TestHistory_FullAPIWindow(t *testing.T) {
	uris := make([]string, 50)
	for i := range uris {
		uris[i] = fmt.Sprintf("spotify:track:%02d", i)
	}
	history := NewHistory(uris)

	for i, uri := range uris {
		rank, recent := history.Rank(uri)
		if !recent || rank != i+1 {
			t.Errorf("Rank(%q) = (%d, %v), want (%d, true)", uri, rank, recent, i+1)
		}
	}
}
