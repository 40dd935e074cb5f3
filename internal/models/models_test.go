package models

import (
	"math"
	"testing"
)

func TestTrack(t *testing.T) {
	t.Run("Validate", func(t *testing.T) {
		tt := []struct {
			name    string
			track   Track
			wantErr bool
		}{
			{name: "audio locator only", track: Track{AudioURL: "song.mp3"}},
			{name: "full record", track: Track{ID: "1", Title: "A", ArtistName: "B", AudioURL: "https://cdn/a.mp3", Duration: 180}},
			{name: "missing locator", track: Track{ID: "1", Title: "A"}, wantErr: true},
			{name: "blank locator", track: Track{AudioURL: "   "}, wantErr: true},
			{name: "negative duration", track: Track{AudioURL: "a.mp3", Duration: -1}, wantErr: true},
			{name: "NaN duration", track: Track{AudioURL: "a.mp3", Duration: math.NaN()}, wantErr: true},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				err := tc.track.Validate()
				if (err != nil) != tc.wantErr {
					t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
				}
			})
		}
	})

	t.Run("display fallbacks", func(t *testing.T) {
		var empty Track
		if empty.DisplayTitle() != UnknownTitle {
			t.Errorf("expected %q, got %q", UnknownTitle, empty.DisplayTitle())
		}
		if empty.DisplayArtist() != UnknownArtist {
			t.Errorf("expected %q, got %q", UnknownArtist, empty.DisplayArtist())
		}

		named := Track{Title: "Song", ArtistName: "Band"}
		if named.DisplayTitle() != "Song" || named.DisplayArtist() != "Band" {
			t.Errorf("unexpected display values %q / %q", named.DisplayTitle(), named.DisplayArtist())
		}
	})

	t.Run("Artwork precedence", func(t *testing.T) {
		tt := []struct {
			name  string
			track Track
			want  string
		}{
			{name: "track image wins", track: Track{ImageURL: "track.jpg", AlbumCoverImageURL: "album.jpg"}, want: "track.jpg"},
			{name: "album cover fallback", track: Track{AlbumCoverImageURL: "album.jpg"}, want: "album.jpg"},
			{name: "placeholder fallback", track: Track{}, want: "placeholder.svg"},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				if got := tc.track.Artwork("placeholder.svg"); got != tc.want {
					t.Errorf("Artwork() = %q, want %q", got, tc.want)
				}
			})
		}
	})
}
