package models

import (
	"fmt"
	"math"
	"strings"
)

const (
	UnknownTitle  = "Unknown Title"
	UnknownArtist = "Unknown Artist"
)

// Track is a read-only track record consumed by the player.
type Track struct {
	ID                 string  `json:"id"`
	Title              string  `json:"title"`
	ArtistName         string  `json:"artist_name"`
	AlbumTitle         string  `json:"album_title,omitempty"`
	AudioURL           string  `json:"audio_url"`
	ImageURL           string  `json:"image_url,omitempty"`
	AlbumCoverImageURL string  `json:"album_cover_image_url,omitempty"`
	Duration           float64 `json:"duration,omitempty"` // Duration in seconds; zero when unknown
}

// Validate checks that the track can be handed to a media element.
func (t Track) Validate() error {
	if strings.TrimSpace(t.AudioURL) == "" {
		return fmt.Errorf("track %q has no audio locator", t.ID)
	}
	if math.IsNaN(t.Duration) || t.Duration < 0 {
		return fmt.Errorf("track %q has invalid duration %v", t.ID, t.Duration)
	}
	return nil
}

// DisplayTitle returns the title or [UnknownTitle].
func (t Track) DisplayTitle() string {
	if t.Title == "" {
		return UnknownTitle
	}
	return t.Title
}

// DisplayArtist returns the artist name or [UnknownArtist].
func (t Track) DisplayArtist() string {
	if t.ArtistName == "" {
		return UnknownArtist
	}
	return t.ArtistName
}

// Artwork picks the track image, then the album cover, then placeholder.
func (t Track) Artwork(placeholder string) string {
	switch {
	case t.ImageURL != "":
		return t.ImageURL
	case t.AlbumCoverImageURL != "":
		return t.AlbumCoverImageURL
	default:
		return placeholder
	}
}
