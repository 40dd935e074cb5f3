package ui

import (
	"github.com/desertthunder/tapedeck/internal/player"
)

var (
	_ player.NowPlayingView = (*Screen)(nil)
	_ player.TransportView  = (*Screen)(nil)
	_ player.ProgressView   = (*Screen)(nil)
	_ player.ModeView       = (*Screen)(nil)
	_ player.VolumeView     = (*Screen)(nil)
)

// Screen is the player panel's state. The engine writes to it through the view
// interfaces and [Model.View] reads it back when rendering.
type Screen struct {
	nowPlaying player.NowPlaying
	playing    bool
	progress   float64
	elapsed    string
	total      string
	shuffle    bool
	repeat     player.RepeatMode
	volume     float64
	tier       player.VolumeTier
}

// NewScreen returns a panel showing nothing loaded.
func NewScreen() *Screen {
	return &Screen{
		nowPlaying: player.NowPlaying{Title: player.NoTrackTitle, Empty: true},
		elapsed:    "0:00",
		total:      "0:00",
		repeat:     player.RepeatOff,
		volume:     1,
		tier:       player.VolumeFull,
	}
}

func (s *Screen) ShowNowPlaying(np player.NowPlaying) { s.nowPlaying = np }
func (s *Screen) ShowPlaying(playing bool)            { s.playing = playing }
func (s *Screen) ShowProgress(fraction float64)       { s.progress = fraction }

func (s *Screen) ShowTimes(elapsed, total string) {
	s.elapsed, s.total = elapsed, total
}

func (s *Screen) ShowModes(shuffle bool, repeat player.RepeatMode) {
	s.shuffle, s.repeat = shuffle, repeat
}

func (s *Screen) ShowVolume(fraction float64, tier player.VolumeTier) {
	s.volume, s.tier = fraction, tier
}

// Progress returns the last progress fraction shown.
func (s *Screen) Progress() float64 { return s.progress }
