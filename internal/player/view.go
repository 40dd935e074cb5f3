package player

// NoTrackTitle is shown while the queue is empty.
const NoTrackTitle = "No song selected"

// NowPlaying is the metadata block for the track under the cursor.
type NowPlaying struct {
	Title   string
	Artist  string
	Artwork string
	Empty   bool // true when nothing is loaded
}

// NowPlayingView renders title, artist and artwork.
type NowPlayingView interface {
	ShowNowPlaying(np NowPlaying)
}

// TransportView renders the play/pause control and the "playing" styling.
type TransportView interface {
	ShowPlaying(playing bool)
}

// ProgressView renders the seek bar and the elapsed/total labels.
type ProgressView interface {
	ShowProgress(fraction float64)
	ShowTimes(elapsed, total string)
}

// ModeView renders the shuffle and repeat indicators.
type ModeView interface {
	ShowModes(shuffle bool, repeat RepeatMode)
}

// VolumeView renders the volume bar and the mute button icon.
type VolumeView interface {
	ShowVolume(fraction float64, tier VolumeTier)
}
