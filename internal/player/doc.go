// Package player implements the playback engine: an ordered queue of [models.Track] records,
// a cursor into it, shuffle and repeat modes, volume with mute, and persisted preferences.
//
// The engine drives a single [Media] primitive and mirrors it into whichever view capabilities
// the caller supplies ([NowPlayingView], [TransportView], [ProgressView], [ModeView], [VolumeView]).
// Playing state is never set optimistically: it follows the primitive's own play and pause
// events delivered through [Engine.Dispatch], so the UI converges on what the primitive
// actually does even when playback starts or stops for reasons outside the engine.
//
// An [Engine] is not safe for concurrent use. One goroutine (normally the UI loop) owns it
// and feeds it both user actions and media events.
package player
