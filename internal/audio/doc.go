// Package audio implements the media element the player drives: beep decoders for mp3, wav,
// flac and ogg sources (local paths or http URLs), a volume stage, and the system speaker.
package audio
