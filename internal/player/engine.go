package player

import (
	"errors"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tapedeck/internal/models"
	"github.com/desertthunder/tapedeck/internal/shared"
	"github.com/samber/lo"
)

// Options configures a new [Engine].
type Options struct {
	Media       Media       // required; without it the engine stays inert
	Store       Store       // optional; settings are kept in memory when nil
	View        any         // any combination of the view capability interfaces
	Logger      *log.Logger // defaults to [shared.NewLogger]
	StorageKey  string      // defaults to [DefaultStorageKey]
	Placeholder string      // artwork shown when a track has none
	Rand        *rand.Rand  // source for random jumps; defaults to the global generator
}

// Engine owns the queue, cursor, playback modes and volume, and drives a [Media].
type Engine struct {
	media       Media
	store       Store
	logger      *log.Logger
	key         string
	placeholder string
	intn        func(n int) int

	nowPlaying NowPlayingView
	transport  TransportView
	progress   ProgressView
	modes      ModeView
	volumeView VolumeView

	queue    []models.Track
	cursor   int
	playing  bool
	settings Settings
	volume   float64

	progressGesture *Gesture
	volumeGesture   *Gesture
}

// New builds an engine and performs initialization: settings are restored from the store
// (corrupt records are purged), the volume is applied to the media, the empty "no track"
// state is rendered and the mode and volume indicators are refreshed.
//
// When opts.Media is nil the failure is logged and the returned engine ignores every call.
func New(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.StorageKey == "" {
		opts.StorageKey = DefaultStorageKey
	}

	e := &Engine{
		media:       opts.Media,
		store:       opts.Store,
		logger:      opts.Logger.With("component", "player"),
		key:         opts.StorageKey,
		placeholder: opts.Placeholder,
		intn:        rand.IntN,
		settings:    DefaultSettings(),
		volume:      1,
	}
	if opts.Rand != nil {
		e.intn = opts.Rand.IntN
	}

	e.nowPlaying, _ = opts.View.(NowPlayingView)
	e.transport, _ = opts.View.(TransportView)
	e.progress, _ = opts.View.(ProgressView)
	e.modes, _ = opts.View.(ModeView)
	e.volumeView, _ = opts.View.(VolumeView)

	e.progressGesture = newGesture(e.SeekTo)
	e.volumeGesture = newGesture(e.SetVolume)

	if e.media == nil {
		e.logger.Error("player cannot be initialized", "error", shared.ErrMediaUnavailable)
		return e
	}

	e.loadSettings()
	e.media.SetVolume(e.volume)
	e.loadCurrent()
	e.renderModes()
	e.renderVolume()

	e.logger.Info("player initialized", "shuffle", e.settings.IsRandom, "repeat", e.settings.RepeatMode, "volume", e.volume)
	return e
}

func (e *Engine) ready() bool {
	return e.media != nil
}

// SetQueueAndPlay replaces the queue with tracks, moves the cursor to start, loads that
// track and starts playback. Empty input or an out-of-range start is logged and ignored,
// leaving the previous queue and cursor untouched.
func (e *Engine) SetQueueAndPlay(tracks []models.Track, start int) {
	if !e.ready() {
		return
	}
	if len(tracks) == 0 {
		e.logger.Warn("ignoring request to play an empty queue", "error", shared.ErrEmptyQueue)
		return
	}
	if start < 0 || start >= len(tracks) {
		e.logger.Warn("ignoring queue with invalid start index", "start", start, "length", len(tracks), "error", shared.ErrIndexOutOfRange)
		return
	}

	e.queue = slices.Clone(tracks)
	e.cursor = start
	e.loadCurrent()
	if e.media.Paused() {
		e.play()
	}

	current, _ := e.Current()
	e.logger.Info("queue set", "tracks", len(e.queue), "start", start, "title", current.DisplayTitle())
}

// Next moves the cursor forward, wrapping to the first track, and loads it.
func (e *Engine) Next() {
	if !e.ready() || len(e.queue) == 0 {
		return
	}
	e.cursor = (e.cursor + 1) % len(e.queue)
	e.loadCurrent()
}

// Previous moves the cursor back, wrapping to the last track, and loads it.
func (e *Engine) Previous() {
	if !e.ready() || len(e.queue) == 0 {
		return
	}
	e.cursor = (e.cursor - 1 + len(e.queue)) % len(e.queue)
	e.loadCurrent()
}

// RandomJump moves the cursor to a uniformly chosen different track and loads it.
// A single-track queue reloads the same track.
func (e *Engine) RandomJump() {
	if !e.ready() || len(e.queue) == 0 {
		return
	}
	if len(e.queue) > 1 {
		idx := e.intn(len(e.queue) - 1)
		if idx >= e.cursor {
			idx++
		}
		e.cursor = idx
	}
	e.loadCurrent()
}

// TogglePlay pauses a playing media element or starts a paused one.
//
// It does not touch the playing flag; that follows the resulting media events.
func (e *Engine) TogglePlay() {
	if !e.ready() {
		return
	}
	if e.media.Paused() {
		e.play()
		return
	}
	e.media.Pause()
}

// SkipForward is the "next" button: a random jump when shuffling, otherwise [Engine.Next],
// followed by an explicit play.
func (e *Engine) SkipForward() {
	if !e.ready() || len(e.queue) == 0 {
		return
	}
	if e.settings.IsRandom {
		e.RandomJump()
	} else {
		e.Next()
	}
	e.play()
}

// SkipBack is the "previous" button: a random jump when shuffling, otherwise
// [Engine.Previous], followed by an explicit play.
func (e *Engine) SkipBack() {
	if !e.ready() || len(e.queue) == 0 {
		return
	}
	if e.settings.IsRandom {
		e.RandomJump()
	} else {
		e.Previous()
	}
	e.play()
}

// ToggleShuffle flips shuffle and persists it. The queue order is never changed.
func (e *Engine) ToggleShuffle() {
	if !e.ready() {
		return
	}
	e.settings.IsRandom = !e.settings.IsRandom
	e.saveSettings()
	e.renderModes()
}

// CycleRepeat advances repeat off → all → one → off and persists it.
func (e *Engine) CycleRepeat() {
	if !e.ready() {
		return
	}
	e.settings.RepeatMode = e.settings.RepeatMode.Next()
	e.saveSettings()
	e.renderModes()
}

// SeekTo moves playback to fraction (clamped to [0,1]) of the media duration.
// Nothing happens while the duration is unknown.
func (e *Engine) SeekTo(fraction float64) {
	if !e.ready() || math.IsNaN(fraction) {
		return
	}
	d := e.media.Duration()
	if !(d > 0) || math.IsInf(d, 0) {
		return
	}
	fraction = lo.Clamp(fraction, 0, 1)
	e.media.SetCurrentTime(d * fraction)
	if e.progress != nil {
		e.progress.ShowProgress(fraction)
	}
}

// SetVolume sets the volume to fraction (clamped to [0,1]) and remembers it as the last volume.
func (e *Engine) SetVolume(fraction float64) {
	if !e.ready() || math.IsNaN(fraction) {
		return
	}
	v := lo.Clamp(fraction, 0, 1)
	e.media.SetVolume(v)
	e.volume = v
	e.settings.LastVolume = &v
	e.saveSettings()
	e.renderVolume()
}

// ToggleMute silences a non-zero volume, or restores the remembered last volume (1 if none).
// Muting is transient and never persisted.
func (e *Engine) ToggleMute() {
	if !e.ready() {
		return
	}
	if e.media.Volume() > 0 {
		e.volume = 0
	} else {
		e.volume = e.settings.Volume()
	}
	e.media.SetVolume(e.volume)
	e.renderVolume()
}

// ProgressGesture returns the drag tracker bound to [Engine.SeekTo].
func (e *Engine) ProgressGesture() *Gesture {
	return e.progressGesture
}

// VolumeGesture returns the drag tracker bound to [Engine.SetVolume].
func (e *Engine) VolumeGesture() *Gesture {
	return e.volumeGesture
}

// Dispatch applies a media event.
func (e *Engine) Dispatch(ev Event) {
	if !e.ready() {
		return
	}
	switch ev.Kind {
	case EventPlay:
		e.setPlaying(true)
	case EventPause:
		e.setPlaying(false)
	case EventEnded:
		if ev.Source != "" && ev.Source != e.media.Source() {
			e.logger.Debug("dropping ended event for a replaced source", "source", ev.Source)
			return
		}
		e.handleEnded()
	case EventTimeUpdate, EventLoadedMetadata:
		e.renderTime()
	case EventError:
		e.logger.Warn("media error", "source", e.media.Source(), "error", ev.Err)
	}
}

// handleEnded decides what follows a track that played to its end.
// Repeat-one always restarts the same track; otherwise shuffle picks the next index.
func (e *Engine) handleEnded() {
	if len(e.queue) == 0 {
		e.setPlaying(false)
		return
	}

	switch e.settings.RepeatMode {
	case RepeatOne:
		e.media.SetCurrentTime(0)
		e.play()
	case RepeatAll:
		e.advance()
		e.play()
	default:
		if e.cursor == len(e.queue)-1 {
			e.setPlaying(false)
			e.cursor = 0
			e.loadCurrent()
			return
		}
		e.advance()
		e.play()
	}
}

func (e *Engine) advance() {
	if e.settings.IsRandom {
		e.RandomJump()
		return
	}
	e.Next()
}

func (e *Engine) play() {
	if err := e.media.Play(); err != nil {
		e.logger.Warn("playback did not start", "source", e.media.Source(), "error", err)
	}
}

func (e *Engine) setPlaying(playing bool) {
	e.playing = playing
	if e.transport != nil {
		e.transport.ShowPlaying(playing)
	}
}

// Current returns the track under the cursor. It is derived from the queue on every call.
func (e *Engine) Current() (models.Track, bool) {
	if e.cursor < 0 || e.cursor >= len(e.queue) {
		return models.Track{}, false
	}
	return e.queue[e.cursor], true
}

// Cursor returns the queue index of the current track, or -1 when the queue is empty.
func (e *Engine) Cursor() int {
	if len(e.queue) == 0 {
		return -1
	}
	return e.cursor
}

// Queue returns a copy of the queue.
func (e *Engine) Queue() []models.Track {
	return slices.Clone(e.queue)
}

// IsPlaying reports the playing state as last signalled by the media element.
func (e *Engine) IsPlaying() bool {
	return e.playing
}

// Shuffle reports whether shuffle is on.
func (e *Engine) Shuffle() bool {
	return e.settings.IsRandom
}

// Repeat returns the current repeat mode.
func (e *Engine) Repeat() RepeatMode {
	return e.settings.RepeatMode
}

// Volume returns the current volume in [0,1].
func (e *Engine) Volume() float64 {
	return e.volume
}

// Settings returns a copy of the persisted preference record.
func (e *Engine) Settings() Settings {
	s := e.settings
	if s.LastVolume != nil {
		v := *s.LastVolume
		s.LastVolume = &v
	}
	return s
}

func (e *Engine) loadSettings() {
	if e.store == nil {
		e.logger.Debug("no settings store, preferences will not persist")
		return
	}

	s, err := LoadSettings(e.store, e.key)
	switch {
	case errors.Is(err, shared.ErrCorruptSettings):
		e.logger.Error("failed to load player settings, restoring defaults", "key", e.key, "error", err)
		if rmErr := e.store.Remove(e.key); rmErr != nil {
			e.logger.Warn("failed to purge corrupt settings", "key", e.key, "error", rmErr)
		}
	case err != nil:
		e.logger.Error("failed to load player settings, using defaults", "key", e.key, "error", err)
	}

	e.settings = s
	e.volume = s.Volume()
}

func (e *Engine) saveSettings() {
	if e.store == nil {
		return
	}
	if err := SaveSettings(e.store, e.key, e.settings); err != nil {
		e.logger.Warn("failed to persist player settings", "key", e.key, "error", err)
	}
}

// loadCurrent pushes the track under the cursor into the view and the media source.
func (e *Engine) loadCurrent() {
	track, ok := e.Current()
	if !ok {
		if e.nowPlaying != nil {
			e.nowPlaying.ShowNowPlaying(NowPlaying{Title: NoTrackTitle, Artwork: e.placeholder, Empty: true})
		}
		e.media.SetSource("")
		e.renderTimes(0, 0)
		return
	}

	if e.nowPlaying != nil {
		e.nowPlaying.ShowNowPlaying(NowPlaying{
			Title:   track.DisplayTitle(),
			Artist:  track.DisplayArtist(),
			Artwork: track.Artwork(e.placeholder),
		})
	}
	e.media.SetSource(track.AudioURL)
	e.renderTimes(0, track.Duration)
}

func (e *Engine) renderTime() {
	d := e.media.Duration()
	if !(d > 0) {
		return
	}
	cur := e.media.CurrentTime()
	e.renderTimes(cur, d)
}

func (e *Engine) renderTimes(elapsed, total float64) {
	if e.progress == nil {
		return
	}
	fraction := 0.0
	if total > 0 && !math.IsInf(total, 0) && !math.IsNaN(elapsed) {
		fraction = lo.Clamp(elapsed/total, 0, 1)
	}
	e.progress.ShowProgress(fraction)
	e.progress.ShowTimes(FormatTime(elapsed), FormatTime(total))
}

func (e *Engine) renderModes() {
	if e.modes != nil {
		e.modes.ShowModes(e.settings.IsRandom, e.settings.RepeatMode)
	}
}

func (e *Engine) renderVolume() {
	if e.volumeView != nil {
		e.volumeView.ShowVolume(e.volume, TierFor(e.volume))
	}
}
