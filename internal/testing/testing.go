// package testing contains shared testing utilities: fakes for the media element, settings store and views
package testing

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/tapedeck/internal/models"
	"github.com/desertthunder/tapedeck/internal/player"
)

var (
	_ player.Media          = (*FakeMedia)(nil)
	_ player.Store          = (*MemoryStore)(nil)
	_ player.NowPlayingView = (*RecordingView)(nil)
	_ player.TransportView  = (*RecordingView)(nil)
	_ player.ProgressView   = (*RecordingView)(nil)
	_ player.ModeView       = (*RecordingView)(nil)
	_ player.VolumeView     = (*RecordingView)(nil)
)

// FakeMedia is an in-memory [player.Media] that behaves like an HTML audio element.
//
// Events it would emit are queued; tests hand them to the engine with [FakeMedia.Pump].
type FakeMedia struct {
	Durations map[string]float64 // known duration per source; unknown sources report NaN
	PlayErr   error              // when set, Play fails without changing state
	Sources   []string           // every locator passed to SetSource
	Plays     int                // number of Play calls
	Seeks     []float64          // every position passed to SetCurrentTime

	src     string
	paused  bool
	ended   bool
	current float64
	volume  float64
	events  []player.Event
}

// NewFakeMedia returns a paused element with volume 1 and no source.
func NewFakeMedia() *FakeMedia {
	return &FakeMedia{Durations: map[string]float64{}, paused: true, volume: 1}
}

func (m *FakeMedia) Play() error {
	m.Plays++
	if m.PlayErr != nil {
		return m.PlayErr
	}
	if m.src == "" {
		return errors.New("no supported source")
	}
	if m.ended {
		m.ended = false
		m.current = 0
	}
	if m.paused {
		m.paused = false
		m.emit(player.EventPlay)
	}
	return nil
}

func (m *FakeMedia) Pause() {
	if !m.paused {
		m.paused = true
		m.emit(player.EventPause)
	}
}

func (m *FakeMedia) Paused() bool { return m.paused }

// SetSource resets the element like a media load: paused, position 0, no pause event.
func (m *FakeMedia) SetSource(locator string) {
	m.src = locator
	m.paused = true
	m.ended = false
	m.current = 0
	m.Sources = append(m.Sources, locator)
}

func (m *FakeMedia) Source() string { return m.src }

func (m *FakeMedia) CurrentTime() float64 { return m.current }

func (m *FakeMedia) SetCurrentTime(seconds float64) {
	m.current = seconds
	m.ended = false
	m.Seeks = append(m.Seeks, seconds)
}

func (m *FakeMedia) Duration() float64 {
	if d, ok := m.Durations[m.src]; ok && m.src != "" {
		return d
	}
	return math.NaN()
}

func (m *FakeMedia) Volume() float64 { return m.volume }

func (m *FakeMedia) SetVolume(v float64) { m.volume = v }

// Advance moves the playback position and queues a timeupdate.
func (m *FakeMedia) Advance(seconds float64) {
	m.current += seconds
	m.emit(player.EventTimeUpdate)
}

// Finish simulates the track playing to its end: pause then ended, as a browser does.
func (m *FakeMedia) Finish() {
	if d := m.Duration(); !math.IsNaN(d) {
		m.current = d
	}
	m.ended = true
	if !m.paused {
		m.paused = true
		m.emit(player.EventPause)
	}
	m.emit(player.EventEnded)
}

// Events returns and clears the queued events.
func (m *FakeMedia) Events() []player.Event {
	ev := m.events
	m.events = nil
	return ev
}

// Pump delivers queued events to the engine until none remain.
func (m *FakeMedia) Pump(e *player.Engine) {
	for len(m.events) > 0 {
		for _, ev := range m.Events() {
			e.Dispatch(ev)
		}
	}
}

func (m *FakeMedia) emit(kind player.EventKind) {
	m.events = append(m.events, player.Event{Kind: kind, Source: m.src})
}

// MemoryStore is a map-backed [player.Store].
type MemoryStore struct {
	mu      sync.Mutex
	data    map[string]string
	Err     error // returned by every operation when set
	Removed []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]string{}}
}

func (s *MemoryStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", false, s.Err
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.data[key] = value
	return nil
}

func (s *MemoryStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Removed = append(s.Removed, key)
	delete(s.data, key)
	return nil
}

// RecordingView captures the latest state pushed to every view capability.
type RecordingView struct {
	NowPlaying player.NowPlaying
	Playing    bool
	Progress   float64
	Elapsed    string
	Total      string
	Shuffle    bool
	Repeat     player.RepeatMode
	Volume     float64
	Tier       player.VolumeTier
}

func (v *RecordingView) ShowNowPlaying(np player.NowPlaying) { v.NowPlaying = np }
func (v *RecordingView) ShowPlaying(playing bool)            { v.Playing = playing }
func (v *RecordingView) ShowProgress(fraction float64)       { v.Progress = fraction }
func (v *RecordingView) ShowTimes(elapsed, total string) {
	v.Elapsed, v.Total = elapsed, total
}
func (v *RecordingView) ShowModes(shuffle bool, repeat player.RepeatMode) {
	v.Shuffle, v.Repeat = shuffle, repeat
}
func (v *RecordingView) ShowVolume(fraction float64, tier player.VolumeTier) {
	v.Volume, v.Tier = fraction, tier
}

// NowPlayingOnly implements only [player.NowPlayingView], standing in for a UI with missing controls.
type NowPlayingOnly struct {
	NowPlaying player.NowPlaying
}

func (v *NowPlayingOnly) ShowNowPlaying(np player.NowPlaying) { v.NowPlaying = np }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// MustWriteFile writes content to path, failing the test on error.
func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}

// Tracks builds n tracks with predictable ids, titles and sources.
func Tracks(n int) []models.Track {
	out := make([]models.Track, n)
	for i := range out {
		out[i] = models.Track{
			ID:         fmt.Sprintf("t%d", i),
			Title:      fmt.Sprintf("Track %d", i),
			ArtistName: fmt.Sprintf("Artist %d", i),
			AudioURL:   fmt.Sprintf("audio/%d.mp3", i),
			Duration:   float64(120 + i),
		}
	}
	return out
}
