package audio

import (
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/tapedeck/internal/player"
	"github.com/desertthunder/tapedeck/internal/shared"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/wav"
)

const testRate = 8000

// fakeSink records what the element hands to the speaker and lets tests pull samples.
type fakeSink struct {
	speaker sync.Mutex

	mu      sync.Mutex
	playing []beep.Streamer
	cleared int
}

func (s *fakeSink) Init(beep.SampleRate, int) error { return nil }

func (s *fakeSink) Play(st beep.Streamer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = append(s.playing, st)
}

func (s *fakeSink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = nil
	s.cleared++
}

func (s *fakeSink) Lock()   { s.speaker.Lock() }
func (s *fakeSink) Unlock() { s.speaker.Unlock() }

func (s *fakeSink) queued() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.playing)
}

// drain streams every queued streamer to exhaustion, as the speaker would.
func (s *fakeSink) drain() {
	s.mu.Lock()
	streams := s.playing
	s.playing = nil
	s.mu.Unlock()

	buf := make([][2]float64, 512)
	for _, st := range streams {
		for {
			s.Lock()
			_, ok := st.Stream(buf)
			s.Unlock()
			if !ok {
				break
			}
		}
	}
}

// writeSilence writes a mono WAV of the given length and returns its bytes.
func writeSilence(t *testing.T, path string, secs float64) []byte {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()

	remaining := int(secs * testRate)
	silence := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if remaining <= 0 {
			return 0, false
		}
		n := min(len(samples), remaining)
		for i := range samples[:n] {
			samples[i] = [2]float64{}
		}
		remaining -= n
		return n, true
	})

	format := beep.Format{SampleRate: testRate, NumChannels: 1, Precision: 2}
	if err := wav.Encode(f, silence, format); err != nil {
		t.Fatalf("failed to encode wav: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func newTestElement(t *testing.T) (*Element, *fakeSink) {
	t.Helper()
	out := &fakeSink{}
	e := newElement(Options{SampleRate: testRate, TimeUpdate: time.Hour}, out)
	t.Cleanup(e.Close)
	return e, out
}

// waitFor reads events until one of kind arrives, skipping timeupdates.
func waitFor(t *testing.T, e *Element, kind player.EventKind) player.Event {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-e.Events():
			if ev.Kind == kind {
				return ev
			}
			if ev.Kind == player.EventTimeUpdate {
				continue
			}
			t.Fatalf("expected %v, got %v (%v)", kind, ev.Kind, ev.Err)
		case <-timeout:
			t.Fatalf("timed out waiting for %v", kind)
		}
	}
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-3
}

func TestElement(t *testing.T) {
	t.Run("starts idle", func(t *testing.T) {
		e, _ := newTestElement(t)

		if !e.Paused() || e.Source() != "" || e.Volume() != 1 {
			t.Errorf("unexpected initial state: paused=%v source=%q volume=%v", e.Paused(), e.Source(), e.Volume())
		}
		if !math.IsNaN(e.Duration()) {
			t.Errorf("expected NaN duration, got %v", e.Duration())
		}
		if err := e.Play(); !errors.Is(err, shared.ErrNoSource) {
			t.Errorf("expected ErrNoSource, got %v", err)
		}
	})

	t.Run("loads, plays and ends", func(t *testing.T) {
		e, out := newTestElement(t)
		path := filepath.Join(t.TempDir(), "one.wav")
		writeSilence(t, path, 1)

		e.SetSource(path)
		waitFor(t, e, player.EventLoadedMetadata)

		if !near(e.Duration(), 1) {
			t.Errorf("Duration() = %v, want 1", e.Duration())
		}
		if out.queued() != 0 {
			t.Error("a paused source must not be mixed")
		}

		if err := e.Play(); err != nil {
			t.Fatalf("Play() error = %v", err)
		}
		waitFor(t, e, player.EventPlay)
		if e.Paused() || out.queued() != 1 {
			t.Errorf("expected playing with one queued stream, got paused=%v queued=%d", e.Paused(), out.queued())
		}

		e.Pause()
		waitFor(t, e, player.EventPause)
		if !e.Paused() {
			t.Error("expected paused")
		}

		e.SetCurrentTime(0.5)
		if !near(e.CurrentTime(), 0.5) {
			t.Errorf("CurrentTime() = %v, want 0.5", e.CurrentTime())
		}

		if err := e.Play(); err != nil {
			t.Fatal(err)
		}
		waitFor(t, e, player.EventPlay)
		if out.queued() != 1 {
			t.Errorf("resume must reuse the queued stream, got %d", out.queued())
		}

		out.drain()
		waitFor(t, e, player.EventPause)
		if ev := waitFor(t, e, player.EventEnded); ev.Source != path {
			t.Errorf("ended event source = %q, want %q", ev.Source, path)
		}
		if !e.Paused() {
			t.Error("expected paused after the end")
		}

		if err := e.Play(); err != nil {
			t.Fatal(err)
		}
		waitFor(t, e, player.EventPlay)
		if !near(e.CurrentTime(), 0) || out.queued() != 1 {
			t.Errorf("replay after end: position %v queued %d", e.CurrentTime(), out.queued())
		}
	})

	t.Run("seek before metadata is applied on load", func(t *testing.T) {
		e, _ := newTestElement(t)
		path := filepath.Join(t.TempDir(), "two.wav")
		writeSilence(t, path, 2)

		e.SetSource(path)
		e.SetCurrentTime(1.5)
		waitFor(t, e, player.EventLoadedMetadata)

		if !near(e.CurrentTime(), 1.5) {
			t.Errorf("CurrentTime() = %v, want 1.5", e.CurrentTime())
		}
	})

	t.Run("changing source clears output", func(t *testing.T) {
		e, out := newTestElement(t)
		path := filepath.Join(t.TempDir(), "one.wav")
		writeSilence(t, path, 1)

		e.SetSource(path)
		waitFor(t, e, player.EventLoadedMetadata)
		_ = e.Play()
		waitFor(t, e, player.EventPlay)

		e.SetSource("")
		if !e.Paused() || e.Source() != "" || !math.IsNaN(e.Duration()) {
			t.Error("expected an idle element after clearing the source")
		}
		if out.cleared == 0 || out.queued() != 0 {
			t.Errorf("expected the mixer cleared, cleared=%d queued=%d", out.cleared, out.queued())
		}
	})

	t.Run("unsupported format reports an error", func(t *testing.T) {
		e, _ := newTestElement(t)
		path := filepath.Join(t.TempDir(), "notes.txt")
		if err := os.WriteFile(path, []byte("not audio"), 0644); err != nil {
			t.Fatal(err)
		}

		e.SetSource(path)
		ev := waitFor(t, e, player.EventError)
		if !errors.Is(ev.Err, shared.ErrUnsupportedFormat) {
			t.Errorf("expected ErrUnsupportedFormat, got %v", ev.Err)
		}
		if err := e.Play(); err == nil {
			t.Error("expected Play to fail for a broken source")
		}
	})

	t.Run("missing file reports an error", func(t *testing.T) {
		e, _ := newTestElement(t)

		e.SetSource(filepath.Join(t.TempDir(), "gone.mp3"))
		ev := waitFor(t, e, player.EventError)
		if !errors.Is(ev.Err, shared.ErrSourceUnreachable) {
			t.Errorf("expected ErrSourceUnreachable, got %v", ev.Err)
		}
	})

	t.Run("volume is clamped", func(t *testing.T) {
		e, _ := newTestElement(t)

		e.SetVolume(2)
		if e.Volume() != 1 {
			t.Errorf("Volume() = %v, want 1", e.Volume())
		}
		e.SetVolume(-1)
		if e.Volume() != 0 {
			t.Errorf("Volume() = %v, want 0", e.Volume())
		}
	})
}

func TestElementHTTP(t *testing.T) {
	data := writeSilence(t, filepath.Join(t.TempDir(), "remote.wav"), 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/stream":
			w.Header().Set("Content-Type", "audio/wav")
			_, _ = w.Write(data)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	t.Run("content type picks the decoder", func(t *testing.T) {
		e, _ := newTestElement(t)

		e.SetSource(srv.URL + "/stream")
		waitFor(t, e, player.EventLoadedMetadata)
		if !near(e.Duration(), 1) {
			t.Errorf("Duration() = %v, want 1", e.Duration())
		}
	})

	t.Run("http errors are unreachable sources", func(t *testing.T) {
		e, _ := newTestElement(t)

		e.SetSource(srv.URL + "/missing.mp3")
		ev := waitFor(t, e, player.EventError)
		if !errors.Is(ev.Err, shared.ErrSourceUnreachable) {
			t.Errorf("expected ErrSourceUnreachable, got %v", ev.Err)
		}
	})
}

func TestApplyGain(t *testing.T) {
	tests := []struct {
		linear float64
		want   float64
		silent bool
	}{
		{linear: 1, want: 0},
		{linear: 0.5, want: -1},
		{linear: 0.25, want: -2},
		{linear: 0, silent: true},
	}

	for _, tt := range tests {
		v := &effects.Volume{Base: 2}
		applyGain(v, tt.linear)
		if v.Silent != tt.silent {
			t.Errorf("applyGain(%v) silent = %v, want %v", tt.linear, v.Silent, tt.silent)
		}
		if !tt.silent && v.Volume != tt.want {
			t.Errorf("applyGain(%v) volume = %v, want %v", tt.linear, v.Volume, tt.want)
		}
	}
}

func TestEventQueueOrder(t *testing.T) {
	q := newEventQueue()
	defer q.close()

	kinds := []player.EventKind{player.EventPlay, player.EventPause, player.EventEnded, player.EventPlay}
	for _, k := range kinds {
		q.push(player.Event{Kind: k})
	}

	for i, want := range kinds {
		select {
		case ev := <-q.out:
			if ev.Kind != want {
				t.Errorf("event %d = %v, want %v", i, ev.Kind, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out at event %d", i)
		}
	}
}

func TestSupported(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"song.mp3", true},
		{"SONG.MP3", true},
		{"a/b/c.flac", true},
		{"x.ogg", true},
		{"x.wav", true},
		{"x.m4a", false},
		{"noext", false},
	}
	for _, tt := range tests {
		if got := Supported(tt.name); got != tt.want {
			t.Errorf("Supported(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsRemote(t *testing.T) {
	tests := map[string]bool{
		"https://cdn.example.com/a.mp3": true,
		"http://localhost:8080/a.mp3":   true,
		"/music/a.mp3":                  false,
		"file:///music/a.mp3":           false,
		"audio/1.mp3":                   false,
	}
	for in, want := range tests {
		if got := IsRemote(in); got != want {
			t.Errorf("IsRemote(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestProbe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "probe.wav")
	writeSilence(t, path, 1.5)

	got, err := Probe(path)
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if !near(got, 1.5) {
		t.Errorf("Probe() = %v, want 1.5", got)
	}

	if _, err := Probe(filepath.Join(t.TempDir(), "nope.wav")); !errors.Is(err, shared.ErrSourceUnreachable) {
		t.Errorf("expected ErrSourceUnreachable, got %v", err)
	}
}
