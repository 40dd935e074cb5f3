package ui

import (
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tapedeck/internal/player"
	"github.com/desertthunder/tapedeck/internal/shared"
	tu "github.com/desertthunder/tapedeck/internal/testing"
	"github.com/mattn/go-runewidth"
)

type fixture struct {
	model  *Model
	engine *player.Engine
	media  *tu.FakeMedia
	screen *Screen
}

func newFixture(t *testing.T, n int, events <-chan player.Event) *fixture {
	t.Helper()

	media := tu.NewFakeMedia()
	tracks := tu.Tracks(n)
	for _, tr := range tracks {
		media.Durations[tr.AudioURL] = tr.Duration
	}
	screen := NewScreen()
	engine := player.New(player.Options{
		Media:       media,
		Store:       tu.NewMemoryStore(),
		View:        screen,
		Logger:      shared.NewLogger(io.Discard),
		Placeholder: "placeholder.svg",
	})
	if n > 0 {
		engine.SetQueueAndPlay(tracks, 0)
		media.Pump(engine)
	}

	m := NewModel(engine, screen, tracks, events, Config{SeekStep: 0.25, VolumeStep: 0.1})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return &fixture{model: m, engine: engine, media: media, screen: screen}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func TestKeys(t *testing.T) {
	t.Run("space toggles playback", func(t *testing.T) {
		f := newFixture(t, 3, nil)

		f.model.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
		f.media.Pump(f.engine)

		if f.engine.IsPlaying() || f.screen.playing {
			t.Error("expected paused")
		}
	})

	t.Run("n and p skip", func(t *testing.T) {
		f := newFixture(t, 3, nil)

		f.model.Update(runes("n"))
		if f.engine.Cursor() != 1 || f.model.queue.Index() != 1 {
			t.Errorf("cursor %d list %d, want 1", f.engine.Cursor(), f.model.queue.Index())
		}
		item := f.model.queue.Items()[1].(trackItem)
		if !item.playing || !strings.HasPrefix(item.Title(), "♪") {
			t.Errorf("expected the playing marker on item 1, got %q", item.Title())
		}
		if f.model.queue.Items()[0].(trackItem).playing {
			t.Error("previous item must lose the marker")
		}

		f.model.Update(runes("p"))
		f.model.Update(runes("p"))
		if f.engine.Cursor() != 2 {
			t.Errorf("cursor = %d, want 2", f.engine.Cursor())
		}
	})

	t.Run("modes", func(t *testing.T) {
		f := newFixture(t, 1, nil)

		f.model.Update(runes("s"))
		f.model.Update(runes("r"))
		if !f.screen.shuffle || f.screen.repeat != player.RepeatAll {
			t.Errorf("shuffle %v repeat %q", f.screen.shuffle, f.screen.repeat)
		}
	})

	t.Run("arrows seek by the configured step", func(t *testing.T) {
		f := newFixture(t, 1, nil)

		f.model.Update(tea.KeyMsg{Type: tea.KeyRight})
		if got := f.media.CurrentTime(); got != 30 {
			t.Errorf("position = %v, want 30", got)
		}
		f.model.Update(tea.KeyMsg{Type: tea.KeyLeft})
		f.model.Update(tea.KeyMsg{Type: tea.KeyLeft})
		if got := f.media.CurrentTime(); got != 0 {
			t.Errorf("position = %v, want 0", got)
		}
	})

	t.Run("volume and mute", func(t *testing.T) {
		f := newFixture(t, 0, nil)

		f.model.Update(runes("-"))
		if v := f.engine.Volume(); v < 0.89 || v > 0.91 {
			t.Errorf("volume = %v, want 0.9", v)
		}
		f.model.Update(runes("+"))
		f.model.Update(runes("+"))
		if f.engine.Volume() != 1 {
			t.Errorf("volume = %v, want 1", f.engine.Volume())
		}

		f.model.Update(runes("m"))
		if f.media.Volume() != 0 || f.screen.tier != player.VolumeMuted {
			t.Error("expected muted")
		}
	})

	t.Run("enter plays the selected track", func(t *testing.T) {
		f := newFixture(t, 3, nil)

		f.model.Update(tea.KeyMsg{Type: tea.KeyDown})
		f.model.Update(tea.KeyMsg{Type: tea.KeyDown})
		f.model.Update(tea.KeyMsg{Type: tea.KeyEnter})

		if f.engine.Cursor() != 2 {
			t.Errorf("cursor = %d, want 2", f.engine.Cursor())
		}
	})

	t.Run("q quits", func(t *testing.T) {
		f := newFixture(t, 0, nil)

		_, cmd := f.model.Update(runes("q"))
		if cmd == nil {
			t.Fatal("expected a command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}

func TestMouse(t *testing.T) {
	t.Run("progress drag seeks and clamps", func(t *testing.T) {
		f := newFixture(t, 1, nil)
		width := f.model.barWidth()

		f.model.Update(press(barLeft, rowProgress))
		if f.media.CurrentTime() != 0 {
			t.Errorf("position = %v, want 0", f.media.CurrentTime())
		}

		f.model.Update(tea.MouseMsg{X: 500, Y: 0, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
		if f.media.CurrentTime() != 120 {
			t.Errorf("position = %v, want 120", f.media.CurrentTime())
		}

		f.model.Update(tea.MouseMsg{X: barLeft + width/2, Y: rowProgress, Action: tea.MouseActionRelease})
		f.model.Update(tea.MouseMsg{X: barLeft, Y: rowProgress, Action: tea.MouseActionMotion})
		if f.media.CurrentTime() != 120 {
			t.Error("motion after release must not seek")
		}
	})

	t.Run("press outside the bar is ignored", func(t *testing.T) {
		f := newFixture(t, 1, nil)

		f.model.Update(press(0, rowProgress))
		if len(f.media.Seeks) != 0 || f.engine.ProgressGesture().Dragging() {
			t.Error("expected no seek")
		}
	})

	t.Run("volume drag", func(t *testing.T) {
		f := newFixture(t, 0, nil)
		width := f.model.volumeWidth()

		f.model.Update(press(volumeLeft+width-1, rowVolume))
		if f.engine.Volume() != 1 {
			t.Errorf("volume = %v, want 1", f.engine.Volume())
		}
		f.model.Update(tea.MouseMsg{X: -3, Y: 12, Action: tea.MouseActionMotion})
		if f.engine.Volume() != 0 || f.screen.tier != player.VolumeMuted {
			t.Errorf("volume = %v, want 0", f.engine.Volume())
		}
	})

	t.Run("volume label toggles mute", func(t *testing.T) {
		f := newFixture(t, 0, nil)

		f.model.Update(press(1, rowVolume))
		if f.media.Volume() != 0 {
			t.Error("expected muted")
		}
		f.model.Update(press(1, rowVolume))
		if f.media.Volume() != 1 {
			t.Error("expected restored volume")
		}
	})

	t.Run("control buttons", func(t *testing.T) {
		f := newFixture(t, 3, nil)

		f.model.Update(press(0, rowControls))
		if f.engine.Cursor() != 2 {
			t.Errorf("previous button: cursor %d, want 2", f.engine.Cursor())
		}

		buttons := f.model.controls()
		shuffleX := 0
		for _, b := range buttons[:3] {
			shuffleX += runewidth.StringWidth(b.label) + len(buttonGap)
		}
		f.model.Update(press(shuffleX, rowControls))
		if !f.engine.Shuffle() {
			t.Error("shuffle button did not toggle shuffle")
		}
	})

	t.Run("right button is ignored", func(t *testing.T) {
		f := newFixture(t, 0, nil)

		f.model.Update(tea.MouseMsg{X: 1, Y: rowVolume, Action: tea.MouseActionPress, Button: tea.MouseButtonRight})
		if f.media.Volume() != 1 {
			t.Error("right click must not mute")
		}
	})
}

func TestMediaEvents(t *testing.T) {
	t.Run("events reach the engine", func(t *testing.T) {
		events := make(chan player.Event, 1)
		f := newFixture(t, 2, events)
		f.engine.TogglePlay()
		f.media.Events()

		events <- player.Event{Kind: player.EventPause}
		msg := f.model.Init()()
		_, next := f.model.Update(msg)

		if f.engine.IsPlaying() || f.screen.playing {
			t.Error("expected the pause event to be applied")
		}
		if next == nil {
			t.Error("expected the model to keep listening")
		}
	})

	t.Run("errors show a status line", func(t *testing.T) {
		f := newFixture(t, 1, nil)

		f.model.Update(mediaEventMsg(player.Event{Kind: player.EventError, Err: shared.ErrUnsupportedFormat}))
		if !strings.Contains(f.model.View(), "unsupported audio format") {
			t.Error("expected the error in the view")
		}

		f.model.Update(mediaEventMsg(player.Event{Kind: player.EventPlay}))
		if f.model.status != "" {
			t.Errorf("expected the status cleared, got %q", f.model.status)
		}
	})

	t.Run("closed channel stops listening", func(t *testing.T) {
		events := make(chan player.Event)
		close(events)
		f := newFixture(t, 0, events)

		msg := f.model.Init()()
		_, next := f.model.Update(msg)
		if next != nil || f.model.events != nil {
			t.Error("expected no further reads")
		}
	})

	t.Run("no channel means no command", func(t *testing.T) {
		f := newFixture(t, 0, nil)
		if f.model.Init() != nil {
			t.Error("expected nil command")
		}
	})
}

func TestView(t *testing.T) {
	t.Run("empty state", func(t *testing.T) {
		f := newFixture(t, 0, nil)
		view := f.model.View()

		for _, want := range []string{player.NoTrackTitle, "placeholder.svg", "0:00", "repeat off", "vol"} {
			if !strings.Contains(view, want) {
				t.Errorf("view missing %q", want)
			}
		}
	})

	t.Run("panel rows are fixed", func(t *testing.T) {
		f := newFixture(t, 2, nil)
		lines := f.model.panel()

		if len(lines) != panelRows {
			t.Fatalf("panel has %d rows, want %d", len(lines), panelRows)
		}
		if !strings.Contains(lines[rowTitle], "Track 0") || !strings.Contains(lines[rowArtist], "Artist 0") {
			t.Errorf("now playing rows: %q / %q", lines[rowTitle], lines[rowArtist])
		}
		if !strings.Contains(lines[rowProgress], "2:00") {
			t.Errorf("progress row %q missing total", lines[rowProgress])
		}
	})

	t.Run("long titles are truncated", func(t *testing.T) {
		f := newFixture(t, 0, nil)
		f.model.Update(tea.WindowSizeMsg{Width: 12, Height: 20})
		f.screen.ShowNowPlaying(player.NowPlaying{Title: "一二三四五六七八九十"})

		if line := f.model.panel()[rowTitle]; !strings.Contains(line, "…") {
			t.Errorf("expected truncation, got %q", line)
		}
	})
}

func TestHit(t *testing.T) {
	buttons := []button{{label: "ab"}, {label: "日本"}, {label: "c"}}

	tests := []struct {
		x    int
		want string
		ok   bool
	}{
		{x: 0, want: "ab", ok: true},
		{x: 1, want: "ab", ok: true},
		{x: 2},
		{x: 4, want: "日本", ok: true},
		{x: 7, want: "日本", ok: true},
		{x: 8},
		{x: 10, want: "c", ok: true},
		{x: 11},
	}
	for _, tt := range tests {
		got, ok := hit(buttons, tt.x)
		if ok != tt.ok || got.label != tt.want {
			t.Errorf("hit(%d) = %q, %v; want %q, %v", tt.x, got.label, ok, tt.want, tt.ok)
		}
	}
}

func TestBar(t *testing.T) {
	if got := bar(0.5, 10); strings.Count(got, "━") != 5 || strings.Count(got, "─") != 5 {
		t.Errorf("bar(0.5) = %q", got)
	}
	if got := bar(2, 4); strings.Count(got, "━") != 4 {
		t.Errorf("bar(2) = %q", got)
	}
}
