package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tapedeck/internal/models"
	"github.com/desertthunder/tapedeck/internal/player"
	"github.com/mattn/go-runewidth"
)

// Panel rows, counted from the top of the view.
const (
	rowTitle = iota
	rowArtist
	rowArtwork
	rowProgress
	rowControls
	rowVolume
	panelRows = rowVolume + 2
)

const (
	timeWidth   = 6
	barLeft     = timeWidth + 1
	volumeLabel = "vol"
	volumeLeft  = len(volumeLabel) + 1
	maxVolume   = 20
	minBar      = 10
)

// Config carries the step sizes for keyboard seeking and volume.
type Config struct {
	SeekStep   float64 // fraction of the track per seek key press
	VolumeStep float64
}

// Model is the bubbletea model of the player: a transport panel over a queue list.
type Model struct {
	engine *player.Engine
	screen *Screen
	events <-chan player.Event
	cfg    Config

	tracks     []models.Track
	queue      list.Model
	lastCursor int
	status     string

	width  int
	height int
	help   help.Model
	keys   keyMap
}

// NewModel wires the engine (built with screen as its view) to a TUI over tracks.
// Events from the media element are read from events and passed to the engine.
func NewModel(engine *player.Engine, screen *Screen, tracks []models.Track, events <-chan player.Event, cfg Config) *Model {
	if cfg.SeekStep <= 0 {
		cfg.SeekStep = 0.05
	}
	if cfg.VolumeStep <= 0 {
		cfg.VolumeStep = 0.1
	}

	m := &Model{
		engine:     engine,
		screen:     screen,
		events:     events,
		cfg:        cfg,
		tracks:     tracks,
		queue:      newTrackList(tracks),
		lastCursor: -1,
		width:      80,
		height:     24,
		help:       help.New(),
		keys:       newKeyMap(),
	}
	m.resize()
	m.syncCursor()
	return m
}

// Init starts listening for media events.
func (m *Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		m.syncCursor()
		return m, nil

	case Msg:
		switch msg.kind {
		case MsgMediaEvent:
			ev := msg.data.(player.Event)
			m.engine.Dispatch(ev)
			switch ev.Kind {
			case player.EventError:
				m.status = fmt.Sprintf("cannot play %s: %v", m.screen.nowPlaying.Title, ev.Err)
			case player.EventPlay:
				m.status = ""
			}
			m.syncCursor()
			return m, waitForEvent(m.events)
		case MsgEventsClosed:
			m.events = nil
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.queue, cmd = m.queue.Update(msg)
	return m, cmd
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggle):
		m.engine.TogglePlay()
	case key.Matches(msg, m.keys.next):
		m.engine.SkipForward()
	case key.Matches(msg, m.keys.prev):
		m.engine.SkipBack()
	case key.Matches(msg, m.keys.forward):
		m.engine.SeekTo(m.screen.Progress() + m.cfg.SeekStep)
	case key.Matches(msg, m.keys.backward):
		m.engine.SeekTo(m.screen.Progress() - m.cfg.SeekStep)
	case key.Matches(msg, m.keys.louder):
		m.engine.SetVolume(m.engine.Volume() + m.cfg.VolumeStep)
	case key.Matches(msg, m.keys.quieter):
		m.engine.SetVolume(m.engine.Volume() - m.cfg.VolumeStep)
	case key.Matches(msg, m.keys.mute):
		m.engine.ToggleMute()
	case key.Matches(msg, m.keys.shuffle):
		m.engine.ToggleShuffle()
	case key.Matches(msg, m.keys.repeat):
		m.engine.CycleRepeat()
	case key.Matches(msg, m.keys.enter):
		if idx := m.queue.Index(); len(m.tracks) > 0 {
			m.engine.SetQueueAndPlay(m.tracks, idx)
		}
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
	default:
		var cmd tea.Cmd
		m.queue, cmd = m.queue.Update(msg)
		return m, cmd
	}

	m.syncCursor()
	return m, nil
}

// handleMouse routes left-button presses on the panel to the sliders and buttons.
// Drags continue wherever the pointer moves until the button is released.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	progress := m.engine.ProgressGesture()
	volume := m.engine.VolumeGesture()

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		switch msg.Y {
		case rowProgress:
			if inside(msg.X, barLeft, m.barWidth()) {
				progress.Press(float64(msg.X), sliderBounds(barLeft, m.barWidth()))
			}
		case rowVolume:
			if msg.X < len(volumeLabel) {
				m.engine.ToggleMute()
			} else if inside(msg.X, volumeLeft, m.volumeWidth()) {
				volume.Press(float64(msg.X), sliderBounds(volumeLeft, m.volumeWidth()))
			}
		case rowControls:
			if b, ok := hit(m.controls(), msg.X); ok {
				b.press()
			}
		}
	case tea.MouseActionMotion:
		if progress.Dragging() {
			progress.Move(float64(msg.X))
		}
		if volume.Dragging() {
			volume.Move(float64(msg.X))
		}
	case tea.MouseActionRelease:
		progress.Release()
		volume.Release()
	}
}

func inside(x, left, width int) bool {
	return x >= left && x < left+width
}

// sliderBounds maps a bar of width cells so the first cell is 0 and the last is 1.
func sliderBounds(left, width int) player.Bounds {
	return player.Bounds{Left: float64(left), Width: float64(width - 1)}
}

// button is a clickable label on the controls row.
type button struct {
	label string
	style func(...string) string
	press func()
}

func (m *Model) controls() []button {
	toggle := "▶"
	if m.screen.playing {
		toggle = "⏸"
	}

	shuffle := styles.off.Render
	if m.screen.shuffle {
		shuffle = styles.on.Render
	}
	repeat := styles.off.Render
	if m.screen.repeat != player.RepeatOff {
		repeat = styles.on.Render
	}

	return []button{
		{label: "⏮", style: styles.title.Render, press: m.engine.SkipBack},
		{label: toggle, style: styles.title.Render, press: m.engine.TogglePlay},
		{label: "⏭", style: styles.title.Render, press: m.engine.SkipForward},
		{label: "shuffle", style: shuffle, press: m.engine.ToggleShuffle},
		{label: "repeat " + string(m.screen.repeat), style: repeat, press: m.engine.CycleRepeat},
	}
}

const buttonGap = "  "

// hit finds the button under column x, measuring labels by display width.
func hit(buttons []button, x int) (button, bool) {
	left := 0
	for _, b := range buttons {
		w := runewidth.StringWidth(b.label)
		if inside(x, left, w) {
			return b, true
		}
		left += w + len(buttonGap)
	}
	return button{}, false
}

// syncCursor marks the playing track in the queue list and follows it when it changes.
func (m *Model) syncCursor() {
	cursor := m.engine.Cursor()
	if cursor == m.lastCursor {
		return
	}

	if m.lastCursor >= 0 && m.lastCursor < len(m.tracks) {
		m.queue.SetItem(m.lastCursor, trackItem{track: m.tracks[m.lastCursor]})
	}
	if cursor >= 0 && cursor < len(m.tracks) {
		m.queue.SetItem(cursor, trackItem{track: m.tracks[cursor], playing: true})
		m.queue.Select(cursor)
	}
	m.lastCursor = cursor
}

func (m *Model) barWidth() int {
	return max(minBar, m.width-2*barLeft)
}

func (m *Model) volumeWidth() int {
	return min(maxVolume, m.barWidth())
}

func (m *Model) resize() {
	helpRows := 1
	if m.help.ShowAll {
		helpRows = 4
	}
	m.help.Width = m.width
	m.queue.SetSize(m.width, max(3, m.height-panelRows-helpRows-2))
}

// View renders the player panel, the queue and the key help.
func (m *Model) View() string {
	var b strings.Builder

	for _, line := range m.panel() {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(m.queue.View())
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(styles.err.Render(m.fit(m.status)))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// panel returns exactly panelRows single-row lines; mouse hit testing depends on it.
func (m *Model) panel() []string {
	s := m.screen
	lines := make([]string, panelRows)

	title := styles.title.Render(m.fit(s.nowPlaying.Title))
	if s.nowPlaying.Empty {
		title = styles.off.Render(m.fit(s.nowPlaying.Title))
	}
	lines[rowTitle] = title
	lines[rowArtist] = styles.artist.Render(m.fit(s.nowPlaying.Artist))
	lines[rowArtwork] = styles.help.Render(m.fit(s.nowPlaying.Artwork))

	lines[rowProgress] = fmt.Sprintf("%*s %s %s", timeWidth, s.elapsed, bar(s.progress, m.barWidth()), s.total)

	parts := make([]string, 0, 5)
	for _, btn := range m.controls() {
		parts = append(parts, btn.style(btn.label))
	}
	lines[rowControls] = strings.Join(parts, buttonGap)

	lines[rowVolume] = fmt.Sprintf("%s %s %s", volumeLabel, bar(s.volume, m.volumeWidth()), s.tier)
	return lines
}

func (m *Model) fit(s string) string {
	return runewidth.Truncate(s, m.width, "…")
}

func bar(fraction float64, width int) string {
	if math.IsNaN(fraction) {
		fraction = 0
	}
	filled := int(math.Round(min(max(fraction, 0), 1) * float64(width)))
	return styles.filled.Render(strings.Repeat("━", filled)) + styles.empty.Render(strings.Repeat("─", width-filled))
}
