package audio

import (
	"context"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tapedeck/internal/player"
	"github.com/desertthunder/tapedeck/internal/shared"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/samber/lo"
	"golang.org/x/time/rate"
)

var _ player.Media = (*Element)(nil)

// sink is the audio output. The speaker implementation needs native sound libraries.
type sink interface {
	Init(sr beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Clear()
	Lock()
	Unlock()
}

// Options configures an [Element].
type Options struct {
	SampleRate int           // output rate; sources are resampled to it
	Buffer     time.Duration // speaker buffer length
	TimeUpdate time.Duration // minimum spacing of timeupdate events while playing
	Logger     *log.Logger
	Client     *http.Client // used for http(s) sources
}

// Element is a [player.Media] backed by beep decoders and the system speaker.
//
// Sources load asynchronously. Until metadata arrives Duration is NaN and Play only marks
// the element as playing; output starts once decoding succeeds. Every state change is
// reported on [Element.Events], which the owner forwards to [player.Engine.Dispatch].
type Element struct {
	out    sink
	rate   beep.SampleRate
	every  time.Duration
	client *http.Client
	logger *log.Logger
	events *eventQueue

	mu      sync.Mutex
	gen     int
	cancel  context.CancelFunc
	src     string
	paused  bool
	ended   bool
	queued  bool
	failed  error
	pending float64
	volume  float64
	track   *loaded
}

// loaded is the decoder chain for the current source.
type loaded struct {
	stream beep.StreamSeekCloser
	format beep.Format
	ctrl   *beep.Ctrl
	gain   *effects.Volume
	clock  *clock
}

// New initializes the speaker and returns an idle element.
// It returns [shared.ErrMediaUnavailable] when this build has no audio output.
func New(opts Options) (*Element, error) {
	out := newSink()
	if out == nil {
		return nil, shared.ErrMediaUnavailable
	}

	e := newElement(opts, out)
	if err := out.Init(e.rate, e.rate.N(opts.Buffer)); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

func newElement(opts Options, out sink) *Element {
	if opts.SampleRate <= 0 {
		opts.SampleRate = 44100
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 100 * time.Millisecond
	}
	if opts.TimeUpdate <= 0 {
		opts.TimeUpdate = 250 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 30 * time.Second}
	}

	return &Element{
		out:    out,
		rate:   beep.SampleRate(opts.SampleRate),
		every:  opts.TimeUpdate,
		client: opts.Client,
		logger: opts.Logger.With("component", "audio"),
		events: newEventQueue(),
		paused: true,
		volume: 1,
	}
}

// Events delivers media events in the order they happened. It is closed by [Element.Close].
func (e *Element) Events() <-chan player.Event {
	return e.events.out
}

// Close stops output, releases the current source and closes the event channel.
func (e *Element) Close() {
	e.mu.Lock()
	e.reset("")
	e.mu.Unlock()
	e.events.close()
}

func (e *Element) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.src == "" {
		return shared.ErrNoSource
	}
	if e.failed != nil {
		return e.failed
	}
	if e.ended {
		e.seek(0)
		e.ended = false
	}
	if e.paused {
		e.paused = false
		e.emit(player.EventPlay, nil)
	}
	e.start()
	return nil
}

func (e *Element) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.paused {
		return
	}
	e.paused = true
	if e.track != nil {
		e.out.Lock()
		e.track.ctrl.Paused = true
		e.out.Unlock()
	}
	e.emit(player.EventPause, nil)
}

func (e *Element) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// SetSource stops the current source and begins loading locator. The empty locator
// leaves the element without a source. No pause event is emitted.
func (e *Element) SetSource(locator string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset(locator)
}

func (e *Element) Source() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.src
}

func (e *Element) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.track == nil {
		return e.pending
	}
	e.out.Lock()
	pos := e.track.stream.Position()
	e.out.Unlock()
	return seconds(e.track.format.SampleRate.D(pos))
}

func (e *Element) SetCurrentTime(secs float64) {
	if math.IsNaN(secs) {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.track == nil {
		e.pending = max(secs, 0)
		return
	}
	e.seek(secs)
	if e.ended {
		e.ended = false
		if !e.paused {
			e.start()
		}
	}
	e.emit(player.EventTimeUpdate, nil)
}

func (e *Element) Duration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.track == nil {
		return math.NaN()
	}
	return seconds(e.track.format.SampleRate.D(e.track.stream.Len()))
}

func (e *Element) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

func (e *Element) SetVolume(v float64) {
	if math.IsNaN(v) {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.volume = lo.Clamp(v, 0, 1)
	if e.track != nil {
		e.out.Lock()
		applyGain(e.track.gain, e.volume)
		e.out.Unlock()
	}
}

// reset drops the current source and starts loading the next one. Callers hold e.mu.
func (e *Element) reset(locator string) {
	e.gen++
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	if e.track != nil {
		e.out.Lock()
		e.track.ctrl.Paused = true
		e.out.Unlock()
		e.out.Clear()
		if err := e.track.stream.Close(); err != nil {
			e.logger.Debug("failed to close stream", "source", e.src, "error", err)
		}
		e.track = nil
	}

	e.src = locator
	e.paused = true
	e.ended = false
	e.queued = false
	e.failed = nil
	e.pending = 0

	if locator == "" {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	go e.load(ctx, e.gen, locator)
}

func (e *Element) load(ctx context.Context, gen int, locator string) {
	stream, format, err := open(ctx, e.client, locator)

	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen {
		if stream != nil {
			stream.Close()
		}
		return
	}
	if err != nil {
		e.failed = err
		e.logger.Warn("failed to load source", "source", locator, "error", err)
		if !e.paused {
			e.paused = true
			e.emit(player.EventPause, nil)
		}
		e.emit(player.EventError, err)
		return
	}

	ctrl := &beep.Ctrl{Streamer: stream, Paused: true}
	resampled := beep.Resample(4, format.SampleRate, e.rate, ctrl)
	gain := &effects.Volume{Streamer: resampled, Base: 2}
	applyGain(gain, e.volume)

	e.track = &loaded{
		stream: stream,
		format: format,
		ctrl:   ctrl,
		gain:   gain,
		clock: &clock{
			Streamer: gain,
			ctrl:     ctrl,
			tick:     &rate.Sometimes{Interval: e.every},
			emit:     func() { e.events.push(player.Event{Kind: player.EventTimeUpdate, Source: locator}) },
		},
	}
	if e.pending > 0 {
		e.seek(e.pending)
		e.pending = 0
	}

	e.logger.Debug("source loaded", "source", locator, "rate", format.SampleRate, "channels", format.NumChannels)
	e.emit(player.EventLoadedMetadata, nil)
	e.start()
}

// start hands the chain to the speaker if it is not already mixing, then follows e.paused.
// Callers hold e.mu.
func (e *Element) start() {
	if e.track == nil {
		return
	}
	if !e.queued && !e.paused {
		gen := e.gen
		e.queued = true
		e.out.Play(beep.Seq(e.track.clock, beep.Callback(func() {
			// The speaker holds its lock here; finishing must not block it.
			go e.finish(gen)
		})))
	}
	e.out.Lock()
	e.track.ctrl.Paused = e.paused
	e.out.Unlock()
}

func (e *Element) finish(gen int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen {
		return
	}
	e.queued = false
	e.ended = true
	if !e.paused {
		e.paused = true
		e.emit(player.EventPause, nil)
	}
	e.emit(player.EventEnded, nil)
}

// seek moves to secs, clamped to the stream. Callers hold e.mu and e.track is set.
func (e *Element) seek(secs float64) {
	t := e.track
	n := t.format.SampleRate.N(time.Duration(secs * float64(time.Second)))
	n = lo.Clamp(n, 0, t.stream.Len())

	e.out.Lock()
	err := t.stream.Seek(n)
	e.out.Unlock()
	if err != nil {
		e.logger.Warn("seek failed", "source", e.src, "seconds", secs, "error", err)
	}
}

// emit queues an event tagged with the current source. Callers hold e.mu.
func (e *Element) emit(kind player.EventKind, err error) {
	e.events.push(player.Event{Kind: kind, Err: err, Source: e.src})
}

// applyGain maps a linear volume onto the exponential volume effect.
func applyGain(v *effects.Volume, linear float64) {
	v.Silent = linear <= 0
	if !v.Silent {
		v.Volume = math.Log2(linear)
	}
}

// clock emits rate-limited timeupdate events while samples flow and the source is unpaused.
type clock struct {
	beep.Streamer
	ctrl *beep.Ctrl
	tick *rate.Sometimes
	emit func()
}

func (c *clock) Stream(samples [][2]float64) (int, bool) {
	n, ok := c.Streamer.Stream(samples)
	if n > 0 && !c.ctrl.Paused {
		c.tick.Do(c.emit)
	}
	return n, ok
}

// eventQueue preserves emission order without ever blocking the emitter.
type eventQueue struct {
	mu      sync.Mutex
	pending []player.Event
	wake    chan struct{}
	out     chan player.Event
	done    chan struct{}
	once    sync.Once
}

func newEventQueue() *eventQueue {
	q := &eventQueue{
		wake: make(chan struct{}, 1),
		out:  make(chan player.Event),
		done: make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *eventQueue) push(ev player.Event) {
	q.mu.Lock()
	q.pending = append(q.pending, ev)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *eventQueue) run() {
	defer close(q.out)
	for {
		q.mu.Lock()
		batch := q.pending
		q.pending = nil
		q.mu.Unlock()

		for _, ev := range batch {
			select {
			case q.out <- ev:
			case <-q.done:
				return
			}
		}

		select {
		case <-q.wake:
		case <-q.done:
			return
		}
	}
}

func (q *eventQueue) close() {
	q.once.Do(func() { close(q.done) })
}
