package player

// Media is the playback primitive the engine drives.
//
// It behaves like an HTML media element: SetSource("") disables playback, Duration reports NaN
// until the source's metadata is known, and every transport change that actually happens is
// announced as an [Event] which the owner passes to [Engine.Dispatch].
type Media interface {
	Play() error
	Pause()
	Paused() bool

	SetSource(locator string)
	Source() string

	CurrentTime() float64 // seconds
	SetCurrentTime(seconds float64)
	Duration() float64 // seconds, NaN when unknown

	Volume() float64 // [0,1]
	SetVolume(v float64)
}

// EventKind enumerates the signals a [Media] emits.
type EventKind int

const (
	EventPlay EventKind = iota
	EventPause
	EventEnded
	EventTimeUpdate
	EventLoadedMetadata
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventPlay:
		return "play"
	case EventPause:
		return "pause"
	case EventEnded:
		return "ended"
	case EventTimeUpdate:
		return "timeupdate"
	case EventLoadedMetadata:
		return "loadedmetadata"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is a single media signal. Err is set for [EventError].
// Source is the locator that was loaded when the event fired; empty when unknown.
type Event struct {
	Kind   EventKind
	Err    error
	Source string
}
