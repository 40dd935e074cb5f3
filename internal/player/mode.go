package player

import (
	"encoding/json"
	"fmt"
)

// RepeatMode is the repeat axis of the playback mode.
type RepeatMode string

const (
	RepeatOff RepeatMode = "off"
	RepeatAll RepeatMode = "all"
	RepeatOne RepeatMode = "one"
)

// Next cycles off → all → one → off.
func (m RepeatMode) Next() RepeatMode {
	switch m {
	case RepeatOff:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatOff
	}
}

// Valid reports whether m is one of the three known modes.
func (m RepeatMode) Valid() bool {
	return m == RepeatOff || m == RepeatAll || m == RepeatOne
}

// ParseRepeatMode converts a stored or user-supplied name into a [RepeatMode].
// The empty string means [RepeatOff].
func ParseRepeatMode(s string) (RepeatMode, error) {
	if s == "" {
		return RepeatOff, nil
	}
	m := RepeatMode(s)
	if !m.Valid() {
		return RepeatOff, fmt.Errorf("unknown repeat mode %q", s)
	}
	return m, nil
}

func (m *RepeatMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRepeatMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// VolumeTier selects the volume icon.
type VolumeTier int

const (
	VolumeMuted VolumeTier = iota
	VolumeLow
	VolumeFull
)

// TierFor maps a volume in [0,1] to its icon tier: 0 is muted, below one half is low.
func TierFor(v float64) VolumeTier {
	switch {
	case v <= 0:
		return VolumeMuted
	case v < 0.5:
		return VolumeLow
	default:
		return VolumeFull
	}
}

func (t VolumeTier) String() string {
	switch t {
	case VolumeMuted:
		return "muted"
	case VolumeLow:
		return "low"
	default:
		return "full"
	}
}
