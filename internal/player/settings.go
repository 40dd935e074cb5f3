package player

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/desertthunder/tapedeck/internal/shared"
)

// DefaultStorageKey is the record key used when none is configured.
const DefaultStorageKey = "tapedeck.player"

// Store is a durable string key/value store scoped to the local profile.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

// Settings is the persisted preference record.
//
// LastVolume is nil until the user has chosen a volume; mute restores it (or 1).
type Settings struct {
	IsRandom   bool       `json:"isRandom"`
	RepeatMode RepeatMode `json:"repeatMode"`
	LastVolume *float64   `json:"lastVolume,omitempty"`
}

// DefaultSettings returns shuffle off, repeat off and no remembered volume.
func DefaultSettings() Settings {
	return Settings{RepeatMode: RepeatOff}
}

// Volume returns the remembered volume, or 1 when none was recorded.
func (s Settings) Volume() float64 {
	if s.LastVolume == nil {
		return 1
	}
	return *s.LastVolume
}

// Validate rejects values no media element would accept.
func (s Settings) Validate() error {
	if !s.RepeatMode.Valid() {
		return fmt.Errorf("unknown repeat mode %q", s.RepeatMode)
	}
	if v := s.LastVolume; v != nil && (math.IsNaN(*v) || *v < 0 || *v > 1) {
		return fmt.Errorf("last volume %v outside [0,1]", *v)
	}
	return nil
}

// DecodeSettings parses a stored record. The JSON literal null decodes to defaults.
// Malformed or out-of-range records return an error wrapping [shared.ErrCorruptSettings].
func DecodeSettings(raw string) (Settings, error) {
	s := DefaultSettings()
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return DefaultSettings(), fmt.Errorf("%w: %v", shared.ErrCorruptSettings, err)
	}
	if s.RepeatMode == "" {
		s.RepeatMode = RepeatOff
	}
	if err := s.Validate(); err != nil {
		return DefaultSettings(), fmt.Errorf("%w: %v", shared.ErrCorruptSettings, err)
	}
	return s, nil
}

// Encode serializes s for storage.
func (s Settings) Encode() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode settings: %w", err)
	}
	return string(data), nil
}

// LoadSettings reads the record under key. A missing record yields defaults and no error.
func LoadSettings(store Store, key string) (Settings, error) {
	raw, ok, err := store.Get(key)
	if err != nil {
		return DefaultSettings(), fmt.Errorf("failed to read settings: %w", err)
	}
	if !ok {
		return DefaultSettings(), nil
	}
	return DecodeSettings(raw)
}

// SaveSettings writes s under key.
func SaveSettings(store Store, key string, s Settings) error {
	raw, err := s.Encode()
	if err != nil {
		return err
	}
	if err := store.Set(key, raw); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
