package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Player   PlayerConfig   `toml:"player"`
	Log      LogConfig      `toml:"log"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// PlayerConfig contains player engine and audio output settings.
type PlayerConfig struct {
	StorageKey         string  `toml:"storage_key"`
	PlaceholderArtwork string  `toml:"placeholder_artwork"`
	SampleRate         int     `toml:"sample_rate"`
	BufferMS           int     `toml:"buffer_ms"`
	TimeUpdateMS       int     `toml:"time_update_ms"`
	SeekStep           float64 `toml:"seek_step"`
	VolumeStep         float64 `toml:"volume_step"`
}

// Buffer returns the speaker buffer length as a [time.Duration].
func (p PlayerConfig) Buffer() time.Duration {
	return time.Duration(p.BufferMS) * time.Millisecond
}

// TimeUpdateInterval returns how often the media element reports playback position.
func (p PlayerConfig) TimeUpdateInterval() time.Duration {
	return time.Duration(p.TimeUpdateMS) * time.Millisecond
}

// LogConfig contains logging settings.
type LogConfig struct {
	Path  string `toml:"path"`
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate reports values that would leave the player unusable.
func (c *Config) Validate() error {
	if c.Player.StorageKey == "" {
		return fmt.Errorf("%w: player.storage_key must not be empty", ErrInvalidConfig)
	}
	if c.Player.SampleRate <= 0 {
		return fmt.Errorf("%w: player.sample_rate must be positive, got %d", ErrInvalidConfig, c.Player.SampleRate)
	}
	if c.Player.SeekStep <= 0 || c.Player.SeekStep > 1 {
		return fmt.Errorf("%w: player.seek_step must be in (0,1], got %v", ErrInvalidConfig, c.Player.SeekStep)
	}
	if c.Player.VolumeStep <= 0 || c.Player.VolumeStep > 1 {
		return fmt.Errorf("%w: player.volume_step must be in (0,1], got %v", ErrInvalidConfig, c.Player.VolumeStep)
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
