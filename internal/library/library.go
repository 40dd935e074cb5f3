// Package library produces track lists for the player from JSON track files and music directories.
package library

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tapedeck/internal/audio"
	"github.com/desertthunder/tapedeck/internal/models"
	"github.com/desertthunder/tapedeck/internal/shared"
	"github.com/samber/lo"
)

// Library loads tracks, dropping records the player could not use.
type Library struct {
	logger *log.Logger
	probe  func(path string) (float64, error)
}

// New creates a [Library]. Durations of scanned files are read with [audio.Probe].
func New(logger *log.Logger) *Library {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Library{logger: shared.WithLogger(logger, "component", "library"), probe: audio.Probe}
}

// envelope is the API response shape: {"tracks": [...]}.
type envelope struct {
	Tracks []models.Track `json:"tracks"`
}

// Load reads path as a directory of audio files or as a JSON track file.
func (l *Library) Load(path string) ([]models.Track, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	if info.IsDir() {
		return l.ScanDir(path)
	}
	return l.LoadFile(path)
}

// LoadFile parses a JSON track list, either a bare array or a {"tracks": [...]} envelope.
//
// Relative audio locators resolve against the file's directory. Tracks without an audio
// locator are dropped with a warning; tracks without an id get a generated one.
func (l *Library) LoadFile(path string) ([]models.Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read track file: %w", err)
	}

	tracks, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range tracks {
		tracks[i].AudioURL = resolve(dir, tracks[i].AudioURL)
	}
	return l.clean(tracks), nil
}

// Decode parses the JSON forms accepted by [Library.LoadFile] without any cleanup.
func Decode(data []byte) ([]models.Track, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty track list", shared.ErrInvalidInput)
	}

	if data[0] == '[' {
		var tracks []models.Track
		if err := json.Unmarshal(data, &tracks); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
		return tracks, nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return env.Tracks, nil
}

// ScanDir walks dir and returns a track for every decodable audio file, ordered by path.
// Titles come from file names and artists from the containing directory.
func (l *Library) ScanDir(dir string) ([]models.Track, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if !d.IsDir() && audio.Supported(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	slices.Sort(paths)

	tracks := lo.Map(paths, func(path string, _ int) models.Track {
		t := models.Track{
			ID:       shared.GenerateID(),
			Title:    strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
			AudioURL: path,
		}
		if parent := filepath.Dir(path); parent != filepath.Clean(dir) {
			t.ArtistName = filepath.Base(parent)
		}
		if d, err := l.probe(path); err != nil {
			l.logger.Debug("could not read duration", "path", path, "error", err)
		} else {
			t.Duration = d
		}
		return t
	})

	l.logger.Info("scanned directory", "dir", dir, "tracks", len(tracks))
	return tracks, nil
}

func (l *Library) clean(tracks []models.Track) []models.Track {
	return lo.FilterMap(tracks, func(t models.Track, i int) (models.Track, bool) {
		if err := t.Validate(); err != nil {
			l.logger.Warn("dropping track", "index", i, "title", t.Title, "error", err)
			return t, false
		}
		if t.ID == "" {
			t.ID = shared.GenerateID()
		}
		return t, true
	})
}

func resolve(dir, locator string) string {
	if locator == "" || audio.IsRemote(locator) || strings.HasPrefix(locator, "file://") || filepath.IsAbs(locator) {
		return locator
	}
	return filepath.Join(dir, locator)
}
