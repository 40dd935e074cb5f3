// package formatter renders track lists as CSV, Markdown or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/tapedeck/internal/models"
	"github.com/desertthunder/tapedeck/internal/player"
	"github.com/desertthunder/tapedeck/internal/shared"
	"github.com/mattn/go-runewidth"
	"github.com/samber/lo"
)

// Format names an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "md"
	FormatCSV      Format = "csv"
)

// ParseFormat accepts the short and long spellings of each format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, s)
	}
}

// Listing is a named track list, typically the file or directory it was loaded from.
type Listing struct {
	Name   string
	Tracks []models.Track
}

// Total returns the summed duration of tracks with a known length.
func (l Listing) Total() float64 {
	return lo.SumBy(l.Tracks, func(t models.Track) float64 { return t.Duration })
}

// Render dispatches to the exporter for f.
func Render(l Listing, f Format) ([]byte, error) {
	switch f {
	case FormatCSV:
		return ExportToCSV(l)
	case FormatMarkdown:
		return ExportToMarkdown(l)
	case FormatText:
		return ExportToText(l)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, f)
	}
}

// ExportToCSV writes columns: ID, Title, Artist, Album, Duration (seconds), Source
func ExportToCSV(l Listing) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Album", "Duration", "Source"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range l.Tracks {
		record := []string{
			track.ID,
			track.Title,
			track.ArtistName,
			track.AlbumTitle,
			strconv.FormatFloat(track.Duration, 'f', -1, 64),
			track.AudioURL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a heading, a summary and a numbered track list
func ExportToMarkdown(l Listing) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", l.Name)
	fmt.Fprintf(&buf, "**Tracks**: %d\n", len(l.Tracks))
	fmt.Fprintf(&buf, "**Length**: %s\n\n", player.FormatTime(l.Total()))

	buf.WriteString("## Tracks\n\n")
	for i, track := range l.Tracks {
		albumPart := ""
		if track.AlbumTitle != "" {
			albumPart = fmt.Sprintf(" (%s)", track.AlbumTitle)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", i+1, track.DisplayArtist(), track.DisplayTitle(), albumPart, player.FormatTime(track.Duration))
	}

	return buf.Bytes(), nil
}

// ExportToText renders an aligned plain text table; wide characters are measured by display width.
func ExportToText(l Listing) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Source: %s\n", l.Name)
	fmt.Fprintf(&buf, "Tracks: %d (%s)\n\n", len(l.Tracks), player.FormatTime(l.Total()))

	width := lo.Max(lo.Map(l.Tracks, func(t models.Track, _ int) int {
		return runewidth.StringWidth(t.DisplayArtist() + " - " + t.DisplayTitle())
	}))

	for i, track := range l.Tracks {
		name := runewidth.FillRight(track.DisplayArtist()+" - "+track.DisplayTitle(), width)
		fmt.Fprintf(&buf, "%3d. %s  %s\n", i+1, name, player.FormatTime(track.Duration))
	}

	return buf.Bytes(), nil
}

// WriteExport renders l as f and writes it to path.
func WriteExport(l Listing, f Format, path string) error {
	data, err := Render(l, f)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s file: %w", f, err)
	}
	return nil
}
