package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/tapedeck/internal/shared"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// Extensions lists the file extensions the element can decode.
var Extensions = []string{".mp3", ".wav", ".flac", ".ogg"}

var contentTypes = map[string]string{
	"audio/mpeg":   ".mp3",
	"audio/mp3":    ".mp3",
	"audio/wav":    ".wav",
	"audio/x-wav":  ".wav",
	"audio/wave":   ".wav",
	"audio/flac":   ".flac",
	"audio/x-flac": ".flac",
	"audio/ogg":    ".ogg",
	"audio/vorbis": ".ogg",
}

// Supported reports whether a file with the given name has a decodable extension.
func Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// IsRemote reports whether locator is an http(s) URL.
func IsRemote(locator string) bool {
	u, err := url.Parse(locator)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

// nopCloser gives an in-memory body the io.ReadCloser shape the decoders take.
type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }

// open fetches locator and decodes it. Remote bodies are buffered in memory so they can seek.
func open(ctx context.Context, client *http.Client, locator string) (beep.StreamSeekCloser, beep.Format, error) {
	var (
		rc  io.ReadCloser
		ext string
		err error
	)

	if IsRemote(locator) {
		rc, ext, err = fetch(ctx, client, locator)
	} else {
		path := strings.TrimPrefix(locator, "file://")
		ext = strings.ToLower(filepath.Ext(path))
		rc, err = os.Open(path)
		if err != nil {
			err = fmt.Errorf("%w: %v", shared.ErrSourceUnreachable, err)
		}
	}
	if err != nil {
		return nil, beep.Format{}, err
	}

	stream, format, err := decode(ext, rc)
	if err != nil {
		rc.Close()
		return nil, beep.Format{}, err
	}
	return stream, format, nil
}

func fetch(ctx context.Context, client *http.Client, locator string) (io.ReadCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", shared.ErrSourceUnreachable, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", shared.ErrSourceUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: %s returned %s", shared.ErrSourceUnreachable, locator, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", shared.ErrSourceUnreachable, err)
	}

	ext := ""
	if u, err := url.Parse(locator); err == nil {
		ext = strings.ToLower(filepath.Ext(u.Path))
	}
	if !Supported(ext) {
		if mt, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil {
			ext = contentTypes[mt]
		}
	}
	return nopCloser{bytes.NewReader(data)}, ext, nil
}

func decode(ext string, rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	var (
		stream beep.StreamSeekCloser
		format beep.Format
		err    error
	)

	switch ext {
	case ".mp3":
		stream, format, err = mp3.Decode(rc)
	case ".wav":
		stream, format, err = wav.Decode(rc)
	case ".flac":
		stream, format, err = flac.Decode(rc)
	case ".ogg":
		stream, format, err = vorbis.Decode(rc)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %q", shared.ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to decode %s: %w", ext, err)
	}
	return stream, format, nil
}

// Probe decodes the header of a local file and returns its length in seconds.
func Probe(path string) (float64, error) {
	stream, format, err := open(context.Background(), http.DefaultClient, path)
	if err != nil {
		return 0, err
	}
	defer stream.Close()
	return seconds(format.SampleRate.D(stream.Len())), nil
}

func seconds(d time.Duration) float64 {
	return d.Seconds()
}
