// Package artifact serializes rendered frame sequences for the web player.
package artifact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	FormatJS   = "js"
	FormatJSON = "json"
)

const (
	fpsPrefix    = "export const FPS = "
	framesPrefix = "export const FRAMES = "
)

var (
	ErrEmpty  = errors.New("playback has no frames")
	ErrFPS    = errors.New("playback fps must be positive")
	ErrFormat = errors.New("unrecognized playback format")
)

// Playback pairs a frame rate with the ordered text frames played at it.
type Playback struct {
	FPS    int      `json:"fps"`
	Frames []string `json:"frames"`
}

func (p Playback) validate() error {
	if p.FPS <= 0 {
		return fmt.Errorf("%w: %d", ErrFPS, p.FPS)
	}
	if len(p.Frames) == 0 {
		return ErrEmpty
	}
	return nil
}

// Marshal encodes p as an ES module ("js") or a plain JSON object ("json").
// Non-ASCII characters are written verbatim.
func Marshal(p Playback, format string) ([]byte, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch format {
	case FormatJS, "":
		buf.WriteString(fpsPrefix)
		buf.WriteString(strconv.Itoa(p.FPS))
		buf.WriteString(";\n")
		buf.WriteString(framesPrefix)
		if err := encodeJSON(&buf, p.Frames); err != nil {
			return nil, err
		}
		buf.WriteString(";\n")
	case FormatJSON:
		if err := encodeJSON(&buf, p); err != nil {
			return nil, err
		}
		buf.WriteByte('\n')
	default:
		return nil, fmt.Errorf("%w: %q", ErrFormat, format)
	}
	return buf.Bytes(), nil
}

func encodeJSON(buf *bytes.Buffer, v interface{}) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encoder всегда добавляет перевод строки
	buf.Truncate(buf.Len() - 1)
	return nil
}

// Parse decodes either format produced by Marshal.
func Parse(data []byte) (Playback, error) {
	text := strings.TrimSpace(string(data))

	var p Playback
	switch {
	case strings.HasPrefix(text, "{"):
		if err := json.Unmarshal([]byte(text), &p); err != nil {
			return Playback{}, fmt.Errorf("parse json playback: %w", err)
		}
	case strings.HasPrefix(text, fpsPrefix):
		rest := strings.TrimPrefix(text, fpsPrefix)
		end := strings.IndexByte(rest, ';')
		if end < 0 {
			return Playback{}, fmt.Errorf("%w: unterminated FPS statement", ErrFormat)
		}
		fps, err := strconv.Atoi(strings.TrimSpace(rest[:end]))
		if err != nil {
			return Playback{}, fmt.Errorf("parse FPS: %w", err)
		}
		p.FPS = fps

		rest = strings.TrimSpace(rest[end+1:])
		if !strings.HasPrefix(rest, framesPrefix) {
			return Playback{}, fmt.Errorf("%w: missing FRAMES export", ErrFormat)
		}
		rest = strings.TrimSuffix(strings.TrimPrefix(rest, framesPrefix), ";")
		if err := json.Unmarshal([]byte(rest), &p.Frames); err != nil {
			return Playback{}, fmt.Errorf("parse FRAMES: %w", err)
		}
	default:
		return Playback{}, ErrFormat
	}

	if err := p.validate(); err != nil {
		return Playback{}, err
	}
	return p, nil
}

// WriteFile writes p to path, creating the parent directory if needed. The
// data goes to a temporary sibling first and is renamed into place, so a
// failure never leaves a truncated artifact at path.
func WriteFile(path string, p Playback, format string) error {
	data, err := Marshal(p, format)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

// ReadFile parses the artifact stored at path.
func ReadFile(path string) (Playback, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Playback{}, err
	}
	return Parse(data)
}
