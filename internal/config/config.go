package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/frames2ascii/internal/artifact"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Defaults mirror the constants of the original frame pipeline.
const (
	DefaultPalette       = " .:-=+*#%@"
	DefaultVerticalScale = 1.0
	DefaultFPS           = 20
	DefaultInput         = "frames/frame_*.png"
	DefaultOutput        = "web/frames.js"
	DefaultFramesDir     = "frames"
	DefaultManifestPath  = "frames-manifest.json"
	DefaultVideoDir      = "input/video"
	DefaultQROutput      = "qr.png"
	DefaultQRLevel       = "Q"
	DefaultQRSize        = 256
)

type Config struct {
	Render  RenderConfig  `yaml:"render"`
	Extract ExtractConfig `yaml:"extract"`
	QR      QRConfig      `yaml:"qr"`
}

// RenderConfig drives the frame renderer. It is passed by value into the
// engine and never read from package state.
type RenderConfig struct {
	Input         string  `yaml:"input"`
	Output        string  `yaml:"output"`
	Format        string  `yaml:"format"`
	Palette       string  `yaml:"palette"`
	Invert        bool    `yaml:"invert"`
	VerticalScale float64 `yaml:"vertical_scale"`
	FPS           int     `yaml:"fps"`
	Workers       int     `yaml:"workers"`
	ShowStats     bool    `yaml:"show_stats"`
}

type ExtractConfig struct {
	Video          string `yaml:"video"`
	OutputDir      string `yaml:"output_dir"`
	FPS            int    `yaml:"fps"`
	ManifestPath   string `yaml:"manifest_path"`
	ManifestPrefix string `yaml:"manifest_prefix"`
}

type QRConfig struct {
	URL    string `yaml:"url"`
	Output string `yaml:"output"`
	Level  string `yaml:"level"`
	Size   int    `yaml:"size"`
	Border bool   `yaml:"border"`
}

// Default returns a Config populated with the stock pipeline settings.
func Default() Config {
	return Config{
		Render: RenderConfig{
			Input:         DefaultInput,
			Output:        DefaultOutput,
			Palette:       DefaultPalette,
			VerticalScale: DefaultVerticalScale,
			FPS:           DefaultFPS,
		},
		Extract: ExtractConfig{
			OutputDir:      DefaultFramesDir,
			FPS:            DefaultFPS,
			ManifestPath:   DefaultManifestPath,
			ManifestPrefix: DefaultFramesDir,
		},
		QR: QRConfig{
			Output: DefaultQROutput,
			Level:  DefaultQRLevel,
			Size:   DefaultQRSize,
			Border: true,
		},
	}
}

// Load overlays the YAML file at path onto Default. Keys missing from the
// file keep their default values; unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks everything the renderer needs before any frame is read.
func (r RenderConfig) Validate() error {
	if strings.TrimSpace(r.Input) == "" {
		return fmt.Errorf("%w: input is empty", ErrInvalid)
	}
	if strings.TrimSpace(r.Output) == "" {
		return fmt.Errorf("%w: output is empty", ErrInvalid)
	}
	if n := utf8.RuneCountInString(r.Palette); n < 2 {
		return fmt.Errorf("%w: palette needs at least 2 characters, got %d", ErrInvalid, n)
	}
	if !(r.VerticalScale > 0) {
		return fmt.Errorf("%w: vertical scale must be positive, got %v", ErrInvalid, r.VerticalScale)
	}
	if r.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalid, r.FPS)
	}
	if r.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalid, r.Workers)
	}
	if _, err := r.ResolveFormat(); err != nil {
		return err
	}
	return nil
}

// ResolveFormat returns the artifact format, falling back to the output
// file extension when Format is empty.
func (r RenderConfig) ResolveFormat() (string, error) {
	switch strings.ToLower(r.Format) {
	case artifact.FormatJS:
		return artifact.FormatJS, nil
	case artifact.FormatJSON:
		return artifact.FormatJSON, nil
	case "":
		if strings.EqualFold(filepath.Ext(r.Output), ".json") {
			return artifact.FormatJSON, nil
		}
		return artifact.FormatJS, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want js or json)", ErrInvalid, r.Format)
	}
}

func (e ExtractConfig) Validate() error {
	if strings.TrimSpace(e.OutputDir) == "" {
		return fmt.Errorf("%w: extract output_dir is empty", ErrInvalid)
	}
	if e.FPS < 0 {
		return fmt.Errorf("%w: extract fps must not be negative, got %d", ErrInvalid, e.FPS)
	}
	return nil
}

func (q QRConfig) Validate() error {
	if strings.TrimSpace(q.URL) == "" {
		return fmt.Errorf("%w: qr url is empty", ErrInvalid)
	}
	if strings.TrimSpace(q.Output) == "" {
		return fmt.Errorf("%w: qr output is empty", ErrInvalid)
	}
	switch strings.ToUpper(q.Level) {
	case "L", "M", "Q", "H":
	default:
		return fmt.Errorf("%w: qr level must be one of L, M, Q, H, got %q", ErrInvalid, q.Level)
	}
	if q.Size <= 0 {
		return fmt.Errorf("%w: qr size must be positive, got %d", ErrInvalid, q.Size)
	}
	return nil
}
