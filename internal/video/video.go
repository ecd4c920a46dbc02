package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/ivlev/frames2ascii/internal/config"
	"github.com/ivlev/frames2ascii/internal/logging"
	"github.com/ivlev/frames2ascii/internal/source"
)

// FramePattern is the ffmpeg output template. Zero padding keeps the
// lexicographic order of the files equal to their frame order.
const FramePattern = "frame_%05d.png"

const frameGlob = "frame_*.png"

// Manifest lists extracted frames as the web page references them.
type Manifest struct {
	Frames []string
}

// FFmpegExtractor dumps video frames to numbered PNG files with the
// system ffmpeg binary.
type FFmpegExtractor struct {
	Binary string
	Log    *slog.Logger
}

func NewFFmpegExtractor(log *slog.Logger) *FFmpegExtractor {
	return &FFmpegExtractor{Binary: "ffmpeg", Log: logging.OrDiscard(log)}
}

// Args builds the ffmpeg argument list for cfg.
func (e *FFmpegExtractor) Args(cfg config.ExtractConfig) []string {
	kwargs := ffmpeg.KwArgs{"start_number": 1}
	if cfg.FPS > 0 {
		kwargs["vf"] = fmt.Sprintf("fps=%d", cfg.FPS)
	}
	return ffmpeg.Input(cfg.Video).
		Output(filepath.Join(cfg.OutputDir, FramePattern), kwargs).
		OverWriteOutput().
		GetArgs()
}

func (e *FFmpegExtractor) Extract(ctx context.Context, cfg config.ExtractConfig) (*Manifest, error) {
	log := logging.OrDiscard(e.Log)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(cfg.Video); err != nil {
		return nil, errors.Wrapf(err, "open video %s", cfg.Video)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, errors.Wrap(err, "create frames dir")
	}
	removed, err := RemoveFrames(cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	if removed > 0 {
		log.Info("removed stale frames", "count", removed, "dir", cfg.OutputDir)
	}

	if info, err := Probe(cfg.Video); err == nil {
		log.Info("probed video", "path", cfg.Video, "width", info.Width, "height", info.Height,
			"frame_rate", info.FrameRate, "duration", info.Duration)
	} else {
		log.Debug("ffprobe failed", "path", cfg.Video, "error", err)
	}

	binary := e.Binary
	if binary == "" {
		binary = "ffmpeg"
	}
	args := e.Args(cfg)
	log.Debug("running ffmpeg", "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, binary, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrapf(err, "ffmpeg extract failed, output: %s", lastLines(out.String(), 10))
	}

	manifest, err := WriteManifest(cfg)
	if err != nil {
		return nil, err
	}
	log.Info("extracted frames", "count", len(manifest.Frames), "dir", cfg.OutputDir)
	return manifest, nil
}

// RemoveFrames deletes every frame file in dir so that a shorter extraction
// cannot inherit trailing frames from an earlier run. It reports how many
// files were removed.
func RemoveFrames(dir string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, frameGlob))
	if err != nil {
		return 0, errors.WithStack(err)
	}
	for _, match := range matches {
		if err := os.Remove(match); err != nil {
			return 0, errors.Wrapf(err, "remove stale frame %s", match)
		}
	}
	return len(matches), nil
}

// BuildManifest lists the frame files in cfg.OutputDir in playback order.
func BuildManifest(cfg config.ExtractConfig) (*Manifest, error) {
	matches, err := filepath.Glob(filepath.Join(cfg.OutputDir, frameGlob))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	source.SortFrames(matches)

	m := &Manifest{Frames: make([]string, 0, len(matches))}
	for _, match := range matches {
		m.Frames = append(m.Frames, path.Join(cfg.ManifestPrefix, filepath.Base(match)))
	}
	return m, nil
}

// WriteManifest builds the manifest and stores it as a JSON array at
// cfg.ManifestPath.
func WriteManifest(cfg config.ExtractConfig) (*Manifest, error) {
	m, err := BuildManifest(cfg)
	if err != nil {
		return nil, err
	}
	if len(m.Frames) == 0 {
		return nil, errors.Errorf("no frames found in %s", cfg.OutputDir)
	}
	if cfg.ManifestPath == "" {
		return m, nil
	}

	data, err := json.Marshal(m.Frames)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if dir := filepath.Dir(cfg.ManifestPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrap(err, "create manifest dir")
		}
	}
	if err := os.WriteFile(cfg.ManifestPath, data, 0644); err != nil {
		return nil, errors.Wrapf(err, "write manifest %s", cfg.ManifestPath)
	}
	return m, nil
}

// Info holds the few stream properties worth reporting before extraction.
type Info struct {
	Width     int
	Height    int
	FrameRate float64
	Duration  float64
}

// Probe reads the first video stream of p through ffprobe.
func Probe(p string) (*Info, error) {
	probe, err := ffmpeg.Probe(p)
	if err != nil {
		return nil, errors.Wrap(err, "probe video")
	}
	return parseProbe(probe)
}

func parseProbe(probe string) (*Info, error) {
	var data struct {
		Streams []struct {
			CodecType    string `json:"codec_type"`
			Width        int    `json:"width"`
			Height       int    `json:"height"`
			AvgFrameRate string `json:"avg_frame_rate"`
			Duration     string `json:"duration"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(probe), &data); err != nil {
		return nil, errors.WithStack(err)
	}

	for _, s := range data.Streams {
		if s.CodecType != "video" {
			continue
		}
		info := &Info{
			Width:     s.Width,
			Height:    s.Height,
			FrameRate: parseRate(s.AvgFrameRate),
		}
		duration := s.Duration
		if duration == "" {
			duration = data.Format.Duration
		}
		info.Duration, _ = strconv.ParseFloat(strings.TrimSpace(duration), 64)
		return info, nil
	}
	return nil, errors.New("no video stream found")
}

// parseRate turns ffprobe's "30000/1001" notation into frames per second.
func parseRate(rate string) float64 {
	num, den, ok := strings.Cut(rate, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !ok {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
