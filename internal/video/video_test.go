package video

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ivlev/frames2ascii/internal/config"
)

func extractConfig(dir string) config.ExtractConfig {
	cfg := config.Default().Extract
	cfg.Video = filepath.Join(dir, "clip.mp4")
	cfg.OutputDir = filepath.Join(dir, "frames")
	cfg.ManifestPath = filepath.Join(dir, "frames-manifest.json")
	cfg.ManifestPrefix = "images"
	return cfg
}

func touch(t *testing.T, p string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestArgs(t *testing.T) {
	cfg := extractConfig("/tmp/work")
	args := NewFFmpegExtractor(nil).Args(cfg)
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"-i /tmp/work/clip.mp4",
		"fps=20",
		"-start_number 1",
		filepath.Join("/tmp/work/frames", FramePattern),
		"-y",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args %q missing %q", joined, want)
		}
	}

	cfg.FPS = 0
	if joined := strings.Join(NewFFmpegExtractor(nil).Args(cfg), " "); strings.Contains(joined, "fps=") {
		t.Errorf("native rate should not add an fps filter: %q", joined)
	}
}

func TestWriteManifest(t *testing.T) {
	dir := t.TempDir()
	cfg := extractConfig(dir)
	for _, name := range []string{"frame_00010.png", "frame_00001.png", "frame_00002.png", "other.png"} {
		touch(t, filepath.Join(cfg.OutputDir, name))
	}

	m, err := WriteManifest(cfg)
	if err != nil {
		t.Fatalf("WriteManifest failed: %v", err)
	}
	want := []string{"images/frame_00001.png", "images/frame_00002.png", "images/frame_00010.png"}
	if !reflect.DeepEqual(m.Frames, want) {
		t.Errorf("expected %v, got %v", want, m.Frames)
	}

	data, err := os.ReadFile(cfg.ManifestPath)
	if err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
	var onDisk []string
	if err := json.Unmarshal(data, &onDisk); err != nil {
		t.Fatalf("manifest is not a JSON array: %v", err)
	}
	if !reflect.DeepEqual(onDisk, want) {
		t.Errorf("manifest on disk = %v", onDisk)
	}
}

func TestWriteManifestEmpty(t *testing.T) {
	dir := t.TempDir()
	cfg := extractConfig(dir)
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		t.Fatal(err)
	}
	if _, err := WriteManifest(cfg); err == nil {
		t.Error("expected error for empty frames dir")
	}
	if _, err := os.Stat(cfg.ManifestPath); err == nil {
		t.Error("manifest should not be written")
	}
}

func TestExtractMissingVideo(t *testing.T) {
	cfg := extractConfig(t.TempDir())
	if _, err := NewFFmpegExtractor(nil).Extract(context.Background(), cfg); err == nil {
		t.Error("expected error for missing video")
	}
}

// fakeFFmpeg writes a shell script that creates n frame files in dir and
// ignores its arguments.
func fakeFFmpeg(t *testing.T, dir string, n int) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("no sh available")
	}
	script := "#!/bin/sh\n"
	for i := 1; i <= n; i++ {
		script += fmt.Sprintf(": > '%s'\n", filepath.Join(dir, fmt.Sprintf(FramePattern, i)))
	}
	p := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(p, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestExtractWithStubBinary(t *testing.T) {
	dir := t.TempDir()
	cfg := extractConfig(dir)
	touch(t, cfg.Video)

	e := NewFFmpegExtractor(nil)
	e.Binary = fakeFFmpeg(t, cfg.OutputDir, 2)
	m, err := e.Extract(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	want := []string{"images/frame_00001.png", "images/frame_00002.png"}
	if !reflect.DeepEqual(m.Frames, want) {
		t.Errorf("expected %v, got %v", want, m.Frames)
	}
	if _, err := os.Stat(cfg.ManifestPath); err != nil {
		t.Errorf("manifest not written: %v", err)
	}
}

func TestExtractDropsStaleFrames(t *testing.T) {
	dir := t.TempDir()
	cfg := extractConfig(dir)
	touch(t, cfg.Video)
	for i := 1; i <= 5; i++ {
		touch(t, filepath.Join(cfg.OutputDir, fmt.Sprintf(FramePattern, i)))
	}
	touch(t, filepath.Join(cfg.OutputDir, "cover.png"))

	e := NewFFmpegExtractor(nil)
	e.Binary = fakeFFmpeg(t, cfg.OutputDir, 2)
	m, err := e.Extract(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(m.Frames) != 2 {
		t.Fatalf("expected only the 2 new frames, got %v", m.Frames)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "frame_00005.png")); err == nil {
		t.Error("stale frame_00005.png left in output dir")
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "cover.png")); err != nil {
		t.Errorf("unrelated file was removed: %v", err)
	}
}

func TestRemoveFrames(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "frame_00001.png"))
	touch(t, filepath.Join(dir, "frame_00002.png"))
	touch(t, filepath.Join(dir, "notes.txt"))

	n, err := RemoveFrames(dir)
	if err != nil {
		t.Fatalf("RemoveFrames failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 removed, got %d", n)
	}
	if n, _ := RemoveFrames(dir); n != 0 {
		t.Errorf("second pass removed %d files", n)
	}
}

func TestExtractFailingBinary(t *testing.T) {
	stub, err := exec.LookPath("false")
	if err != nil {
		t.Skip("no 'false' binary available")
	}

	dir := t.TempDir()
	cfg := extractConfig(dir)
	touch(t, cfg.Video)

	e := NewFFmpegExtractor(nil)
	e.Binary = stub
	if _, err := e.Extract(context.Background(), cfg); err == nil {
		t.Fatal("expected error from failing ffmpeg")
	}
	if _, err := os.Stat(cfg.ManifestPath); err == nil {
		t.Error("manifest written despite ffmpeg failure")
	}
}

func TestParseProbe(t *testing.T) {
	probe := `{
		"streams": [
			{"codec_type": "audio", "duration": "9.0"},
			{"codec_type": "video", "width": 640, "height": 360, "avg_frame_rate": "30000/1001"}
		],
		"format": {"duration": "12.5"}
	}`
	info, err := parseProbe(probe)
	if err != nil {
		t.Fatalf("parseProbe failed: %v", err)
	}
	if info.Width != 640 || info.Height != 360 {
		t.Errorf("unexpected size %dx%d", info.Width, info.Height)
	}
	if math.Abs(info.FrameRate-29.97) > 0.01 {
		t.Errorf("unexpected frame rate %f", info.FrameRate)
	}
	if info.Duration != 12.5 {
		t.Errorf("expected format duration fallback, got %f", info.Duration)
	}

	if _, err := parseProbe(`{"streams": [{"codec_type": "audio"}]}`); err == nil {
		t.Error("expected error without a video stream")
	}
}

func TestParseRate(t *testing.T) {
	tests := map[string]float64{
		"20/1":  20,
		"25":    25,
		"0/0":   0,
		"bogus": 0,
	}
	for in, want := range tests {
		if got := parseRate(in); got != want {
			t.Errorf("parseRate(%q) = %f, want %f", in, got, want)
		}
	}
}
