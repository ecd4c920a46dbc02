package source

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrNoFrames is returned when an input resolves to zero image files.
var ErrNoFrames = errors.New("no frame images found")

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// ImageSource reads still images from disk, one file per frame.
type ImageSource struct {
	paths []string
}

// NewImageSource resolves input into an ordered list of frame files. input
// may be a directory, a glob pattern such as "frames/frame_*.png" or a
// single image file.
func NewImageSource(input string) (*ImageSource, error) {
	var paths []string

	fi, err := os.Stat(input)
	switch {
	case err == nil && fi.IsDir():
		entries, err := os.ReadDir(input)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if !entry.IsDir() && IsImage(entry.Name()) {
				paths = append(paths, filepath.Join(input, entry.Name()))
			}
		}
	case err == nil:
		paths = []string{input}
	case hasMeta(input):
		matches, err := filepath.Glob(input)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", input, err)
		}
		for _, m := range matches {
			if IsImage(m) {
				paths = append(paths, m)
			}
		}
	default:
		return nil, err
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFrames, input)
	}
	return NewImageSourceFromPaths(paths), nil
}

// NewImageSourceFromPaths wraps an explicit file list. The list is sorted
// by file name, which for zero-padded frame numbers is chronological.
func NewImageSourceFromPaths(paths []string) *ImageSource {
	sorted := make([]string, len(paths))
	copy(sorted, paths)
	SortFrames(sorted)
	return &ImageSource{paths: sorted}
}

// SortFrames orders paths lexicographically by base name, falling back to
// the full path for identical names in different directories.
func SortFrames(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		bi, bj := filepath.Base(paths[i]), filepath.Base(paths[j])
		if bi != bj {
			return bi < bj
		}
		return paths[i] < paths[j]
	})
}

// IsImage reports whether name has a decodable image extension.
func IsImage(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

func hasMeta(path string) bool {
	return strings.ContainsAny(path, `*?[\`)
}

func (s *ImageSource) FrameCount() int {
	return len(s.paths)
}

func (s *ImageSource) FramePath(index int) string {
	return s.paths[index]
}


func (s *ImageSource) GetFrameDimensions(index int) (int, int, error) {
	f, err := os.Open(s.paths[index])
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode config %s: %w", s.paths[index], err)
	}
	return cfg.Width, cfg.Height, nil
}

func (s *ImageSource) DecodeFrame(index int) (image.Image, error) {
	f, err := os.Open(s.paths[index])
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.paths[index], err)
	}
	return img, nil
}

func (s *ImageSource) Close() error {
	return nil
}
