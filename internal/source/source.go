package source

import "image"

// Source yields decoded frames in playback order.
type Source interface {
	FrameCount() int
	FramePath(index int) string
	GetFrameDimensions(index int) (width, height int, err error)
	DecodeFrame(index int) (image.Image, error)
	Close() error
}
