// Package qr writes QR code images that point viewers at the playback page.
package qr

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/ivlev/frames2ascii/internal/config"
)

// Level maps the conventional L/M/Q/H letters onto go-qrcode levels.
func Level(letter string) (qrcode.RecoveryLevel, error) {
	switch strings.ToUpper(letter) {
	case "L":
		return qrcode.Low, nil
	case "M":
		return qrcode.Medium, nil
	case "Q":
		return qrcode.High, nil
	case "H":
		return qrcode.Highest, nil
	default:
		return 0, fmt.Errorf("%w: unknown recovery level %q", config.ErrInvalid, letter)
	}
}

func newCode(cfg config.QRConfig) (*qrcode.QRCode, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, err := Level(cfg.Level)
	if err != nil {
		return nil, err
	}
	code, err := qrcode.New(cfg.URL, level)
	if err != nil {
		return nil, fmt.Errorf("encode %q: %w", cfg.URL, err)
	}
	code.DisableBorder = !cfg.Border
	return code, nil
}

// Encode returns the PNG bytes for cfg.
func Encode(cfg config.QRConfig) ([]byte, error) {
	code, err := newCode(cfg)
	if err != nil {
		return nil, err
	}
	return code.PNG(cfg.Size)
}

// EncodeSVG renders cfg as an SVG document of cfg.Size pixels square, one
// unit per module.
func EncodeSVG(cfg config.QRConfig) ([]byte, error) {
	code, err := newCode(cfg)
	if err != nil {
		return nil, err
	}
	bitmap := code.Bitmap()
	n := len(bitmap)

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`+"\n",
		cfg.Size, cfg.Size, n, n)
	fmt.Fprintf(&sb, `<rect width="%d" height="%d" fill="#ffffff"/>`+"\n", n, n)
	sb.WriteString(`<path fill="#000000" d="`)
	for y, row := range bitmap {
		for x := 0; x < len(row); x++ {
			if !row[x] {
				continue
			}
			// Соседние темные модули рисуем одним прямоугольником
			run := 1
			for x+run < len(row) && row[x+run] {
				run++
			}
			fmt.Fprintf(&sb, "M%d %dh%dv1h-%dz", x, y, run, run)
			x += run - 1
		}
	}
	sb.WriteString(`"/>` + "\n</svg>\n")
	return []byte(sb.String()), nil
}

// Generate writes cfg.Output as SVG when it ends in .svg and as PNG
// otherwise.
func Generate(cfg config.QRConfig) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(cfg.Output), ".svg") {
		data, err = EncodeSVG(cfg)
	} else {
		data, err = Encode(cfg)
	}
	if err != nil {
		return err
	}
	if dir := filepath.Dir(cfg.Output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	return os.WriteFile(cfg.Output, data, 0644)
}
