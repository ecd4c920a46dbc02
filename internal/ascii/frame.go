package ascii

import (
	"image"
	"image/color"
	"math"
	"strings"

	"golang.org/x/image/draw"

	"github.com/ivlev/frames2ascii/internal/system"
)

// Renderer converts decoded frames into text blocks. The zero VerticalScale
// is treated as 1.0.
type Renderer struct {
	Palette       Palette
	VerticalScale float64
}

// Render converts img to a grayscale grid, corrects its height for the
// character cell aspect ratio and quantizes every pixel.
func (r Renderer) Render(img image.Image) string {
	gray := Grayscale(img)
	defer system.PutGray(gray)

	scaled := ResampleVertical(gray, r.VerticalScale)
	if scaled != gray {
		defer system.PutGray(scaled)
	}
	return RenderFrame(scaled, r.Palette)
}

// Grayscale draws img into a pooled gray buffer anchored at the origin using
// the BT.601 luma weights of color.GrayModel. Alpha is discarded: a
// transparent pixel keeps the luma of its straight RGB color. Release the
// result with system.PutGray.
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := system.GetGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
		return gray
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := gray.Pix[(y-b.Min.Y)*gray.Stride:]
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			row[x-b.Min.X] = luma(c.R, c.G, c.B)
		}
	}
	return gray
}

// luma matches color.GrayModel for an opaque 8-bit color.
func luma(r, g, b uint8) uint8 {
	r16, g16, b16 := uint32(r)*0x101, uint32(g)*0x101, uint32(b)*0x101
	return uint8((19595*r16 + 38470*g16 + 7471*b16 + 1<<15) >> 24)
}

// TargetHeight is the row count after dividing height by scale, never
// less than one.
func TargetHeight(height int, scale float64) int {
	h := int(math.Round(float64(height) / scale))
	if h < 1 {
		h = 1
	}
	return h
}

// ResampleVertical rescales only the height of g by 1/scale with a
// Catmull-Rom filter. It returns g itself when no resampling is needed.
func ResampleVertical(g *image.Gray, scale float64) *image.Gray {
	if scale == 1.0 || scale <= 0 {
		return g
	}
	w, h := g.Bounds().Dx(), g.Bounds().Dy()
	newH := TargetHeight(h, scale)
	if newH == h {
		return g
	}
	dst := system.GetGray(image.Rect(0, 0, w, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), g, g.Bounds(), draw.Src, nil)
	return dst
}

// RenderFrame emits one palette character per pixel and one line per row.
// Lines are joined with "\n" and carry no trailing newline.
func RenderFrame(g *image.Gray, p Palette) string {
	b := g.Bounds()
	if b.Empty() {
		return ""
	}
	var sb strings.Builder
	sb.Grow((b.Dx() + 1) * b.Dy())

	for y := b.Min.Y; y < b.Max.Y; y++ {
		if y > b.Min.Y {
			sb.WriteByte('\n')
		}
		row := g.Pix[g.PixOffset(b.Min.X, y) : g.PixOffset(b.Max.X-1, y)+1]
		for _, v := range row {
			sb.WriteRune(p.Char(v))
		}
	}
	return sb.String()
}
