package ascii

import (
	"errors"
	"image"
	"image/color"
	"math"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestQuantizeRangeAndMonotonic(t *testing.T) {
	for n := 2; n <= 16; n++ {
		prev := 0
		for i := 0; i <= 1000; i++ {
			v := float64(i) / 1000
			idx := Quantize(v, n)
			if idx < 0 || idx > n-1 {
				t.Fatalf("Quantize(%v, %d) = %d out of range", v, n, idx)
			}
			if idx < prev {
				t.Fatalf("Quantize not monotonic at v=%v n=%d: %d < %d", v, n, idx, prev)
			}
			prev = idx
		}
	}
}

func TestQuantizeEndpoints(t *testing.T) {
	for n := 2; n <= 16; n++ {
		if got := Quantize(0, n); got != 0 {
			t.Errorf("Quantize(0, %d) = %d, want 0", n, got)
		}
		if got := Quantize(1, n); got != n-1 {
			t.Errorf("Quantize(1, %d) = %d, want %d", n, got, n-1)
		}
	}
}

func TestQuantizeClamps(t *testing.T) {
	tests := []struct {
		v    float64
		want int
	}{
		{-0.5, 0},
		{1.5, 9},
		{math.Inf(1), 9},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := Quantize(tt.v, 10); got != tt.want {
			t.Errorf("Quantize(%v, 10) = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestPaletteChar(t *testing.T) {
	p := MustPalette(" .#")
	tests := []struct {
		y    uint8
		want rune
	}{
		{0, ' '},
		{128, '.'},
		{255, '#'},
	}
	for _, tt := range tests {
		if got := p.Char(tt.y); got != tt.want {
			t.Errorf("Char(%d) = %q, want %q", tt.y, got, tt.want)
		}
	}
	if got := p.Index(128.0 / 255.0); got != 1 {
		t.Errorf("Index(128/255) = %d, want 1", got)
	}
}

func TestNewPaletteTooShort(t *testing.T) {
	for _, chars := range []string{"", "#", "█"} {
		if _, err := NewPalette(chars); !errors.Is(err, ErrPalette) {
			t.Errorf("NewPalette(%q): expected ErrPalette, got %v", chars, err)
		}
	}
}

func TestPaletteReversed(t *testing.T) {
	p := MustPalette(" .:#")
	rev := p.Reversed()
	if rev.String() != "#:. " {
		t.Errorf("Reversed() = %q", rev.String())
	}
	if rev.Char(0) != '#' || rev.Char(255) != ' ' {
		t.Errorf("reversed lookup not rebuilt: %q %q", rev.Char(0), rev.Char(255))
	}
}

func TestTargetHeight(t *testing.T) {
	tests := []struct {
		height int
		scale  float64
		want   int
	}{
		{100, 1.0, 100},
		{100, 2.0, 50},
		{101, 2.0, 51},
		{10, 3.0, 3},
		{1, 2.0, 1},
		{1, 10.0, 1},
		{100, 0.5, 200},
	}
	for _, tt := range tests {
		if got := TargetHeight(tt.height, tt.scale); got != tt.want {
			t.Errorf("TargetHeight(%d, %v) = %d, want %d", tt.height, tt.scale, got, tt.want)
		}
	}
}

func uniformGray(w, h int, y uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = y
	}
	return g
}

func TestResampleVertical(t *testing.T) {
	src := uniformGray(40, 100, 200)

	same := ResampleVertical(src, 1.0)
	if same != src {
		t.Error("scale 1.0 must return the source untouched")
	}

	half := ResampleVertical(src, 2.0)
	if half.Bounds().Dx() != 40 || half.Bounds().Dy() != 50 {
		t.Fatalf("expected 40x50, got %v", half.Bounds())
	}
	for i, v := range half.Pix {
		if v < 199 || v > 201 {
			t.Fatalf("pixel %d drifted to %d on a uniform image", i, v)
		}
	}
}

func TestRenderFrameShape(t *testing.T) {
	g := uniformGray(7, 5, 0)
	g.SetGray(6, 4, color.Gray{Y: 255})

	out := RenderFrame(g, MustPalette(" .#"))
	lines := strings.Split(out, "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(lines))
	}
	for i, line := range lines {
		if len(line) != 7 {
			t.Errorf("line %d has %d chars, want 7", i, len(line))
		}
	}
	if lines[4] != "      #" {
		t.Errorf("last line = %q", lines[4])
	}
	if strings.HasSuffix(out, "\n") {
		t.Error("frame must not end with a newline")
	}
}

func TestRenderFrameUnicodePalette(t *testing.T) {
	g := uniformGray(3, 2, 255)
	out := RenderFrame(g, MustPalette("░▒▓█"))
	for _, line := range strings.Split(out, "\n") {
		if n := utf8.RuneCountInString(line); n != 3 {
			t.Errorf("expected 3 runes per line, got %d in %q", n, line)
		}
		if line != "███" {
			t.Errorf("unexpected line %q", line)
		}
	}
}

func TestRendererRender(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 3; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}

	r := Renderer{Palette: MustPalette(" .#"), VerticalScale: 2.0}
	out := r.Render(img)

	// Pure red has BT.601 luma 76, which falls into the middle bucket.
	if out != "...\n..." {
		t.Errorf("unexpected render %q", out)
	}
}

func TestGrayscaleOffsetBounds(t *testing.T) {
	full := image.NewRGBA(image.Rect(0, 0, 10, 10))
	full.Set(5, 5, color.White)
	sub := full.SubImage(image.Rect(5, 5, 8, 7))

	g := Grayscale(sub)
	if g.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Fatalf("expected origin-anchored bounds, got %v", g.Bounds())
	}
	if g.GrayAt(0, 0).Y != 255 {
		t.Errorf("expected white at origin, got %d", g.GrayAt(0, 0).Y)
	}
	if g.GrayAt(1, 0).Y != 0 {
		t.Errorf("expected black at (1,0), got %d", g.GrayAt(1, 0).Y)
	}
}

func TestGrayscaleIgnoresAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 0})
	img.SetNRGBA(1, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 128})
	img.SetNRGBA(2, 0, color.NRGBA{R: 255, A: 0})
	img.SetNRGBA(3, 0, color.NRGBA{A: 255})

	g := Grayscale(img)
	for x, want := range []uint8{255, 255, 76, 0} {
		if got := g.GrayAt(x, 0).Y; got != want {
			t.Errorf("pixel %d: expected luma %d, got %d", x, want, got)
		}
	}

	out := RenderFrame(g, MustPalette(" .#"))
	if out != "##. " {
		t.Errorf("transparent white should render light, got %q", out)
	}
}

func TestGrayscaleTransparentPaletted(t *testing.T) {
	pal := color.Palette{color.NRGBA{R: 255, G: 255, B: 255, A: 0}, color.Black}
	img := image.NewPaletted(image.Rect(0, 0, 2, 1), pal)
	img.SetColorIndex(1, 0, 1)

	g := Grayscale(img)
	if g.GrayAt(0, 0).Y != 255 || g.GrayAt(1, 0).Y != 0 {
		t.Errorf("unexpected lumas %d %d", g.GrayAt(0, 0).Y, g.GrayAt(1, 0).Y)
	}
}
