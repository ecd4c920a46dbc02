// Package ascii turns grayscale pixel grids into text frames.
package ascii

import (
	"errors"
	"fmt"
	"math"
)

// ErrPalette is returned for palettes that cannot form at least two buckets.
var ErrPalette = errors.New("palette needs at least 2 characters")

// Palette is an ordered set of characters, darkest first. Characters may
// repeat; only their order carries meaning.
type Palette struct {
	runes  []rune
	lookup [256]rune
}

// NewPalette builds a palette from chars, index 0 being the darkest bucket.
func NewPalette(chars string) (Palette, error) {
	runes := []rune(chars)
	if len(runes) < 2 {
		return Palette{}, fmt.Errorf("%w: got %d", ErrPalette, len(runes))
	}
	p := Palette{runes: runes}
	for i := range p.lookup {
		p.lookup[i] = runes[Quantize(float64(i)/255.0, len(runes))]
	}
	return p, nil
}

// MustPalette is NewPalette for compile-time constants.
func MustPalette(chars string) Palette {
	p, err := NewPalette(chars)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Palette) Len() int { return len(p.runes) }

func (p Palette) String() string { return string(p.runes) }

// Reversed returns the palette with light and dark swapped.
func (p Palette) Reversed() Palette {
	runes := make([]rune, len(p.runes))
	for i, r := range p.runes {
		runes[len(runes)-1-i] = r
	}
	rev, _ := NewPalette(string(runes))
	return rev
}

// Index maps a normalized intensity v in [0, 1] to a palette index.
func (p Palette) Index(v float64) int {
	return Quantize(v, len(p.runes))
}

// Char returns the character for an 8-bit luminance value.
func (p Palette) Char(y uint8) rune {
	return p.lookup[y]
}

// Quantize maps v in [0, 1] onto one of n buckets by rounding v*(n-1) to
// the nearest integer, halves rounding up. Out-of-range input is clamped,
// so the result is always in [0, n-1] and never decreases as v grows.
func Quantize(v float64, n int) int {
	if n < 2 || !(v > 0) {
		return 0
	}
	if v >= 1 {
		return n - 1
	}
	return int(math.Floor(v*float64(n-1) + 0.5))
}
