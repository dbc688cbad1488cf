// Package palette holds the colors shared by every figure.
//
// Colors and Accents mirror the two discrete palettes the slides were
// designed with: eight samples of the viridis colormap and the
// ColorBrewer Set2 qualitative set. Both are read-only after init.
package palette

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var set2Hex = []string{
	"#66c2a5", "#fc8d62", "#8da0cb", "#e78ac3",
	"#a6d854", "#ffd92f", "#e5c494", "#b3b3b3",
}

var namedHex = map[string]string{
	"white":       "#ffffff",
	"black":       "#000000",
	"gray":        "#808080",
	"lightgray":   "#d3d3d3",
	"lightblue":   "#add8e6",
	"lightgreen":  "#90ee90",
	"lightyellow": "#ffffe0",
	"beige":       "#f5f5dc",
	"bisque":      "#ffe4c4",
	"brown":       "#a52a2a",
	"silver":      "#c0c0c0",
}

var (
	// Colors is the sequential palette (viridis, 8 samples).
	Colors = Viridis(8)
	// Accents is the qualitative palette (Set2, 8 colors).
	Accents = Set2(8)
)

// Viridis samples n colors from the viridis colormap, skipping both
// endpoints so that the darkest and lightest extremes are never used.
func Viridis(n int) []drawing.Color {
	if n <= 0 {
		return nil
	}
	out := make([]drawing.Color, n)
	for i := range out {
		out[i] = chart.Viridis(float64(i+1)/float64(n+1), 0, 1)
	}
	return out
}

// Set2 returns n Set2 colors, cycling after the eighth.
func Set2(n int) []drawing.Color {
	if n <= 0 {
		return nil
	}
	out := make([]drawing.Color, n)
	for i := range out {
		out[i] = MustHex(set2Hex[i%len(set2Hex)])
	}
	return out
}

// Named resolves one of the CSS color names used by the figures.
func Named(name string) (drawing.Color, error) {
	hex, ok := namedHex[strings.ToLower(name)]
	if !ok {
		return drawing.Color{}, fmt.Errorf("unknown color name %q", name)
	}
	return FromHex(hex)
}

// MustNamed is Named for compile-time constant names.
func MustNamed(name string) drawing.Color {
	c, err := Named(name)
	if err != nil {
		panic(err)
	}
	return c
}

// FromHex parses "#rrggbb" into an opaque color.
func FromHex(hex string) (drawing.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return drawing.Color{}, fmt.Errorf("parsing color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return drawing.Color{R: r, G: g, B: b, A: 255}, nil
}

// MustHex is FromHex for literals.
func MustHex(hex string) drawing.Color {
	c, err := FromHex(hex)
	if err != nil {
		panic(err)
	}
	return c
}

// Alpha returns c with opacity a, where a is clamped to [0, 1].
func Alpha(c drawing.Color, a float64) drawing.Color {
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	return c.WithAlpha(uint8(a*255 + 0.5))
}

// Hex formats the opaque part of c as "#rrggbb".
func Hex(c drawing.Color) string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}
