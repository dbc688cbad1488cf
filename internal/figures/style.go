package figures

import (
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/Mr-Dark-debug/slidefigs/internal/canvas"
	"github.com/Mr-Dark-debug/slidefigs/internal/palette"
)

const titleSize = 16

var (
	white = palette.MustNamed("white")
	black = palette.MustNamed("black")
	gray  = palette.MustNamed("gray")
	brown = palette.MustNamed("brown")
)

// accent and viridis index the shared palettes.
func accent(i int) drawing.Color { return palette.Accents[i%len(palette.Accents)] }
func viridis(i int) drawing.Color { return palette.Colors[i%len(palette.Colors)] }

// filled paints a face with an optional edge, both at the same opacity.
func filled(face, edge drawing.Color, alpha, width float64) canvas.Style {
	st := canvas.Style{Fill: palette.Alpha(face, alpha), Width: width}
	if !edge.IsZero() {
		st.Stroke = palette.Alpha(edge, alpha)
	}
	return st
}

// outline strokes without filling.
func outline(edge drawing.Color, width float64) canvas.Style {
	return canvas.Style{Stroke: edge, Width: width}
}

// roundBox is the rounded label box used throughout the slides.
func roundBox(face, edge drawing.Color, alpha, pad, width float64) *canvas.TextBox {
	return &canvas.TextBox{Style: filled(face, edge, alpha, width), Pad: pad}
}

// centered is text anchored at its middle.
func centered(size float64) canvas.TextStyle {
	return canvas.TextStyle{Size: size, HAlign: canvas.AlignCenter, VAlign: canvas.AlignMiddle}
}

// heading is bold centered text sitting on its baseline.
func heading(size float64) canvas.TextStyle {
	return canvas.TextStyle{Size: size, Bold: true, HAlign: canvas.AlignCenter}
}

func bold(ts canvas.TextStyle) canvas.TextStyle {
	ts.Bold = true
	return ts
}

func italic(ts canvas.TextStyle) canvas.TextStyle {
	ts.Italic = true
	return ts
}

func boxed(ts canvas.TextStyle, box *canvas.TextBox) canvas.TextStyle {
	ts.Box = box
	return ts
}
