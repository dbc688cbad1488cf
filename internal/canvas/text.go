package canvas

import (
	"html"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// HAlign is the horizontal anchor of a text block.
type HAlign int

const (
	AlignLeft HAlign = iota
	AlignCenter
	AlignRight
)

// VAlign is the vertical anchor of a text block.
type VAlign int

const (
	// AlignBaseline anchors on the baseline of the last line.
	AlignBaseline VAlign = iota
	AlignTop
	AlignMiddle
	AlignBottom
)

// DefaultFontSize is used when TextStyle.Size is zero.
const DefaultFontSize = 10.0

const (
	lineSpacing = 1.2
	ascentRatio = 0.8
)

// TextBox draws a padded box behind a text block.
type TextBox struct {
	Style
	// Pad is the padding in multiples of the font size.
	Pad float64
	// Square disables the rounded corners.
	Square bool
}

// TextStyle describes how a text block is laid out and painted.
type TextStyle struct {
	Size   float64 // points
	Color  drawing.Color
	Bold   bool
	Italic bool
	HAlign HAlign
	VAlign VAlign
	Box    *TextBox
	// Halo outlines every glyph in HaloColor, HaloWidth points wide.
	HaloColor drawing.Color
	HaloWidth float64
}

// Text draws s anchored at a data point. Embedded newlines start new
// lines, each aligned according to ts.HAlign.
func (c *Canvas) Text(at Point, s string, ts TextStyle) {
	x, y := c.ToPixel(at)
	c.textAt(x, y, s, ts)
}

// FigureText draws s anchored at figure fractions (origin bottom-left).
func (c *Canvas) FigureText(xfrac, yfrac float64, s string, ts TextStyle) {
	c.textAt(xfrac*float64(c.width), (1-yfrac)*float64(c.height), s, ts)
}

// SupTitle centers a bold title at the top of the figure, its top edge
// at figure fraction y.
func (c *Canvas) SupTitle(title string, y, size float64) {
	c.FigureText(0.5, y, title, TextStyle{
		Size:   size,
		Bold:   true,
		HAlign: AlignCenter,
		VAlign: AlignTop,
	})
}

// textBlock is a laid-out text block in pixel space.
type textBlock struct {
	lines  []string
	widths []float64
	left   float64
	top    float64
	width  float64
	height float64
	lineH  float64
	ascent float64
}

func (c *Canvas) layoutText(x, y float64, s string, ts TextStyle) textBlock {
	size := nonZero(ts.Size, DefaultFontSize)
	px := c.points(size)

	c.r.SetFont(c.fonts.pick(ts.Bold, ts.Italic))
	c.r.SetFontSize(size)

	b := textBlock{
		lines:  strings.Split(s, "\n"),
		lineH:  px * lineSpacing,
		ascent: px * ascentRatio,
	}
	b.widths = make([]float64, len(b.lines))
	for i, line := range b.lines {
		b.widths[i] = float64(c.r.MeasureText(line).Width())
		b.width = math.Max(b.width, b.widths[i])
	}
	n := float64(len(b.lines))
	b.height = (n-1)*b.lineH + px

	switch ts.HAlign {
	case AlignCenter:
		b.left = x - b.width/2
	case AlignRight:
		b.left = x - b.width
	default:
		b.left = x
	}

	switch ts.VAlign {
	case AlignTop:
		b.top = y
	case AlignMiddle:
		b.top = y - b.height/2
	case AlignBottom:
		b.top = y - b.height
	default:
		b.top = y - b.ascent - (n-1)*b.lineH
	}
	return b
}

// lineX returns the left edge of line i inside the block.
func (b textBlock) lineX(i int, ha HAlign) float64 {
	switch ha {
	case AlignCenter:
		return b.left + (b.width-b.widths[i])/2
	case AlignRight:
		return b.left + b.width - b.widths[i]
	default:
		return b.left
	}
}

func (c *Canvas) textAt(x, y float64, s string, ts TextStyle) {
	b := c.layoutText(x, y, s, ts)

	if ts.Box != nil {
		pad := ts.Box.Pad * c.points(nonZero(ts.Size, DefaultFontSize))
		radius := pad
		if ts.Box.Square {
			radius = 0
		}
		c.paint(ts.Box.Style, func() {
			c.rectPath(b.left-pad, b.top-pad, b.width+2*pad, b.height+2*pad, radius)
		})
	}

	// paint resets the renderer style, so the font is chosen again here.
	c.r.ResetStyle()
	c.r.SetFont(c.fonts.pick(ts.Bold, ts.Italic))
	c.r.SetFontSize(nonZero(ts.Size, DefaultFontSize))

	if !ts.HaloColor.IsZero() && ts.HaloWidth > 0 {
		off := c.points(ts.HaloWidth) / 2
		c.r.SetFontColor(ts.HaloColor)
		for k := 0; k < 8; k++ {
			theta := float64(k) * math.Pi / 4
			dx, dy := off*math.Cos(theta), off*math.Sin(theta)
			c.drawLines(b, ts.HAlign, dx, dy)
		}
	}

	col := ts.Color
	if col.IsZero() {
		col = drawing.ColorBlack
	}
	c.r.SetFontColor(col)
	c.drawLines(b, ts.HAlign, 0, 0)
}

func (c *Canvas) drawLines(b textBlock, ha HAlign, dx, dy float64) {
	for i, line := range b.lines {
		if line == "" {
			continue
		}
		if c.format == FormatSVG {
			line = html.EscapeString(line)
		}
		baseline := b.top + b.ascent + float64(i)*b.lineH
		c.r.Text(line, ip(b.lineX(i, ha)+dx), ip(baseline+dy))
	}
}

func nonZero(v, fallback float64) float64 {
	if v == 0 {
		return fallback
	}
	return v
}
