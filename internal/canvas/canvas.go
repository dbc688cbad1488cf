// Package canvas is the drawing surface every figure is painted on.
//
// A Canvas wraps a go-chart renderer (raster PNG or SVG) and exposes a
// single axes area addressed in data coordinates with y pointing up,
// the way slide layouts are authored. Sizes follow print conventions:
// figures are measured in inches, fonts and line widths in points, and
// the DPI decides how many pixels each of those becomes.
//
// A Canvas is not safe for concurrent use.
package canvas

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Format selects the output encoding.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ErrInvalidOptions is returned by New for unusable sizes, DPIs or formats.
var ErrInvalidOptions = errors.New("canvas: invalid options")

// ParseFormat accepts "png" or "svg" in any case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatPNG:
		return FormatPNG, nil
	case FormatSVG:
		return FormatSVG, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", ErrInvalidOptions, s)
}

// Ext returns the file extension for the format, including the dot.
func (f Format) Ext() string { return "." + string(f) }

// ContentType returns the MIME type of encoded output.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Options controls how a figure is rasterized.
type Options struct {
	Format Format
	DPI    float64
}

// Validate reports whether the options can produce an image. An empty
// format is accepted as PNG.
func (o Options) Validate() error {
	if !(o.DPI > 0) || math.IsInf(o.DPI, 1) {
		return fmt.Errorf("%w: dpi %.1f", ErrInvalidOptions, o.DPI)
	}
	switch o.Format {
	case FormatPNG, FormatSVG, "":
		return nil
	}
	return fmt.Errorf("%w: unknown format %q", ErrInvalidOptions, o.Format)
}

// DefaultOptions matches the resolution the slides are printed at.
func DefaultOptions() Options {
	return Options{Format: FormatPNG, DPI: 300}
}

// Point is a position in data coordinates.
type Point struct{ X, Y float64 }

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Style describes how a shape is painted. A zero Fill or Stroke color
// means that part is skipped.
type Style struct {
	Fill   drawing.Color
	Stroke drawing.Color
	// Width is the stroke width in points; 0 means 1pt.
	Width float64
	// Dash is an on/off pattern in points.
	Dash []float64
}

// Canvas is one figure being drawn.
type Canvas struct {
	r      chart.Renderer
	format Format
	dpi    float64
	fonts  *fontSet

	width, height int

	// axes rectangle in pixels
	left, top, right, bottom float64
	xmin, xmax, ymin, ymax   float64
}

// New creates a figure of widthIn × heightIn inches with an opaque white
// background and data limits of [0,1] on both axes.
func New(widthIn, heightIn float64, opts Options) (*Canvas, error) {
	if widthIn <= 0 || heightIn <= 0 {
		return nil, fmt.Errorf("%w: size %.2fx%.2f in", ErrInvalidOptions, widthIn, heightIn)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	provider := chart.PNG
	if opts.Format == FormatSVG {
		provider = chart.SVG
	} else {
		opts.Format = FormatPNG
	}

	fs, err := loadFonts()
	if err != nil {
		return nil, err
	}

	w := int(math.Round(widthIn * opts.DPI))
	h := int(math.Round(heightIn * opts.DPI))
	r, err := provider(w, h)
	if err != nil {
		return nil, fmt.Errorf("creating %s renderer: %w", opts.Format, err)
	}
	r.SetDPI(opts.DPI)

	c := &Canvas{
		r:      r,
		format: opts.Format,
		dpi:    opts.DPI,
		fonts:  fs,
		width:  w,
		height: h,
	}
	c.SetAxesRect(0.02, 0.02, 0.98, 0.92)
	c.SetLimits(0, 1, 0, 1)
	c.fillPixels(0, 0, float64(w), float64(h), drawing.ColorWhite)
	return c, nil
}

// Size returns the pixel dimensions of the figure.
func (c *Canvas) Size() (width, height int) { return c.width, c.height }

// Format returns the output encoding.
func (c *Canvas) Format() Format { return c.format }

// SetAxesRect places the axes in figure fractions (0..1, origin bottom-left).
func (c *Canvas) SetAxesRect(left, bottom, right, top float64) {
	c.left = left * float64(c.width)
	c.right = right * float64(c.width)
	c.bottom = (1 - bottom) * float64(c.height)
	c.top = (1 - top) * float64(c.height)
}

// SetLimits sets the data range shown in the axes.
func (c *Canvas) SetLimits(xmin, xmax, ymin, ymax float64) {
	c.xmin, c.xmax, c.ymin, c.ymax = xmin, xmax, ymin, ymax
}

// EqualAspect shrinks the axes rectangle around its center so that one
// data unit spans the same number of pixels on both axes.
func (c *Canvas) EqualAspect() {
	sx := (c.right - c.left) / (c.xmax - c.xmin)
	sy := (c.bottom - c.top) / (c.ymax - c.ymin)
	if sx > sy {
		w := sy * (c.xmax - c.xmin)
		mid := (c.left + c.right) / 2
		c.left, c.right = mid-w/2, mid+w/2
	} else {
		h := sx * (c.ymax - c.ymin)
		mid := (c.top + c.bottom) / 2
		c.top, c.bottom = mid-h/2, mid+h/2
	}
}

// ToPixel maps a data point to pixel coordinates (y down).
func (c *Canvas) ToPixel(p Point) (x, y float64) {
	x = c.left + (p.X-c.xmin)/(c.xmax-c.xmin)*(c.right-c.left)
	y = c.bottom - (p.Y-c.ymin)/(c.ymax-c.ymin)*(c.bottom-c.top)
	return x, y
}

func (c *Canvas) scaleX(d float64) float64 { return d / (c.xmax - c.xmin) * (c.right - c.left) }
func (c *Canvas) scaleY(d float64) float64 { return d / (c.ymax - c.ymin) * (c.bottom - c.top) }

// points converts a length in points to pixels.
func (c *Canvas) points(v float64) float64 { return v * c.dpi / 72 }

// Encode writes the finished figure.
func (c *Canvas) Encode(w io.Writer) error {
	if err := c.r.Save(w); err != nil {
		return fmt.Errorf("encoding %s: %w", c.format, err)
	}
	return nil
}

// ────────────────────────────────────────────────────────────
// Path plumbing
// ────────────────────────────────────────────────────────────

func ip(v float64) int { return int(math.Round(v)) }

// paint applies st, lets build emit path segments, then fills and/or
// strokes the result.
func (c *Canvas) paint(st Style, build func()) {
	fill := !st.Fill.IsZero()
	stroke := !st.Stroke.IsZero()
	if !fill && !stroke {
		return
	}

	c.r.ResetStyle()
	c.r.SetFillColor(st.Fill)
	c.r.SetStrokeColor(st.Stroke)
	if stroke {
		width := st.Width
		if width == 0 {
			width = 1
		}
		c.r.SetStrokeWidth(math.Max(c.points(width), 1))
		if len(st.Dash) > 0 {
			dash := make([]float64, len(st.Dash))
			for i, d := range st.Dash {
				dash[i] = c.points(d)
			}
			c.r.SetStrokeDashArray(dash)
		}
	}

	build()

	switch {
	case fill && stroke:
		c.r.FillStroke()
	case fill:
		c.r.Fill()
	default:
		c.r.Stroke()
	}
}

func (c *Canvas) fillPixels(x, y, w, h float64, col drawing.Color) {
	c.paint(Style{Fill: col}, func() {
		c.rectPath(x, y, w, h, 0)
	})
}

// rectPath emits a rectangle in pixel space, with rounded corners when
// radius > 0.
func (c *Canvas) rectPath(x, y, w, h, radius float64) {
	if radius <= 0 {
		c.r.MoveTo(ip(x), ip(y))
		c.r.LineTo(ip(x+w), ip(y))
		c.r.LineTo(ip(x+w), ip(y+h))
		c.r.LineTo(ip(x), ip(y+h))
		c.r.Close()
		return
	}
	radius = math.Min(radius, math.Min(w, h)/2)
	c.r.MoveTo(ip(x+radius), ip(y))
	c.r.LineTo(ip(x+w-radius), ip(y))
	c.r.QuadCurveTo(ip(x+w), ip(y), ip(x+w), ip(y+radius))
	c.r.LineTo(ip(x+w), ip(y+h-radius))
	c.r.QuadCurveTo(ip(x+w), ip(y+h), ip(x+w-radius), ip(y+h))
	c.r.LineTo(ip(x+radius), ip(y+h))
	c.r.QuadCurveTo(ip(x), ip(y+h), ip(x), ip(y+h-radius))
	c.r.LineTo(ip(x), ip(y+radius))
	c.r.QuadCurveTo(ip(x), ip(y), ip(x+radius), ip(y))
	c.r.Close()
}

// ellipsePath emits a full ellipse as two half arcs; a single 2π arc
// collapses to nothing in SVG because its endpoints coincide.
func (c *Canvas) ellipsePath(cx, cy, rx, ry float64) {
	c.r.ArcTo(ip(cx), ip(cy), rx, ry, 0, math.Pi)
	c.r.ArcTo(ip(cx), ip(cy), rx, ry, math.Pi, math.Pi)
	c.r.Close()
}

// ────────────────────────────────────────────────────────────
// Shapes
// ────────────────────────────────────────────────────────────

// Rect draws a rectangle whose lower-left corner is (x, y).
func (c *Canvas) Rect(x, y, w, h float64, st Style) {
	px, py := c.ToPixel(Pt(x, y+h))
	c.paint(st, func() {
		c.rectPath(px, py, c.scaleX(w), c.scaleY(h), 0)
	})
}

// Circle draws a circle of radius r in data units. With unequal axis
// scales it comes out as an ellipse, like any other data-space shape.
func (c *Canvas) Circle(center Point, r float64, st Style) {
	cx, cy := c.ToPixel(center)
	c.paint(st, func() {
		c.ellipsePath(cx, cy, c.scaleX(r), c.scaleY(r))
	})
}

// Marker draws a round scatter marker whose area is size points².
func (c *Canvas) Marker(at Point, size float64, st Style) {
	cx, cy := c.ToPixel(at)
	r := c.points(math.Sqrt(size) / 2)
	c.paint(st, func() {
		c.ellipsePath(cx, cy, r, r)
	})
}

// Polygon draws a closed polygon through pts.
func (c *Canvas) Polygon(pts []Point, st Style) {
	if len(pts) < 3 {
		return
	}
	c.paint(st, func() {
		for i, p := range pts {
			x, y := c.ToPixel(p)
			if i == 0 {
				c.r.MoveTo(ip(x), ip(y))
			} else {
				c.r.LineTo(ip(x), ip(y))
			}
		}
		c.r.Close()
	})
}

// Polyline strokes an open path through pts. Fill is ignored.
func (c *Canvas) Polyline(pts []Point, st Style) {
	if len(pts) < 2 {
		return
	}
	st.Fill = drawing.Color{}
	c.paint(st, func() {
		for i, p := range pts {
			x, y := c.ToPixel(p)
			if i == 0 {
				c.r.MoveTo(ip(x), ip(y))
			} else {
				c.r.LineTo(ip(x), ip(y))
			}
		}
	})
}

// Line strokes a single segment.
func (c *Canvas) Line(from, to Point, st Style) {
	c.Polyline([]Point{from, to}, st)
}

// HSpan fills a band across the full axes width between ymin and ymax.
func (c *Canvas) HSpan(ymin, ymax float64, st Style) {
	_, y0 := c.ToPixel(Pt(c.xmin, ymax))
	_, y1 := c.ToPixel(Pt(c.xmin, ymin))
	c.paint(st, func() {
		c.rectPath(c.left, y0, c.right-c.left, y1-y0, 0)
	})
}

// HLine strokes a horizontal line at y spanning the axes fractions
// [xminFrac, xmaxFrac].
func (c *Canvas) HLine(y, xminFrac, xmaxFrac float64, st Style) {
	_, py := c.ToPixel(Pt(c.xmin, y))
	x0 := c.left + xminFrac*(c.right-c.left)
	x1 := c.left + xmaxFrac*(c.right-c.left)
	st.Fill = drawing.Color{}
	c.paint(st, func() {
		c.r.MoveTo(ip(x0), ip(py))
		c.r.LineTo(ip(x1), ip(py))
	})
}
