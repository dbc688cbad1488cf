package canvas

import (
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ArrowStyle configures Arrow. Lengths are in points.
type ArrowStyle struct {
	Line Style
	// Rad bends the shaft into a quadratic arc; the control point sits
	// Rad × the chord length off the midpoint. Zero draws a straight shaft.
	Rad float64
	// HeadLength and HeadWidth size the open "->" head; zero picks 4×2pt.
	HeadLength float64
	HeadWidth  float64
	// ShrinkA and ShrinkB pull the ends in from the anchor points.
	ShrinkA float64
	ShrinkB float64
}

// Arrow draws an open-headed arrow from one data point to another.
func (c *Canvas) Arrow(from, to Point, as ArrowStyle) {
	x1, y1 := c.ToPixel(from)
	x2, y2 := c.ToPixel(to)

	x1, y1, x2, y2 = c.shrink(x1, y1, x2, y2, c.points(as.ShrinkA), c.points(as.ShrinkB))
	if x1 == x2 && y1 == y2 {
		return
	}

	// control point in pixel space, where y grows downward
	cx := (x1+x2)/2 - as.Rad*(y2-y1)
	cy := (y1+y2)/2 + as.Rad*(x2-x1)

	line := as.Line
	line.Fill = drawing.Color{}
	c.paint(line, func() {
		c.r.MoveTo(ip(x1), ip(y1))
		if as.Rad == 0 {
			c.r.LineTo(ip(x2), ip(y2))
		} else {
			c.r.QuadCurveTo(ip(cx), ip(cy), ip(x2), ip(y2))
		}
	})

	// the head follows the tangent at the tip
	tx, ty := x2-cx, y2-cy
	if as.Rad == 0 {
		tx, ty = x2-x1, y2-y1
	}
	c.arrowHead(x2, y2, tx, ty, as)
}

func (c *Canvas) shrink(x1, y1, x2, y2, a, b float64) (float64, float64, float64, float64) {
	dx, dy := x2-x1, y2-y1
	d := math.Hypot(dx, dy)
	if d == 0 || a+b >= d {
		return x1, y1, x1, y1
	}
	ux, uy := dx/d, dy/d
	return x1 + ux*a, y1 + uy*a, x2 - ux*b, y2 - uy*b
}

func (c *Canvas) arrowHead(x, y, tx, ty float64, as ArrowStyle) {
	d := math.Hypot(tx, ty)
	if d == 0 {
		return
	}
	ux, uy := tx/d, ty/d
	length := c.points(nonZero(as.HeadLength, 4))
	width := c.points(nonZero(as.HeadWidth, 2))

	bx, by := x-ux*length, y-uy*length
	// perpendicular
	nx, ny := -uy*width, ux*width

	line := as.Line
	line.Fill = drawing.Color{}
	line.Dash = nil
	c.paint(line, func() {
		c.r.MoveTo(ip(bx+nx), ip(by+ny))
		c.r.LineTo(ip(x), ip(y))
		c.r.LineTo(ip(bx-nx), ip(by-ny))
	})
}

// Curve strokes a quadratic Bézier from p0 to p2 with control point ctrl,
// all in data coordinates.
func (c *Canvas) Curve(p0, ctrl, p2 Point, st Style) {
	x0, y0 := c.ToPixel(p0)
	cx, cy := c.ToPixel(ctrl)
	x2, y2 := c.ToPixel(p2)
	st.Fill = drawing.Color{}
	c.paint(st, func() {
		c.r.MoveTo(ip(x0), ip(y0))
		c.r.QuadCurveTo(ip(cx), ip(cy), ip(x2), ip(y2))
	})
}

// CurvedArrow strokes a quadratic Bézier from one data point to another
// through ctrl and puts an open head at the end.
func (c *Canvas) CurvedArrow(from, ctrl, to Point, as ArrowStyle) {
	c.Curve(from, ctrl, to, as.Line)
	cx, cy := c.ToPixel(ctrl)
	x2, y2 := c.ToPixel(to)
	c.arrowHead(x2, y2, x2-cx, y2-cy, as)
}
