package layout

import "math"

// Radial returns n points evenly spaced on a circle, the first at angle
// phase (radians, counter-clockwise from +x).
func Radial(center Vec, radius float64, n int, phase float64) []Vec {
	out := make([]Vec, n)
	for i := range out {
		a := phase + 2*math.Pi*float64(i)/float64(n)
		out[i] = Vec{center.X + radius*math.Cos(a), center.Y + radius*math.Sin(a)}
	}
	return out
}

// Clamp pulls every position into [lo, hi] on both axes.
func Clamp(pos map[string]Vec, lo, hi float64) {
	for id, p := range pos {
		pos[id] = Vec{
			X: math.Min(math.Max(p.X, lo), hi),
			Y: math.Min(math.Max(p.Y, lo), hi),
		}
	}
}
