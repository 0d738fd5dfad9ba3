package projection

import "math"

// Graticule generates meridians and parallels at a fixed step.
type Graticule struct {
	Step      float64 // degrees between lines
	Precision float64 // sampling interval along each line, degrees
}

// NewGraticule returns a graticule with lines every step degrees sampled at
// 2.5° intervals.
func NewGraticule(step float64) Graticule {
	return Graticule{Step: step, Precision: 2.5}
}

// Lines returns every meridian from -180 and every parallel strictly between
// the poles, as lon/lat sequences.
func (g Graticule) Lines() [][][2]float64 {
	step, prec := g.Step, g.Precision
	if step <= 0 {
		step = 10
	}
	if prec <= 0 {
		prec = 2.5
	}

	const (
		x0, x1 = -180.0, 180.0
		y0, y1 = -90 + epsilon, 90 - epsilon
	)

	var lines [][][2]float64
	for x := math.Ceil(x0/step) * step; x < x1; x += step {
		lines = append(lines, meridian(x, y0, y1, prec))
	}
	for y := math.Ceil(y0/step) * step; y < y1; y += step {
		lines = append(lines, parallel(y, x0, x1, prec))
	}
	return lines
}

// Outline returns the closed ring bounding the graticule.
func (g Graticule) Outline() [][2]float64 {
	prec := g.Precision
	if prec <= 0 {
		prec = 2.5
	}
	const (
		x0, x1 = -180.0, 180.0
		y0, y1 = -90 + epsilon, 90 - epsilon
	)
	var ring [][2]float64
	ring = append(ring, meridian(x0, y0, y1, prec)...)
	ring = append(ring, parallel(y1, x0, x1, prec)[1:]...)
	ring = append(ring, reversed(meridian(x1, y0, y1, prec))[1:]...)
	ring = append(ring, reversed(parallel(y0, x0, x1, prec))[1:]...)
	return ring
}

func meridian(x, y0, y1, step float64) [][2]float64 {
	var pts [][2]float64
	for y := y0; y < y1-epsilon; y += step {
		pts = append(pts, [2]float64{x, y})
	}
	return append(pts, [2]float64{x, y1})
}

func parallel(y, x0, x1, step float64) [][2]float64 {
	var pts [][2]float64
	for x := x0; x < x1-epsilon; x += step {
		pts = append(pts, [2]float64{x, y})
	}
	return append(pts, [2]float64{x1, y})
}

func reversed(pts [][2]float64) [][2]float64 {
	out := make([][2]float64, len(pts))
	for i := range pts {
		out[i] = pts[len(pts)-1-i]
	}
	return out
}
