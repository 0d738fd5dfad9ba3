// Package projection projects lon/lat coordinates onto the SVG plane and
// generates path data for go-geom geometries.
package projection

import "math"

const (
	epsilon = 1e-6
	radians = math.Pi / 180
)

// Projection maps lon/lat degrees to pixel coordinates. ok is false for
// positions outside the projection's visible extent.
type Projection interface {
	Project(lon, lat float64) (x, y float64, ok bool)
}

// Extent is a pixel clip rectangle.
type Extent struct {
	X0, Y0, X1, Y1 float64
}

// Contains reports whether (x, y) lies inside the extent, edges included.
func (e Extent) Contains(x, y float64) bool {
	return x >= e.X0 && x <= e.X1 && y >= e.Y0 && y <= e.Y1
}

// ConicEqualArea is an Albers equal-area conic projection with a rotation,
// center, scale and translation.
type ConicEqualArea struct {
	n, c, r0     float64
	rotate       float64 // longitude rotation, radians
	k            float64
	tx, ty       float64
	cx, cy       float64 // projected center before translation
	centerLambda float64
	centerPhi    float64
}

// NewConicEqualArea builds the projection for two standard parallels, in degrees.
func NewConicEqualArea(parallel0, parallel1 float64) *ConicEqualArea {
	y0, y1 := parallel0*radians, parallel1*radians
	sy0 := math.Sin(y0)
	n := (sy0 + math.Sin(y1)) / 2
	c := 1 + sy0*(2*n-sy0)
	p := &ConicEqualArea{n: n, c: c, r0: math.Sqrt(c) / n, k: 150}
	p.recenter()
	return p
}

// Rotate sets the longitude rotation in degrees.
func (p *ConicEqualArea) Rotate(lambda float64) *ConicEqualArea {
	p.rotate = lambda * radians
	return p
}

// Center sets the projection center in degrees, relative to the rotated frame.
func (p *ConicEqualArea) Center(lon, lat float64) *ConicEqualArea {
	p.centerLambda, p.centerPhi = lon*radians, lat*radians
	p.recenter()
	return p
}

// Scale sets the scale factor.
func (p *ConicEqualArea) Scale(k float64) *ConicEqualArea {
	p.k = k
	p.recenter()
	return p
}

// Translate sets the pixel position of the center.
func (p *ConicEqualArea) Translate(x, y float64) *ConicEqualArea {
	p.tx, p.ty = x, y
	return p
}

func (p *ConicEqualArea) recenter() {
	x, y := p.raw(p.centerLambda, p.centerPhi)
	p.cx, p.cy = p.k*x, -p.k*y
}

func (p *ConicEqualArea) raw(lambda, phi float64) (float64, float64) {
	r := math.Sqrt(p.c-2*p.n*math.Sin(phi)) / p.n
	lambda *= p.n
	return r * math.Sin(lambda), p.r0 - r*math.Cos(lambda)
}

// Project implements Projection without clipping.
func (p *ConicEqualArea) Project(lon, lat float64) (float64, float64, bool) {
	lambda := lon*radians + p.rotate
	if lambda > math.Pi {
		lambda -= 2 * math.Pi
	} else if lambda < -math.Pi {
		lambda += 2 * math.Pi
	}
	x, y := p.raw(lambda, lat*radians)
	if math.IsNaN(x) || math.IsNaN(y) {
		return 0, 0, false
	}
	return p.tx - p.cx + p.k*x, p.ty - p.cy - p.k*y, true
}

// Part identifies the sub-projection of a composite that produced a point.
type Part int

// AlbersUSA parts.
const (
	PartNone Part = iota - 1
	PartLower48
	PartAlaska
	PartHawaii
)

// AlbersUSA is a composite conic projection of the contiguous states with
// Alaska and Hawaii inset below. Each part clips to its own rectangle.
type AlbersUSA struct {
	parts   [3]*ConicEqualArea
	extents [3]Extent
	k       float64
	tx, ty  float64
}

// NewAlbersUSA returns the composite at the given scale, translated so the
// lower 48 are centered on (tx, ty).
func NewAlbersUSA(scale, tx, ty float64) *AlbersUSA {
	a := &AlbersUSA{
		parts: [3]*ConicEqualArea{
			NewConicEqualArea(29.5, 45.5).Rotate(96).Center(-0.6, 38.7),
			NewConicEqualArea(55, 65).Rotate(154).Center(-2, 58.5),
			NewConicEqualArea(8, 18).Rotate(157).Center(-3, 19.9),
		},
	}
	a.setScale(scale)
	a.setTranslate(tx, ty)
	return a
}

func (a *AlbersUSA) setScale(k float64) {
	a.k = k
	a.parts[PartLower48].Scale(k)
	a.parts[PartAlaska].Scale(k * 0.35)
	a.parts[PartHawaii].Scale(k)
}

func (a *AlbersUSA) setTranslate(x, y float64) {
	k := a.k
	a.tx, a.ty = x, y

	a.parts[PartLower48].Translate(x, y)
	a.extents[PartLower48] = Extent{x - 0.455*k, y - 0.238*k, x + 0.455*k, y + 0.238*k}

	a.parts[PartAlaska].Translate(x-0.307*k, y+0.201*k)
	a.extents[PartAlaska] = Extent{x - 0.425*k + epsilon, y + 0.120*k + epsilon, x - 0.214*k - epsilon, y + 0.234*k - epsilon}

	a.parts[PartHawaii].Translate(x-0.205*k, y+0.212*k)
	a.extents[PartHawaii] = Extent{x - 0.214*k + epsilon, y + 0.166*k + epsilon, x - 0.115*k - epsilon, y + 0.234*k - epsilon}
}

// Project implements Projection. Parts are tried in order; a position is
// visible if any part places it inside that part's extent.
func (a *AlbersUSA) Project(lon, lat float64) (float64, float64, bool) {
	x, y, part := a.ProjectPart(lon, lat)
	return x, y, part != PartNone
}

// ProjectPart is Project reporting which part accepted the position.
func (a *AlbersUSA) ProjectPart(lon, lat float64) (float64, float64, Part) {
	for i, p := range a.parts {
		x, y, ok := p.Project(lon, lat)
		if ok && a.extents[i].Contains(x, y) {
			return x, y, Part(i)
		}
	}
	return 0, 0, PartNone
}

// Extents returns the clip rectangles of the lower 48, Alaska and Hawaii.
func (a *AlbersUSA) Extents() []Extent {
	return append([]Extent(nil), a.extents[:]...)
}
