package projection

import (
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"
)

// PartProjector is implemented by composite projections whose parts must not
// be joined by a single path segment.
type PartProjector interface {
	ProjectPart(lon, lat float64) (x, y float64, part Part)
}

// Path builds SVG path data from lon/lat geometry. Segments are broken
// wherever a position is not visible or crosses between composite parts.
type Path struct {
	proj Projection
	sb   strings.Builder
}

// NewPath returns a path generator for proj.
func NewPath(proj Projection) *Path {
	return &Path{proj: proj}
}

// Geometry returns the path data for g. Points and empty geometries yield "".
func (p *Path) Geometry(g geom.T) string {
	p.sb.Reset()
	p.geometry(g)
	return p.sb.String()
}

// Line returns the path data for an open lon/lat sequence.
func (p *Path) Line(pts [][2]float64) string {
	p.sb.Reset()
	p.line(pts, false)
	return p.sb.String()
}

// Ring returns the path data for a closed lon/lat ring.
func (p *Path) Ring(pts [][2]float64) string {
	p.sb.Reset()
	p.line(pts, true)
	return p.sb.String()
}

func (p *Path) geometry(g geom.T) {
	switch t := g.(type) {
	case *geom.LineString:
		p.flat(t.FlatCoords(), t.Stride(), false)
	case *geom.LinearRing:
		p.flat(t.FlatCoords(), t.Stride(), true)
	case *geom.MultiLineString:
		for i := 0; i < t.NumLineStrings(); i++ {
			p.geometry(t.LineString(i))
		}
	case *geom.Polygon:
		for i := 0; i < t.NumLinearRings(); i++ {
			p.geometry(t.LinearRing(i))
		}
	case *geom.MultiPolygon:
		for i := 0; i < t.NumPolygons(); i++ {
			p.geometry(t.Polygon(i))
		}
	case *geom.GeometryCollection:
		for _, m := range t.Geoms() {
			p.geometry(m)
		}
	}
}

func (p *Path) flat(coords []float64, stride int, closed bool) {
	if stride < 2 {
		return
	}
	pts := make([][2]float64, 0, len(coords)/stride)
	for i := 0; i+1 < len(coords); i += stride {
		pts = append(pts, [2]float64{coords[i], coords[i+1]})
	}
	p.line(pts, closed)
}

// line writes one or more subpaths for pts. A ring that stays visible and in
// one part is closed with Z; otherwise each visible run is left open.
func (p *Path) line(pts [][2]float64, closed bool) {
	parts, _ := p.proj.(PartProjector)

	var runs [][][2]float64
	var run [][2]float64
	prevPart := PartNone
	for _, pt := range pts {
		var (
			x, y float64
			ok   bool
			part = PartLower48
		)
		if parts != nil {
			x, y, part = parts.ProjectPart(pt[0], pt[1])
			ok = part != PartNone
		} else {
			x, y, ok = p.proj.Project(pt[0], pt[1])
		}
		if !ok || (len(run) > 0 && part != prevPart) {
			if len(run) > 0 {
				runs = append(runs, run)
				run = nil
			}
		}
		if ok {
			run = append(run, [2]float64{x, y})
			prevPart = part
		}
	}
	if len(run) > 0 {
		runs = append(runs, run)
	}

	whole := closed && len(runs) == 1 && len(runs[0]) == len(pts)
	for _, r := range runs {
		if len(r) < 2 {
			continue
		}
		for i, xy := range r {
			if i == 0 {
				p.sb.WriteByte('M')
			} else {
				p.sb.WriteByte('L')
			}
			p.sb.WriteString(formatCoord(xy[0]))
			p.sb.WriteByte(',')
			p.sb.WriteString(formatCoord(xy[1]))
		}
		if whole {
			p.sb.WriteByte('Z')
		}
	}
}

// formatCoord writes a pixel coordinate with at most two decimals.
func formatCoord(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}

// RectPath returns the closed path data for an extent.
func RectPath(e Extent) string {
	return "M" + formatCoord(e.X0) + "," + formatCoord(e.Y0) +
		"L" + formatCoord(e.X1) + "," + formatCoord(e.Y0) +
		"L" + formatCoord(e.X1) + "," + formatCoord(e.Y1) +
		"L" + formatCoord(e.X0) + "," + formatCoord(e.Y1) + "Z"
}
