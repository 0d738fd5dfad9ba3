package topology

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// Feature expands obj into a feature collection. A GeometryCollection yields
// one feature per member; any other geometry yields a single feature.
func (t *Topology) Feature(obj *Geometry) (*geojson.FeatureCollection, error) {
	if obj == nil {
		return nil, eris.New("topology: nil object")
	}
	members := []*Geometry{obj}
	if obj.Type == TypeGeometryCollection {
		members = obj.Geometries
	}

	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(members))}
	for i, g := range members {
		if g == nil {
			continue
		}
		f, err := t.feature(g)
		if err != nil {
			return nil, eris.Wrapf(err, "topology: feature %d", i)
		}
		fc.Features = append(fc.Features, f)
	}
	return fc, nil
}

func (t *Topology) feature(g *Geometry) (*geojson.Feature, error) {
	geometry, err := t.Geometry(g)
	if err != nil {
		return nil, err
	}
	props := make(map[string]interface{}, len(g.Properties)+1)
	for k, v := range g.Properties {
		props[k] = v
	}
	if g.ID != nil {
		if _, taken := props["id"]; !taken {
			props["id"] = g.ID
		}
	}
	return &geojson.Feature{Geometry: geometry, Properties: props}, nil
}

// Geometry converts one TopoJSON geometry to its go-geom form. Null geometries
// and nested collections convert to nil.
func (t *Topology) Geometry(g *Geometry) (geom.T, error) {
	switch g.Type {
	case TypePoint:
		var c []float64
		if err := json.Unmarshal(g.Coordinates, &c); err != nil {
			return nil, eris.Wrap(err, "topology: point coordinates")
		}
		if len(c) < 2 {
			return nil, eris.New("topology: point needs two coordinates")
		}
		x, y := t.Transform.Apply(c[0], c[1])
		return geom.NewPointFlat(geom.XY, []float64{x, y}), nil

	case TypeMultiPoint:
		var cs [][]float64
		if err := json.Unmarshal(g.Coordinates, &cs); err != nil {
			return nil, eris.Wrap(err, "topology: multipoint coordinates")
		}
		flat := make([]float64, 0, 2*len(cs))
		for _, c := range cs {
			if len(c) < 2 {
				continue
			}
			x, y := t.Transform.Apply(c[0], c[1])
			flat = append(flat, x, y)
		}
		return geom.NewMultiPointFlat(geom.XY, flat), nil

	case TypeLineString:
		var arcs []int
		if err := json.Unmarshal(g.Arcs, &arcs); err != nil {
			return nil, eris.Wrap(err, "topology: linestring arcs")
		}
		flat, err := t.line(arcs)
		if err != nil {
			return nil, err
		}
		return geom.NewLineStringFlat(geom.XY, flat), nil

	case TypeMultiLineString:
		var lines [][]int
		if err := json.Unmarshal(g.Arcs, &lines); err != nil {
			return nil, eris.Wrap(err, "topology: multilinestring arcs")
		}
		mls := geom.NewMultiLineString(geom.XY)
		for _, arcs := range lines {
			flat, err := t.line(arcs)
			if err != nil {
				return nil, err
			}
			if err := mls.Push(geom.NewLineStringFlat(geom.XY, flat)); err != nil {
				return nil, eris.Wrap(err, "topology: push linestring")
			}
		}
		return mls, nil

	case TypePolygon:
		var rings [][]int
		if err := json.Unmarshal(g.Arcs, &rings); err != nil {
			return nil, eris.Wrap(err, "topology: polygon arcs")
		}
		return t.polygon(rings)

	case TypeMultiPolygon:
		var polys [][][]int
		if err := json.Unmarshal(g.Arcs, &polys); err != nil {
			return nil, eris.Wrap(err, "topology: multipolygon arcs")
		}
		mp := geom.NewMultiPolygon(geom.XY)
		for _, rings := range polys {
			p, err := t.polygon(rings)
			if err != nil {
				return nil, err
			}
			if err := mp.Push(p); err != nil {
				return nil, eris.Wrap(err, "topology: push polygon")
			}
		}
		return mp, nil

	case "", TypeGeometryCollection:
		return nil, nil

	default:
		return nil, eris.Errorf("topology: unsupported geometry type %q", g.Type)
	}
}

// line stitches arcs end to end, dropping each arc's first point after the
// first arc since it repeats the previous arc's last point.
func (t *Topology) line(arcs []int) ([]float64, error) {
	var flat []float64
	for k, i := range arcs {
		pts, err := t.arc(i)
		if err != nil {
			return nil, err
		}
		for j, p := range pts {
			if k > 0 && j == 0 {
				continue
			}
			flat = append(flat, p[0], p[1])
		}
	}
	if len(flat) == 2 {
		flat = append(flat, flat[0], flat[1])
	}
	return flat, nil
}

// ring is a closed line padded to at least four positions.
func (t *Topology) ring(arcs []int) ([]float64, error) {
	flat, err := t.line(arcs)
	if err != nil {
		return nil, err
	}
	for len(flat) > 0 && len(flat) < 8 {
		flat = append(flat, flat[0], flat[1])
	}
	return flat, nil
}

func (t *Topology) polygon(rings [][]int) (*geom.Polygon, error) {
	p := geom.NewPolygon(geom.XY)
	for _, arcs := range rings {
		flat, err := t.ring(arcs)
		if err != nil {
			return nil, err
		}
		if err := p.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
			return nil, eris.Wrap(err, "topology: push ring")
		}
	}
	return p, nil
}
