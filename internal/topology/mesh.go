package topology

import (
	"encoding/json"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// MeshFilter decides whether an arc shared by geometries a and b belongs in
// the mesh. a and b are the first and last geometries referencing the arc;
// they are the same geometry for exterior arcs.
type MeshFilter func(a, b *Geometry) bool

// Interior keeps only arcs shared by two different geometries.
func Interior(a, b *Geometry) bool {
	return a != b
}

// Mesh returns every arc referenced by obj exactly once, as separate line
// strings. With a nil filter all arcs are kept.
func (t *Topology) Mesh(obj *Geometry, filter MeshFilter) (*geom.MultiLineString, error) {
	if obj == nil {
		return nil, eris.New("topology: nil object")
	}

	geomsByArc := make(map[int][]*Geometry)
	if err := collectArcs(obj, geomsByArc); err != nil {
		return nil, err
	}

	indexes := make([]int, 0, len(geomsByArc))
	for i := range geomsByArc {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	mls := geom.NewMultiLineString(geom.XY)
	for _, i := range indexes {
		geoms := geomsByArc[i]
		if filter != nil && !filter(geoms[0], geoms[len(geoms)-1]) {
			continue
		}
		flat, err := t.line([]int{i})
		if err != nil {
			return nil, err
		}
		if err := mls.Push(geom.NewLineStringFlat(geom.XY, flat)); err != nil {
			return nil, eris.Wrap(err, "topology: push mesh arc")
		}
	}
	return mls, nil
}

func collectArcs(g *Geometry, out map[int][]*Geometry) error {
	add := func(arcs []int) {
		for _, i := range arcs {
			if i < 0 {
				i = ^i
			}
			out[i] = append(out[i], g)
		}
	}

	switch g.Type {
	case TypeGeometryCollection:
		for _, m := range g.Geometries {
			if m == nil {
				continue
			}
			if err := collectArcs(m, out); err != nil {
				return err
			}
		}
	case TypeLineString:
		var arcs []int
		if err := json.Unmarshal(g.Arcs, &arcs); err != nil {
			return eris.Wrap(err, "topology: linestring arcs")
		}
		add(arcs)
	case TypeMultiLineString, TypePolygon:
		var lines [][]int
		if err := json.Unmarshal(g.Arcs, &lines); err != nil {
			return eris.Wrapf(err, "topology: %s arcs", g.Type)
		}
		for _, arcs := range lines {
			add(arcs)
		}
	case TypeMultiPolygon:
		var polys [][][]int
		if err := json.Unmarshal(g.Arcs, &polys); err != nil {
			return eris.Wrap(err, "topology: multipolygon arcs")
		}
		for _, rings := range polys {
			for _, arcs := range rings {
				add(arcs)
			}
		}
	}
	return nil
}
