// Package topology decodes TopoJSON documents into go-geom feature
// collections and shared-boundary meshes.
package topology

import (
	"bytes"
	"encoding/json"
	"io"
	"sync"

	"github.com/rotisserie/eris"
)

// Geometry types understood by the decoder.
const (
	TypePoint              = "Point"
	TypeMultiPoint         = "MultiPoint"
	TypeLineString         = "LineString"
	TypeMultiLineString    = "MultiLineString"
	TypePolygon            = "Polygon"
	TypeMultiPolygon       = "MultiPolygon"
	TypeGeometryCollection = "GeometryCollection"
)

// ErrNoObjects is returned when a topology declares no object collections.
var ErrNoObjects = eris.New("topology: no objects")

// Topology is a decoded TopoJSON document.
type Topology struct {
	Type      string        `json:"type"`
	BBox      []float64     `json:"bbox,omitempty"`
	Transform *Transform    `json:"transform,omitempty"`
	Arcs      [][][]float64 `json:"arcs"`
	Objects   *Objects      `json:"objects"`

	decodeOnce sync.Once
	decoded    [][][2]float64
}

// Transform dequantizes integer positions.
type Transform struct {
	Scale     [2]float64 `json:"scale"`
	Translate [2]float64 `json:"translate"`
}

// Apply converts a quantized position to absolute coordinates.
func (t *Transform) Apply(x, y float64) (float64, float64) {
	if t == nil {
		return x, y
	}
	return x*t.Scale[0] + t.Translate[0], y*t.Scale[1] + t.Translate[1]
}

// Geometry is a TopoJSON geometry object. Arcs and Coordinates keep their raw
// form because their nesting depth depends on Type.
type Geometry struct {
	Type        string                 `json:"type"`
	ID          interface{}            `json:"id,omitempty"`
	Properties  map[string]interface{} `json:"properties,omitempty"`
	Arcs        json.RawMessage        `json:"arcs,omitempty"`
	Coordinates json.RawMessage        `json:"coordinates,omitempty"`
	Geometries  []*Geometry            `json:"geometries,omitempty"`
}

// Objects holds the named object collections in declaration order.
type Objects struct {
	names  []string
	byName map[string]*Geometry
}

// Names returns the object names in the order they were declared.
func (o *Objects) Names() []string {
	if o == nil {
		return nil
	}
	return append([]string(nil), o.names...)
}

// Get returns the named object.
func (o *Objects) Get(name string) (*Geometry, bool) {
	if o == nil {
		return nil, false
	}
	g, ok := o.byName[name]
	return g, ok
}

// Len returns the number of declared objects.
func (o *Objects) Len() int {
	if o == nil {
		return 0
	}
	return len(o.names)
}

// Set declares or replaces an object; new names are appended.
func (o *Objects) Set(name string, g *Geometry) {
	if o.byName == nil {
		o.byName = make(map[string]*Geometry)
	}
	if _, ok := o.byName[name]; !ok {
		o.names = append(o.names, name)
	}
	o.byName[name] = g
}

// UnmarshalJSON decodes the objects member keeping key order.
func (o *Objects) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return eris.Wrap(err, "topology: read objects")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return eris.Errorf("topology: objects must be an object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return eris.Wrap(err, "topology: read object name")
		}
		name, _ := keyTok.(string)
		var g Geometry
		if err := dec.Decode(&g); err != nil {
			return eris.Wrapf(err, "topology: decode object %q", name)
		}
		o.Set(name, &g)
	}
	if _, err := dec.Token(); err != nil {
		return eris.Wrap(err, "topology: read objects end")
	}
	return nil
}

// MarshalJSON encodes the objects in declaration order.
func (o Objects) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range o.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(o.byName[name])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Decode reads a TopoJSON document.
func Decode(r io.Reader) (*Topology, error) {
	var t Topology
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, eris.Wrap(err, "topology: decode")
	}
	return &t, nil
}

// SelectObject returns the preferred object, or the first declared one when
// the preferred name is absent. fallback reports that the first object was
// used instead.
func (t *Topology) SelectObject(preferred string) (name string, obj *Geometry, fallback bool, err error) {
	if g, ok := t.Objects.Get(preferred); ok {
		return preferred, g, false, nil
	}
	names := t.Objects.Names()
	if len(names) == 0 {
		return "", nil, false, ErrNoObjects
	}
	g, _ := t.Objects.Get(names[0])
	return names[0], g, true, nil
}

// arcs returns the absolute coordinates of every arc. Delta-encoded arcs are
// decoded once when a transform is present.
func (t *Topology) arcs() [][][2]float64 {
	t.decodeOnce.Do(t.decodeArcs)
	return t.decoded
}

func (t *Topology) decodeArcs() {
	out := make([][][2]float64, len(t.Arcs))
	for i, arc := range t.Arcs {
		pts := make([][2]float64, 0, len(arc))
		var x, y float64
		for _, p := range arc {
			if len(p) < 2 {
				continue
			}
			if t.Transform != nil {
				x += p[0]
				y += p[1]
				ax, ay := t.Transform.Apply(x, y)
				pts = append(pts, [2]float64{ax, ay})
				continue
			}
			pts = append(pts, [2]float64{p[0], p[1]})
		}
		out[i] = pts
	}
	t.decoded = out
}

// arc returns the coordinates of arc i; negative indexes address arc ^i reversed.
func (t *Topology) arc(i int) ([][2]float64, error) {
	arcs := t.arcs()
	rev := i < 0
	if rev {
		i = ^i
	}
	if i >= len(arcs) {
		return nil, eris.Errorf("topology: arc %d out of range (%d arcs)", i, len(arcs))
	}
	src := arcs[i]
	if !rev {
		return src, nil
	}
	out := make([][2]float64, len(src))
	for j := range src {
		out[j] = src[len(src)-1-j]
	}
	return out, nil
}
