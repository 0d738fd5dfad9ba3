package topology

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

// Two unit squares sharing the edge x=1, quantized with a translate of (10, 20).
const quantizedTopology = `{
  "type": "Topology",
  "transform": {"scale": [1, 1], "translate": [10, 20]},
  "objects": {
    "zeta": {"type": "GeometryCollection", "geometries": [
      {"type": "Point", "coordinates": [5, 5], "properties": {"name": "marker"}}
    ]},
    "states": {"type": "GeometryCollection", "geometries": [
      {"type": "Polygon", "arcs": [[0, 1]], "id": "W", "properties": {"name": "West"}},
      {"type": "Polygon", "arcs": [[2, -1]], "properties": {"name": "East"}},
      {"type": null}
    ]}
  },
  "arcs": [
    [[1, 0], [0, 1]],
    [[1, 1], [-1, 0], [0, -1], [1, 0]],
    [[1, 0], [1, 0], [0, 1], [-1, 0]]
  ]
}`

func decodeString(t *testing.T, s string) *Topology {
	t.Helper()
	topo, err := Decode(strings.NewReader(s))
	require.NoError(t, err)
	return topo
}

func TestDecode_ObjectOrder(t *testing.T) {
	t.Parallel()

	topo := decodeString(t, quantizedTopology)
	assert.Equal(t, "Topology", topo.Type)
	assert.Equal(t, []string{"zeta", "states"}, topo.Objects.Names())
	assert.Equal(t, 2, topo.Objects.Len())
}

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()

	_, err := Decode(strings.NewReader(`{"objects": [1, 2]}`))
	require.Error(t, err)

	_, err = Decode(strings.NewReader(`not json`))
	require.Error(t, err)
}

func TestDecode_MissingObjects(t *testing.T) {
	t.Parallel()

	topo := decodeString(t, `{"type": "Topology", "arcs": []}`)
	assert.Nil(t, topo.Objects)
	assert.Zero(t, topo.Objects.Len())

	_, _, _, err := topo.SelectObject("states")
	assert.True(t, eris.Is(err, ErrNoObjects))
}

func TestSelectObject(t *testing.T) {
	t.Parallel()

	topo := decodeString(t, quantizedTopology)

	name, obj, fallback, err := topo.SelectObject("states")
	require.NoError(t, err)
	assert.Equal(t, "states", name)
	assert.False(t, fallback)
	assert.Len(t, obj.Geometries, 3)

	name, _, fallback, err = topo.SelectObject("counties")
	require.NoError(t, err)
	assert.Equal(t, "zeta", name)
	assert.True(t, fallback)
}

func TestFeature_Polygons(t *testing.T) {
	t.Parallel()

	topo := decodeString(t, quantizedTopology)
	_, obj, _, err := topo.SelectObject("states")
	require.NoError(t, err)

	fc, err := topo.Feature(obj)
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)

	west := fc.Features[0]
	assert.Equal(t, "West", west.Properties["name"])
	assert.Equal(t, "W", west.Properties["id"])
	poly, ok := west.Geometry.(*geom.Polygon)
	require.True(t, ok)
	assert.Equal(t, []float64{11, 20, 11, 21, 10, 21, 10, 20, 11, 20}, poly.FlatCoords())

	east := fc.Features[1]
	poly, ok = east.Geometry.(*geom.Polygon)
	require.True(t, ok)
	assert.Equal(t, []float64{11, 20, 12, 20, 12, 21, 11, 21, 11, 20}, poly.FlatCoords())

	assert.Nil(t, fc.Features[2].Geometry)
}

func TestFeature_Point(t *testing.T) {
	t.Parallel()

	topo := decodeString(t, quantizedTopology)
	_, obj, _, err := topo.SelectObject("zeta")
	require.NoError(t, err)

	fc, err := topo.Feature(obj)
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	pt, ok := fc.Features[0].Geometry.(*geom.Point)
	require.True(t, ok)
	assert.Equal(t, []float64{15, 25}, pt.FlatCoords())
}

func TestFeature_UnquantizedMultiPolygon(t *testing.T) {
	t.Parallel()

	topo := decodeString(t, `{
	  "type": "Topology",
	  "objects": {"land": {"type": "MultiPolygon", "arcs": [[[0]], [[1]]]}},
	  "arcs": [
	    [[0, 0], [1, 0], [1, 1], [0, 0]],
	    [[5, 5], [6, 5], [5, 5]]
	  ]
	}`)
	_, obj, fallback, err := topo.SelectObject("states")
	require.NoError(t, err)
	assert.True(t, fallback)

	fc, err := topo.Feature(obj)
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	mp, ok := fc.Features[0].Geometry.(*geom.MultiPolygon)
	require.True(t, ok)
	require.Equal(t, 2, mp.NumPolygons())
	assert.Equal(t, []float64{0, 0, 1, 0, 1, 1, 0, 0}, mp.Polygon(0).FlatCoords())
	// Short rings are padded to four positions.
	assert.Equal(t, []float64{5, 5, 6, 5, 5, 5, 5, 5}, mp.Polygon(1).FlatCoords())
}

func TestFeature_ArcOutOfRange(t *testing.T) {
	t.Parallel()

	topo := decodeString(t, `{
	  "type": "Topology",
	  "objects": {"bad": {"type": "LineString", "arcs": [3]}},
	  "arcs": [[[0, 0], [1, 1]]]
	}`)
	_, obj, _, err := topo.SelectObject("bad")
	require.NoError(t, err)
	_, err = topo.Feature(obj)
	require.Error(t, err)
}

func TestMesh(t *testing.T) {
	t.Parallel()

	topo := decodeString(t, quantizedTopology)
	_, obj, _, err := topo.SelectObject("states")
	require.NoError(t, err)

	all, err := topo.Mesh(obj, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, all.NumLineStrings())

	interior, err := topo.Mesh(obj, Interior)
	require.NoError(t, err)
	require.Equal(t, 1, interior.NumLineStrings())
	assert.Equal(t, []float64{11, 20, 11, 21}, interior.LineString(0).FlatCoords())
}

func TestObjects_MarshalRoundTripOrder(t *testing.T) {
	t.Parallel()

	topo := decodeString(t, quantizedTopology)
	data, err := json.Marshal(topo.Objects)
	require.NoError(t, err)
	assert.Less(t, strings.Index(string(data), `"zeta"`), strings.Index(string(data), `"states"`))
}
