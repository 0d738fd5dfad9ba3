package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/citymap/internal/fetcher"
	"github.com/sells-group/citymap/internal/model"
	"github.com/sells-group/citymap/internal/topology"
)

const (
	statesTopo = `{"type":"Topology","objects":{"states":{"type":"GeometryCollection","geometries":[
		{"type":"Polygon","arcs":[[0,1]],"properties":{"name":"West"}},
		{"type":"Polygon","arcs":[[2,-1]],"properties":{"name":"East"}}
	]}},"arcs":[
		[[-95,30],[-95,45]],
		[[-95,45],[-110,45],[-110,30],[-95,30]],
		[[-95,30],[-80,30],[-80,45],[-95,45]]
	]}`

	countiesTopo = `{"type":"Topology","objects":{"counties":{"type":"GeometryCollection","geometries":[
		{"type":"Polygon","arcs":[[0]],"properties":{"name":"Box"}}
	]}},"arcs":[[[-100,30],[-90,30],[-90,40],[-100,30]]]}`
)

// cityFixtures returns a CSV table of n cities and a point collection naming
// the same cities plus one extra feature with no table row.
func cityFixtures(n int) (string, string) {
	var csv strings.Builder
	csv.WriteString("city,population,density,lat,lng\n")
	var feats []string
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("City %02d", i)
		lat, lng := 30+float64(i%15), -120+float64(i)
		fmt.Fprintf(&csv, "%s,%d,%d.5,%.1f,%.1f\n", name, (i+1)*1000, i*10, lat, lng)
		feats = append(feats, fmt.Sprintf(
			`{"type":"Feature","geometry":{"type":"Point","coordinates":[%.1f,%.1f]},"properties":{"city":%q}}`,
			lng, lat, name))
	}
	feats = append(feats, `{"type":"Feature","geometry":{"type":"Point","coordinates":[-90,35]},"properties":{"city":"Nowhere"}}`)
	return csv.String(), `{"type":"FeatureCollection","features":[` + strings.Join(feats, ",") + `]}`
}

func writeSources(t *testing.T, topo string) fetcher.Sources {
	t.Helper()
	dir := t.TempDir()
	csv, fc := cityFixtures(30)
	src := fetcher.Sources{
		Cities:   filepath.Join(dir, "cities.csv"),
		Features: filepath.Join(dir, "cities.geojson"),
		Topology: filepath.Join(dir, "states.json"),
	}
	require.NoError(t, os.WriteFile(src.Cities, []byte(csv), 0o644))
	require.NoError(t, os.WriteFile(src.Features, []byte(fc), 0o644))
	require.NoError(t, os.WriteFile(src.Topology, []byte(topo), 0o644))
	return src
}

func TestRun(t *testing.T) {
	t.Parallel()
	src := writeSources(t, statesTopo)

	res, err := Run(context.Background(), DefaultOptions(src), model.AttrPopulation)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, res.RunID)
	assert.Equal(t, model.AttrPopulation, res.Attr)
	assert.Contains(t, string(res.Map), "<svg")
	assert.Contains(t, string(res.Map), `class="cities City_00"`)
	assert.Contains(t, string(res.Bar), "Top 5 Cities from Each Population Classification")
	assert.Contains(t, string(res.Bubble), "<svg")
	assert.Contains(t, string(res.Page), `src="map.svg"`)
	assert.Contains(t, string(res.Page), res.RunID.String())
	assert.Len(t, res.Breaks, 5)
}

func TestPrepare(t *testing.T) {
	t.Parallel()
	src := writeSources(t, statesTopo)

	p, err := Prepare(context.Background(), DefaultOptions(src))
	require.NoError(t, err)

	assert.Equal(t, "states", p.ObjectName)
	require.NotNil(t, p.Regions)
	assert.Len(t, p.Regions.Features, 2)
	require.NotNil(t, p.Mesh)
	assert.Equal(t, 1, p.Mesh.NumLineStrings(), "only the shared border is interior")
	assert.Equal(t, 30, p.Join.Matched)
	assert.Equal(t, 0, p.Join.Unmatched)
	assert.Len(t, p.Cities, 30)
}

func TestPrepare_FallbackObject(t *testing.T) {
	t.Parallel()
	src := writeSources(t, countiesTopo)

	p, err := Prepare(context.Background(), DefaultOptions(src))
	require.NoError(t, err)
	assert.Equal(t, "counties", p.ObjectName)
	assert.Nil(t, p.Mesh)
	assert.Len(t, p.Regions.Features, 1)

	svg, err := p.RenderMap(model.AttrDensity)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
}

func TestPrepare_LoadFailure(t *testing.T) {
	t.Parallel()
	src := writeSources(t, statesTopo)
	src.Cities = filepath.Join(t.TempDir(), "missing.csv")

	p, err := Prepare(context.Background(), DefaultOptions(src))
	require.Error(t, err)
	assert.Nil(t, p)
	assert.Contains(t, err.Error(), "fetcher: load cities")
}

func TestPrepare_EmptyCities(t *testing.T) {
	t.Parallel()
	src := writeSources(t, statesTopo)
	require.NoError(t, os.WriteFile(src.Cities, nil, 0o644))

	_, err := Prepare(context.Background(), DefaultOptions(src))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrInvalidInput))
	assert.Contains(t, err.Error(), "cities")
}

func TestFromInputs_EmptyObjects(t *testing.T) {
	t.Parallel()
	topo, err := topology.Decode(strings.NewReader(`{"type":"Topology","objects":{},"arcs":[]}`))
	require.NoError(t, err)

	_, err = FromInputs(&fetcher.Inputs{
		Cities:   []model.City{model.NewCity("A", map[string]string{"population": "1"})},
		Features: &geojson.FeatureCollection{Features: []*geojson.Feature{}},
		Topology: topo,
	}, DefaultOptions(fetcher.Sources{}))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrInvalidInput))
}

func TestValidate(t *testing.T) {
	t.Parallel()
	topo, err := topology.Decode(strings.NewReader(countiesTopo))
	require.NoError(t, err)
	noObjects, err := topology.Decode(strings.NewReader(`{"type":"Topology","arcs":[]}`))
	require.NoError(t, err)

	cities := []model.City{model.NewCity("A", map[string]string{"population": "1"})}
	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{}}

	tests := []struct {
		name    string
		in      *fetcher.Inputs
		wantErr string
	}{
		{name: "valid", in: &fetcher.Inputs{Cities: cities, Features: fc, Topology: topo}},
		{name: "nil", in: nil, wantErr: "no inputs"},
		{name: "no features member", in: &fetcher.Inputs{Cities: cities, Features: &geojson.FeatureCollection{}, Topology: topo}, wantErr: "features"},
		{name: "nil features", in: &fetcher.Inputs{Cities: cities, Topology: topo}, wantErr: "features"},
		{name: "no objects member", in: &fetcher.Inputs{Cities: cities, Features: fc, Topology: noObjects}, wantErr: "topology"},
		{name: "no cities", in: &fetcher.Inputs{Cities: []model.City{}, Features: fc, Topology: topo}, wantErr: "cities"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, eris.Is(err, ErrInvalidInput))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRender_EveryAttribute(t *testing.T) {
	t.Parallel()
	src := writeSources(t, statesTopo)
	p, err := Prepare(context.Background(), DefaultOptions(src))
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, attr := range model.Attributes {
		res, err := p.Render(attr)
		require.NoError(t, err, attr)
		assert.Contains(t, string(res.Page), attr.Title())
		assert.False(t, seen[res.RunID.String()], "run ids are unique")
		seen[res.RunID.String()] = true
	}
}
