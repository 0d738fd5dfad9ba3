//go:build !integration

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/citymap/internal/config"
)

const testTopology = `{"type":"Topology","objects":{"states":{"type":"GeometryCollection","geometries":[
	{"type":"Polygon","arcs":[[0,1]],"properties":{"name":"West"}},
	{"type":"Polygon","arcs":[[2,-1]],"properties":{"name":"East"}}
]}},"arcs":[
	[[-95,30],[-95,45]],
	[[-95,45],[-110,45],[-110,30],[-95,30]],
	[[-95,30],[-80,30],[-80,45],[-95,45]]
]}`

// testConfig writes a small data set to a temp dir and returns a config
// pointing at it with the standard layout.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	var csv strings.Builder
	csv.WriteString("city,population,density,lat,lng\n")
	var feats []string
	for i := 0; i < 15; i++ {
		name := fmt.Sprintf("Place %d", i)
		lng, lat := -120+float64(i)*2.5, 33+float64(i%6)
		fmt.Fprintf(&csv, "%s,%d,%d,%g,%g\n", name, (i+1)*2500, 50+i*7, lat, lng)
		feats = append(feats, fmt.Sprintf(
			`{"type":"Feature","geometry":{"type":"Point","coordinates":[%g,%g]},"properties":{"city":%q}}`,
			lng, lat, name))
	}

	c := &config.Config{}
	c.Data = config.DataConfig{
		Cities:   filepath.Join(dir, "cities.csv"),
		Features: filepath.Join(dir, "cities.geojson"),
		Topology: filepath.Join(dir, "states.json"),
	}
	require.NoError(t, os.WriteFile(c.Data.Cities, []byte(csv.String()), 0o644))
	require.NoError(t, os.WriteFile(c.Data.Features,
		[]byte(`{"type":"FeatureCollection","features":[`+strings.Join(feats, ",")+`]}`), 0o644))
	require.NoError(t, os.WriteFile(c.Data.Topology, []byte(testTopology), 0o644))

	c.Map = config.MapConfig{Width: 960, Height: 500, Scale: 800, GraticuleStep: 5, PointRadius: 6}
	c.Chart = config.ChartConfig{Width: 960, Height: 500, LeftPadding: 80, RightPadding: 20, TopBottomPadding: 80, Gutter: 2}
	c.Bubble = config.BubbleConfig{
		Width: 900, Height: 500, Count: 5,
		XMin: 90, XMax: 790, YBottom: 450, YTop: 50,
		RadiusFactor: 0.0012, RampFrom: "#FDBE85", RampTo: "#D94701",
	}
	c.Server = config.ServerConfig{
		Port:            8080,
		CacheSize:       16,
		CacheTTL:        time.Minute,
		AllowedOrigins:  []string{"*"},
		ShutdownTimeout: 5 * time.Second,
	}
	c.Fetch = config.FetchConfig{UserAgent: "citymap-test", Timeout: 5 * time.Second}
	c.Log = config.LogConfig{Level: "info", Format: "json"}
	return c
}
