package render

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/citymap/internal/classify"
	"github.com/sells-group/citymap/internal/geodata"
	"github.com/sells-group/citymap/internal/model"
	"github.com/sells-group/citymap/internal/projection"
)

// MapConfig sizes the map document.
type MapConfig struct {
	Width         int
	Height        int
	Scale         float64 // AlbersUSA scale
	GraticuleStep float64 // degrees
	PointRadius   float64
}

// DefaultMapConfig is the standard 960x500 map layout.
func DefaultMapConfig() MapConfig {
	return MapConfig{Width: 960, Height: 500, Scale: 800, GraticuleStep: 5, PointRadius: 6}
}

// MapInput is everything drawn on one map.
type MapInput struct {
	Regions    *geojson.FeatureCollection
	Mesh       *geom.MultiLineString // interior boundaries, optional
	Cities     *geojson.FeatureCollection
	Classifier *classify.Classifier
	Attr       model.Attribute
}

// MapPoint is one projected city mark.
type MapPoint struct {
	Name  string
	X, Y  float64
	Fill  string
	Value model.Value
}

// MapRenderer draws the choropleth point map.
type MapRenderer struct {
	cfg  MapConfig
	proj projection.Projection
}

// NewMapRenderer returns a renderer for cfg. A nil proj uses AlbersUSA
// centered on the canvas.
func NewMapRenderer(cfg MapConfig, proj projection.Projection) *MapRenderer {
	if proj == nil {
		proj = projection.NewAlbersUSA(cfg.Scale, float64(cfg.Width)/2, float64(cfg.Height)/2)
	}
	return &MapRenderer{cfg: cfg, proj: proj}
}

// PointLayer projects every point feature. Features without point geometry
// or whose projection is not visible are left out; the fill of the rest is
// the class color of attr or classify.ColorUnclassified.
func (m *MapRenderer) PointLayer(fc *geojson.FeatureCollection, c *classify.Classifier, attr model.Attribute) []MapPoint {
	if fc == nil {
		return nil
	}
	points := make([]MapPoint, 0, len(fc.Features))
	for _, f := range fc.Features {
		lon, lat, ok := geodata.PointOf(f)
		if !ok {
			continue
		}
		x, y, ok := m.proj.Project(lon, lat)
		if !ok {
			continue
		}
		v := geodata.FeatureValue(f, attr)
		fill := classify.ColorUnclassified
		if c != nil {
			fill = c.Fill(v)
		}
		points = append(points, MapPoint{
			Name:  markName(f),
			X:     x,
			Y:     y,
			Fill:  fill,
			Value: v,
		})
	}
	return points
}

// markName prefers the table-style name keys used for the class attribute.
func markName(f *geojson.Feature) string {
	for _, key := range []string{"city", "City"} {
		if s, ok := f.Properties[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// Render writes the map as an SVG document. Layers are drawn back to front:
// graticule background, graticule lines, regions, interior mesh, points.
func (m *MapRenderer) Render(w io.Writer, in MapInput) error {
	canvas, ew := newCanvas(w)
	canvas.Start(m.cfg.Width, m.cfg.Height, class("map"))

	path := projection.NewPath(m.proj)
	grat := projection.NewGraticule(m.cfg.GraticuleStep)

	if ex, ok := m.proj.(interface{ Extents() []projection.Extent }); ok {
		for _, e := range ex.Extents() {
			canvas.Path(projection.RectPath(e), class("gratBackground"))
		}
	} else if d := path.Ring(grat.Outline()); d != "" {
		canvas.Path(d, class("gratBackground"))
	}

	for _, line := range grat.Lines() {
		if d := path.Line(line); d != "" {
			canvas.Path(d, class("gratLines"))
		}
	}

	if in.Regions != nil {
		for _, f := range in.Regions.Features {
			if f == nil || f.Geometry == nil {
				continue
			}
			if d := path.Geometry(f.Geometry); d != "" {
				canvas.Path(d, class("region"))
			}
		}
	}

	if in.Mesh != nil {
		if d := path.Geometry(in.Mesh); d != "" {
			canvas.Path(d, class("mesh"), `fill="none"`)
		}
	}

	for _, p := range m.PointLayer(in.Cities, in.Classifier, in.Attr) {
		canvas.Circle(px(p.X), px(p.Y), px(m.cfg.PointRadius),
			class("cities", classToken(p.Name)),
			kv("fill", p.Fill),
			`stroke="#fff"`, `stroke-width="1.5"`, `opacity="0.9"`)
	}

	canvas.End()
	if ew.err != nil {
		return eris.Wrap(ew.err, "render: write map")
	}
	return nil
}
