// Package geodata reads city point features and joins city attributes onto
// them by name.
package geodata

import (
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// NameKeys are the property keys searched for a feature's name, in priority order.
var NameKeys = []string{"city", "City", "NAME", "name"}

// ReadGeoJSON decodes a GeoJSON FeatureCollection. A document without a
// features member decodes with nil Features so validation can reject it;
// an empty array yields an empty, non-nil slice.
func ReadGeoJSON(r io.Reader) (*geojson.FeatureCollection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "geodata: read geojson")
	}

	var probe struct {
		Features json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, eris.Wrap(err, "geodata: decode geojson")
	}
	if len(probe.Features) == 0 || string(probe.Features) == "null" {
		return &geojson.FeatureCollection{}, nil
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrap(err, "geodata: decode feature collection")
	}
	if fc.Features == nil {
		fc.Features = []*geojson.Feature{}
	}
	return &fc, nil
}

// ReadShapefile loads a point shapefile (and its .dbf attributes) as a
// feature collection. Attribute values are kept as trimmed strings; records
// that are not points are skipped. A shapefile without a readable attribute
// table is an error, since no feature could carry a name.
func ReadShapefile(path string) (*geojson.FeatureCollection, error) {
	dbf := strings.TrimSuffix(path, filepath.Ext(path)) + ".dbf"
	if _, err := os.Stat(dbf); err != nil {
		return nil, eris.Wrapf(err, "geodata: shapefile %s has no attribute table", path)
	}

	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "geodata: open shapefile")
	}
	defer func() { _ = reader.Close() }()

	// Fields swallows the .dbf open error and reports it as no fields.
	fields := reader.Fields()
	if len(fields) == 0 {
		return nil, eris.Errorf("geodata: shapefile %s has no attribute table", path)
	}
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimRight(f.String(), "\x00")
	}

	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{}}
	var skipped int
	for reader.Next() {
		n, shape := reader.Shape()
		x, y, ok := pointXY(shape)
		if !ok {
			skipped++
			continue
		}
		props := make(map[string]interface{}, len(names))
		for i, name := range names {
			props[name] = strings.TrimSpace(reader.ReadAttribute(n, i))
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   geom.NewPointFlat(geom.XY, []float64{x, y}),
			Properties: props,
		})
	}
	if err := reader.Err(); err != nil {
		return nil, eris.Wrap(err, "geodata: read shapefile")
	}

	if skipped > 0 {
		zap.L().Debug("geodata: skipped non-point shapefile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return fc, nil
}

func pointXY(s shp.Shape) (float64, float64, bool) {
	switch p := s.(type) {
	case *shp.Point:
		return p.X, p.Y, true
	case *shp.PointZ:
		return p.X, p.Y, true
	case *shp.PointM:
		return p.X, p.Y, true
	default:
		return 0, 0, false
	}
}

// NameOf returns the feature name from the first NameKeys entry holding a
// non-empty value. Numbers are rendered in their shortest decimal form.
func NameOf(props map[string]interface{}) (string, bool) {
	for _, key := range NameKeys {
		v, ok := props[key]
		if !ok || !truthy(v) {
			continue
		}
		return keyString(v), true
	}
	return "", false
}

func truthy(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case float64:
		return x != 0 && !math.IsNaN(x)
	case bool:
		return x
	default:
		return true
	}
}

func keyString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// PointOf returns the lon/lat of a point feature.
func PointOf(f *geojson.Feature) (lon, lat float64, ok bool) {
	if f == nil || f.Geometry == nil {
		return 0, 0, false
	}
	p, isPoint := f.Geometry.(*geom.Point)
	if !isPoint || p.Empty() {
		return 0, 0, false
	}
	c := p.FlatCoords()
	if len(c) < 2 {
		return 0, 0, false
	}
	return c[0], c[1], true
}
