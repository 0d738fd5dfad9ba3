// Package export writes joined features, city tables and class breaks to
// files for use outside the renderer.
package export

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"github.com/twpayne/go-geom/encoding/geojson"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/citymap/internal/classify"
	"github.com/sells-group/citymap/internal/model"
)

// WriteGeoJSON writes fc as an indented GeoJSON FeatureCollection.
func WriteGeoJSON(w io.Writer, fc *geojson.FeatureCollection) error {
	if fc == nil {
		fc = &geojson.FeatureCollection{Features: []*geojson.Feature{}}
	}
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return eris.Wrap(err, "export: marshal geojson")
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return eris.Wrap(err, "export: write geojson")
	}
	return nil
}

// Breaks is the serialized class summary of one attribute.
type Breaks struct {
	Attribute  model.Attribute  `json:"attribute" yaml:"attribute"`
	Title      string           `json:"title" yaml:"title"`
	Cities     int              `json:"cities" yaml:"cities"`
	Thresholds []float64        `json:"thresholds" yaml:"thresholds"`
	Classes    []classify.Break `json:"classes" yaml:"classes"`
}

// NewBreaks summarizes c over cities.
func NewBreaks(cities []model.City, c *classify.Classifier) Breaks {
	return Breaks{
		Attribute:  c.Attribute(),
		Title:      c.Attribute().Title(),
		Cities:     len(cities),
		Thresholds: c.Thresholds(),
		Classes:    c.Breaks(),
	}
}

// WriteBreaksYAML writes b as a YAML document.
func WriteBreaksYAML(w io.Writer, b Breaks) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(b); err != nil {
		return eris.Wrap(err, "export: write breaks yaml")
	}
	if err := enc.Close(); err != nil {
		return eris.Wrap(err, "export: close yaml encoder")
	}
	return nil
}

// WriteBreaksJSON writes b as indented JSON.
func WriteBreaksJSON(w io.Writer, b Breaks) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return eris.Wrap(err, "export: write breaks json")
	}
	return nil
}

// WriteXLSX writes a workbook with every city on a "cities" sheet and, for
// each attribute, a sheet of the top cities from each class.
func WriteXLSX(w io.Writer, cities []model.City) error {
	f := xlsx.NewFile()

	sheet, err := f.AddSheet("cities")
	if err != nil {
		return eris.Wrap(err, "export: add cities sheet")
	}
	header := sheet.AddRow()
	header.AddCell().SetString(model.NameColumn)
	for _, a := range model.Attributes {
		header.AddCell().SetString(string(a))
	}
	for _, c := range cities {
		row := sheet.AddRow()
		row.AddCell().SetString(c.Name)
		for _, a := range model.Attributes {
			setValue(row.AddCell(), c.Value(a))
		}
	}

	for _, a := range model.Attributes {
		if err := addTopSheet(f, cities, a); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write xlsx")
	}
	return nil
}

func addTopSheet(f *xlsx.File, cities []model.City, attr model.Attribute) error {
	sheet, err := f.AddSheet("top " + string(attr))
	if err != nil {
		return eris.Wrapf(err, "export: add top sheet for %s", attr)
	}
	header := sheet.AddRow()
	for _, h := range []string{model.NameColumn, string(attr), "class", "label"} {
		header.AddCell().SetString(h)
	}

	c := classify.NewClassifier(cities, attr)
	for _, city := range classify.TopPerClass(cities, c, attr, classify.PerClass) {
		v := city.Value(attr)
		row := sheet.AddRow()
		row.AddCell().SetString(city.Name)
		setValue(row.AddCell(), v)
		row.AddCell().SetString(c.Fill(v))
		row.AddCell().SetString(classify.FormatLabel(v.Num))
	}
	return nil
}

// setValue writes a number, leaving unclassified values blank.
func setValue(cell *xlsx.Cell, v model.Value) {
	if v.Valid {
		cell.SetFloat(v.Num)
	}
}
