package geodata

import (
	"strconv"
	"strings"

	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/citymap/internal/model"
)

// JoinStats counts the outcome of a join.
type JoinStats struct {
	Matched        int
	Unmatched      int
	DuplicateNames int
}

// Index maps feature names to the first feature carrying that name.
type Index struct {
	byName     map[string]*geojson.Feature
	duplicates int
}

// NewIndex indexes fc by NameOf. Later features with an already-seen name
// are ignored.
func NewIndex(fc *geojson.FeatureCollection) *Index {
	idx := &Index{byName: make(map[string]*geojson.Feature)}
	if fc == nil {
		return idx
	}
	for _, f := range fc.Features {
		if f == nil {
			continue
		}
		name, ok := NameOf(f.Properties)
		if !ok {
			continue
		}
		if _, seen := idx.byName[name]; seen {
			idx.duplicates++
			continue
		}
		idx.byName[name] = f
	}
	return idx
}

// Lookup finds the feature named name. A name that reads as a number also
// matches a numeric feature name of the same value.
func (idx *Index) Lookup(name string) (*geojson.Feature, bool) {
	if f, ok := idx.byName[name]; ok {
		return f, true
	}
	if n, err := strconv.ParseFloat(strings.TrimSpace(name), 64); err == nil {
		if f, ok := idx.byName[strconv.FormatFloat(n, 'f', -1, 64)]; ok {
			return f, true
		}
	}
	return nil, false
}

// Join copies every numeric attribute of each city onto the feature with the
// same name: a float64 for valid values, nil for unclassified ones. Cities
// without a matching feature are skipped and features without a matching city
// are left untouched. Join is idempotent.
func Join(fc *geojson.FeatureCollection, cities []model.City) JoinStats {
	idx := NewIndex(fc)
	stats := JoinStats{DuplicateNames: idx.duplicates}

	for _, c := range cities {
		f, ok := idx.Lookup(c.Name)
		if !ok {
			stats.Unmatched++
			continue
		}
		if f.Properties == nil {
			f.Properties = make(map[string]interface{}, len(model.Attributes))
		}
		for _, attr := range model.Attributes {
			f.Properties[string(attr)] = c.Value(attr).Interface()
		}
		stats.Matched++
	}

	zap.L().Debug("geodata: join complete",
		zap.Int("matched", stats.Matched),
		zap.Int("unmatched", stats.Unmatched),
		zap.Int("duplicate_names", stats.DuplicateNames),
	)
	return stats
}

// FeatureValue reads a joined attribute from a feature. Features never joined
// and joined-but-unclassified values both return model.Unclassified.
func FeatureValue(f *geojson.Feature, attr model.Attribute) model.Value {
	if f == nil || f.Properties == nil {
		return model.Unclassified
	}
	switch v := f.Properties[string(attr)].(type) {
	case float64:
		return model.Num(v)
	case int:
		return model.Num(float64(v))
	default:
		return model.Unclassified
	}
}
