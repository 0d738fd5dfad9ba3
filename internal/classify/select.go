package classify

import (
	"sort"

	"github.com/sells-group/citymap/internal/model"
)

// PerClass is the number of cities the bar chart keeps from each class.
const PerClass = 5

// TopPerClass returns up to n of the highest-valued cities from each class,
// visiting classes in DeclaredOrder, then sorted ascending by attr for
// left-to-right drawing. Classes with fewer than n members contribute what
// they have; unclassified cities are never selected.
func TopPerClass(cities []model.City, c *Classifier, attr model.Attribute, n int) []model.City {
	sorted := SortDesc(cities, attr)

	out := make([]model.City, 0, n*len(DeclaredOrder))
	for _, color := range DeclaredOrder {
		taken := 0
		for _, city := range sorted {
			if taken >= n {
				break
			}
			if got, ok := c.Classify(city.Value(attr)); ok && got == color {
				out = append(out, city)
				taken++
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Value(attr).Num < out[j].Value(attr).Num
	})
	return out
}

// TopN returns the n highest-valued cities, descending. Cities without a
// valid value are skipped.
func TopN(cities []model.City, attr model.Attribute, n int) []model.City {
	sorted := SortDesc(cities, attr)
	out := make([]model.City, 0, n)
	for _, city := range sorted {
		if len(out) >= n {
			break
		}
		if city.Value(attr).Valid {
			out = append(out, city)
		}
	}
	return out
}

// SortDesc returns a copy of cities ordered by attr descending, unclassified
// values last. Ties keep input order.
func SortDesc(cities []model.City, attr model.Attribute) []model.City {
	sorted := append([]model.City(nil), cities...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Value(attr), sorted[j].Value(attr)
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Num > b.Num
	})
	return sorted
}
