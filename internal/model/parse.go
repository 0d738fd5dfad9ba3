package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// NameColumn is the CSV column holding the join key.
const NameColumn = "city"

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = eris.New("model: missing column")

// ParseCities converts a CSV header and its data rows into cities.
// Header names are matched case-insensitively after trimming; short rows
// leave the missing cells empty.
func ParseCities(header []string, rows [][]string) ([]City, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	if _, ok := idx[NameColumn]; !ok {
		return nil, eris.Wrapf(ErrMissingColumn, "%q", NameColumn)
	}

	cities := make([]City, 0, len(rows))
	for _, row := range rows {
		raw := make(map[string]string, len(idx))
		for key, i := range idx {
			if i < len(row) {
				raw[key] = row[i]
			}
		}
		cities = append(cities, NewCity(raw[NameColumn], raw))
	}
	return cities, nil
}
