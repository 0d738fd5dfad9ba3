// Package model defines the tabular city records and the numeric attributes
// that the map and charts can express.
package model

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Attribute names a numeric column of the city table.
type Attribute string

// Attributes copied onto joined features and available for classification.
const (
	AttrPopulation Attribute = "population"
	AttrDensity    Attribute = "density"
	AttrLat        Attribute = "lat"
	AttrLng        Attribute = "lng"
)

// Attributes lists every numeric attribute in column order.
var Attributes = []Attribute{AttrPopulation, AttrDensity, AttrLat, AttrLng}

// ErrUnknownAttribute is returned when an attribute name is not one of Attributes.
var ErrUnknownAttribute = eris.New("model: unknown attribute")

// ParseAttribute resolves a user-supplied attribute name.
func ParseAttribute(s string) (Attribute, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, a := range Attributes {
		if string(a) == name {
			return a, nil
		}
	}
	return "", eris.Wrapf(ErrUnknownAttribute, "%q", s)
}

// Title returns the display name used in chart titles and axis labels.
func (a Attribute) Title() string {
	switch a {
	case AttrPopulation:
		return "Population"
	case AttrDensity:
		return "Density"
	case AttrLat:
		return "Latitude"
	case AttrLng:
		return "Longitude"
	default:
		return string(a)
	}
}

// Value is a coerced numeric cell. Valid is false for text that does not
// start with a finite number; such values are unclassified, not zero.
type Value struct {
	Num   float64
	Valid bool
}

// Num returns a valid Value.
func Num(f float64) Value {
	return Value{Num: f, Valid: true}
}

// Unclassified is the zero Value.
var Unclassified = Value{}

// Interface returns the value as stored on feature properties: a float64 when
// valid, otherwise nil.
func (v Value) Interface() interface{} {
	if !v.Valid {
		return nil
	}
	return v.Num
}

// numericPrefix matches the longest leading decimal literal, the way
// lenient numeric parsers accept "12.5km" as 12.5.
var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseFloat coerces text to a Value using its leading numeric prefix.
// Empty, non-numeric and non-finite input yields Unclassified.
func ParseFloat(s string) Value {
	s = strings.TrimSpace(s)
	m := numericPrefix.FindString(s)
	if m == "" {
		return Unclassified
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return Unclassified
	}
	return Num(f)
}

// City is one row of the city table.
type City struct {
	Name   string
	Raw    map[string]string
	Values map[Attribute]Value
}

// Value returns the coerced value of attr, Unclassified when absent.
func (c City) Value(attr Attribute) Value {
	if c.Values == nil {
		return Unclassified
	}
	return c.Values[attr]
}

// NewCity builds a City from column text, coercing every numeric attribute.
func NewCity(name string, raw map[string]string) City {
	c := City{
		Name:   name,
		Raw:    raw,
		Values: make(map[Attribute]Value, len(Attributes)),
	}
	for _, a := range Attributes {
		c.Values[a] = ParseFloat(raw[string(a)])
	}
	return c
}
