// Package classify buckets city attribute values into the five choropleth
// color classes and selects the chart subsets derived from them.
package classify

import (
	"github.com/sells-group/citymap/internal/model"
	"github.com/sells-group/citymap/internal/scale"
)

// Class colors, lowest to highest.
const (
	ColorLowest  = "#D4B9DA"
	ColorLow     = "#C994C7"
	ColorMedium  = "#DF65B0"
	ColorHigh    = "#DD1C77"
	ColorHighest = "#980043"
)

// ColorUnclassified fills marks whose value cannot be classified.
const ColorUnclassified = "#ccc"

// Colors is the classification range ordered low to high.
var Colors = []string{ColorLowest, ColorLow, ColorMedium, ColorHigh, ColorHighest}

// DeclaredOrder is the order in which classes are visited when selecting the
// top cities per class.
var DeclaredOrder = []string{ColorHighest, ColorHigh, ColorMedium, ColorLow, ColorLowest}

// Classifier maps one attribute's values onto Colors by quantile.
type Classifier struct {
	attr     model.Attribute
	quantile *scale.Quantile[string]
}

// NewClassifier builds the quantile classification of attr over every city
// with a valid value. Unclassified values are left out of the domain.
func NewClassifier(cities []model.City, attr model.Attribute) *Classifier {
	domain := make([]float64, 0, len(cities))
	for _, c := range cities {
		if v := c.Value(attr); v.Valid {
			domain = append(domain, v.Num)
		}
	}
	return &Classifier{attr: attr, quantile: scale.NewQuantile(domain, Colors)}
}

// Attribute returns the classified attribute.
func (c *Classifier) Attribute() model.Attribute {
	return c.attr
}

// Classify returns the class color for v. ok is false when v is unclassified
// or the domain is empty.
func (c *Classifier) Classify(v model.Value) (color string, ok bool) {
	if !v.Valid {
		return "", false
	}
	return c.quantile.Scale(v.Num)
}

// Fill returns the class color for v, or ColorUnclassified.
func (c *Classifier) Fill(v model.Value) string {
	if color, ok := c.Classify(v); ok {
		return color
	}
	return ColorUnclassified
}

// Break describes one class: its color, value bounds and member count.
type Break struct {
	Color string  `json:"color" yaml:"color"`
	Min   float64 `json:"min" yaml:"min"`
	Max   float64 `json:"max" yaml:"max"`
	Count int     `json:"count" yaml:"count"`
}

// Breaks summarizes the classes in ascending order. Min and Max are the
// smallest and largest domain values that fell into the class; empty classes
// report their threshold bounds.
func (c *Classifier) Breaks() []Break {
	domain := c.quantile.Domain()
	th := c.quantile.Thresholds()
	out := make([]Break, len(Colors))
	for i, color := range Colors {
		out[i].Color = color
		if len(th) == len(Colors)-1 {
			if i > 0 {
				out[i].Min = th[i-1]
			} else {
				out[i].Min = domain[0]
			}
			if i < len(th) {
				out[i].Max = th[i]
			} else {
				out[i].Max = domain[len(domain)-1]
			}
		}
	}

	seen := make([]bool, len(Colors))
	for _, v := range domain {
		color, _ := c.quantile.Scale(v)
		i := indexOf(Colors, color)
		b := &out[i]
		if !seen[i] {
			b.Min, b.Max = v, v
			seen[i] = true
		}
		if v < b.Min {
			b.Min = v
		}
		if v > b.Max {
			b.Max = v
		}
		b.Count++
	}
	return out
}

// Thresholds returns the four quantile boundaries between classes.
func (c *Classifier) Thresholds() []float64 {
	return c.quantile.Thresholds()
}

func indexOf(xs []string, s string) int {
	for i, x := range xs {
		if x == s {
			return i
		}
	}
	return -1
}
