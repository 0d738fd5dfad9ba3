package classify

import (
	"math"
	"strconv"
)

// FormatLabel abbreviates a value for a mark label: millions with one decimal
// ("2.5M"), thousands rounded ("2K"), smaller values as-is.
func FormatLabel(v float64) string {
	switch {
	case v >= 1e6:
		return strconv.FormatFloat(roundHalfUp(v/1e6, 1), 'f', 1, 64) + "M"
	case v >= 1e3:
		return strconv.FormatFloat(roundHalfUp(v/1e3, 0), 'f', 0, 64) + "K"
	default:
		return formatNumber(v)
	}
}

// FormatTick formats an axis tick without rounding: 2500000 is "2.5M" and
// 1500 is "1.5K".
func FormatTick(v float64) string {
	switch {
	case v >= 1e6:
		return formatNumber(v/1e6) + "M"
	case v >= 1e3:
		return formatNumber(v/1e3) + "K"
	default:
		return formatNumber(v)
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func roundHalfUp(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Floor(v*p+0.5) / p
}
