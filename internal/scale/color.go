package scale

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// RGB is an 8-bit color.
type RGB struct {
	R, G, B uint8
}

// ParseHex parses "#rrggbb" or "#rgb".
func ParseHex(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return RGB{}, eris.Errorf("scale: invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, eris.Wrapf(err, "scale: invalid hex color %q", s)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Hex formats the color as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ColorRamp interpolates linearly in RGB between two colors over a domain.
type ColorRamp struct {
	from, to RGB
	domain   Linear
}

// NewColorRamp maps [d0, d1] onto the colors from..to.
func NewColorRamp(d0, d1 float64, from, to string) (*ColorRamp, error) {
	a, err := ParseHex(from)
	if err != nil {
		return nil, err
	}
	b, err := ParseHex(to)
	if err != nil {
		return nil, err
	}
	return &ColorRamp{from: a, to: b, domain: NewLinear(d0, d1, 0, 1)}, nil
}

// Color returns the interpolated color for x. Values outside the domain
// extrapolate and are clamped per channel.
func (r *ColorRamp) Color(x float64) string {
	t := r.domain.Scale(x)
	return RGB{
		R: lerp(r.from.R, r.to.R, t),
		G: lerp(r.from.G, r.to.G, t),
		B: lerp(r.from.B, r.to.B, t),
	}.Hex()
}

func lerp(a, b uint8, t float64) uint8 {
	v := math.Round(float64(a) + (float64(b)-float64(a))*t)
	return uint8(math.Max(0, math.Min(255, v)))
}
