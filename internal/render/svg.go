// Package render draws the choropleth map and the bar and bubble charts as
// SVG documents, and composes them into an HTML page.
package render

import (
	"fmt"
	"html"
	"io"
	"math"
	"regexp"

	svg "github.com/ajstarks/svgo"
)

const fontFamily = "Arial, sans-serif"

// errWriter remembers the first write error so drawing code can stay linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}

func newCanvas(w io.Writer) (*svg.SVG, *errWriter) {
	ew := &errWriter{w: w}
	return svg.New(ew), ew
}

// px rounds a layout coordinate to whole pixels.
func px(v float64) int {
	return int(math.Round(v))
}

func kv(name, value string) string {
	return fmt.Sprintf(`%s="%s"`, name, html.EscapeString(value))
}

func class(names ...string) string {
	s := ""
	for i, n := range names {
		if i > 0 {
			s += " "
		}
		s += n
	}
	return kv("class", s)
}

var whitespace = regexp.MustCompile(`\s+`)

// classToken turns a city name into a single class token.
func classToken(name string) string {
	if name == "" {
		return "unknown"
	}
	return whitespace.ReplaceAllString(name, "_")
}
