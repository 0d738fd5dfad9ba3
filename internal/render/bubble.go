package render

import (
	"fmt"
	"io"
	"math"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/citymap/internal/classify"
	"github.com/sells-group/citymap/internal/model"
	"github.com/sells-group/citymap/internal/scale"
)

// BubbleConfig lays out the bubble chart.
type BubbleConfig struct {
	Width        int
	Height       int
	Count        int        // number of cities shown
	XRange       [2]float64 // centers of the first and last bubble
	YRange       [2]float64 // pixel y of zero and of the maximum
	RadiusFactor float64    // area per unit of value
	RampFrom     string
	RampTo       string
}

// DefaultBubbleConfig is the standard 900x500 bubble layout.
func DefaultBubbleConfig() BubbleConfig {
	return BubbleConfig{
		Width:        900,
		Height:       500,
		Count:        5,
		XRange:       [2]float64{90, 790},
		YRange:       [2]float64{450, 50},
		RadiusFactor: 0.0012,
		RampFrom:     "#FDBE85",
		RampTo:       "#D94701",
	}
}

// Bubble is the layout of one circle.
type Bubble struct {
	City   string
	Value  float64
	CX, CY float64
	R      float64
	Fill   string
}

// BubbleChart draws the highest-valued cities as circles sized by value.
type BubbleChart struct {
	cfg     BubbleConfig
	printer *message.Printer
}

// NewBubbleChart returns a bubble chart renderer.
func NewBubbleChart(cfg BubbleConfig) *BubbleChart {
	if cfg.Count <= 0 {
		cfg.Count = 5
	}
	return &BubbleChart{cfg: cfg, printer: message.NewPrinter(language.English)}
}

// Bubbles lays out the top cities by attr, largest first. The area of each
// circle is proportional to its value; negative values get no radius.
func (b *BubbleChart) Bubbles(cities []model.City, attr model.Attribute) ([]Bubble, error) {
	bubbles, _, err := b.layout(cities, attr)
	return bubbles, err
}

func (b *BubbleChart) layout(cities []model.City, attr model.Attribute) ([]Bubble, scale.Linear, error) {
	top := classify.TopN(cities, attr, b.cfg.Count)

	minV, maxV := 0.0, 0.0
	for i, c := range top {
		v := c.Value(attr).Num
		if i == 0 || v < minV {
			minV = v
		}
		if i == 0 || v > maxV {
			maxV = v
		}
	}

	x := scale.NewLinear(0, float64(len(top)-1), b.cfg.XRange[0], b.cfg.XRange[1])
	y := scale.NewLinear(0, maxV, b.cfg.YRange[0], b.cfg.YRange[1])
	ramp, err := scale.NewColorRamp(minV, maxV, b.cfg.RampFrom, b.cfg.RampTo)
	if err != nil {
		return nil, y, eris.Wrap(err, "render: bubble color ramp")
	}

	bubbles := make([]Bubble, len(top))
	for i, c := range top {
		v := c.Value(attr).Num
		bubbles[i] = Bubble{
			City:  c.Name,
			Value: v,
			CX:    x.Scale(float64(i)),
			CY:    y.Scale(v),
			R:     math.Sqrt(math.Max(0, v*b.cfg.RadiusFactor/math.Pi)),
			Fill:  ramp.Color(v),
		}
	}
	return bubbles, y, nil
}

// Tooltip formats a value with thousands separators, e.g. "8,336,817".
func (b *BubbleChart) Tooltip(city string, v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return b.printer.Sprintf("%s: %d", city, int64(v))
	}
	return b.printer.Sprintf("%s: %.2f", city, v)
}

// Render writes the bubble chart as an SVG document.
func (b *BubbleChart) Render(w io.Writer, cities []model.City, attr model.Attribute) error {
	bubbles, y, err := b.layout(cities, attr)
	if err != nil {
		return err
	}

	canvas, ew := newCanvas(w)
	width, height := b.cfg.Width, b.cfg.Height
	frameX, frameY := 50, px(b.cfg.YRange[1])
	frameH := px(b.cfg.YRange[0] - b.cfg.YRange[1])

	canvas.Start(width, height, class("container"), `style="background-color: rgba(0,0,0,0.2)"`)
	canvas.Rect(frameX, frameY, width-2*frameX, frameH, class("innerRect"), `fill="#FFFFFF"`)

	for _, bub := range bubbles {
		canvas.Group(class("cityCircles"))
		canvas.Title(b.Tooltip(bub.City, bub.Value))
		canvas.Circle(px(bub.CX), px(bub.CY), px(bub.R),
			class("circles", classToken(bub.City)),
			kv("fill", bub.Fill), `stroke="#000"`)
		canvas.Gend()
	}

	canvas.Gtransform(fmt.Sprintf("translate(%d,0)", frameX))
	canvas.Group(class("axis"), `font-size="10"`, kv("font-family", fontFamily), `text-anchor="end"`)
	canvas.Path(fmt.Sprintf("M-6,%dH0V%dH-6", px(b.cfg.YRange[0]), px(b.cfg.YRange[1])),
		class("domain"), `stroke="#333"`, `fill="none"`)
	for _, t := range y.Ticks(8) {
		ty := px(y.Scale(t))
		canvas.Line(-6, ty, 0, ty, `stroke="#333"`)
		canvas.Text(-9, ty, classify.FormatTick(t), `dy="0.32em"`, `fill="#333"`)
	}
	canvas.Gend()
	canvas.Gend()

	canvas.Text(width/2, 40, fmt.Sprintf("Top %d US Cities by %s", len(bubbles), attr.Title()),
		class("title"), `text-anchor="middle"`, kv("font-family", fontFamily))

	for _, bub := range bubbles {
		cx, cy := px(bub.CX), px(bub.CY)
		canvas.Text(cx, cy-8, bub.City, class("labels"), `text-anchor="middle"`, `fill="#222"`,
			kv("font-family", fontFamily))
		canvas.Text(cx, cy+12, classify.FormatLabel(bub.Value), class("labels"), `text-anchor="middle"`,
			`fill="#222"`, kv("font-family", fontFamily))
	}

	canvas.End()
	if ew.err != nil {
		return eris.Wrap(ew.err, "render: write bubble chart")
	}
	return nil
}
