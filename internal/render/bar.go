package render

import (
	"fmt"
	"io"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/rotisserie/eris"

	"github.com/sells-group/citymap/internal/classify"
	"github.com/sells-group/citymap/internal/model"
	"github.com/sells-group/citymap/internal/scale"
)

// ChartConfig lays out the bar chart.
type ChartConfig struct {
	Width            int
	Height           int
	LeftPadding      float64
	RightPadding     float64
	TopBottomPadding float64
	Gutter           float64 // horizontal gap between bars
}

// DefaultChartConfig is the standard 960x500 chart layout.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:            960,
		Height:           500,
		LeftPadding:      80,
		RightPadding:     20,
		TopBottomPadding: 80,
		Gutter:           2,
	}
}

// Bar is the layout of one bar and its labels.
type Bar struct {
	City   string
	Value  float64
	X, Y   float64
	Width  float64
	Height float64
	Fill   string
	LabelX float64 // center of the bar
	LabelY float64 // baseline of the value label
}

// BarChart draws the top cities of each class as vertical bars.
type BarChart struct {
	cfg ChartConfig
}

// NewBarChart returns a bar chart renderer.
func NewBarChart(cfg ChartConfig) *BarChart {
	return &BarChart{cfg: cfg}
}

func (b *BarChart) inner() (w, h float64) {
	return float64(b.cfg.Width) - b.cfg.LeftPadding - b.cfg.RightPadding,
		float64(b.cfg.Height) - 2*b.cfg.TopBottomPadding
}

// Bars selects classify.PerClass cities from every class and lays them out
// left to right in ascending order.
func (b *BarChart) Bars(cities []model.City, c *classify.Classifier, attr model.Attribute) []Bar {
	bars, _ := b.layout(cities, c, attr)
	return bars
}

// layout returns the bars and the value scale, linear from [0, max] onto the
// inner height.
func (b *BarChart) layout(cities []model.City, c *classify.Classifier, attr model.Attribute) ([]Bar, scale.Linear) {
	innerW, innerH := b.inner()
	top := classify.TopPerClass(cities, c, attr, classify.PerClass)

	maxV := 0.0
	for i, city := range top {
		if v := city.Value(attr).Num; i == 0 || v > maxV {
			maxV = v
		}
	}
	y := scale.NewLinear(0, maxV, innerH, 0)
	if len(top) == 0 {
		return nil, y
	}
	frac := innerW / float64(len(top))

	bars := make([]Bar, len(top))
	for i, city := range top {
		v := city.Value(attr)
		yv := y.Scale(v.Num)
		bars[i] = Bar{
			City:   city.Name,
			Value:  v.Num,
			X:      float64(i)*frac + b.cfg.LeftPadding,
			Y:      yv + b.cfg.TopBottomPadding,
			Width:  frac - b.cfg.Gutter,
			Height: innerH - yv,
			Fill:   c.Fill(v),
			LabelX: float64(i)*frac + (frac-1)/2 + b.cfg.LeftPadding,
			LabelY: yv + b.cfg.TopBottomPadding - 5,
		}
	}
	return bars, y
}

// Render writes the bar chart as an SVG document.
func (b *BarChart) Render(w io.Writer, cities []model.City, c *classify.Classifier, attr model.Attribute) error {
	canvas, ew := newCanvas(w)
	width, height := b.cfg.Width, b.cfg.Height
	innerW, innerH := b.inner()
	left, top := b.cfg.LeftPadding, b.cfg.TopBottomPadding

	canvas.Start(width, height, class("chart"))
	canvas.Rect(px(left), px(top), px(innerW), px(innerH), class("chartBackground"))

	bars, y := b.layout(cities, c, attr)
	for _, bar := range bars {
		token := classToken(bar.City)
		canvas.Rect(px(bar.X), px(bar.Y), px(bar.Width), px(bar.Height),
			class("bars", token), kv("fill", bar.Fill),
			`stroke="#fff"`, `stroke-width="1"`)
		canvas.Text(px(bar.LabelX), px(bar.LabelY), classify.FormatLabel(bar.Value),
			class("numbers", token), `text-anchor="middle"`,
			`font-size="10px"`, `fill="#333"`, kv("font-family", fontFamily))
	}

	labelY := px(innerH + top + 20)
	for _, bar := range bars {
		x := px(bar.LabelX)
		canvas.Text(x, labelY, bar.City,
			class("city-labels"), `text-anchor="end"`,
			`font-size="9px"`, `fill="#333"`, kv("font-family", fontFamily),
			kv("transform", fmt.Sprintf("rotate(-45,%d,%d)", x, labelY)))
	}

	b.axis(canvas, y)

	canvas.Text(-height/2, 15, attr.Title(),
		`transform="rotate(-90)"`, `dy="1em"`, `text-anchor="middle"`,
		kv("font-family", fontFamily), `font-size="12px"`, `fill="#333"`)

	canvas.Text(width/2, 20, fmt.Sprintf("Top %d Cities from Each %s Classification", classify.PerClass, attr.Title()),
		class("chartTitle"), `text-anchor="middle"`, kv("font-family", fontFamily),
		`font-size="18px"`, `font-weight="bold"`, `fill="#333"`)
	canvas.Text(width/2, 45,
		fmt.Sprintf("Showing the %d largest cities from each of the %d %s classifications",
			classify.PerClass, len(classify.Colors), strings.ToLower(attr.Title())),
		`text-anchor="middle"`, kv("font-family", fontFamily),
		`font-size="13px"`, `fill="#666"`)

	canvas.End()
	if ew.err != nil {
		return eris.Wrap(ew.err, "render: write bar chart")
	}
	return nil
}

// axis draws the left value axis with ten nice ticks.
func (b *BarChart) axis(canvas *svg.SVG, y scale.Linear) {
	_, innerH := b.inner()
	canvas.Gtransform(fmt.Sprintf("translate(%d,%d)", px(b.cfg.LeftPadding), px(b.cfg.TopBottomPadding)))
	canvas.Group(class("axis"), `font-size="10"`, kv("font-family", fontFamily), `text-anchor="end"`)
	canvas.Path(fmt.Sprintf("M-6,%dH0V0H-6", px(innerH)), class("domain"), `stroke="#333"`, `fill="none"`)
	for _, t := range y.Ticks(10) {
		ty := px(y.Scale(t))
		canvas.Line(-6, ty, 0, ty, `stroke="#333"`)
		canvas.Text(-9, ty, classify.FormatTick(t), `dy="0.32em"`, `fill="#333"`)
	}
	canvas.Gend()
	canvas.Gend()
}
