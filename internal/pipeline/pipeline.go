// Package pipeline ties loading, validation, topology decoding, joining,
// classification and rendering together.
package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/citymap/internal/classify"
	"github.com/sells-group/citymap/internal/fetcher"
	"github.com/sells-group/citymap/internal/geodata"
	"github.com/sells-group/citymap/internal/model"
	"github.com/sells-group/citymap/internal/render"
	"github.com/sells-group/citymap/internal/topology"
)

// RegionObject is the topology object drawn as the map background.
const RegionObject = "states"

// Options configures a pipeline run.
type Options struct {
	Sources fetcher.Sources
	Fetch   fetcher.Options
	Map     render.MapConfig
	Chart   render.ChartConfig
	Bubble  render.BubbleConfig
}

// DefaultOptions returns the standard layout for the given sources.
func DefaultOptions(src fetcher.Sources) Options {
	return Options{
		Sources: src,
		Map:     render.DefaultMapConfig(),
		Chart:   render.DefaultChartConfig(),
		Bubble:  render.DefaultBubbleConfig(),
	}
}

// Prepared holds joined data ready to be rendered for any attribute. It is
// read-only after Prepare and safe for concurrent renders.
type Prepared struct {
	Cities     []model.City
	Features   *geojson.FeatureCollection // city points with joined attributes
	Regions    *geojson.FeatureCollection
	Mesh       *geom.MultiLineString // nil unless the topology has RegionObject
	ObjectName string
	Join       geodata.JoinStats

	mapR   *render.MapRenderer
	bar    *render.BarChart
	bubble *render.BubbleChart
	log    *zap.Logger
}

// Result is one rendering of every artifact for an attribute.
type Result struct {
	RunID  uuid.UUID
	Attr   model.Attribute
	Map    []byte
	Bar    []byte
	Bubble []byte
	Page   []byte
	Breaks []classify.Break
}

// Run loads, prepares and renders attr in one pass.
func Run(ctx context.Context, opts Options, attr model.Attribute) (*Result, error) {
	p, err := Prepare(ctx, opts)
	if err != nil {
		return nil, err
	}
	return p.Render(attr)
}

// Prepare loads every source and builds the joined data. Any load or
// validation failure aborts before anything is rendered.
func Prepare(ctx context.Context, opts Options) (*Prepared, error) {
	log := zap.L().With(zap.String("component", "pipeline"))

	var in *fetcher.Inputs
	err := phase(log, "load", func() error {
		var loadErr error
		in, loadErr = fetcher.NewLoader(opts.Fetch).LoadAll(ctx, opts.Sources)
		return loadErr
	})
	if err != nil {
		return nil, err
	}
	return FromInputs(in, opts)
}

// FromInputs validates already loaded documents, decodes the region object
// and joins the city table onto the point features in place.
func FromInputs(in *fetcher.Inputs, opts Options) (*Prepared, error) {
	log := zap.L().With(zap.String("component", "pipeline"))

	if err := Validate(in); err != nil {
		log.Error("input validation failed", zap.Error(err))
		return nil, err
	}

	p := &Prepared{
		Cities:   in.Cities,
		Features: in.Features,
		mapR:     render.NewMapRenderer(opts.Map, nil),
		bar:      render.NewBarChart(opts.Chart),
		bubble:   render.NewBubbleChart(opts.Bubble),
		log:      log,
	}

	err := phase(log, "topology", func() error {
		name, obj, fallback, err := in.Topology.SelectObject(RegionObject)
		if err != nil {
			return eris.Wrapf(ErrInvalidInput, "topology: %v", err)
		}
		if fallback {
			log.Warn("region object not found, using first object",
				zap.String("wanted", RegionObject),
				zap.String("using", name),
			)
		}
		p.ObjectName = name

		regions, err := in.Topology.Feature(obj)
		if err != nil {
			return eris.Wrapf(err, "pipeline: decode topology object %q", name)
		}
		p.Regions = regions

		if !fallback {
			mesh, err := in.Topology.Mesh(obj, topology.Interior)
			if err != nil {
				return eris.Wrapf(err, "pipeline: mesh topology object %q", name)
			}
			p.Mesh = mesh
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = phase(log, "join", func() error {
		p.Join = geodata.Join(p.Features, p.Cities)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return p, nil
}

// phase runs fn and logs its duration and outcome.
func phase(log *zap.Logger, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	fields := []zap.Field{
		zap.String("phase", name),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	}
	if err != nil {
		log.Error("phase failed", append(fields, zap.Error(err))...)
		return err
	}
	log.Debug("phase complete", fields...)
	return nil
}

// Classifier returns the classification of attr over every city.
func (p *Prepared) Classifier(attr model.Attribute) *classify.Classifier {
	return classify.NewClassifier(p.Cities, attr)
}

// MapInput assembles the map layers for attr.
func (p *Prepared) MapInput(attr model.Attribute) render.MapInput {
	return render.MapInput{
		Regions:    p.Regions,
		Mesh:       p.Mesh,
		Cities:     p.Features,
		Classifier: p.Classifier(attr),
		Attr:       attr,
	}
}

// RenderMap renders the map SVG for attr.
func (p *Prepared) RenderMap(attr model.Attribute) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.mapR.Render(&buf, p.MapInput(attr)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderBar renders the bar chart SVG for attr.
func (p *Prepared) RenderBar(attr model.Attribute) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.bar.Render(&buf, p.Cities, p.Classifier(attr), attr); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderBubble renders the bubble chart SVG for attr.
func (p *Prepared) RenderBubble(attr model.Attribute) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.bubble.Render(&buf, p.Cities, attr); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Render draws every artifact for attr. The page refers to the SVGs by
// their file names in the same directory.
func (p *Prepared) Render(attr model.Attribute) (*Result, error) {
	res := &Result{RunID: uuid.New(), Attr: attr}
	log := p.log.With(zap.String("run_id", res.RunID.String()), zap.String("attr", string(attr)))

	var err error
	if res.Map, err = p.RenderMap(attr); err != nil {
		return nil, err
	}
	if res.Bar, err = p.RenderBar(attr); err != nil {
		return nil, err
	}
	if res.Bubble, err = p.RenderBubble(attr); err != nil {
		return nil, err
	}
	res.Breaks = p.Classifier(attr).Breaks()

	var page bytes.Buffer
	err = render.RenderPage(&page, render.Page{
		Attr:      attr,
		MapSrc:    "map.svg",
		ChartSrc:  "chart.svg",
		BubbleSrc: "bubble.svg",
		Breaks:    res.Breaks,
		RunID:     res.RunID.String(),
	})
	if err != nil {
		return nil, err
	}
	res.Page = page.Bytes()

	log.Info("rendered",
		zap.Int("map_bytes", len(res.Map)),
		zap.Int("bar_bytes", len(res.Bar)),
		zap.Int("bubble_bytes", len(res.Bubble)),
	)
	return res, nil
}
