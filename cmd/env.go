package main

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/sells-group/citymap/internal/config"
	"github.com/sells-group/citymap/internal/fetcher"
	"github.com/sells-group/citymap/internal/model"
	"github.com/sells-group/citymap/internal/pipeline"
	"github.com/sells-group/citymap/internal/render"
	"github.com/sells-group/citymap/internal/server"
)

func sources(c *config.Config) fetcher.Sources {
	return fetcher.Sources{
		Cities:   c.Data.Cities,
		Features: c.Data.Features,
		Topology: c.Data.Topology,
	}
}

func fetchOptions(c *config.Config) fetcher.Options {
	return fetcher.Options{
		UserAgent: c.Fetch.UserAgent,
		Timeout:   c.Fetch.Timeout,
		Table: fetcher.TableOptions{
			Delimiter:  c.Data.DelimiterRune(),
			Comment:    c.Data.CommentRune(),
			LazyQuotes: c.Data.LazyQuotes,
		},
	}
}

// pipelineOptions maps configuration onto the pipeline's layout settings.
func pipelineOptions(c *config.Config) pipeline.Options {
	return pipeline.Options{
		Sources: sources(c),
		Fetch:   fetchOptions(c),
		Map: render.MapConfig{
			Width:         c.Map.Width,
			Height:        c.Map.Height,
			Scale:         c.Map.Scale,
			GraticuleStep: c.Map.GraticuleStep,
			PointRadius:   c.Map.PointRadius,
		},
		Chart: render.ChartConfig{
			Width:            c.Chart.Width,
			Height:           c.Chart.Height,
			LeftPadding:      c.Chart.LeftPadding,
			RightPadding:     c.Chart.RightPadding,
			TopBottomPadding: c.Chart.TopBottomPadding,
			Gutter:           c.Chart.Gutter,
		},
		Bubble: render.BubbleConfig{
			Width:        c.Bubble.Width,
			Height:       c.Bubble.Height,
			Count:        c.Bubble.Count,
			XRange:       [2]float64{c.Bubble.XMin, c.Bubble.XMax},
			YRange:       [2]float64{c.Bubble.YBottom, c.Bubble.YTop},
			RadiusFactor: c.Bubble.RadiusFactor,
			RampFrom:     c.Bubble.RampFrom,
			RampTo:       c.Bubble.RampTo,
		},
	}
}

func serverOptions(c *config.Config, attr model.Attribute) server.Options {
	return server.Options{
		CacheSize:      c.Server.CacheSize,
		CacheTTL:       c.Server.CacheTTL,
		RateLimit:      rate.Limit(c.Server.RateLimit),
		RateBurst:      c.Server.RateBurst,
		AllowedOrigins: c.Server.AllowedOrigins,
		DefaultAttr:    attr,
	}
}

// prepare validates c for mode and loads the joined data.
func prepare(ctx context.Context, c *config.Config, mode string) (*pipeline.Prepared, error) {
	if err := c.Validate(mode); err != nil {
		return nil, err
	}
	return pipeline.Prepare(ctx, pipelineOptions(c))
}
