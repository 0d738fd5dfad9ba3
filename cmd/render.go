package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/citymap/internal/config"
	"github.com/sells-group/citymap/internal/model"
)

var (
	renderOut  string
	renderAttr string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the page, map and charts to a directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		attr, err := model.ParseAttribute(renderAttr)
		if err != nil {
			return err
		}
		return runRender(cmd.Context(), cfg, renderOut, attr)
	},
}

// runRender writes index.html, map.svg, chart.svg and bubble.svg into dir.
func runRender(ctx context.Context, c *config.Config, dir string, attr model.Attribute) error {
	p, err := prepare(ctx, c, "render")
	if err != nil {
		return err
	}
	res, err := p.Render(attr)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "render: create %s", dir)
	}
	files := []struct {
		name string
		data []byte
	}{
		{"index.html", res.Page},
		{"map.svg", res.Map},
		{"chart.svg", res.Bar},
		{"bubble.svg", res.Bubble},
	}
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, f.data, 0o644); err != nil {
			return eris.Wrapf(err, "render: write %s", path)
		}
	}

	zap.L().Info("render complete",
		zap.String("dir", dir),
		zap.String("attr", string(attr)),
		zap.String("run_id", res.RunID.String()),
		zap.Int("matched", p.Join.Matched),
		zap.Int("unmatched", p.Join.Unmatched),
	)
	return nil
}

func init() {
	renderCmd.Flags().StringVar(&renderOut, "out", "out", "output directory")
	renderCmd.Flags().StringVar(&renderAttr, "attr", string(model.AttrPopulation), "attribute to classify (population, density, lat, lng)")
	rootCmd.AddCommand(renderCmd)
}
