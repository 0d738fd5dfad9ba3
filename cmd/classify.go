package main

import (
	"context"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/citymap/internal/classify"
	"github.com/sells-group/citymap/internal/config"
	"github.com/sells-group/citymap/internal/export"
	"github.com/sells-group/citymap/internal/fetcher"
	"github.com/sells-group/citymap/internal/model"
)

var (
	classifyAttr   string
	classifyFormat string
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Print the class breaks of an attribute",
	RunE: func(cmd *cobra.Command, args []string) error {
		attr, err := model.ParseAttribute(classifyAttr)
		if err != nil {
			return err
		}
		return runClassify(cmd.Context(), cfg, cmd.OutOrStdout(), attr, classifyFormat)
	},
}

// runClassify loads only the city table and writes its breaks for attr.
func runClassify(ctx context.Context, c *config.Config, w io.Writer, attr model.Attribute, format string) error {
	if format != "yaml" && format != "json" {
		return eris.Errorf("classify: unsupported format %q (want yaml or json)", format)
	}
	if err := c.Validate("classify"); err != nil {
		return err
	}

	cities, err := fetcher.NewLoader(fetchOptions(c)).LoadCities(ctx, c.Data.Cities)
	if err != nil {
		return err
	}

	b := export.NewBreaks(cities, classify.NewClassifier(cities, attr))
	if format == "json" {
		return export.WriteBreaksJSON(w, b)
	}
	return export.WriteBreaksYAML(w, b)
}

func init() {
	classifyCmd.Flags().StringVar(&classifyAttr, "attr", string(model.AttrPopulation), "attribute to classify (population, density, lat, lng)")
	classifyCmd.Flags().StringVar(&classifyFormat, "format", "yaml", "output format: yaml or json")
	rootCmd.AddCommand(classifyCmd)
}
