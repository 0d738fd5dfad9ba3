package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/citymap/internal/config"
	"github.com/sells-group/citymap/internal/export"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export joined features as GeoJSON or the city table as XLSX",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd.Context(), cfg, exportFormat, exportOut)
	},
}

// runExport writes the joined point features (geojson) or the city workbook
// (xlsx) to out.
func runExport(ctx context.Context, c *config.Config, format, out string) (err error) {
	if format != "geojson" && format != "xlsx" {
		return eris.Errorf("export: unsupported format %q (want geojson or xlsx)", format)
	}
	if out == "" {
		return eris.New("export: --out is required")
	}

	p, err := prepare(ctx, c, "export")
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", out)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = eris.Wrapf(cerr, "export: close %s", out)
		}
	}()

	switch format {
	case "geojson":
		err = export.WriteGeoJSON(f, p.Features)
	case "xlsx":
		err = export.WriteXLSX(f, p.Cities)
	}
	if err != nil {
		return err
	}

	zap.L().Info("export complete", zap.String("format", format), zap.String("out", out))
	return nil
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "geojson", "output format: geojson or xlsx")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file")
	rootCmd.AddCommand(exportCmd)
}
