package fetcher

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/citymap/internal/geodata"
	"github.com/sells-group/citymap/internal/model"
	"github.com/sells-group/citymap/internal/topology"
)

// Sources names the three documents a map is built from.
type Sources struct {
	Cities   string // delimited text or .xlsx
	Features string // GeoJSON, .shp or a .zip holding a shapefile
	Topology string // TopoJSON
}

// Inputs holds the loaded documents. Each field is filled by its own loader.
type Inputs struct {
	Cities   []model.City
	Features *geojson.FeatureCollection
	Topology *topology.Topology
}

// Loader loads Sources.
type Loader struct {
	opener *Opener
	table  TableOptions
	log    *zap.Logger
}

// NewLoader returns a Loader using the given fetch options.
func NewLoader(opts Options) *Loader {
	return &Loader{
		opener: NewOpener(opts),
		table:  opts.Table,
		log:    zap.L().With(zap.String("component", "fetcher")),
	}
}

// LoadAll loads the three sources concurrently. The first failure cancels
// the others and is returned; there are no partial results and no retries.
func (l *Loader) LoadAll(ctx context.Context, src Sources) (*Inputs, error) {
	dir, err := os.MkdirTemp("", "citymap-*")
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: create temp dir")
	}
	defer func() { _ = os.RemoveAll(dir) }()

	var in Inputs
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		cities, err := l.loadCities(gctx, src.Cities, filepath.Join(dir, "cities"))
		if err != nil {
			return eris.Wrap(err, "fetcher: load cities")
		}
		in.Cities = cities
		return nil
	})
	g.Go(func() error {
		fc, err := l.loadFeatures(gctx, src.Features, filepath.Join(dir, "features"))
		if err != nil {
			return eris.Wrap(err, "fetcher: load features")
		}
		in.Features = fc
		return nil
	})
	g.Go(func() error {
		topo, err := l.loadTopology(gctx, src.Topology)
		if err != nil {
			return eris.Wrap(err, "fetcher: load topology")
		}
		in.Topology = topo
		return nil
	})

	if err := g.Wait(); err != nil {
		l.log.Error("load failed", zap.Error(err))
		return nil, err
	}

	l.log.Info("data loaded",
		zap.Int("cities", len(in.Cities)),
		zap.Int("features", featureCount(in.Features)),
	)
	if len(in.Cities) > 0 {
		l.log.Debug("first city record", zap.Any("record", in.Cities[0].Raw))
	}
	if in.Features != nil && len(in.Features.Features) > 0 && in.Features.Features[0] != nil {
		l.log.Debug("first feature properties", zap.Any("properties", in.Features.Features[0].Properties))
	}
	return &in, nil
}

// LoadCities loads only the city table.
func (l *Loader) LoadCities(ctx context.Context, src string) ([]model.City, error) {
	dir, err := os.MkdirTemp("", "citymap-*")
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: create temp dir")
	}
	defer func() { _ = os.RemoveAll(dir) }()

	cities, err := l.loadCities(ctx, src, dir)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: load cities")
	}
	l.log.Info("cities loaded", zap.Int("cities", len(cities)))
	return cities, nil
}

func featureCount(fc *geojson.FeatureCollection) int {
	if fc == nil {
		return 0
	}
	return len(fc.Features)
}

func (l *Loader) loadCities(ctx context.Context, src, dir string) ([]model.City, error) {
	var (
		header []string
		rows   [][]string
	)
	if Ext(src) == ".xlsx" {
		path, err := l.localize(ctx, src, dir)
		if err != nil {
			return nil, err
		}
		header, rows, err = ReadXLSX(path, XLSXOptions{})
		if err != nil {
			return nil, err
		}
	} else {
		rc, err := l.opener.Open(ctx, src)
		if err != nil {
			return nil, err
		}
		defer rc.Close() //nolint:errcheck

		header, rows, err = ReadTable(ctx, rc, l.table)
		if err != nil {
			return nil, err
		}
	}

	if header == nil {
		return []model.City{}, nil
	}
	return model.ParseCities(header, rows)
}

func (l *Loader) loadFeatures(ctx context.Context, src, dir string) (*geojson.FeatureCollection, error) {
	switch Ext(src) {
	case ".shp":
		path, err := l.localize(ctx, src, dir)
		if err != nil {
			return nil, err
		}
		// A remote shapefile needs its index and attribute table next to it.
		if l.opener.remote(src) != nil {
			for _, ext := range []string{".shx", ".dbf"} {
				if _, err := l.opener.Localize(ctx, sibling(src, ext), dir); err != nil {
					return nil, err
				}
			}
		}
		return geodata.ReadShapefile(path)

	case ".zip":
		path, err := l.localize(ctx, src, dir)
		if err != nil {
			return nil, err
		}
		files, err := ExtractZIP(path, filepath.Join(dir, "unzipped"))
		if err != nil {
			return nil, err
		}
		shpPath, ok := FindExt(files, ".shp")
		if !ok {
			return nil, eris.Errorf("fetcher: no shapefile in %s", src)
		}
		return geodata.ReadShapefile(shpPath)

	default:
		rc, err := l.opener.Open(ctx, src)
		if err != nil {
			return nil, err
		}
		defer rc.Close() //nolint:errcheck
		return geodata.ReadGeoJSON(rc)
	}
}

func (l *Loader) loadTopology(ctx context.Context, src string) (*topology.Topology, error) {
	rc, err := l.opener.Open(ctx, src)
	if err != nil {
		return nil, err
	}
	defer rc.Close() //nolint:errcheck

	return DecodeJSONObject[topology.Topology](rc)
}

// localize creates dir and places src inside it when src is remote.
func (l *Loader) localize(ctx context.Context, src, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrap(err, "fetcher: create dir")
	}
	return l.opener.Localize(ctx, src, dir)
}

// sibling swaps the extension of a URL path, keeping the query.
func sibling(src, ext string) string {
	u, err := url.Parse(src)
	if err != nil {
		return src
	}
	u.Path = strings.TrimSuffix(u.Path, filepath.Ext(u.Path)) + ext
	return u.String()
}
