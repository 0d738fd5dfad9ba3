package pipeline

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/citymap/internal/fetcher"
)

// ErrInvalidInput is returned when a loaded document lacks its expected shape.
var ErrInvalidInput = eris.New("pipeline: invalid input")

// Validate checks that every document has the minimal shape the pipeline
// reads: a features member, an objects member and at least one city.
func Validate(in *fetcher.Inputs) error {
	if in == nil {
		return eris.Wrap(ErrInvalidInput, "no inputs")
	}
	if in.Features == nil || in.Features.Features == nil {
		return eris.Wrap(ErrInvalidInput, "features: missing or invalid")
	}
	if in.Topology == nil || in.Topology.Objects == nil {
		return eris.Wrap(ErrInvalidInput, "topology: missing or invalid")
	}
	if len(in.Cities) == 0 {
		return eris.Wrap(ErrInvalidInput, "cities: missing or empty")
	}
	return nil
}
