package fetcher

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// TableOptions controls how a delimited city table is parsed. The zero value
// reads plain comma-separated text.
type TableOptions struct {
	Delimiter  rune // field separator; 0 means ','
	Comment    rune // lines starting with it are skipped; 0 disables
	LazyQuotes bool // accept stray quotes inside unquoted fields
	TrimSpace  bool
}

func (o TableOptions) reader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	if o.Delimiter != 0 {
		cr.Comma = o.Delimiter
	}
	cr.Comment = o.Comment
	cr.LazyQuotes = o.LazyQuotes
	cr.FieldsPerRecord = -1
	return cr
}

// StreamRows parses r in a goroutine and sends each record, header included,
// on the row channel. At most one error is sent; both channels are closed
// when parsing stops.
func StreamRows(ctx context.Context, r io.Reader, opts TableOptions) (<-chan []string, <-chan error) {
	rowCh := make(chan []string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		cr := opts.reader(r)
		for line := 1; ; line++ {
			if err := ctx.Err(); err != nil {
				errCh <- eris.Wrap(err, "table: context cancelled")
				return
			}

			record, err := cr.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrapf(err, "table: read row %d", line)
				return
			}
			if opts.TrimSpace {
				for i := range record {
					record[i] = strings.TrimSpace(record[i])
				}
			}

			select {
			case rowCh <- record:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "table: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}

// ReadTable collects a delimited table into its header and data rows. An
// empty input yields a nil header and no rows.
func ReadTable(ctx context.Context, r io.Reader, opts TableOptions) (header []string, rows [][]string, err error) {
	rowCh, errCh := StreamRows(ctx, r, opts)
	for row := range rowCh {
		if header == nil {
			header = row
			continue
		}
		rows = append(rows, row)
	}
	if err := <-errCh; err != nil {
		return nil, nil, err
	}
	return header, rows, nil
}
