package loader

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
)

type delimitedReader struct {
	opts Options
}

// NewDelimitedReader reads comma (or Options.Delimiter) separated text with a
// header row.
func NewDelimitedReader(opts Options) Reader {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	return &delimitedReader{opts: opts}
}

func (r *delimitedReader) Read(ctx context.Context, path string) (*domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.FileErr("cannot open input file", map[string]any{"path": path, "error": err})
	}
	defer f.Close()

	cr := csv.NewReader(bufio.NewReader(f))
	cr.Comma = r.opts.Delimiter
	cr.FieldsPerRecord = 0
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return domain.NewTable(), nil
	}
	if err != nil {
		return nil, domain.FileErr("malformed header row", map[string]any{"path": path, "error": err})
	}

	var records [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.FileErr("malformed row", map[string]any{"path": path, "error": err})
		}
		records = append(records, rec)

		if len(records)%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}

	return BuildTable(header, records)
}
