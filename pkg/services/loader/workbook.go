package loader

import (
	"context"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

type workbookReader struct {
	opts Options
}

// NewWorkbookReader reads one sheet of an xlsx workbook whose first row is
// the header.
func NewWorkbookReader(opts Options) Reader {
	return &workbookReader{opts: opts}
}

func (r *workbookReader) Read(ctx context.Context, path string) (*domain.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, domain.FileErr("cannot open workbook", map[string]any{"path": path, "error": err})
	}
	defer f.Close()

	sheet := r.opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, domain.FileErr("workbook has no sheets", map[string]any{"path": path})
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, domain.FileErr("cannot read sheet", map[string]any{"path": path, "sheet": sheet, "error": err})
	}
	zerolog.Ctx(ctx).Debug().Str("sheet", sheet).Int("rows", len(rows)).Msg("workbook sheet read")

	if len(rows) == 0 {
		return domain.NewTable(), nil
	}

	header := rows[0]
	records := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		// trailing empty cells are not returned by GetRows
		if len(row) < len(header) {
			padded := make([]string, len(header))
			copy(padded, row)
			row = padded
		}
		records = append(records, row)
	}

	return BuildTable(header, records)
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
