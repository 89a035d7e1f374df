package export

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

var sheetNameReplacer = strings.NewReplacer(
	"[", "_", "]", "_", ":", "_", "*", "_", "?", "_", "/", "_", "\\", "_",
)

// WorkbookWriter collects derived tables into one xlsx file, one sheet each.
type WorkbookWriter struct{}

func NewWorkbookWriter() *WorkbookWriter {
	return &WorkbookWriter{}
}

// Write overwrites path with a workbook holding tables in order.
func (w *WorkbookWriter) Write(ctx context.Context, path string, tables []domain.NamedTable) error {
	f := excelize.NewFile()
	defer f.Close()

	used := map[string]bool{}
	for i, nt := range tables {
		sheet := uniqueSheetName(sheetName(nt.Name), used)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return domain.FileErr("failed to name sheet", map[string]any{"sheet": sheet, "error": err})
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return domain.FileErr("failed to add sheet", map[string]any{"sheet": sheet, "error": err})
		}

		if err := writeSheet(f, sheet, nt.Table); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return domain.FileErr("failed to create directory", map[string]any{"path": path, "error": err})
	}
	if err := f.SaveAs(path); err != nil {
		return domain.FileErr("failed to save workbook", map[string]any{"path": path, "error": err})
	}

	zerolog.Ctx(ctx).Info().
		Str("path", path).
		Int("sheets", len(tables)).
		Msg("workbook written")
	return nil
}

func writeSheet(f *excelize.File, sheet string, t *domain.Table) error {
	header := make([]interface{}, len(t.Columns))
	for i, name := range t.ColumnNames() {
		header[i] = name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return domain.FileErr("failed to write header", map[string]any{"sheet": sheet, "error": err})
	}

	for r, row := range t.Rows {
		cells := make([]interface{}, len(row))
		for i, v := range row {
			cells[i] = cellValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return domain.FileErr("invalid cell reference", map[string]any{"sheet": sheet, "row": r, "error": err})
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return domain.FileErr("failed to write row", map[string]any{"sheet": sheet, "row": r, "error": err})
		}
	}
	return nil
}

func cellValue(v domain.Value) interface{} {
	switch v.Kind() {
	case domain.KindNumber:
		return v.Num()
	case domain.KindTime:
		return v.String()
	case domain.KindString:
		return v.Str()
	default:
		return nil
	}
}

func sheetName(name string) string {
	name = sheetNameReplacer.Replace(strings.TrimSpace(name))
	if name == "" {
		name = "Sheet"
	}
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	return name
}

func uniqueSheetName(name string, used map[string]bool) string {
	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := "_" + strconv.Itoa(n)
		base := []rune(name)
		if len(base)+len(suffix) > maxSheetName {
			base = base[:maxSheetName-len(suffix)]
		}
		candidate = string(base) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}
