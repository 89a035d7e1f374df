package export

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

// CSVWriter writes tables as comma separated files with a header row.
type CSVWriter struct {
	dir string
}

// NewCSVWriter creates a writer resolving relative paths against dir.
func NewCSVWriter(dir string) *CSVWriter {
	return &CSVWriter{dir: dir}
}

func (w *CSVWriter) resolvePath(name string) string {
	if filepath.IsAbs(name) || w.dir == "" {
		return name
	}
	return filepath.Join(w.dir, name)
}

// WriteTable overwrites name with the table contents and returns the full path.
func (w *CSVWriter) WriteTable(ctx context.Context, name string, t *domain.Table) (string, error) {
	fullPath := w.resolvePath(name)

	zerolog.Ctx(ctx).Debug().
		Str("path", fullPath).
		Int("rows", t.Len()).
		Msg("writing csv")

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", domain.FileErr("failed to create directory", map[string]any{"path": fullPath, "error": err})
	}

	file, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", domain.FileErr("failed to open file", map[string]any{"path": fullPath, "error": err})
	}

	if err := writeRecords(ctx, file, fullPath, t); err != nil {
		_ = file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", domain.FileErr("failed to close file", map[string]any{"path": fullPath, "error": err})
	}
	return fullPath, nil
}

func writeRecords(ctx context.Context, file *os.File, fullPath string, t *domain.Table) error {
	writer := csv.NewWriter(file)
	if err := writer.Write(t.ColumnNames()); err != nil {
		return domain.FileErr("failed to write header", map[string]any{"path": fullPath, "error": err})
	}

	record := make([]string, len(t.Columns))
	for i, row := range t.Rows {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		for j, v := range row {
			record[j] = v.String()
		}
		if err := writer.Write(record); err != nil {
			return domain.FileErr("failed to write record", map[string]any{"path": fullPath, "row": i, "error": err})
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return domain.FileErr("failed to flush csv", map[string]any{"path": fullPath, "error": err})
	}
	return nil
}
