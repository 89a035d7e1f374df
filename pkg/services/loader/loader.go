package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

// Reader turns one file into a table
type Reader interface {
	Read(ctx context.Context, path string) (*domain.Table, error)
}

// Options configure how files are read
type Options struct {
	// Delimiter separates fields of delimited text files. Zero means ','.
	Delimiter rune
	// Sheet selects the workbook sheet. Empty means the first sheet.
	Sheet string
}

type Loader struct {
	registry Registry
	opts     Options
}

func NewLoader(registry Registry, opts Options) *Loader {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Loader{registry: registry, opts: opts}
}

// Load reads the whole file at path into a table. Either the complete table
// is returned or a FileError; there are no partial results.
func (l *Loader) Load(ctx context.Context, path string) (*domain.Table, error) {
	logger := zerolog.Ctx(ctx)

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.FileErr("input file does not exist", map[string]any{"path": path})
		}
		return nil, domain.FileErr("cannot stat input file", map[string]any{"path": path, "error": err})
	}
	if info.IsDir() {
		return nil, domain.FileErr("input path is a directory", map[string]any{"path": path})
	}

	ext := filepath.Ext(path)
	reader, err := l.registry.Create(ext, l.opts)
	if err != nil {
		logger.Debug().Str("ext", ext).Msg("unknown extension, reading as comma separated text")
		reader = NewDelimitedReader(l.opts)
	}

	table, err := reader.Read(ctx, path)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("path", path).
		Int("rows", table.Len()).
		Int("columns", len(table.Columns)).
		Msg("input loaded")
	return table, nil
}
