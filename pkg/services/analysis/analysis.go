package analysis

import (
	"context"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
)

// Analysis runs one complete pipeline over an input file
type Analysis interface {
	Name() string
	Description() string
	// Run loads the file at path and returns everything the run produced.
	// Nothing is written to disk.
	Run(ctx context.Context, path string) (*Result, error)
}

// Result is the output of one analysis run
type Result struct {
	Report     *domain.Report
	Tables     []domain.NamedTable
	Charts     []domain.Chart
	RowsLoaded int
}

// Table returns the derived table registered under name.
func (r *Result) Table(name string) (*domain.Table, bool) {
	for _, nt := range r.Tables {
		if nt.Name == name {
			return nt.Table, true
		}
	}
	return nil, false
}
