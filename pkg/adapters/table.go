package adapters

import (
	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/models/store"
)

const (
	SQLTypeVarchar   = "VARCHAR"
	SQLTypeDouble    = "DOUBLE"
	SQLTypeTimestamp = "TIMESTAMP"
)

func MapDomainKindToSQLType(kind domain.Kind) string {
	switch kind {
	case domain.KindNumber:
		return SQLTypeDouble
	case domain.KindTime:
		return SQLTypeTimestamp
	default:
		return SQLTypeVarchar
	}
}

// MapDomainValueToStore returns the driver value of v for a column of kind.
// A value that does not match a number or time column is stored as NULL.
// Varchar columns take the text of any value.
func MapDomainValueToStore(v domain.Value, kind domain.Kind) any {
	if v.IsNull() {
		return nil
	}
	switch {
	case kind == domain.KindNumber && v.Kind() == domain.KindNumber:
		return v.Num()
	case kind == domain.KindTime && v.Kind() == domain.KindTime:
		return v.TimeVal()
	case kind == domain.KindNumber || kind == domain.KindTime:
		return nil
	default:
		return v.String()
	}
}

func MapDomainTableToStore(name string, t *domain.Table) store.ResultTable {
	cols := make([]store.TableColumn, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = store.TableColumn{Name: c.Name, Type: MapDomainKindToSQLType(c.Kind)}
	}

	rows := make([][]any, len(t.Rows))
	for r, row := range t.Rows {
		args := make([]any, len(row))
		for i, v := range row {
			args[i] = MapDomainValueToStore(v, t.Columns[i].Kind)
		}
		rows[r] = args
	}

	return store.ResultTable{Name: name, Columns: cols, Rows: rows}
}
