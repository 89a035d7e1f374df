package domain

import "fmt"

type Column struct {
	Name string
	Kind Kind
}

type Row []Value

// Table is an ordered set of rows sharing one column schema. Operations on a
// Table return new tables; the receiver is never modified.
type Table struct {
	Columns []Column
	Rows    []Row
}

// NewTable creates an empty table with the given columns.
func NewTable(columns ...Column) *Table {
	cols := make([]Column, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols, Rows: []Row{}}
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, error) {
	for i, c := range t.Columns {
		if c.Name == name {
			return i, nil
		}
	}
	return -1, DataErr("column not found", map[string]any{
		"column":  name,
		"columns": t.ColumnNames(),
	})
}

func (t *Table) HasColumn(name string) bool {
	_, err := t.ColumnIndex(name)
	return err == nil
}

// NumericColumn returns the index of name, failing if it is not a number column.
func (t *Table) NumericColumn(name string) (int, error) {
	idx, err := t.ColumnIndex(name)
	if err != nil {
		return -1, err
	}
	if t.Columns[idx].Kind != KindNumber {
		return -1, DataErr("column is not numeric", map[string]any{
			"column": name,
			"kind":   t.Columns[idx].Kind.String(),
		})
	}
	return idx, nil
}

// Values returns the cells of the named column in row order.
func (t *Table) Values(name string) ([]Value, error) {
	idx, err := t.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	out := make([]Value, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Floats returns the non-null numbers of the named column.
func (t *Table) Floats(name string) ([]float64, error) {
	idx, err := t.NumericColumn(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		if f, ok := row[idx].Float(); ok {
			out = append(out, f)
		}
	}
	return out, nil
}

// Append adds a row, which must match the column count.
func (t *Table) Append(row Row) error {
	if len(row) != len(t.Columns) {
		return DataErr("row width does not match table", map[string]any{
			"expected": len(t.Columns),
			"got":      len(row),
		})
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// Empty returns a table with the same columns and no rows.
func (t *Table) Empty() *Table {
	return NewTable(t.Columns...)
}

// Clone deep-copies the table rows.
func (t *Table) Clone() *Table {
	out := NewTable(t.Columns...)
	out.Rows = make([]Row, len(t.Rows))
	for i, row := range t.Rows {
		out.Rows[i] = append(Row(nil), row...)
	}
	return out
}

// Head returns the first n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 || n > len(t.Rows) {
		n = len(t.Rows)
	}
	out := t.Empty()
	out.Rows = append(out.Rows, t.Rows[:n]...)
	return out
}

// Select returns a table restricted to the named columns, in that order.
func (t *Table) Select(names ...string) (*Table, error) {
	idx := make([]int, len(names))
	cols := make([]Column, len(names))
	for i, name := range names {
		j, err := t.ColumnIndex(name)
		if err != nil {
			return nil, err
		}
		idx[i] = j
		cols[i] = t.Columns[j]
	}
	out := NewTable(cols...)
	out.Rows = make([]Row, len(t.Rows))
	for r, row := range t.Rows {
		sel := make(Row, len(idx))
		for i, j := range idx {
			sel[i] = row[j]
		}
		out.Rows[r] = sel
	}
	return out, nil
}

// Where returns the rows for which keep returns true.
func (t *Table) Where(keep func(Row) bool) *Table {
	out := t.Empty()
	for _, row := range t.Rows {
		if keep(row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// WithColumn returns a copy of t with values set as the named column. An
// existing column of that name is replaced in place, otherwise it is appended.
func (t *Table) WithColumn(col Column, values []Value) (*Table, error) {
	if len(values) != len(t.Rows) {
		return nil, DataErr("column length does not match table", map[string]any{
			"column":   col.Name,
			"expected": len(t.Rows),
			"got":      len(values),
		})
	}

	pos := len(t.Columns)
	cols := append([]Column(nil), t.Columns...)
	if i, err := t.ColumnIndex(col.Name); err == nil {
		pos = i
		cols[i] = col
	} else {
		cols = append(cols, col)
	}

	out := NewTable(cols...)
	out.Rows = make([]Row, len(t.Rows))
	for r, row := range t.Rows {
		next := make(Row, len(cols))
		copy(next, row)
		next[pos] = values[r]
		out.Rows[r] = next
	}
	return out, nil
}

func (t *Table) String() string {
	return fmt.Sprintf("Table(%d columns, %d rows)", len(t.Columns), len(t.Rows))
}
