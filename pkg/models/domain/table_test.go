package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func salesTable(t *testing.T) *Table {
	t.Helper()
	table := NewTable(
		Column{Name: "product", Kind: KindString},
		Column{Name: "sales", Kind: KindNumber},
	)
	require.NoError(t, table.Append(Row{String("Widget"), Number(100)}))
	require.NoError(t, table.Append(Row{String("Gadget"), Null()}))
	require.NoError(t, table.Append(Row{String("Widget"), Number(30)}))
	return table
}

func TestTable(t *testing.T) {
	t.Run("success - column lookups", func(t *testing.T) {
		table := salesTable(t)

		assert.Equal(t, []string{"product", "sales"}, table.ColumnNames())
		assert.True(t, table.HasColumn("sales"))
		assert.False(t, table.HasColumn("region"))

		floats, err := table.Floats("sales")
		require.NoError(t, err)
		assert.Equal(t, []float64{100, 30}, floats)
	})

	t.Run("missing and non-numeric columns", func(t *testing.T) {
		table := salesTable(t)

		_, err := table.ColumnIndex("region")
		assert.True(t, ErrIs(err, CodeDataError))

		_, err = table.Floats("product")
		assert.True(t, ErrIs(err, CodeDataError))
	})

	t.Run("append checks width", func(t *testing.T) {
		table := salesTable(t)
		err := table.Append(Row{String("Widget")})
		assert.True(t, ErrIs(err, CodeDataError))
		assert.Equal(t, 3, table.Len())
	})

	t.Run("success - select and head", func(t *testing.T) {
		table := salesTable(t)

		sel, err := table.Select("sales", "product")
		require.NoError(t, err)
		assert.Equal(t, []string{"sales", "product"}, sel.ColumnNames())
		assert.Equal(t, Number(100), sel.Rows[0][0])

		assert.Equal(t, 2, table.Head(2).Len())
		assert.Equal(t, 3, table.Head(-1).Len())
		assert.Equal(t, 3, table.Head(10).Len())
	})

	t.Run("success - with column replaces or appends", func(t *testing.T) {
		table := salesTable(t)

		replaced, err := table.WithColumn(Column{Name: "sales", Kind: KindNumber},
			[]Value{Number(1), Number(2), Number(3)})
		require.NoError(t, err)
		assert.Len(t, replaced.Columns, 2)
		assert.Equal(t, Number(2), replaced.Rows[1][1])
		assert.True(t, table.Rows[1][1].IsNull(), "receiver must not change")

		appended, err := table.WithColumn(Column{Name: "flag", Kind: KindString},
			[]Value{String("a"), String("b"), String("c")})
		require.NoError(t, err)
		assert.Equal(t, []string{"product", "sales", "flag"}, appended.ColumnNames())

		_, err = table.WithColumn(Column{Name: "flag", Kind: KindString}, []Value{String("a")})
		assert.True(t, ErrIs(err, CodeDataError))
	})

	t.Run("success - where and clone", func(t *testing.T) {
		table := salesTable(t)

		widgets := table.Where(func(r Row) bool { return r[0].Str() == "Widget" })
		assert.Equal(t, 2, widgets.Len())

		clone := table.Clone()
		clone.Rows[0][1] = Number(0)
		assert.Equal(t, Number(100), table.Rows[0][1])
	})

	t.Run("nil table has no rows", func(t *testing.T) {
		var table *Table
		assert.Equal(t, 0, table.Len())
	})
}
