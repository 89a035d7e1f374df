package results

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/models/store"
	"github.com/de-tools/sales-atlas/pkg/store/duckdb"
	_ "github.com/marcboeker/go-duckdb/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db    *sql.DB
	store Store
}

func setupFixture(t *testing.T) *fixture {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)

	s, err := NewStore(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return &fixture{
		db:    db,
		store: s,
	}
}

func categoryTable(t *testing.T) *domain.Table {
	t.Helper()
	table := domain.NewTable(
		domain.Column{Name: "Category", Kind: domain.KindString},
		domain.Column{Name: "Total", Kind: domain.KindNumber},
	)
	require.NoError(t, table.Append(domain.Row{domain.String("Tools"), domain.Number(40)}))
	require.NoError(t, table.Append(domain.Row{domain.String("Toys"), domain.Null()}))
	return table
}

func TestNewStore(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := setupFixture(t)
		assert.NotNil(t, f.store)
	})

	t.Run("nil db", func(t *testing.T) {
		s, err := NewStore(nil)
		assert.Error(t, err)
		assert.Nil(t, s)
	})
}

func TestStore_Save_SQL(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	run := store.AnalysisRun{
		ID:         "run-1",
		Analysis:   "sales-trend",
		Input:      "sales.csv",
		RowsLoaded: 5,
		CreatedAt:  created,
	}
	tables := []domain.NamedTable{{Name: "sales_by_category", Table: categoryTable(t)}}

	t.Run("success - tables and run in one transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`CREATE OR REPLACE TABLE "sales_by_category" ("Category" VARCHAR, "Total" DOUBLE)`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		prep := mock.ExpectPrepare(`INSERT INTO "sales_by_category" ("Category", "Total") VALUES (?, ?)`)
		prep.ExpectExec().WithArgs("Tools", 40.0).WillReturnResult(sqlmock.NewResult(0, 1))
		prep.ExpectExec().WithArgs("Toys", nil).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO analysis_runs (id, analysis, input, rows_loaded, created_at) VALUES (?, ?, ?, ?, ?)`).
			WithArgs("run-1", "sales-trend", "sales.csv", 5, created).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		s, err := NewStore(db)
		require.NoError(t, err)

		saved, err := s.Save(context.Background(), run, tables)
		require.NoError(t, err)
		assert.Equal(t, "run-1", saved.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - failed write rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`CREATE OR REPLACE TABLE "sales_by_category" ("Category" VARCHAR, "Total" DOUBLE)`).
			WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		s, err := NewStore(db)
		require.NoError(t, err)

		_, err = s.Save(context.Background(), run, tables)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - table without columns", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		s, err := NewStore(db)
		require.NoError(t, err)

		err = s.SaveTable(context.Background(), store.ResultTable{Name: "empty"})
		assert.True(t, domain.ErrIs(err, domain.CodeDataError))
	})
}

func TestStore_Save_DuckDB(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ma := domain.NewTable(
		domain.Column{Name: "product", Kind: domain.KindString},
		domain.Column{Name: "date", Kind: domain.KindTime},
		domain.Column{Name: "7day_ma", Kind: domain.KindNumber},
	)
	require.NoError(t, ma.Append(domain.Row{domain.String("widget"), domain.Time(day), domain.Number(20)}))
	require.NoError(t, ma.Append(domain.Row{domain.String("widget"), domain.Time(day.AddDate(0, 0, 1)), domain.Number(40)}))

	tables := []domain.NamedTable{
		{Name: "sales_by_category", Table: categoryTable(t)},
		{Name: "product_revenue_ma", Table: ma},
	}

	t.Run("success - tables created and run recorded", func(t *testing.T) {
		saved, err := f.store.Save(ctx, store.AnalysisRun{Analysis: "sales-segments", Input: "a.csv", RowsLoaded: 2}, tables)
		require.NoError(t, err)
		assert.NotEmpty(t, saved.ID)
		assert.False(t, saved.CreatedAt.IsZero())

		var total sql.NullFloat64
		require.NoError(t, f.db.QueryRow(`SELECT SUM("Total") FROM sales_by_category`).Scan(&total))
		assert.Equal(t, 40.0, total.Float64)

		var avg float64
		var last time.Time
		require.NoError(t, f.db.QueryRow(`SELECT "7day_ma", "date" FROM product_revenue_ma ORDER BY "date" DESC LIMIT 1`).Scan(&avg, &last))
		assert.Equal(t, 40.0, avg)
		assert.True(t, last.Equal(day.AddDate(0, 0, 1)))
	})

	t.Run("success - second run overwrites tables", func(t *testing.T) {
		_, err := f.store.Save(ctx, store.AnalysisRun{Analysis: "sales-segments", Input: "b.csv", RowsLoaded: 1},
			[]domain.NamedTable{{Name: "sales_by_category", Table: categoryTable(t).Head(1)}})
		require.NoError(t, err)

		var count int
		require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM sales_by_category`).Scan(&count))
		assert.Equal(t, 1, count)

		runs, err := f.store.ListRuns(ctx)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.ElementsMatch(t, []string{"a.csv", "b.csv"}, []string{runs[0].Input, runs[1].Input})
	})

	t.Run("success - empty table still creates the schema", func(t *testing.T) {
		_, err := f.store.Save(ctx, store.AnalysisRun{Analysis: "sales-trend", Input: "c.csv"},
			[]domain.NamedTable{{Name: "daily_sales", Table: ma.Empty()}})
		require.NoError(t, err)

		var count int
		require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM daily_sales`).Scan(&count))
		assert.Equal(t, 0, count)
	})
}
