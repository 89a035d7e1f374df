package results

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/sales-atlas/pkg/adapters"
	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/models/store"
	"github.com/de-tools/sales-atlas/pkg/store/duckdb"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store persists the derived tables of analysis runs. Writes join the
// transaction carried by the context when there is one.
type Store interface {
	// Save writes every table and the run record in one transaction.
	Save(ctx context.Context, run store.AnalysisRun, tables []domain.NamedTable) (*store.AnalysisRun, error)
	SaveTable(ctx context.Context, table store.ResultTable) error
	SaveRun(ctx context.Context, run store.AnalysisRun) (*store.AnalysisRun, error)
	ListRuns(ctx context.Context) ([]store.AnalysisRun, error)
}

type resultsStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, domain.ConfigErr("database connection is nil", nil)
	}
	return &resultsStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *resultsStore) conn(ctx context.Context) duckdb.Conn {
	return duckdb.ConnFromContext(ctx, s.db)
}

func (s *resultsStore) Save(ctx context.Context, run store.AnalysisRun, tables []domain.NamedTable) (*store.AnalysisRun, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	txCtx := duckdb.WithTransaction(ctx, tx)
	for _, nt := range tables {
		if err := s.SaveTable(txCtx, adapters.MapDomainTableToStore(nt.Name, nt.Table)); err != nil {
			return nil, err
		}
	}

	saved, err := s.SaveRun(txCtx, run)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("run_id", saved.ID).
		Int("tables", len(tables)).
		Msg("results persisted")
	return saved, nil
}

func (s *resultsStore) SaveTable(ctx context.Context, table store.ResultTable) error {
	if table.Name == "" {
		return domain.DataErr("result table needs a name", nil)
	}
	if len(table.Columns) == 0 {
		return domain.DataErr("result table has no columns", map[string]any{"table": table.Name})
	}

	conn := s.conn(ctx)

	defs := make([]string, len(table.Columns))
	names := make([]string, len(table.Columns))
	marks := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		names[i] = quoteIdent(col.Name)
		defs[i] = names[i] + " " + col.Type
		marks[i] = "?"
	}

	create := fmt.Sprintf("CREATE OR REPLACE TABLE %s (%s)", quoteIdent(table.Name), strings.Join(defs, ", "))
	if _, err := conn.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create table %s: %w", table.Name, err)
	}

	if len(table.Rows) == 0 {
		return nil
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table.Name), strings.Join(names, ", "), strings.Join(marks, ", "))
	stmt, err := conn.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range table.Rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("insert into %s: %w", table.Name, err)
		}
	}
	return nil
}

func (s *resultsStore) SaveRun(ctx context.Context, run store.AnalysisRun) (*store.AnalysisRun, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now()
	}

	_, err := s.conn(ctx).ExecContext(ctx,
		`INSERT INTO analysis_runs (id, analysis, input, rows_loaded, created_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Analysis, run.Input, run.RowsLoaded, run.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return &run, nil
}

func (s *resultsStore) ListRuns(ctx context.Context) ([]store.AnalysisRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, analysis, input, rows_loaded, created_at
		FROM analysis_runs
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []store.AnalysisRun
	for rows.Next() {
		var run store.AnalysisRun
		if err := rows.Scan(&run.ID, &run.Analysis, &run.Input, &run.RowsLoaded, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
