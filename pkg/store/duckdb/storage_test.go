package duckdb

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB_BootSchema(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "duckdb-test-*")
	require.NoError(t, err)

	defer func() {
		err := os.RemoveAll(tmpDir)
		if err != nil {
			t.Errorf("failed to cleanup test directory: %v", err)
		}
	}()

	dbPath := filepath.Join(tmpDir, "test.db")
	db, err := NewDB(Settings{
		DbPath: dbPath,
	})
	require.NoError(t, err)
	require.NotNil(t, db)

	defer func() {
		err := db.Close()
		if err != nil {
			t.Errorf("failed to close database connection: %v", err)
		}
	}()

	_, err = db.Exec(
		`INSERT INTO analysis_runs (id, analysis, input, rows_loaded) VALUES (?, ?, ?, ?)`,
		"run-001", "sales-trend", "sales.csv", 42,
	)
	require.NoError(t, err)

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM analysis_runs WHERE id = ?", "run-001").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestTransactionContext(t *testing.T) {
	db, err := NewDB(Settings{})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	t.Run("success - no transaction by default", func(t *testing.T) {
		assert.Nil(t, GetTransaction(context.Background()))
	})

	t.Run("success - transaction travels with the context", func(t *testing.T) {
		tx, err := db.BeginTx(context.Background(), &sql.TxOptions{})
		require.NoError(t, err)
		defer tx.Rollback()

		ctx := WithTransaction(context.Background(), tx)
		assert.Same(t, tx, GetTransaction(ctx))
		assert.Same(t, tx, ConnFromContext(ctx, db))
	})

	t.Run("success - database outside a transaction", func(t *testing.T) {
		assert.Same(t, db, ConnFromContext(context.Background(), db))
	})
}
