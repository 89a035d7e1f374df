package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/marcboeker/go-duckdb/v2"
)

const memoryPath = ":memory:"

const AnalysisRunsSchema = `
	CREATE TABLE IF NOT EXISTS analysis_runs (
		id VARCHAR NOT NULL PRIMARY KEY,
		analysis VARCHAR NOT NULL,
		input VARCHAR NOT NULL,
		rows_loaded BIGINT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
`

var bootQueries = []string{
	AnalysisRunsSchema,
}

type Settings struct {
	// DbPath is the database file. Empty means an in-memory database.
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	path := settings.DbPath
	if path == "" {
		path = memoryPath
	}

	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", path), func(exec driver.ExecerContext) error {
		bootQueries := append([]string{}, bootQueries...)

		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, domain.FileErr("failed to open results database", map[string]any{"path": path, "error": err})
	}

	db := sql.OpenDB(c)
	return db, nil
}
