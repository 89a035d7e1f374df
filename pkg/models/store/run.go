package store

import "time"

type AnalysisRun struct {
	ID         string
	Analysis   string
	Input      string
	RowsLoaded int
	CreatedAt  time.Time
}

// TableColumn is a column of a persisted result table
type TableColumn struct {
	Name string
	Type string
}

type ResultTable struct {
	Name    string
	Columns []TableColumn
	Rows    [][]any
}
