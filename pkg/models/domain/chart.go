package domain

type ChartKind string

const (
	ChartBar  ChartKind = "bar"
	ChartLine ChartKind = "line"
)

// Chart describes an image rendered from two columns of a table.
type Chart struct {
	Kind     ChartKind
	FileName string
	Title    string
	XLabel   string
	YLabel   string
	Data     *Table
	XColumn  string
	YColumn  string
}

// NamedTable is a derived table together with the file name it is exported to.
type NamedTable struct {
	Name     string
	FileName string
	Table    *Table
}
