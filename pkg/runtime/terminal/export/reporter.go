package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
)

type TableConfig struct {
	NameWidth        int
	ValueWidth       int
	UnitWidth        int
	DescriptionWidth int
	// CellWidth caps the width of preview table cells.
	CellWidth int
	// PreviewRows caps the rows shown per table. Zero shows them all.
	PreviewRows int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:        28,
		ValueWidth:       20,
		UnitWidth:        8,
		DescriptionWidth: 30,
		CellWidth:        24,
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer, previewRows int) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	config := DefaultTableConfig()
	config.PreviewRows = previewRows
	return &Reporter{
		writer: writer,
		config: config,
	}
}

func (c *Reporter) Handle(report *domain.Report) error {
	funcMap := template.FuncMap{
		"value": FormatValue,
		"formatRow": func(name string, value string, unit string, desc string) string {
			return fmt.Sprintf("| %-*s | %-*s | %-*s | %-*s |",
				c.config.NameWidth, Truncate(name, c.config.NameWidth),
				c.config.ValueWidth, Truncate(value, c.config.ValueWidth),
				c.config.UnitWidth, Truncate(unit, c.config.UnitWidth),
				c.config.DescriptionWidth, Truncate(desc, c.config.DescriptionWidth))
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.NameWidth+2),
				strings.Repeat("-", c.config.ValueWidth+2),
				strings.Repeat("-", c.config.UnitWidth+2),
				strings.Repeat("-", c.config.DescriptionWidth+2))
		},
		"table": c.renderTable,
	}

	tmpl := `
{{.Title}}
Source: {{.Source}}
Rows: {{.Rows}}
{{- if .Period}}
Active Period: {{.Period.Start.Format "2006-01-02"}} to {{.Period.End.Format "2006-01-02"}} ({{.Period.Duration}} days)
{{- end}}
{{range .Sections}}
=== {{.Title}} ===
{{range $key, $value := .Summary}}{{$key}}: {{value $value}}
{{end}}
{{- if .Details}}
{{separator}}
{{formatRow "Name" "Value" "Unit" "Description"}}
{{separator}}
{{range .Details}}{{formatRow .Name (value .Value) .Unit .Description}}
{{end}}{{separator}}
{{end}}
{{- if .Table}}
{{table .Table}}{{end}}
{{end}}`

	t, err := template.New("report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, report)
}

// renderTable draws a bordered preview of t. Numbers are right aligned.
func (c *Reporter) renderTable(t *domain.Table) string {
	if len(t.Columns) == 0 {
		return "(no columns)\n"
	}

	shown := t
	if c.config.PreviewRows > 0 {
		shown = t.Head(c.config.PreviewRows)
	}

	widths := make([]int, len(t.Columns))
	header := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = Truncate(col.Name, c.config.CellWidth)
		widths[i] = len([]rune(header[i]))
	}
	cells := make([][]string, len(shown.Rows))
	for r, row := range shown.Rows {
		cells[r] = make([]string, len(row))
		for i, v := range row {
			s := Truncate(FormatCell(v), c.config.CellWidth)
			cells[r][i] = s
			if n := len([]rune(s)); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var b strings.Builder
	sep := tableSeparator(widths)
	b.WriteString(sep)
	writeTableRow(&b, header, widths, nil)
	b.WriteString(sep)
	for _, row := range cells {
		writeTableRow(&b, row, widths, t.Columns)
	}
	if len(cells) > 0 {
		b.WriteString(sep)
	}

	switch {
	case t.Len() == 0:
		b.WriteString("(no rows)\n")
	case shown.Len() < t.Len():
		fmt.Fprintf(&b, "(showing %d of %d rows)\n", shown.Len(), t.Len())
	}
	return b.String()
}

func tableSeparator(widths []int) string {
	var b strings.Builder
	b.WriteString("+")
	for _, w := range widths {
		b.WriteString(strings.Repeat("-", w+2))
		b.WriteString("+")
	}
	b.WriteString("\n")
	return b.String()
}

func writeTableRow(b *strings.Builder, cells []string, widths []int, cols []domain.Column) {
	b.WriteString("|")
	for i, s := range cells {
		right := cols != nil && cols[i].Kind == domain.KindNumber
		b.WriteString(" ")
		b.WriteString(pad(s, widths[i], right))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}
