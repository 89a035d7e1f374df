package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/runtime/terminal/export"
)

// Reporter outputs reports to the console as plain text
type Reporter struct {
	writer      io.Writer
	previewRows int
}

// NewReporter creates a new plain text console reporter
func NewReporter(writer io.Writer, previewRows int) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer, previewRows: previewRows}
}

func (c *Reporter) Handle(report *domain.Report) error {
	tmpl := `
{{.Title}}
Source: {{.Source}}
Rows: {{.Rows}}
{{- if .Period}}
Period: {{.Period.Start.Format "2006-01-02"}} to {{.Period.End.Format "2006-01-02"}} ({{.Period.Duration}} days)
{{- end}}
{{range .Sections}}
{{.Title}}:
{{range $key, $value := .Summary}}{{$key}}: {{value $value}}
{{end}}
{{- range .Details}}- {{.Name}}: {{value .Value}}{{if .Unit}} {{.Unit}}{{end}}{{if .Description}} ({{.Description}}){{end}}
{{end}}
{{- if .Table}}{{rows .Table}}{{end}}
{{- end}}`

	t, err := template.New("report").Funcs(template.FuncMap{
		"value": export.FormatValue,
		"rows":  c.rows,
	}).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, report)
}

// rows prints the table like a data frame: a header line, then one
// space-separated line per row.
func (c *Reporter) rows(t *domain.Table) string {
	shown := t
	if c.previewRows > 0 {
		shown = t.Head(c.previewRows)
	}

	var b strings.Builder
	b.WriteString(strings.Join(t.ColumnNames(), " "))
	b.WriteString("\n")
	for _, row := range shown.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = export.FormatCell(v)
		}
		b.WriteString(strings.Join(cells, " "))
		b.WriteString("\n")
	}
	if shown.Len() < t.Len() {
		fmt.Fprintf(&b, "[%d of %d rows]\n", shown.Len(), t.Len())
	}
	return b.String()
}
