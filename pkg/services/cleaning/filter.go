package cleaning

import (
	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/hashicorp/go-bexpr"
)

// Filter keeps the rows matching a boolean expression such as
// `region == "north" and product != "widget"`. Fields are compared against
// the rendered cell values; nulls render as "".
func Filter(t *domain.Table, expr string) (*domain.Table, error) {
	if expr == "" {
		return t, nil
	}

	evaluator, err := bexpr.CreateEvaluator(expr)
	if err != nil {
		return nil, domain.ParseErr("invalid filter expression", map[string]any{
			"expr":  expr,
			"error": err,
		})
	}

	out := t.Empty()
	names := t.ColumnNames()
	for r, row := range t.Rows {
		vars := make(map[string]string, len(names))
		for i, name := range names {
			vars[name] = row[i].String()
		}

		match, err := evaluator.Evaluate(vars)
		if err != nil {
			return nil, domain.DataErr("cannot evaluate filter expression", map[string]any{
				"expr":  expr,
				"row":   r + 1,
				"error": err,
			})
		}
		if match {
			out.Rows = append(out.Rows, row)
		}
	}
	return out, nil
}
