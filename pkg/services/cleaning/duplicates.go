package cleaning

import "github.com/de-tools/sales-atlas/pkg/models/domain"

// DropDuplicates removes rows that exactly repeat an earlier row, keeping the
// first occurrence.
func DropDuplicates(t *domain.Table) *domain.Table {
	seen := make(map[string]struct{}, t.Len())
	return t.Where(func(row domain.Row) bool {
		key := row.Key()
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
		return true
	})
}
