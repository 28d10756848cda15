package persistence

import "strings"

// sortColumns whitelists the columns a listing may be ordered by. Anything
// else from the query string falls back to the default, so user input never
// reaches the ORDER BY clause.
type sortColumns struct {
	allowed    map[string]struct{}
	defaultCol string
	defaultDir string
}

func newSortColumns(defaultCol, defaultDir string, cols ...string) sortColumns {
	s := sortColumns{
		allowed:    make(map[string]struct{}, len(cols)+2),
		defaultCol: defaultCol,
		defaultDir: defaultDir,
	}
	for _, c := range append(cols, "created_at", "updated_at") {
		s.allowed[c] = struct{}{}
	}
	return s
}

func (s sortColumns) column(orderBy string) string {
	col := strings.TrimSpace(orderBy)
	if _, ok := s.allowed[col]; ok {
		return col
	}
	return s.defaultCol
}

// direction is ASC only when asked for explicitly; an empty value uses the
// listing's default.
func direction(orderDir, fallback string) string {
	dir := strings.TrimSpace(orderDir)
	if dir == "" {
		dir = fallback
	}
	if strings.EqualFold(dir, "asc") {
		return "ASC"
	}
	return "DESC"
}

// order builds the ORDER BY clause. id breaks ties so pages are stable.
func (s sortColumns) order(orderBy, orderDir string) string {
	return s.column(orderBy) + " " + direction(orderDir, s.defaultDir) + ", id ASC"
}

var (
	productSort = newSortColumns("name", "asc", "name", "sale_price", "stock_quantity")
	clientSort  = newSortColumns("name", "asc", "name", "balance")
	saleSort    = newSortColumns("created_at", "desc", "total_value", "total_paid", "status", "client_name")
)
