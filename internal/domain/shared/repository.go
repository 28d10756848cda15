package shared

// Filter is the list query shared by every repository. Filters carries the
// per-aggregate extras ("in_stock", "has_balance", "kind").
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]interface{}
}

// Offset is the number of rows before Page; zero when paging is unset.
func (f Filter) Offset() int {
	if f.Page > 0 && f.PageSize > 0 {
		return (f.Page - 1) * f.PageSize
	}
	return 0
}
