package repositories

import "fmt"

// ListParams carries the shared page/limit/sort/filter shape used by every
// list query. Page and Limit are validated at the HTTP boundary; SortBy is an
// API-level field name translated through a per-query whitelist before it
// reaches SQL.
type ListParams struct {
	Page     int
	Limit    int
	Query    string
	SortBy   string
	SortDesc bool
}

func (p ListParams) offset() int {
	return (p.Page - 1) * p.Limit
}

// orderClause resolves the requested sort field against the provided
// whitelist, falling back to created_at. Only whitelisted column names ever
// reach the SQL text.
func (p ListParams) orderClause(columns map[string]string) string {
	column, ok := columns[p.SortBy]
	if !ok {
		if fallback, ok := columns["createdAt"]; ok {
			column = fallback
		} else {
			column = "created_at"
		}
	}
	direction := "ASC"
	if p.SortDesc {
		direction = "DESC"
	}
	return fmt.Sprintf("%s %s", column, direction)
}

// TotalPages computes the page count for the given total under this limit.
func (p ListParams) TotalPages(total int) int {
	if p.Limit <= 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}
