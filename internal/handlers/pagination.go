package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/cliptube/backend/internal/repositories"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// pagedData wraps a page of items in the shared list envelope. The items key
// varies per resource to match the original API shape, so callers build the
// data map and attach these figures through attachTo.
type pageMeta struct {
	Total       int
	TotalPages  int
	CurrentPage int
}

func (m pageMeta) attachTo(data map[string]any, totalKey string) map[string]any {
	data[totalKey] = m.Total
	data["totalPages"] = m.TotalPages
	data["currentPage"] = m.CurrentPage
	return data
}

func newPageMeta(params repositories.ListParams, total int) pageMeta {
	return pageMeta{
		Total:       total,
		TotalPages:  params.TotalPages(total),
		CurrentPage: params.Page,
	}
}

// parseListParams reads the shared page/limit/query/sort parameters.
// Out-of-range or non-numeric page and limit values are rejected rather than
// silently clamped; the original left their behavior undefined.
func parseListParams(r *http.Request) (repositories.ListParams, *apiError) {
	q := r.URL.Query()

	params := repositories.ListParams{
		Page:     1,
		Limit:    defaultPageLimit,
		Query:    strings.TrimSpace(q.Get("query")),
		SortBy:   strings.TrimSpace(q.Get("sortBy")),
		SortDesc: true,
	}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return repositories.ListParams{}, errBadRequest("page must be a positive integer")
		}
		params.Page = page
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxPageLimit {
			return repositories.ListParams{}, errBadRequest("limit must be between 1 and 100")
		}
		params.Limit = limit
	}

	switch strings.ToLower(q.Get("sortType")) {
	case "", "desc":
		params.SortDesc = true
	case "asc":
		params.SortDesc = false
	default:
		return repositories.ListParams{}, errBadRequest("sortType must be asc or desc")
	}

	return params, nil
}
