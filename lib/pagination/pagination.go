// Package pagination slices in-memory lists into pages.
package pagination

import (
	"net/http"
	"net/url"
	"strconv"
)

// DefaultPageSize is used when a list does not configure one.
const DefaultPageSize = 10

// Params holds the requested page and page size.
type Params struct {
	Page    int
	PerPage int
}

// Offset returns the index of the first item of the page.
func (p Params) Offset() int { return (p.Page - 1) * p.PerPage }

// FromRequest reads the page query parameter. Values that are not positive
// integers select page 1. A non-positive perPage becomes DefaultPageSize.
func FromRequest(r *http.Request, perPage int) Params {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}
	p := Params{Page: 1, PerPage: perPage}
	if r == nil {
		return p
	}
	if page := r.URL.Query().Get("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 0 {
			p.Page = v
		}
	}
	return p
}

// Page is one page of a list.
type Page[T any] struct {
	Items      []T
	TotalCount int
	Page       int
	PerPage    int
	TotalPages int
	HasNext    bool
	HasPrev    bool
}

// Paginate returns the page of items selected by params. A page past the
// end selects the last page.
func Paginate[T any](items []T, params Params) Page[T] {
	if params.PerPage <= 0 {
		params.PerPage = DefaultPageSize
	}
	if params.Page <= 0 {
		params.Page = 1
	}

	total := len(items)
	totalPages := total / params.PerPage
	if total%params.PerPage > 0 {
		totalPages++
	}
	params.Page = min(params.Page, max(totalPages, 1))

	start := min(params.Offset(), total)
	end := min(start+params.PerPage, total)

	return Page[T]{
		Items:      items[start:end],
		TotalCount: total,
		Page:       params.Page,
		PerPage:    params.PerPage,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1,
	}
}

// URL returns path with the page query parameter set.
func URL(path string, page int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	return path + "?" + q.Encode()
}
