// Package pagination slices ordered collections into pages and reports
// uniform metadata for the catalog endpoints.
//
// Page sizes are permissive: anything unusable falls back to the endpoint
// default and oversized values are clamped to the endpoint cap. Page numbers
// never fail either; a page past the end resolves to the last page.
package pagination

import (
	"errors"
	"strconv"
	"strings"
)

// Limits holds the page-size policy for one endpoint.
type Limits struct {
	DefaultPerPage int
	MaxPerPage     int
}

var (
	// ListLimits applies to the plain listing endpoints.
	ListLimits = Limits{DefaultPerPage: 10, MaxPerPage: 25}
	// FilterLimits applies to the filter endpoint, which is heavier per row.
	FilterLimits = Limits{DefaultPerPage: 10, MaxPerPage: 10}
)

// Meta is the pagination block of every paginated response.
type Meta struct {
	Total       int64 `json:"total"`
	PerPage     int   `json:"per_page"`
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// Request is the raw, unvalidated page selection taken from a query string.
type Request struct {
	Page    string
	PerPage string
}

// Window is a resolved page: the metadata plus the SQL offset/limit that
// produce its rows.
type Window struct {
	Meta
	Offset int
	Limit  int
}

// parseInt parses raw as a base-10 integer. An integer too large for int
// reports overflow as +1 or -1 instead of failing.
func parseInt(raw string) (value, overflow int, err error) {
	value, err = strconv.Atoi(strings.TrimSpace(raw))
	var numErr *strconv.NumError
	if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
		if value < 0 {
			return value, -1, nil
		}
		return value, 1, nil
	}
	return value, 0, err
}

// ClampInt converts value to an int in [minValue, maxValue]. Missing,
// malformed or too small values yield def; values above maxValue yield
// maxValue, however large. A maxValue of zero disables the upper bound.
func ClampInt(value string, def, minValue, maxValue int) int {
	iv, overflow, err := parseInt(value)
	if err != nil || overflow < 0 {
		return def
	}
	if overflow > 0 {
		if maxValue > 0 {
			return maxValue
		}
		return iv
	}
	if iv < minValue {
		return def
	}
	if maxValue > 0 && iv > maxValue {
		return maxValue
	}
	return iv
}

// PerPage returns the effective page size for raw under l.
func (l Limits) PerPage(raw string) int {
	return ClampInt(raw, l.DefaultPerPage, 1, l.MaxPerPage)
}

// TotalPages returns ceil(total/perPage), never less than one so that an
// empty collection still has a first page.
func TotalPages(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 1
	}
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	if pages < 1 {
		return 1
	}
	return pages
}

// ResolvePage maps a raw page number onto [1, totalPages]. Non-numeric input
// selects the first page; any integer outside the range selects the last.
func ResolvePage(raw string, totalPages int) int {
	page, overflow, err := parseInt(raw)
	if err != nil {
		return 1
	}
	if overflow != 0 || page < 1 || page > totalPages {
		return totalPages
	}
	return page
}

// Resolve computes the window for req over a collection of total items.
func (l Limits) Resolve(req Request, total int64) Window {
	perPage := l.PerPage(req.PerPage)
	pages := TotalPages(total, perPage)
	page := ResolvePage(req.Page, pages)

	return Window{
		Meta: Meta{
			Total:       total,
			PerPage:     perPage,
			CurrentPage: page,
			TotalPages:  pages,
			HasNext:     page < pages,
			HasPrevious: page > 1,
		},
		Offset: (page - 1) * perPage,
		Limit:  perPage,
	}
}
