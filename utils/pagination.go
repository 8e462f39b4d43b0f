package utils

import (
	"net/http"
	"strconv"
)

// RowsPerPage is the fixed listing page size
const RowsPerPage = 10

// Paginate returns the 1-based page of items. Pages outside the data,
// including page < 1, yield an empty slice.
func Paginate[T any](items []T, page, size int) []T {
	if page < 1 || size < 1 {
		return []T{}
	}

	// compare page counts first so (page-1)*size cannot overflow
	pages := (len(items) + size - 1) / size
	if page > pages {
		return []T{}
	}

	start := (page - 1) * size

	end := start + size
	if end > len(items) {
		end = len(items)
	}

	return items[start:end]
}

// PageFromRequest reads the page query parameter. A missing or
// unparsable value means page 1.
func PageFromRequest(r *http.Request) int {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 1
	}

	page, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	return page
}
