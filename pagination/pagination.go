// Package pagination computes page bounds for list endpoints.
package pagination

// DefaultPageSize is the page size used by list endpoints unless configured
// otherwise.
const DefaultPageSize = 10

// Page holds the resolved bounds for one page of a collection.
type Page struct {
	Page       int
	TotalPages int
	PageSize   int
	Offset     int
}

// Paginate clamps the requested page against the collection size and
// computes the query offset. A collection always has at least one page,
// even when empty.
func Paginate(count, requestedPage, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	totalPages := (count + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	page := requestedPage
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	return Page{
		Page:       page,
		TotalPages: totalPages,
		PageSize:   pageSize,
		Offset:     (page - 1) * pageSize,
	}
}
