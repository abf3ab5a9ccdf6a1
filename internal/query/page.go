package query

import "math"

// Paging defaults and bounds.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Page selects one window of a listing. Number is 1-based.
type Page struct {
	Number int
	Limit  int
}

// NewPage builds a Page, substituting defaults for zero values and capping
// the limit at MaxLimit. Callers validate lower bounds before calling.
func NewPage(number, limit int) Page {
	if number < 1 {
		number = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Number: number, Limit: limit}
}

// Offset returns the number of rows skipped before this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// Pagination is the metadata block returned alongside a page of records.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalCount  int  `json:"totalCount"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// NewPagination derives pagination metadata for page given total matching rows.
func NewPagination(page Page, total int) Pagination {
	totalPages := 0
	if page.Limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(page.Limit)))
	}
	return Pagination{
		CurrentPage: page.Number,
		TotalPages:  totalPages,
		TotalCount:  total,
		HasNextPage: page.Number < totalPages,
		HasPrevPage: page.Number > 1,
	}
}

// Result is one page of records plus the total number of matching rows.
type Result[T any] struct {
	Items      []T
	TotalCount int
}
