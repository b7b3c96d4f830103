// Package paging provides the windowing arithmetic shared by the paginated
// list operations.
package paging

import "errors"

// DefaultLimit applies when a request carries no page size.
const DefaultLimit = 10

// ErrBadPage and ErrBadLimit reject windows that cannot be computed.
var (
	ErrBadPage  = errors.New("paging: page must be >= 1")
	ErrBadLimit = errors.New("paging: limit must be >= 1")
)

// Page is a validated pagination window. Number is 1-based.
type Page struct {
	Number int
	Limit  int
}

// New validates page and limit. A zero limit is rejected rather than treated
// as unlimited; callers wanting the default pass DefaultLimit explicitly.
func New(number, limit int) (Page, error) {
	if number < 1 {
		return Page{}, ErrBadPage
	}
	if limit < 1 {
		return Page{}, ErrBadLimit
	}
	return Page{Number: number, Limit: limit}, nil
}

// Skip returns the number of records preceding this window.
func (p Page) Skip() int64 {
	return int64(p.Number-1) * int64(p.Limit)
}

// TotalPages returns ceil(total/limit) for the page's limit.
func (p Page) TotalPages(total int64) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}
