package service

import (
	"math"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// normalizePage applies defaults and the upper limit and returns the page,
// limit and the derived offset.  page is clamped so the offset never
// overflows; such a page is simply past the end and comes back empty.
func normalizePage(page, limit int) (int, int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if maxPage := math.MaxInt/limit + 1; page > maxPage {
		page = maxPage
	}
	return page, limit, (page - 1) * limit
}

// isDesc treats anything other than "desc" as ascending.
func isDesc(order string) bool {
	return strings.EqualFold(strings.TrimSpace(order), "desc")
}
