// Package pagination implements page-number pagination with absolute next/previous links.
package pagination

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/SscSPs/phone_store_caisse/internal/apperrors"
)

// Params is a validated page request.
type Params struct {
	Page     int
	PageSize int
}

// Normalize applies defaults and bounds. A page size of zero takes defaultSize; sizes
// above maxSize are clamped. Pages below 1 are a validation error.
func Normalize(page, pageSize, defaultSize, maxSize int) (Params, error) {
	if page < 1 {
		return Params{}, fmt.Errorf("%w: page must be a positive integer", apperrors.ErrValidation)
	}
	switch {
	case pageSize == 0:
		pageSize = defaultSize
	case pageSize < 0:
		return Params{}, fmt.Errorf("%w: page_size must be a positive integer", apperrors.ErrValidation)
	case pageSize > maxSize:
		pageSize = maxSize
	}
	return Params{Page: page, PageSize: pageSize}, nil
}

// Offset is the number of rows skipped before this page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// TotalPages is ceil(count / pageSize).
func TotalPages(count int64, pageSize int) int {
	if count <= 0 || pageSize <= 0 {
		return 0
	}
	return int((count + int64(pageSize) - 1) / int64(pageSize))
}

// InRange reports whether page exists for count rows. Page 1 always exists.
func InRange(page int, count int64, pageSize int) bool {
	return page == 1 || page <= TotalPages(count, pageSize)
}

// Links builds the next and previous URLs for page by rewriting the page query
// parameter of current, which must be absolute. Nil means there is no such page.
func Links(current *url.URL, page int, count int64, pageSize int) (next, previous *string) {
	if page < TotalPages(count, pageSize) {
		s := withPage(current, page+1)
		next = &s
	}
	if page > 1 {
		s := withPage(current, page-1)
		previous = &s
	}
	return next, previous
}

func withPage(current *url.URL, page int) string {
	u := *current
	q := u.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
