package models

import "strings"

// SortField selects between the two listing query shapes.
type SortField string

const (
	SortLatest       SortField = "LATEST"
	SortPostMostView SortField = "POST_MOST_VIEW"

	// Aliases accepted on input.
	sortRecency    SortField = "RECENCY"
	sortMostViewed SortField = "MOST_VIEWED"
)

// SortDirection applies to the recency ordering only.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PostPaginationParam carries the listing query.
type PostPaginationParam struct {
	Keyword   string
	Field     SortField
	Direction SortDirection
	Page      int
	Size      int
}

// Normalize fills defaults and rejects out-of-range values.
func (p PostPaginationParam) Normalize() (PostPaginationParam, error) {
	p.Keyword = strings.TrimSpace(p.Keyword)

	switch SortField(strings.ToUpper(string(p.Field))) {
	case "", SortLatest, sortRecency:
		p.Field = SortLatest
	case SortPostMostView, sortMostViewed:
		p.Field = SortPostMostView
	default:
		return p, NewValidationError("Invalid sort field")
	}

	switch SortDirection(strings.ToUpper(string(p.Direction))) {
	case "", SortDesc:
		p.Direction = SortDesc
	case SortAsc:
		p.Direction = SortAsc
	default:
		return p, NewValidationError("Invalid sort direction")
	}

	if p.Page < 0 {
		return p, NewValidationError("Page must not be negative")
	}
	if p.Size < 0 {
		return p, NewValidationError("Size must be positive")
	}
	if p.Size == 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p, nil
}

// Offset is the row offset of the requested page.
func (p PostPaginationParam) Offset() int {
	return p.Page * p.Size
}

// Page is one page of results.
type Page[T any] struct {
	Content       []T   `json:"content"`
	PageNumber    int   `json:"pageNumber"`
	PageSize      int   `json:"pageSize"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// NewPage assembles a page and derives the page count.
func NewPage[T any](content []T, param PostPaginationParam, total int64) *Page[T] {
	if content == nil {
		content = []T{}
	}
	pages := 0
	if param.Size > 0 {
		pages = int((total + int64(param.Size) - 1) / int64(param.Size))
	}
	return &Page[T]{
		Content:       content,
		PageNumber:    param.Page,
		PageSize:      param.Size,
		TotalElements: total,
		TotalPages:    pages,
	}
}

// MapPage applies fn to every element, keeping the page metadata.
func MapPage[T any](page *Page[T], fn func(T) T) *Page[T] {
	out := make([]T, len(page.Content))
	for i, item := range page.Content {
		out[i] = fn(item)
	}
	cp := *page
	cp.Content = out
	return &cp
}
