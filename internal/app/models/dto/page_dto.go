package dto

// PageRequest selects a page of a list. Page is zero-indexed.
type PageRequest struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

// Offset is the number of rows skipped before this page.
func (r PageRequest) Offset() uint64 {
	if r.Page <= 0 || r.Size <= 0 {
		return 0
	}
	return uint64(r.Page) * uint64(r.Size)
}

// Limit is the maximum number of rows on this page.
func (r PageRequest) Limit() uint64 {
	if r.Size <= 0 {
		return 0
	}
	return uint64(r.Size)
}

// Page is one slice of an ordered result set plus its position in the set.
// Items is never nil, a page past the end is simply empty.
type Page[T any] struct {
	Items         []T   `json:"items"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// CurrentPage is the one-indexed page number shown to users.
func (p *Page[T]) CurrentPage() int {
	return p.Page + 1
}
