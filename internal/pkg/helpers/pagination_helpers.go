package helpers

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/lms/internal/app/models/dto"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	DefaultPage     = 0 // Requests are zero-indexed
)

// ParsePageRequest reads the zero-indexed "page" and the "size" query
// parameters. Missing or malformed values fall back to the defaults instead
// of failing the request.
func ParsePageRequest(c *gin.Context) dto.PageRequest {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		page = DefaultPage
	}

	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(DefaultPageSize)))
	if err != nil || size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	return dto.PageRequest{Page: clampPage(page, size), Size: size}
}

// NormalizePageRequest applies the same bounds as ParsePageRequest to a
// request built in code.
func NormalizePageRequest(req dto.PageRequest) dto.PageRequest {
	if req.Page < 0 {
		req.Page = DefaultPage
	}
	if req.Size <= 0 {
		req.Size = DefaultPageSize
	}
	if req.Size > MaxPageSize {
		req.Size = MaxPageSize
	}
	req.Page = clampPage(req.Page, req.Size)
	return req
}

// clampPage keeps page*size inside int64 so the SQL offset stays a valid
// bigint. A clamped page is still far past any real result set.
func clampPage(page, size int) int {
	if limit := math.MaxInt64/size - 1; page > limit {
		return limit
	}
	return page
}

// TotalPages is ceil(totalElements / size); zero when there are no elements.
func TotalPages(totalElements int64, size int) int {
	if totalElements <= 0 || size <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalElements) / float64(size)))
}

// NewPage assembles a page result. A nil items slice is replaced with an
// empty one so views can always range over it.
func NewPage[T any](items []T, req dto.PageRequest, totalElements int64) *dto.Page[T] {
	if items == nil {
		items = []T{}
	}
	return &dto.Page[T]{
		Items:         items,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: totalElements,
		TotalPages:    TotalPages(totalElements, req.Size),
	}
}
