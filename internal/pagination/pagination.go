package pagination

import (
	"math"

	"gorm.io/gorm"
)

// PageRequest holds pagination parameters parsed from query strings.
// Every list endpoint accepts page and limit.
type PageRequest struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// Defaults fills in default values when page or limit are not provided.
func (p *PageRequest) Defaults() {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.Limit == 0 {
		p.Limit = 10
	}
}

// Offset returns the SQL OFFSET for the current page.
func (p *PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Meta describes the position of a page within the full result set.
type Meta struct {
	Page      int   `json:"page"`
	Limit     int   `json:"limit"`
	Total     int64 `json:"total"`
	TotalPage int   `json:"totalPage"`
}

// PageResponse wraps a paginated list the way every list endpoint
// returns it: {"data": {"result": [...], "meta": {...}}}.
type PageResponse[T any] struct {
	Result []T  `json:"result"`
	Meta   Meta `json:"meta"`
}

// NewPageResponse creates a PageResponse from the given data and total count.
func NewPageResponse[T any](result []T, page, limit int, total int64) PageResponse[T] {
	totalPage := int(math.Ceil(float64(total) / float64(limit)))
	if result == nil {
		result = []T{}
	}
	return PageResponse[T]{
		Result: result,
		Meta: Meta{
			Page:      page,
			Limit:     limit,
			Total:     total,
			TotalPage: totalPage,
		},
	}
}

// Paginate returns a GORM scope that applies OFFSET and LIMIT for the given page request.
func Paginate(req PageRequest) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(req.Offset()).Limit(req.Limit)
	}
}
