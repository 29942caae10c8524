package persistence

import (
	"math"

	"gorm.io/gorm"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// PageRequest is a 1-based page with a row limit.
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest applies the default page and limit and caps the limit at MaxPageLimit.
func NewPageRequest(page, limit int) PageRequest {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return PageRequest{Page: page, Limit: limit}
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Paginate counts q, then applies ordering and the page window to it.
func Paginate(q *gorm.DB, p PageRequest, order string) (*gorm.DB, int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	return q.Order(order).Offset(p.Offset()).Limit(p.Limit), total, nil
}

// Pagination is the listing envelope returned alongside a page of rows.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func NewPagination(p PageRequest, total int64) Pagination {
	pages := 0
	if total > 0 {
		pages = int(math.Ceil(float64(total) / float64(p.Limit)))
	}
	return Pagination{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}
}
