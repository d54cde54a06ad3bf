package dbutil

import (
	"github.com/foodgram/backend/pkg/errors"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 6
	MaxPageSize     = 100
)

// Pagination is a page request with 1-based page numbers.
type Pagination struct {
	Page  int
	Limit int
}

// NewPagination clamps page and limit into their valid ranges.
func NewPagination(page, limit int) Pagination {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return Pagination{Page: page, Limit: limit}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Check rejects pages past the end of a result of count rows.
// The first page is always valid, even when empty.
func (p Pagination) Check(count int64) error {
	if p.Page > 1 && int64(p.Offset()) >= count {
		return errors.NotFound.Explain("Invalid page.")
	}
	return nil
}

// HasNext reports whether a page follows this one.
func (p Pagination) HasNext(count int64) bool {
	return int64(p.Offset()+p.Limit) < count
}

// Scope applies offset and limit to a query.
func (p Pagination) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.Limit)
	}
}

// Page is one page of results together with the total row count.
type Page[T any] struct {
	Items      []T
	Count      int64
	Pagination Pagination
}
