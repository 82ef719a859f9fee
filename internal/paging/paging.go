// Package paging normalizes page/limit parameters and carries list envelopes.
package paging

import "gorm.io/gorm"

// Params is a requested page. Zero values mean "use the default".
type Params struct {
	Page  int
	Limit int
}

// Bounds are the per-resource defaults and maximum page size.
type Bounds struct {
	DefaultLimit int
	MaxLimit     int
}

var (
	// Shifts bounds planner shift listings.
	Shifts = Bounds{DefaultLimit: 10, MaxLimit: 50}
	// LossReasons bounds the admin reason catalog.
	LossReasons = Bounds{DefaultLimit: 20, MaxLimit: 100}
)

// Normalize clamps p into b: page is at least 1, limit falls back to the
// default when unset and is capped at the maximum.
func (b Bounds) Normalize(p Params) Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = b.DefaultLimit
	}
	if p.Limit > b.MaxLimit {
		p.Limit = b.MaxLimit
	}
	return p
}

// Offset is the number of rows before the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Scope applies limit and offset to a query.
func (p Params) Scope(db *gorm.DB) *gorm.DB {
	return db.Offset(p.Offset()).Limit(p.Limit)
}

// List is the unpaginated envelope.
type List[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// NewList wraps items, keeping an empty slice rather than null.
func NewList[T any](items []T) List[T] {
	if items == nil {
		items = []T{}
	}
	return List[T]{Items: items, Total: len(items)}
}

// Page is the paginated envelope. Total counts every matching row.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// NewPage builds a Page envelope for p.
func NewPage[T any](items []T, total int64, p Params) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total, Page: p.Page, Limit: p.Limit}
}
