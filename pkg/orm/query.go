// Package orm is a thin chainable wrapper over GORM used by the SQL
// repositories, plus the pagination envelope shared by every list endpoint.
package orm

import (
	"context"
	"math"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/shopease/pkg/database"
)

// Pagination is the page metadata returned alongside list results.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewPagination computes TotalPages = ceil(total / limit).
func NewPagination(page, limit int, total int64) Pagination {
	p := Pagination{Page: page, Limit: limit, Total: total}
	if limit > 0 {
		p.TotalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return p
}

// Offset is the zero-based row offset of the page.
func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Clamp normalises page and limit: page ≥ 1, 1 ≤ limit ≤ max, and limit
// falls back to def when unset.
func Clamp(page, limit, def, max int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return page, limit
}

// Query is an immutable chainable query.
type Query struct {
	db *gorm.DB
}

// DB starts a query on the process-wide connection.
func DB() *Query {
	return &Query{db: database.DB}
}

// From starts a query on db (typically a transaction).
func From(db *gorm.DB) *Query {
	return &Query{db: db}
}

func (q *Query) WithContext(ctx context.Context) *Query {
	return &Query{db: q.db.WithContext(ctx)}
}

func (q *Query) Model(v interface{}) *Query {
	return &Query{db: q.db.Model(v)}
}

func (q *Query) Where(query interface{}, args ...interface{}) *Query {
	return &Query{db: q.db.Where(query, args...)}
}

// WhereIf applies the condition only when cond is true.
func (q *Query) WhereIf(cond bool, query interface{}, args ...interface{}) *Query {
	if !cond {
		return q
	}
	return q.Where(query, args...)
}

func (q *Query) Order(value interface{}) *Query {
	return &Query{db: q.db.Order(value)}
}

func (q *Query) Preload(query string, args ...interface{}) *Query {
	return &Query{db: q.db.Preload(query, args...)}
}

func (q *Query) Limit(n int) *Query {
	return &Query{db: q.db.Limit(n)}
}

func (q *Query) Get(dest interface{}) error {
	return q.fresh().Find(dest).Error
}

func (q *Query) First(dest interface{}) error {
	return q.fresh().First(dest).Error
}

func (q *Query) Count() (int64, error) {
	var n int64
	err := q.fresh().Count(&n).Error
	return n, err
}

// fresh returns a session that terminal calls can use without mutating q.
func (q *Query) fresh() *gorm.DB {
	return q.db.Session(&gorm.Session{})
}

// Paginate counts the matching rows, then loads one page into dest.
func (q *Query) Paginate(page, limit int, dest interface{}) (Pagination, error) {
	total, err := q.Count()
	if err != nil {
		return Pagination{}, err
	}
	p := NewPagination(page, limit, total)
	if err := q.fresh().Offset(p.Offset()).Limit(limit).Find(dest).Error; err != nil {
		return Pagination{}, err
	}
	return p, nil
}

// Gorm exposes the underlying handle for the rare query the builder lacks.
func (q *Query) Gorm() *gorm.DB { return q.db }
