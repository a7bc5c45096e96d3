package option

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/enfinitus/onboarding/pkg/db/pagination"
	"gorm.io/gorm"
)

// QueryOption mutates a gorm statement before it is executed.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type queryOptionFunc func(db *gorm.DB) *gorm.DB

func (f queryOptionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

type Operator string

const (
	EQ  Operator = "="
	GT  Operator = ">"
	GTE Operator = ">="
	LT  Operator = "<"
	LTE Operator = "<="
)

type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

var fieldPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ApplyOperator adds a comparison filter. Unknown operators or malformed
// field names leave the statement untouched.
func ApplyOperator(cond Condition) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if !fieldPattern.MatchString(cond.Field) {
			return db
		}
		switch cond.Operator {
		case EQ, GT, GTE, LT, LTE:
			return db.Where(fmt.Sprintf("%s %s ?", cond.Field, cond.Operator), cond.Value)
		default:
			return db
		}
	})
}

type QuerySortBy struct {
	SortBy  string
	OrderBy string
	Allow   map[string]bool
}

func WithQuerySortBy(sortBy, orderBy string, allow map[string]bool) QuerySortBy {
	return QuerySortBy{SortBy: sortBy, OrderBy: orderBy, Allow: allow}
}

// WithSortBy orders by an allowed column, falling back to newest first. The id
// is always the tiebreaker.
func WithSortBy(s QuerySortBy) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		column := strings.ToLower(strings.TrimSpace(s.SortBy))
		if column == "" || !s.Allow[column] {
			return db.Order("id desc")
		}
		direction := "desc"
		if strings.EqualFold(strings.TrimSpace(s.OrderBy), "asc") {
			direction = "asc"
		}
		return db.Order(column + " " + direction).Order("id " + direction)
	})
}

// ApplyPagination applies keyset pagination on id (newest first) and fetches
// one extra row so callers can detect a following page.
func ApplyPagination(page pagination.Pagination) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if page.PageToken != "" {
			cursor, err := pagination.DecodeCursor(page.PageToken)
			if err != nil {
				_ = db.AddError(err)
				return db
			}
			db = db.Where("id < ?", cursor.ID)
		}
		return db.Limit(page.Limit() + 1)
	})
}
