package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dugouthq/dugout/shared/validation"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// Scoped narrows a query to one team. Every read and write goes through this
// filter so a row in another team is indistinguishable from a missing row.
func Scoped(db *gorm.DB, teamID uuid.UUID) *gorm.DB {
	return db.Where("team_id = ?", teamID)
}

// ScopedActive additionally hides soft-deleted rows.
func ScopedActive(db *gorm.DB, teamID uuid.UUID) *gorm.DB {
	return Scoped(db, teamID).Where("is_active = ?", true)
}

// FindScoped loads one row by id within the team, optionally restricted to
// active rows. Returns gorm.ErrRecordNotFound for missing, foreign-team, and
// (when activeOnly) soft-deleted rows alike.
func FindScoped(db *gorm.DB, dest interface{}, teamID, id uuid.UUID, activeOnly bool) error {
	q := Scoped(db, teamID).Where("id = ?", id)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	return q.First(dest).Error
}

// Pagination is the parsed page/limit pair from a list request.
type Pagination struct {
	Page  int
	Limit int
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParsePagination reads page and limit query params, clamping to sane bounds.
func ParsePagination(c *gin.Context) Pagination {
	p := Pagination{Page: defaultPage, Limit: defaultLimit}

	if raw := c.Query("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 1 {
			p.Page = n
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 1 {
			p.Limit = n
		}
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

// Sort is a validated orderBy/sortDirection pair.
type Sort struct {
	Column    string
	Direction string
}

// OrderClause renders the sort for gorm's Order().
func (s Sort) OrderClause() string {
	return s.Column + " " + s.Direction
}

// ParseSort validates the orderBy and sortDirection query params against a
// column whitelist. Invalid values produce field errors naming the offending
// params instead of silently falling back.
func ParseSort(c *gin.Context, allowed []string, defaultOrder Sort) (Sort, []validation.FieldError) {
	var errs []validation.FieldError
	sort := defaultOrder

	if col := c.Query("orderBy"); col != "" {
		ok := false
		for _, a := range allowed {
			if col == a {
				ok = true
				break
			}
		}
		if !ok {
			errs = append(errs, validation.FieldError{
				Path:    "orderBy",
				Message: fmt.Sprintf("orderBy must be one of: %s", strings.Join(allowed, ", ")),
			})
		} else {
			sort.Column = col
		}
	}

	if dir := c.Query("sortDirection"); dir != "" {
		switch strings.ToUpper(dir) {
		case "ASC", "DESC":
			sort.Direction = strings.ToUpper(dir)
		default:
			errs = append(errs, validation.FieldError{
				Path:    "sortDirection",
				Message: "sortDirection must be ASC or DESC",
			})
		}
	}

	return sort, errs
}

// ApplySearch adds a case-insensitive substring match across a fixed set of
// text columns.
func ApplySearch(db *gorm.DB, term string, columns []string) *gorm.DB {
	if term == "" || len(columns) == 0 {
		return db
	}

	pattern := "%" + term + "%"
	clause := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, col := range columns {
		clause[i] = col + " ILIKE ?"
		args[i] = pattern
	}
	return db.Where(strings.Join(clause, " OR "), args...)
}

// ClearDefaultSiblings unsets is_default on every other row of the model in
// the same team, as one statement. Callers run this inside the same
// transaction that sets the new default, so a crash can never leave two
// defaults behind.
func ClearDefaultSiblings(tx *gorm.DB, model interface{}, teamID, keepID uuid.UUID) error {
	return tx.Model(model).
		Where("team_id = ? AND id <> ? AND is_default = ?", teamID, keepID, true).
		Update("is_default", false).Error
}
