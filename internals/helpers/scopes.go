package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

/* ===============================
   Soft-delete view
=================================*/

type TrashView int

const (
	ViewActive TrashView = iota
	ViewTrash
	ViewAll
)

// ParseTrashView reads ?trash= : "true"/"1"/"only" → trash, "all" → everything, else active.
func ParseTrashView(c *fiber.Ctx) TrashView {
	switch strings.ToLower(strings.TrimSpace(c.Query("trash"))) {
	case "true", "1", "yes", "only":
		return ViewTrash
	case "all":
		return ViewAll
	default:
		return ViewActive
	}
}

// TrashScope filters on <table>.trash according to the view.
// table may be empty when the query has a single table.
func TrashScope(view TrashView, table string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		col := clause.Column{Table: table, Name: "trash"}
		switch view {
		case ViewAll:
			return db
		case ViewTrash:
			return db.Where(clause.Eq{Column: col, Value: true})
		default:
			return db.Where(clause.Eq{Column: col, Value: false})
		}
	}
}

// ActiveOnly is the default read scope.
func ActiveOnly(table string) func(*gorm.DB) *gorm.DB {
	return TrashScope(ViewActive, table)
}

/* ===============================
   Search
=================================*/

// SearchScope ORs a case-insensitive substring match over cols.
// An empty q adds no predicate.
func SearchScope(q string, cols ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		q = strings.TrimSpace(q)
		if q == "" || len(cols) == 0 {
			return db
		}
		pattern := "%" + escapeLike(q) + "%"
		parts := make([]string, 0, len(cols))
		args := make([]any, 0, len(cols))
		for _, col := range cols {
			parts = append(parts, "LOWER("+col+") LIKE LOWER(?) ESCAPE '\\'")
			args = append(args, pattern)
		}
		return db.Where("("+strings.Join(parts, " OR ")+")", args...)
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Paginate applies offset/limit from a resolved Paging.
func Paginate(p Paging) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset).Limit(p.Limit)
	}
}

var lockForUpdate = clause.Locking{Strength: "UPDATE"}

// FirstActive loads a non-trashed row by id; NotFound otherwise.
func FirstActive(db *gorm.DB, dest any, id uint, what string) error {
	err := db.Scopes(ActiveOnly("")).First(dest, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound("%s %d not found", what, id)
	}
	return errors.Wrap(err, "load "+what)
}

// FirstInView loads a row by id honoring the ?trash= view.
func FirstInView(db *gorm.DB, view TrashView, dest any, id uint, what string) error {
	err := db.Scopes(TrashScope(view, "")).First(dest, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound("%s %d not found", what, id)
	}
	return errors.Wrap(err, "load "+what)
}
