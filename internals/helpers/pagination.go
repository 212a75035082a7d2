package helper

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
)

type Paging struct {
	Page    int
	PerPage int
	Offset  int
	Limit   int
}

// ResolvePaging reads ?page= and ?limit= (alias ?per_page=) and clamps them:
// page >= 1, 1 <= limit <= maxPerPage. Garbage falls back to the defaults.
func ResolvePaging(c *fiber.Ctx, defaultPerPage, maxPerPage int) Paging {
	pageStr := strings.TrimSpace(c.Query("page"))
	perPageStr := strings.TrimSpace(c.Query("limit"))
	if perPageStr == "" {
		perPageStr = strings.TrimSpace(c.Query("per_page"))
	}
	return NewPaging(atoiDefault(pageStr, DefaultPage), atoiDefault(perPageStr, defaultPerPage), defaultPerPage, maxPerPage)
}

func NewPaging(page, perPage, defaultPerPage, maxPerPage int) Paging {
	if defaultPerPage <= 0 {
		defaultPerPage = DefaultPerPage
	}
	if page < 1 {
		page = DefaultPage
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if maxPerPage > 0 && perPage > maxPerPage {
		perPage = maxPerPage
	}
	return Paging{
		Page:    page,
		PerPage: perPage,
		Offset:  (page - 1) * perPage,
		Limit:   perPage,
	}
}

// BuildPaginationFromPage computes total_pages = ceil(total/perPage).
// Zero rows means zero pages.
func BuildPaginationFromPage(total int64, page, perPage int) Pagination {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page <= 0 {
		page = DefaultPage
	}
	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	return Pagination{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

func (p Paging) Build(total int64) Pagination {
	return BuildPaginationFromPage(total, p.Page, p.PerPage)
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
