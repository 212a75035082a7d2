package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagingClamps(t *testing.T) {
	p := NewPaging(0, 0, DefaultPerPage, MaxPerPage)
	assert.Equal(t, Paging{Page: 1, PerPage: 10, Offset: 0, Limit: 10}, p)

	p = NewPaging(3, 500, DefaultPerPage, MaxPerPage)
	assert.Equal(t, 100, p.Limit)
	assert.Equal(t, 200, p.Offset)
}

func TestBuildPagination(t *testing.T) {
	p := BuildPaginationFromPage(21, 2, 10)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	p = BuildPaginationFromPage(0, 1, 10)
	assert.Zero(t, p.TotalPages)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrev)

	p = BuildPaginationFromPage(20, 2, 10)
	assert.Equal(t, 2, p.TotalPages)
	assert.False(t, p.HasNext)
}
