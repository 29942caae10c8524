package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageRequest(t *testing.T) {
	assert.Equal(t, PageRequest{Page: 1, Limit: 10}, NewPageRequest(0, 0))
	assert.Equal(t, PageRequest{Page: 3, Limit: 100}, NewPageRequest(3, 500))
	assert.Equal(t, PageRequest{Page: 2, Limit: 25}, NewPageRequest(2, 25))
	assert.Equal(t, 25, NewPageRequest(2, 25).Offset())
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, Pagination{Page: 1, Limit: 10, Total: 0, TotalPages: 0}, NewPagination(NewPageRequest(1, 10), 0))
	assert.Equal(t, 3, NewPagination(NewPageRequest(1, 10), 21).TotalPages)
	assert.Equal(t, 2, NewPagination(NewPageRequest(1, 10), 20).TotalPages)
}
