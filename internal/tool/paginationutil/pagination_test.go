package paginationutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimit(t *testing.T) {
	items := []int{1, 2, 3, 4}

	got, page := Limit(items, 2)
	assert.Equal(t, []int{1, 2}, got)
	assert.Equal(t, Page{Total: 4, Truncated: true}, page)
	assert.Equal(t, "\n[showing 2 of 4 results; narrow the search]", page.Footer(len(got)))

	got, page = Limit(items, 0)
	assert.Len(t, got, 4)
	assert.False(t, page.Truncated)
	assert.Empty(t, page.Footer(4))

	got, _ = Limit(items, 10)
	assert.Len(t, got, 4)
}
