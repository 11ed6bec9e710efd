package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchQueryNormalized(t *testing.T) {
	tests := []struct {
		name         string
		page, size   int
		wantPage     int
		wantPageSize int
	}{
		{"defaults kept", 1, 20, 1, 20},
		{"page below one", -3, 10, 1, 10},
		{"size above max", 2, 500, 2, 50},
		{"size exactly max", 1, 50, 1, 50},
		{"size zero", 1, 0, 1, 1},
		{"size negative", 1, -5, 1, 1},
		{"page past offset range", math.MaxInt, 50, MaxPage, 50},
		{"page at limit", MaxPage, 50, MaxPage, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SearchQuery{Page: tt.page, PageSize: tt.size}.Normalized()
			assert.Equal(t, tt.wantPage, got.Page)
			assert.Equal(t, tt.wantPageSize, got.PageSize)
			assert.GreaterOrEqual(t, got.Offset(), 0)
		})
	}
}

func TestSearchQueryOffset(t *testing.T) {
	q := SearchQuery{Page: 3, PageSize: 20}
	assert.Equal(t, 40, q.Offset())
}

func TestNewSearchPage(t *testing.T) {
	p := NewSearchPage(nil, 41, 1, 20)
	assert.Equal(t, 3, p.TotalPages)
	assert.NotNil(t, p.Items)

	empty := NewSearchPage(nil, 0, 1, 20)
	assert.Equal(t, 0, empty.TotalPages)
}

func TestListingEnums(t *testing.T) {
	assert.True(t, ConditionLikeNew.Valid())
	assert.False(t, Condition("mint").Valid())
	assert.True(t, ListingDraft.Valid())
	assert.False(t, ListingStatus("deleted").Valid())
}

func TestListingCategoryAccessors(t *testing.T) {
	l := Listing{Categories: []int64{4, 9}}
	assert.Equal(t, int64(4), l.CategoryID())
	assert.Equal(t, int64(9), l.SubcategoryID())

	var none Listing
	assert.Zero(t, none.CategoryID())
	assert.Zero(t, none.SubcategoryID())
}
