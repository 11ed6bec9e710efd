package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ocaso/ocaso-api/internal/models"
)

func TestBuildNoFilters(t *testing.T) {
	t.Parallel()

	q := Build(models.SearchQuery{})
	assert.Equal(t, "l.status = ?", q.Where)
	assert.Equal(t, []any{"active"}, q.Args)
	assert.Equal(t, "l.created_at DESC, l.id ASC", q.OrderBy)
	assert.Empty(t, q.OrderArgs)
	assert.Equal(t, 1, q.Limit)
	assert.Equal(t, 0, q.Offset)
}

func TestBuildPredicates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		query     models.SearchQuery
		wantWhere []string
		wantArgs  []any
	}{
		{
			name:      "category and subcategory",
			query:     models.SearchQuery{CategoryID: 3, SubcategoryID: 9},
			wantWhere: []string{"l.status = ?", hasCategory, hasCategory},
			wantArgs:  []any{"active", int64(3), int64(9)},
		},
		{
			name:      "category only",
			query:     models.SearchQuery{CategoryID: 3},
			wantWhere: []string{"l.status = ?", hasCategory},
			wantArgs:  []any{"active", int64(3)},
		},
		{
			name:      "subcategory without category is ignored",
			query:     models.SearchQuery{SubcategoryID: 9},
			wantWhere: []string{"l.status = ?"},
			wantArgs:  []any{"active"},
		},
		{
			name:      "text is lowercased and escaped",
			query:     models.SearchQuery{Text: "  50%_Korting! "},
			wantWhere: []string{"l.status = ?", "LOWER(l.title) LIKE ? ESCAPE '!'"},
			wantArgs:  []any{"active", "%50!%!_korting!!%"},
		},
		{
			name:      "price bounds",
			query:     models.SearchQuery{PriceMin: 50, PriceMax: 200},
			wantWhere: []string{"l.status = ?", "l.price >= ?", "l.price <= ?"},
			wantArgs:  []any{"active", 50.0, 200.0},
		},
		{
			name:      "zero price bounds are ignored",
			query:     models.SearchQuery{PriceMin: 0, PriceMax: -5},
			wantWhere: []string{"l.status = ?"},
			wantArgs:  []any{"active"},
		},
		{
			name:      "condition and location",
			query:     models.SearchQuery{Condition: models.ConditionNew, Location: "Gent"},
			wantWhere: []string{"l.status = ?", "l.state = ?", "LOWER(l.location) LIKE ? ESCAPE '!'"},
			wantArgs:  []any{"active", "new", "%gent%"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Build(tt.query)
			assert.Equal(t, strings.Join(tt.wantWhere, " AND "), q.Where)
			assert.Equal(t, tt.wantArgs, q.Args)
		})
	}
}

func TestBuildOrdering(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sort     models.SortKey
		text     string
		wantHead string
		wantArgs []any
	}{
		{models.SortPriceAsc, "", "l.price ASC, ", nil},
		{models.SortPriceDesc, "fiets", "l.price DESC, ", nil},
		{models.SortDateDesc, "", "", nil},
		{models.SortRelevance, "", "", nil},
		{"bogus", "", "", nil},
		{models.SortRelevance, "Fiets", "CASE WHEN", []any{"fiets", "fiets%"}},
		{"", "fiets", "CASE WHEN", []any{"fiets", "fiets%"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.sort)+"/"+tt.text, func(t *testing.T) {
			q := Build(models.SearchQuery{Sort: tt.sort, Text: tt.text})
			assert.True(t, strings.HasPrefix(q.OrderBy, tt.wantHead), q.OrderBy)
			assert.True(t, strings.HasSuffix(q.OrderBy, tieBreak), q.OrderBy)
			assert.Equal(t, tt.wantArgs, q.OrderArgs)
		})
	}
}

func TestBuildPagination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		page, size         int
		wantLimit, wantOff int
	}{
		{1, 20, 20, 0},
		{3, 20, 20, 40},
		{2, 500, 50, 50},
		{0, 0, 1, 0},
		{-4, -1, 1, 0},
	}
	for _, tt := range tests {
		q := Build(models.SearchQuery{Page: tt.page, PageSize: tt.size})
		assert.Equal(t, tt.wantLimit, q.Limit, "page=%d size=%d", tt.page, tt.size)
		assert.Equal(t, tt.wantOff, q.Offset, "page=%d size=%d", tt.page, tt.size)
	}
}
