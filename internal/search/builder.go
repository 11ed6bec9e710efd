// Package search turns a SearchQuery into a paginated listing fetch plus a
// total count.
package search

import (
	"strings"

	"github.com/ocaso/ocaso-api/internal/models"
	"github.com/ocaso/ocaso-api/internal/store"
)

// likeEscape is the LIKE escape character. '!' needs no quoting in either
// MySQL or SQLite string literals, unlike a backslash.
const likeEscape = "!"

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern returns a LIKE pattern matching term anywhere.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// prefixPattern returns a LIKE pattern matching values starting with term.
func prefixPattern(term string) string {
	return likeEscaper.Replace(term) + "%"
}

const hasCategory = "EXISTS (SELECT 1 FROM listing_categories lc WHERE lc.listing_id = l.id AND lc.category_ref = ?)"

// tieBreak closes every ordering so pages never overlap or skip rows.
const tieBreak = "l.created_at DESC, l.id ASC"

// Build translates q into a listing query. Predicates are ANDed:
//
//   - status is always active
//   - category and subcategory: categories contains both; category only:
//     contains it; a subcategory without a category is ignored
//   - text: case-insensitive substring of the title
//   - priceMin / priceMax: inclusive bounds, each applied when > 0
//   - condition: exact match
//   - location: case-insensitive substring
//
// q is normalized first, so pagination is always within bounds.
func Build(q models.SearchQuery) store.ListingQuery {
	q = q.Normalized()

	var where strings.Builder
	var args []any

	// 1. Visibility.
	where.WriteString("l.status = ?")
	args = append(args, string(models.ListingActive))

	// 2. Category array, order-insensitive.
	if q.CategoryID > 0 {
		where.WriteString(" AND " + hasCategory)
		args = append(args, q.CategoryID)
		if q.SubcategoryID > 0 {
			where.WriteString(" AND " + hasCategory)
			args = append(args, q.SubcategoryID)
		}
	}

	// 3. Free text on the title.
	term := strings.ToLower(strings.TrimSpace(q.Text))
	if term != "" {
		where.WriteString(" AND LOWER(l.title) LIKE ? ESCAPE '" + likeEscape + "'")
		args = append(args, containsPattern(term))
	}

	// 4. Price bounds.
	if q.PriceMin > 0 {
		where.WriteString(" AND l.price >= ?")
		args = append(args, q.PriceMin)
	}
	if q.PriceMax > 0 {
		where.WriteString(" AND l.price <= ?")
		args = append(args, q.PriceMax)
	}

	// 5. Condition and location.
	if q.Condition != "" {
		where.WriteString(" AND l.state = ?")
		args = append(args, string(q.Condition))
	}
	if loc := strings.ToLower(strings.TrimSpace(q.Location)); loc != "" {
		where.WriteString(" AND LOWER(l.location) LIKE ? ESCAPE '" + likeEscape + "'")
		args = append(args, containsPattern(loc))
	}

	orderBy, orderArgs := ordering(q.Sort, term)
	return store.ListingQuery{
		Where:     where.String(),
		Args:      args,
		OrderBy:   orderBy,
		OrderArgs: orderArgs,
		Limit:     q.PageSize,
		Offset:    q.Offset(),
	}
}

// ordering maps a sort key to ORDER BY. Unknown keys rank by relevance: with
// a text term that is exact title match, then title prefix, then the rest;
// without one it is newest first.
func ordering(sort models.SortKey, term string) (string, []any) {
	switch sort {
	case models.SortPriceAsc:
		return "l.price ASC, " + tieBreak, nil
	case models.SortPriceDesc:
		return "l.price DESC, " + tieBreak, nil
	case models.SortDateDesc:
		return tieBreak, nil
	}

	if term == "" {
		return tieBreak, nil
	}
	rank := "CASE WHEN LOWER(l.title) = ? THEN 0 " +
		"WHEN LOWER(l.title) LIKE ? ESCAPE '" + likeEscape + "' THEN 1 " +
		"ELSE 2 END"
	return rank + ", " + tieBreak, []any{term, prefixPattern(term)}
}
