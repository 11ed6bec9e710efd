package models

import "math"

// SortKey selects the result ordering of a search.
type SortKey string

const (
	SortRelevance SortKey = "relevance"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortDateDesc  SortKey = "date_desc"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 50
	// MaxPage keeps Offset within int for every allowed page size.
	MaxPage = math.MaxInt / MaxPageSize
)

// SearchQuery is the value object a search is built from. Zero values mean
// "no filter" for every facet.
type SearchQuery struct {
	Text          string
	CategoryID    int64
	SubcategoryID int64
	PriceMin      float64
	PriceMax      float64
	Condition     Condition
	Location      string
	Sort          SortKey
	Page          int
	PageSize      int
}

// Normalized returns a copy with Page clamped to [1, MaxPage] and PageSize to [1, MaxPageSize].
// Callers apply DefaultPageSize themselves when no size was requested.
func (q SearchQuery) Normalized() SearchQuery {
	q.Page = min(max(q.Page, 1), MaxPage)
	q.PageSize = min(max(q.PageSize, 1), MaxPageSize)
	return q
}

// Offset returns the row offset of the page.
func (q SearchQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// SearchPage is one page of search results plus the total match count.
type SearchPage struct {
	Items      []Listing `json:"results"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"limit"`
	TotalPages int       `json:"totalPages"`
}

// NewSearchPage builds a page and derives TotalPages.
func NewSearchPage(items []Listing, total, page, pageSize int) SearchPage {
	if items == nil {
		items = []Listing{}
	}
	pages := 0
	if pageSize > 0 {
		pages = (total + pageSize - 1) / pageSize
	}
	return SearchPage{Items: items, Total: total, Page: page, PageSize: pageSize, TotalPages: pages}
}
