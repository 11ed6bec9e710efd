package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	domainerrors "github.com/ocaso/ocaso-api/internal/errors"
	"github.com/ocaso/ocaso-api/internal/models"
)

// SearchListings handles GET /v1/search.
//
// Query params: q, catId, subId (or cat, sub as slugs), priceMin, priceMax,
// state, location, sort, page, limit. Malformed numbers fall back to their
// defaults. A failed read is served as an empty page.
func (h *Handlers) SearchListings(c *gin.Context) {
	q := parseSearchQuery(c)

	// 1. Slug filters resolve to ids. An unknown slug matches nothing.
	if q.CategoryID == 0 {
		if catSlug := strings.TrimSpace(c.Query("cat")); catSlug != "" {
			if !h.resolveSearchSlugs(c, &q, catSlug, strings.TrimSpace(c.Query("sub"))) {
				empty := q.Normalized()
				c.JSON(http.StatusOK, models.NewSearchPage(nil, 0, empty.Page, empty.PageSize))
				return
			}
		}
	}

	// 2. Run.
	page, err := h.Search.Search(c.Request.Context(), q)
	if err != nil {
		h.Logger.Error("search failed, serving empty page", "error", err)
		empty := q.Normalized()
		page = models.NewSearchPage(nil, 0, empty.Page, empty.PageSize)
		c.JSON(http.StatusOK, gin.H{
			"results":    page.Items,
			"total":      page.Total,
			"page":       page.Page,
			"limit":      page.PageSize,
			"totalPages": page.TotalPages,
			"degraded":   true,
		})
		return
	}

	c.JSON(http.StatusOK, page)
}

// resolveSearchSlugs fills the category filters from slugs. It reports false
// when a slug names no active category or subcategory, or a lookup fails.
func (h *Handlers) resolveSearchSlugs(c *gin.Context, q *models.SearchQuery, catSlug, subSlug string) bool {
	ctx := c.Request.Context()
	if subSlug != "" {
		cat, sub, err := h.Taxonomy.ResolveSubcategoryBySlug(ctx, catSlug, subSlug)
		if err != nil {
			h.logSlugMiss(err)
			return false
		}
		if !cat.IsActive || !sub.IsActive {
			return false
		}
		q.CategoryID, q.SubcategoryID = cat.ID, sub.ID
		return true
	}
	cat, err := h.Taxonomy.ResolveCategoryBySlug(ctx, catSlug)
	if err != nil {
		h.logSlugMiss(err)
		return false
	}
	if !cat.IsActive {
		return false
	}
	q.CategoryID = cat.ID
	return true
}

func (h *Handlers) logSlugMiss(err error) {
	if !domainerrors.Is(err, domainerrors.ErrNotFound) {
		h.Logger.Error("search slug lookup failed", "error", err)
	}
}

func parseSearchQuery(c *gin.Context) models.SearchQuery {
	q := models.SearchQuery{
		Text:      strings.TrimSpace(c.Query("q")),
		Location:  strings.TrimSpace(c.Query("location")),
		Condition: models.Condition(strings.TrimSpace(c.Query("state"))),
		Sort:      models.SortKey(strings.TrimSpace(c.Query("sort"))),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "limit", models.DefaultPageSize),
		PriceMin:  queryFloat(c, "priceMin"),
		PriceMax:  queryFloat(c, "priceMax"),
	}
	q.CategoryID = queryID(c, "catId")
	if q.CategoryID != 0 {
		q.SubcategoryID = queryID(c, "subId")
	}
	return q
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return v
}

func queryFloat(c *gin.Context, key string) float64 {
	v, err := strconv.ParseFloat(c.Query(key), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func queryID(c *gin.Context, key string) int64 {
	v, err := strconv.ParseInt(c.Query(key), 10, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
