package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ocaso/ocaso-api/internal/models"
)

// GetCategoryTree handles GET /v1/categories.
// A failed read is logged and served as an empty tree so navigation keeps working.
func (h *Handlers) GetCategoryTree(c *gin.Context) {
	tree, err := h.Taxonomy.ListActiveTree(c.Request.Context())
	if err != nil {
		h.Logger.Error("category tree read failed, serving empty tree", "error", err)
		c.JSON(http.StatusOK, gin.H{"categories": []models.CategoryNode{}, "degraded": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": tree})
}

// GetCategoryBySlug handles GET /v1/categories/:slug.
func (h *Handlers) GetCategoryBySlug(c *gin.Context) {
	node, err := h.Taxonomy.ActiveNode(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.respondPublicError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": node})
}

// GetSubcategoryBySlug handles GET /v1/categories/:slug/:sub.
func (h *Handlers) GetSubcategoryBySlug(c *gin.Context) {
	cat, sub, err := h.Taxonomy.ResolveSubcategoryBySlug(c.Request.Context(), c.Param("slug"), c.Param("sub"))
	if err != nil {
		h.respondPublicError(c, err)
		return
	}
	if !cat.IsActive || !sub.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subcategory not found", "code": "NOT_FOUND"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": cat, "subcategory": sub})
}
