package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	domainerrors "github.com/ocaso/ocaso-api/internal/errors"
	"github.com/ocaso/ocaso-api/internal/importer"
	"github.com/ocaso/ocaso-api/internal/models"
	"github.com/ocaso/ocaso-api/internal/taxonomy"
)

// maxImportBytes caps the CSV upload.
const maxImportBytes = 5 << 20

//
// --- Admin: Category Tree ---
//

// GetAdminCategoryTree handles GET /v1/admin/categories (inactive nodes included).
func (h *Handlers) GetAdminCategoryTree(c *gin.Context) {
	tree, err := h.Taxonomy.ListFullTree(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": tree})
}

// CreateCategory handles POST /v1/admin/categories.
func (h *Handlers) CreateCategory(c *gin.Context) {
	var input models.CreateCategoryInput
	if !h.bindJSON(c, &input) {
		return
	}

	category, err := h.Taxonomy.CreateCategory(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Category created", "category": category})
}

// CreateSubcategory handles POST /v1/admin/categories/:id/subcategories.
func (h *Handlers) CreateSubcategory(c *gin.Context) {
	categoryID, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var input models.CreateCategoryInput
	if !h.bindJSON(c, &input) {
		return
	}

	sub, err := h.Taxonomy.CreateSubcategory(c.Request.Context(), categoryID, input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Subcategory created", "subcategory": sub})
}

//
// --- Admin: Toggle & Reorder ---
//

// SetCategoryActive handles PATCH /v1/admin/categories/:id/active.
func (h *Handlers) SetCategoryActive(c *gin.Context) {
	h.setActive(c, h.Taxonomy.SetCategoryActive, "Category updated")
}

// SetSubcategoryActive handles PATCH /v1/admin/subcategories/:id/active.
func (h *Handlers) SetSubcategoryActive(c *gin.Context) {
	h.setActive(c, h.Taxonomy.SetSubcategoryActive, "Subcategory updated")
}

// ReorderCategory handles PATCH /v1/admin/categories/:id/order.
func (h *Handlers) ReorderCategory(c *gin.Context) {
	h.reorder(c, h.Taxonomy.ReorderCategory, "Category reordered")
}

// ReorderSubcategory handles PATCH /v1/admin/subcategories/:id/order.
func (h *Handlers) ReorderSubcategory(c *gin.Context) {
	h.reorder(c, h.Taxonomy.ReorderSubcategory, "Subcategory reordered")
}

type activeSetter func(ctx context.Context, id int64, active bool) error

func (h *Handlers) setActive(c *gin.Context, set activeSetter, message string) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var input models.SetActiveInput
	if !h.bindJSON(c, &input) {
		return
	}
	if err := set(c.Request.Context(), id, *input.Active); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

type orderSetter func(ctx context.Context, id int64, sortOrder int) error

func (h *Handlers) reorder(c *gin.Context, set orderSetter, message string) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var input models.ReorderInput
	if !h.bindJSON(c, &input) {
		return
	}
	if err := set(c.Request.Context(), id, *input.SortOrder); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

//
// --- Admin: CSV Import & Validation ---
//

// ImportCategories handles POST /v1/admin/categories/import (multipart field "file").
func (h *Handlers) ImportCategories(c *gin.Context) {
	text, ok := h.readUpload(c)
	if !ok {
		return
	}

	report, err := h.Importer.Run(c.Request.Context(), text)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Import completed", "report": report})
}

// ValidateCategories handles POST /v1/admin/categories/validate. With a
// "file" field it checks the uploaded CSV; without one, the stored taxonomy.
func (h *Handlers) ValidateCategories(c *gin.Context) {
	var report taxonomy.ValidationReport
	if _, err := c.FormFile("file"); err == nil {
		text, ok := h.readUpload(c)
		if !ok {
			return
		}
		report = taxonomy.Validate(importer.Preview(importer.ParseCSV(text)))
	} else {
		var err error
		report, err = h.Taxonomy.ValidateStored(c.Request.Context())
		if err != nil {
			h.respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"ok": report.OK(), "errors": report.Errors, "warnings": report.Warnings})
}

// readUpload returns the text of the "file" field, writing a 400 when it is
// missing, empty or larger than maxImportBytes.
func (h *Handlers) readUpload(c *gin.Context) (string, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.respondError(c, importer.ErrNoFile)
		return "", false
	}
	f, err := fileHeader.Open()
	if err != nil {
		h.respondError(c, importer.ErrNoFile)
		return "", false
	}
	defer f.Close()

	// One byte past the cap tells a full file from a cut one.
	raw, err := io.ReadAll(io.LimitReader(f, maxImportBytes+1))
	if err != nil || len(raw) == 0 {
		h.respondError(c, importer.ErrNoFile)
		return "", false
	}
	if len(raw) > maxImportBytes {
		h.respondError(c, domainerrors.Validationf("file too large: limit is %d bytes", maxImportBytes))
		return "", false
	}
	return string(raw), true
}
