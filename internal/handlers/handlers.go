package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ocaso/ocaso-api/internal/bids"
	domainerrors "github.com/ocaso/ocaso-api/internal/errors"
	"github.com/ocaso/ocaso-api/internal/importer"
	"github.com/ocaso/ocaso-api/internal/listings"
	"github.com/ocaso/ocaso-api/internal/search"
	"github.com/ocaso/ocaso-api/internal/store"
	"github.com/ocaso/ocaso-api/internal/taxonomy"
	"github.com/ocaso/ocaso-api/internal/validation"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Store    *store.Store
	Taxonomy *taxonomy.Service
	Importer *importer.Importer
	Search   *search.Service
	Listings *listings.Service
	Bids     *bids.Service
	Logger   *slog.Logger
}

// Ping handles GET /v1/ping. It also checks the database.
func (h *Handlers) Ping(c *gin.Context) {
	if err := h.Store.Ping(c.Request.Context()); err != nil {
		h.Logger.Error("ping: database unreachable", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "pong!"})
}

// respondError writes err with its code's status and the raw message.
// Used on admin and authenticated write paths.
func (h *Handlers) respondError(c *gin.Context, err error) {
	var de *domainerrors.Error
	if !domainerrors.As(err, &de) {
		de = domainerrors.Wrap(err, domainerrors.CodeInternal, "internal error")
	}

	status := de.HTTPStatus()
	if status >= http.StatusInternalServerError {
		h.Logger.Error("request failed", "path", c.FullPath(), "code", de.Code, "error", err)
	}

	body := gin.H{"error": err.Error(), "code": de.Code}
	if de.Details != nil {
		body["details"] = de.Details
	}
	c.JSON(status, body)
}

// respondPublicError is respondError for public reads: client errors keep
// their message, server errors are logged and replaced by a generic one.
func (h *Handlers) respondPublicError(c *gin.Context, err error) {
	code := domainerrors.CodeOf(err)
	status := code.HTTPStatus()
	if status < http.StatusInternalServerError {
		h.respondError(c, err)
		return
	}
	h.Logger.Error("public read failed", "path", c.FullPath(), "code", code, "error", err)
	c.JSON(status, gin.H{"error": "Something went wrong, please try again later", "code": code})
}

// bindJSON binds the body into dst and writes a 400 on failure.
func (h *Handlers) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.respondError(c, validation.FromError(err))
		return false
	}
	return true
}

// paramID parses a positive integer path parameter and writes a 400 on failure.
func (h *Handlers) paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		h.respondError(c, domainerrors.Validationf("invalid %s %q", name, c.Param(name)))
		return 0, false
	}
	return id, true
}
