package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ocaso/ocaso-api/internal/listings"
	"github.com/ocaso/ocaso-api/internal/middleware"
	"github.com/ocaso/ocaso-api/internal/models"
)

//
// --- Listings ---
//

// CreateListing handles POST /v1/listings.
func (h *Handlers) CreateListing(c *gin.Context) {
	var input models.CreateListingInput
	if !h.bindJSON(c, &input) {
		return
	}

	listing, err := h.Listings.Create(c.Request.Context(), middleware.UserID(c), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"listing": listing})
}

// GetListing handles GET /v1/listings/:id.
func (h *Handlers) GetListing(c *gin.Context) {
	listing, err := h.Listings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondPublicError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listing": listing})
}

// SetListingStatus handles PATCH /v1/listings/:id/status. Only the seller or an
// admin may change it.
func (h *Handlers) SetListingStatus(c *gin.Context) {
	var input models.SetListingStatusInput
	if !h.bindJSON(c, &input) {
		return
	}

	actor := listings.Actor{ID: middleware.UserID(c), Admin: middleware.IsAdmin(c)}
	listing, err := h.Listings.SetStatus(c.Request.Context(), actor, c.Param("id"), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Listing updated", "listing": listing})
}

// MarkListingSold handles POST /v1/listings/:id/sold.
func (h *Handlers) MarkListingSold(c *gin.Context) {
	var input models.MarkSoldInput
	if !h.bindJSON(c, &input) {
		return
	}

	actor := listings.Actor{ID: middleware.UserID(c), Admin: middleware.IsAdmin(c)}
	listing, err := h.Listings.MarkSold(c.Request.Context(), actor, c.Param("id"), input.SaleChannel)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Listing marked as sold", "listing": listing})
}

//
// --- Bids ---
//

// GetBidSummary handles GET /v1/listings/:id/bids. A listing without bids
// yields {"highest": null, "count": 0}.
func (h *Handlers) GetBidSummary(c *gin.Context) {
	summary, err := h.Bids.AggregateBids(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondPublicError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// PlaceBid handles POST /v1/listings/:id/bids.
func (h *Handlers) PlaceBid(c *gin.Context) {
	var input models.PlaceBidInput
	if !h.bindJSON(c, &input) {
		return
	}

	bid, err := h.Bids.PlaceBid(c.Request.Context(), c.Param("id"), middleware.UserID(c), input.Amount)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Bid placed", "bid": bid})
}
