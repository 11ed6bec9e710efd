package models

import (
	"math"
	"time"
)

// Money bounds of the DECIMAL(12,2) price and amount columns.
const (
	MinPrice = 0.01
	MaxPrice = 9999999999.99
)

// RoundCents rounds v to the two decimals the store keeps.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// ListingStatus is the lifecycle state of a listing.
type ListingStatus string

const (
	ListingActive ListingStatus = "active"
	ListingPaused ListingStatus = "paused"
	ListingSold   ListingStatus = "sold"
	ListingDraft  ListingStatus = "draft"
)

// Valid reports whether s is a known status.
func (s ListingStatus) Valid() bool {
	switch s {
	case ListingActive, ListingPaused, ListingSold, ListingDraft:
		return true
	}
	return false
}

// Condition is the physical state of the listed item ("state" on the wire).
type Condition string

const (
	ConditionNew     Condition = "new"
	ConditionLikeNew Condition = "like-new"
	ConditionGood    Condition = "good"
	ConditionUsed    Condition = "used"
)

// Valid reports whether c is a known condition.
func (c Condition) Valid() bool {
	switch c {
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionUsed:
		return true
	}
	return false
}

// Listing is the model for the 'listings' table.
// Categories is [categoryId] or [categoryId, subcategoryId]; it is stored in
// 'listing_categories' and joined back in manually.
type Listing struct {
	ID          string        `json:"id" db:"id"`
	Title       string        `json:"title" db:"title"`
	Description string        `json:"description" db:"description"`
	Price       float64       `json:"price" db:"price"`
	State       Condition     `json:"state" db:"state"`
	Location    string        `json:"location" db:"location"`
	Categories  []int64       `json:"categories" db:"-"`
	Status      ListingStatus `json:"status" db:"status"`
	SellerID    string        `json:"sellerId" db:"seller_id"`
	SaleChannel *string       `json:"saleChannel,omitempty" db:"sale_channel"`
	CreatedAt   time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time     `json:"updatedAt" db:"updated_at"`
}

// CategoryID returns categories[0], or 0 when the listing is uncategorized.
func (l *Listing) CategoryID() int64 {
	if len(l.Categories) > 0 {
		return l.Categories[0]
	}
	return 0
}

// SubcategoryID returns categories[1], or 0 when absent.
func (l *Listing) SubcategoryID() int64 {
	if len(l.Categories) > 1 {
		return l.Categories[1]
	}
	return 0
}

// --- API Input Structs ---

type CreateListingInput struct {
	Title       string        `json:"title" binding:"required,max=200"`
	Description string        `json:"description"`
	Price       float64       `json:"price" binding:"required,gte=0.01,lte=9999999999.99"`
	State       Condition     `json:"state" binding:"required,oneof=new like-new good used"`
	Location    string        `json:"location"`
	Categories  []int64       `json:"categories" binding:"max=2"`
	Status      ListingStatus `json:"status" binding:"omitempty,oneof=active paused sold draft"`
}

type SetListingStatusInput struct {
	Status      ListingStatus `json:"status" binding:"required,oneof=active paused sold draft"`
	SaleChannel string        `json:"saleChannel"`
}

type MarkSoldInput struct {
	SaleChannel string `json:"saleChannel" binding:"required"`
}
