package models

import "time"

// Bid is the model for the 'bids' table.
type Bid struct {
	ID        string    `json:"id" db:"id"`
	ListingID string    `json:"listingId" db:"listing_id"`
	BidderID  string    `json:"bidderId" db:"bidder_id"`
	Amount    float64   `json:"amount" db:"amount"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// BidSummary is the read-side aggregate of a listing's bids.
// Highest is nil when there are no bids.
type BidSummary struct {
	Highest *float64 `json:"highest"`
	Count   int      `json:"count"`
}

type PlaceBidInput struct {
	Amount float64 `json:"amount" binding:"required,gte=0.01,lte=9999999999.99"`
}
