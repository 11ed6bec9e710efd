// Package bids places offers on listings and aggregates them into the
// highest-bid and bid-count figures shown next to a listing.
package bids

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainerrors "github.com/ocaso/ocaso-api/internal/errors"
	"github.com/ocaso/ocaso-api/internal/models"
	"github.com/ocaso/ocaso-api/internal/store"
)

// Summarize computes the aggregate from rows already in memory.
func Summarize(bids []models.Bid) models.BidSummary {
	summary := models.BidSummary{Count: len(bids)}
	for _, b := range bids {
		if summary.Highest == nil || b.Amount > *summary.Highest {
			amount := b.Amount
			summary.Highest = &amount
		}
	}
	return summary
}

// Service reads and writes bids.
type Service struct {
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a bid service.
func NewService(s *store.Store, logger *slog.Logger) *Service {
	return &Service{store: s, logger: logger, now: time.Now}
}

// AggregateBids returns the highest amount (nil without bids) and the bid
// count of a listing, computed by the store in one query. An unknown listing
// aggregates to zero bids.
func (s *Service) AggregateBids(ctx context.Context, listingID string) (models.BidSummary, error) {
	return s.store.AggregateBids(ctx, listingID)
}

// ListBids returns a listing's bids, newest first.
func (s *Service) ListBids(ctx context.Context, listingID string) ([]models.Bid, error) {
	return s.store.ListBids(ctx, listingID)
}

// PlaceBid records an offer. The listing must exist and be active. Bidders
// may bid more than once.
func (s *Service) PlaceBid(ctx context.Context, listingID, bidderID string, amount float64) (*models.Bid, error) {
	amount = models.RoundCents(amount)
	if !(amount >= models.MinPrice && amount <= models.MaxPrice) {
		return nil, domainerrors.Validationf("bid amount must be between %.2f and %.2f", models.MinPrice, models.MaxPrice)
	}
	if bidderID == "" {
		return nil, domainerrors.Validation("bidder is required")
	}

	listing, err := s.store.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.Status != models.ListingActive {
		return nil, domainerrors.Validationf("listing %s is %s and does not accept bids", listingID, listing.Status)
	}

	bid := &models.Bid{
		ID:        uuid.NewString(),
		ListingID: listingID,
		BidderID:  bidderID,
		Amount:    amount,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.CreateBid(ctx, bid); err != nil {
		return nil, err
	}

	s.logger.Info("bid placed", "bid_id", bid.ID, "listing_id", listingID, "amount", amount)
	return bid, nil
}
