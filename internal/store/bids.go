package store

import (
	"context"
	"database/sql"
	"fmt"

	domainerrors "github.com/ocaso/ocaso-api/internal/errors"
	"github.com/ocaso/ocaso-api/internal/models"
)

// CreateBid inserts a bid.
func (s *Store) CreateBid(ctx context.Context, b *models.Bid) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO bids (id, listing_id, bidder_id, amount, created_at) VALUES (?, ?, ?, ?, ?)`,
		b.ID, b.ListingID, b.BidderID, b.Amount, formatTime(b.CreatedAt))
	if err != nil {
		return domainerrors.Persistence(err, "create bid")
	}
	return nil
}

// ListBids returns every bid on a listing, newest first.
func (s *Store) ListBids(ctx context.Context, listingID string) ([]models.Bid, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, listing_id, bidder_id, amount, created_at FROM bids
		WHERE listing_id = ? ORDER BY created_at DESC, id ASC`, listingID)
	if err != nil {
		return nil, domainerrors.Query(err, "list bids")
	}
	defer rows.Close()

	bids := []models.Bid{}
	for rows.Next() {
		var b models.Bid
		if err := rows.Scan(&b.ID, &b.ListingID, &b.BidderID, &b.Amount, timeScanner{&b.CreatedAt}); err != nil {
			return nil, domainerrors.Query(err, "scan bid")
		}
		if b.Amount <= 0 {
			return nil, domainerrors.Query(fmt.Errorf("bid %s: non-positive amount %v", b.ID, b.Amount), "scan bid")
		}
		bids = append(bids, b)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerrors.Query(err, "list bids")
	}
	return bids, nil
}

// AggregateBids computes the highest amount and the count of a listing's bids
// in one aggregate query.
func (s *Store) AggregateBids(ctx context.Context, listingID string) (models.BidSummary, error) {
	var (
		highest sql.NullFloat64
		count   int
	)
	err := s.q.QueryRowContext(ctx,
		`SELECT MAX(amount), COUNT(*) FROM bids WHERE listing_id = ?`, listingID).Scan(&highest, &count)
	if err != nil {
		return models.BidSummary{}, domainerrors.Query(err, "aggregate bids")
	}

	summary := models.BidSummary{Count: count}
	if highest.Valid {
		h := highest.Float64
		summary.Highest = &h
	}
	return summary, nil
}
