package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domainerrors "github.com/ocaso/ocaso-api/internal/errors"
	"github.com/ocaso/ocaso-api/internal/models"
)

// listingColumns is the ordered list of columns selected in listing queries,
// qualified with the alias "l". Must match the scan order in scanListing.
const listingColumns = `l.id, l.title, l.description, l.price, l.state, l.location,
	l.status, l.seller_id, l.sale_channel, l.created_at, l.updated_at`

// scanListing maps a row to a Listing and rejects rows that break the
// listing invariants instead of defaulting them.
func scanListing(row scanner) (*models.Listing, error) {
	var (
		l           models.Listing
		saleChannel sql.NullString
	)
	if err := row.Scan(
		&l.ID,
		&l.Title,
		&l.Description,
		&l.Price,
		&l.State,
		&l.Location,
		&l.Status,
		&l.SellerID,
		&saleChannel,
		timeScanner{&l.CreatedAt},
		timeScanner{&l.UpdatedAt},
	); err != nil {
		return nil, err
	}

	if l.Price <= 0 {
		return nil, fmt.Errorf("listing %s: non-positive price %v", l.ID, l.Price)
	}
	if !l.State.Valid() {
		return nil, fmt.Errorf("listing %s: unknown condition %q", l.ID, l.State)
	}
	if !l.Status.Valid() {
		return nil, fmt.Errorf("listing %s: unknown status %q", l.ID, l.Status)
	}
	if saleChannel.Valid {
		l.SaleChannel = &saleChannel.String
	}
	l.Categories = []int64{}
	return &l, nil
}

// CreateListing inserts l and its category array. Run it inside WithTx so the
// listing never exists without its categories.
func (s *Store) CreateListing(ctx context.Context, l *models.Listing) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO listings
		(id, title, description, price, state, location, status, seller_id, sale_channel, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID,
		l.Title,
		l.Description,
		l.Price,
		string(l.State),
		l.Location,
		string(l.Status),
		l.SellerID,
		nullString(l.SaleChannel),
		formatTime(l.CreatedAt),
		formatTime(l.UpdatedAt),
	)
	if err != nil {
		return domainerrors.Persistence(err, "create listing")
	}

	for pos, ref := range l.Categories {
		if _, err := s.q.ExecContext(ctx,
			`INSERT INTO listing_categories (listing_id, position, category_ref) VALUES (?, ?, ?)`,
			l.ID, pos, ref); err != nil {
			return domainerrors.Persistence(err, "create listing categories")
		}
	}
	return nil
}

// GetListing returns a listing by id, with its categories.
func (s *Store) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+listingColumns+` FROM listings l WHERE l.id = ?`, id)
	l, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerrors.NotFoundf("listing %s not found", id)
	}
	if err != nil {
		return nil, domainerrors.Query(err, "get listing")
	}

	cats, err := s.listingCategories(ctx, []string{l.ID})
	if err != nil {
		return nil, err
	}
	if refs, ok := cats[l.ID]; ok {
		l.Categories = refs
	}
	return l, nil
}

// UpdateListingStatus sets status (and optionally sale channel) on a listing.
func (s *Store) UpdateListingStatus(ctx context.Context, id string, status models.ListingStatus, saleChannel *string) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE listings SET status = ?, sale_channel = COALESCE(?, sale_channel), updated_at = ? WHERE id = ?`,
		string(status), nullString(saleChannel), formatTime(s.now()), id)
	if err != nil {
		return domainerrors.Persistence(err, "update listing status")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domainerrors.Persistence(err, "update listing status")
	}
	if affected == 0 {
		return domainerrors.NotFoundf("listing %s not found", id)
	}
	return nil
}

// ListingQuery is a prepared listing search. Where and OrderBy are SQL
// fragments over the alias "l" without their keywords; an empty Where matches
// every row and an empty OrderBy leaves ordering to the database.
type ListingQuery struct {
	Where     string
	Args      []any
	OrderBy   string
	OrderArgs []any
	Limit     int
	Offset    int
}

// SearchListings returns one page of listings matching q, categories attached.
func (s *Store) SearchListings(ctx context.Context, q ListingQuery) ([]models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings l`
	args := make([]any, 0, len(q.Args)+len(q.OrderArgs)+2)
	if q.Where != "" {
		query += ` WHERE ` + q.Where
		args = append(args, q.Args...)
	}
	if q.OrderBy != "" {
		query += ` ORDER BY ` + q.OrderBy
		args = append(args, q.OrderArgs...)
	}
	query += ` LIMIT ? OFFSET ?`
	args = append(args, q.Limit, q.Offset)

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domainerrors.Query(err, "search listings")
	}
	defer rows.Close()

	items := []models.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, domainerrors.Query(err, "scan listing")
		}
		items = append(items, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerrors.Query(err, "search listings")
	}

	if len(items) == 0 {
		return items, nil
	}

	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	cats, err := s.listingCategories(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if refs, ok := cats[items[i].ID]; ok {
			items[i].Categories = refs
		}
	}
	return items, nil
}

// CountListings returns the number of listings matching q's predicates.
// Ordering and pagination are ignored.
func (s *Store) CountListings(ctx context.Context, q ListingQuery) (int, error) {
	query := `SELECT COUNT(*) FROM listings l`
	if q.Where != "" {
		query += ` WHERE ` + q.Where
	}

	var total int
	if err := s.q.QueryRowContext(ctx, query, q.Args...).Scan(&total); err != nil {
		return 0, domainerrors.Query(err, "count listings")
	}
	return total, nil
}

// listingCategories loads the ordered category arrays of the given listings.
func (s *Store) listingCategories(ctx context.Context, ids []string) (map[string][]int64, error) {
	out := make(map[string][]int64, len(ids))
	err := chunk(len(ids), batchSize, func(start, end int) error {
		batch := ids[start:end]
		args := make([]any, len(batch))
		for i, id := range batch {
			args[i] = id
		}

		rows, err := s.q.QueryContext(ctx,
			`SELECT listing_id, category_ref FROM listing_categories
			WHERE listing_id IN (`+placeholders(len(batch))+`)
			ORDER BY listing_id, position`, args...)
		if err != nil {
			return domainerrors.Query(err, "load listing categories")
		}
		defer rows.Close()

		for rows.Next() {
			var (
				listingID string
				ref       int64
			)
			if err := rows.Scan(&listingID, &ref); err != nil {
				return domainerrors.Query(err, "scan listing category")
			}
			out[listingID] = append(out[listingID], ref)
		}
		if err := rows.Err(); err != nil {
			return domainerrors.Query(err, "load listing categories")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
