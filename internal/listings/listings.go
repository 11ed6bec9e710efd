// Package listings creates listings and moves them through their statuses,
// enforcing the category invariants and signalling cache invalidation.
package listings

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	domainerrors "github.com/ocaso/ocaso-api/internal/errors"
	"github.com/ocaso/ocaso-api/internal/models"
	"github.com/ocaso/ocaso-api/internal/notify"
	"github.com/ocaso/ocaso-api/internal/store"
	"github.com/ocaso/ocaso-api/internal/validation"
)

// Actor is the authenticated caller of a mutation.
type Actor struct {
	ID    string
	Admin bool
}

// Service manages listings.
type Service struct {
	store     *store.Store
	notifier  notify.Notifier
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a listing service.
func NewService(s *store.Store, notifier notify.Notifier, logger *slog.Logger) *Service {
	return &Service{
		store:     s,
		notifier:  notifier,
		validator: validation.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// Create stores a new listing owned by sellerID. categories[0], when given,
// must be an active category and categories[1] a subcategory owned by it.
// The listing and its category array are written in one transaction.
func (s *Service) Create(ctx context.Context, sellerID string, input models.CreateListingInput) (*models.Listing, error) {
	// 1. Shape checks, before touching the store.
	input.Title = strings.TrimSpace(input.Title)
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}
	if sellerID == "" {
		return nil, domainerrors.Validation("seller is required")
	}
	input.Price = models.RoundCents(input.Price)
	if !(input.Price >= models.MinPrice && input.Price <= models.MaxPrice) {
		return nil, domainerrors.Validationf("price must be between %.2f and %.2f", models.MinPrice, models.MaxPrice)
	}
	status := input.Status
	if status == "" {
		status = models.ListingActive
	}

	now := s.now().UTC()
	listing := &models.Listing{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		State:       input.State,
		Location:    strings.TrimSpace(input.Location),
		Categories:  append([]int64{}, input.Categories...),
		Status:      status,
		SellerID:    sellerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// 2. Category checks and insert share one transaction.
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		if err := checkCategories(ctx, tx, listing.Categories); err != nil {
			return err
		}
		return tx.CreateListing(ctx, listing)
	})
	if err != nil {
		return nil, err
	}

	// 3. Only after commit.
	s.logger.Info("listing created", "listing_id", listing.ID, "seller_id", sellerID)
	s.notifier.CategoryChanged(ctx, listing.CategoryID(), listing.SubcategoryID())
	return listing, nil
}

func checkCategories(ctx context.Context, tx *store.Store, refs []int64) error {
	if len(refs) == 0 {
		return nil
	}
	if len(refs) > 2 {
		return domainerrors.Validationf("a listing has at most 2 categories, got %d", len(refs))
	}

	cat, err := tx.GetCategory(ctx, refs[0])
	if domainerrors.Is(err, domainerrors.ErrNotFound) {
		return domainerrors.Validationf("category %d does not exist", refs[0])
	}
	if err != nil {
		return err
	}
	if !cat.IsActive {
		return domainerrors.Validationf("category %d is not active", refs[0])
	}
	if len(refs) == 1 {
		return nil
	}

	sub, err := tx.GetSubcategory(ctx, refs[1])
	if domainerrors.Is(err, domainerrors.ErrNotFound) {
		return domainerrors.Validationf("subcategory %d does not exist", refs[1])
	}
	if err != nil {
		return err
	}
	if sub.CategoryID != cat.ID {
		return domainerrors.Validationf("subcategory %d does not belong to category %d", sub.ID, cat.ID)
	}
	return nil
}

// Get returns a listing by id.
func (s *Service) Get(ctx context.Context, id string) (*models.Listing, error) {
	return s.store.GetListing(ctx, id)
}

// SetStatus changes a listing's status. Only its seller or an admin may.
// A non-empty sale channel is recorded alongside; an empty one keeps the
// previous value.
func (s *Service) SetStatus(ctx context.Context, actor Actor, id string, input models.SetListingStatusInput) (*models.Listing, error) {
	if !input.Status.Valid() {
		return nil, domainerrors.Validationf("unknown status %q", input.Status)
	}

	listing, err := s.store.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Admin && actor.ID != listing.SellerID {
		return nil, domainerrors.Forbidden("only the seller can change this listing")
	}

	var channel *string
	if c := strings.TrimSpace(input.SaleChannel); c != "" {
		channel = &c
	}
	if err := s.store.UpdateListingStatus(ctx, id, input.Status, channel); err != nil {
		return nil, err
	}

	s.logger.Info("listing status changed", "listing_id", id, "from", listing.Status, "to", input.Status)
	s.notifier.CategoryChanged(ctx, listing.CategoryID(), listing.SubcategoryID())
	return s.store.GetListing(ctx, id)
}

// MarkSold flags a listing as sold through saleChannel.
func (s *Service) MarkSold(ctx context.Context, actor Actor, id, saleChannel string) (*models.Listing, error) {
	return s.SetStatus(ctx, actor, id, models.SetListingStatusInput{Status: models.ListingSold, SaleChannel: saleChannel})
}
