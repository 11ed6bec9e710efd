// Package storetest opens throwaway SQLite-backed stores for tests.
package storetest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ocaso/ocaso-api/internal/database"
	"github.com/ocaso/ocaso-api/internal/logger"
	"github.com/ocaso/ocaso-api/internal/models"
	"github.com/ocaso/ocaso-api/internal/store"
)

// New returns a migrated store backed by a SQLite file in t.TempDir().
func New(t *testing.T) *store.Store {
	t.Helper()
	s, _ := NewWithDB(t)
	return s
}

// NewWithDB is New plus the raw pool, for tests that need to break the schema.
func NewWithDB(t *testing.T) (*store.Store, *database.DB) {
	t.Helper()
	ctx := context.Background()

	db, err := database.OpenSQLite(ctx, filepath.Join(t.TempDir(), "test.db"), logger.Discard())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate store: %v", err)
	}
	return store.New(db, logger.Discard()), db
}

// MustCategory creates a category and returns it.
func MustCategory(t *testing.T, s *store.Store, name, slug string, sortOrder int, active bool) models.Category {
	t.Helper()
	c := models.Category{Name: name, Slug: slug, SortOrder: sortOrder, IsActive: active}
	if err := s.CreateCategory(context.Background(), &c); err != nil {
		t.Fatalf("create category %s: %v", slug, err)
	}
	return c
}

// MustSubcategory creates a subcategory under categoryID and returns it.
func MustSubcategory(t *testing.T, s *store.Store, categoryID int64, name, slug string, sortOrder int, active bool) models.Subcategory {
	t.Helper()
	sc := models.Subcategory{CategoryID: categoryID, Name: name, Slug: slug, SortOrder: sortOrder, IsActive: active}
	if err := s.CreateSubcategory(context.Background(), &sc); err != nil {
		t.Fatalf("create subcategory %s: %v", slug, err)
	}
	return sc
}

// ListingOption tweaks a listing built by MustListing.
type ListingOption func(*models.Listing)

func WithCategories(refs ...int64) ListingOption {
	return func(l *models.Listing) { l.Categories = refs }
}

func WithCondition(c models.Condition) ListingOption {
	return func(l *models.Listing) { l.State = c }
}

func WithStatus(s models.ListingStatus) ListingOption {
	return func(l *models.Listing) { l.Status = s }
}

func WithLocation(loc string) ListingOption {
	return func(l *models.Listing) { l.Location = loc }
}

func WithCreatedAt(at time.Time) ListingOption {
	return func(l *models.Listing) { l.CreatedAt, l.UpdatedAt = at, at }
}

// MustListing inserts an active "used" listing with the given title and price.
func MustListing(t *testing.T, s *store.Store, title string, price float64, opts ...ListingOption) models.Listing {
	t.Helper()
	now := time.Now().UTC()
	l := models.Listing{
		ID:         uuid.NewString(),
		Title:      title,
		Price:      price,
		State:      models.ConditionUsed,
		Location:   "Gent",
		Categories: []int64{},
		Status:     models.ListingActive,
		SellerID:   "seller-1",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, opt := range opts {
		opt(&l)
	}
	err := s.WithTx(context.Background(), func(tx *store.Store) error {
		return tx.CreateListing(context.Background(), &l)
	})
	if err != nil {
		t.Fatalf("create listing %q: %v", title, err)
	}
	return l
}
