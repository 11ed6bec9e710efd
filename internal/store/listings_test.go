package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/ocaso/ocaso-api/internal/errors"
	"github.com/ocaso/ocaso-api/internal/models"
	"github.com/ocaso/ocaso-api/internal/store"
	"github.com/ocaso/ocaso-api/internal/store/storetest"
)

func TestCreateAndGetListing(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	created := storetest.MustListing(t, s, "Racefiets", 450, storetest.WithCategories(3, 9))

	got, err := s.GetListing(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Racefiets", got.Title)
	assert.Equal(t, 450.0, got.Price)
	assert.Equal(t, []int64{3, 9}, got.Categories)
	assert.Equal(t, models.ListingActive, got.Status)
	assert.Nil(t, got.SaleChannel)
	assert.WithinDuration(t, created.CreatedAt, got.CreatedAt, time.Millisecond)

	_, err = s.GetListing(ctx, "does-not-exist")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUncategorizedListingHasEmptyArray(t *testing.T) {
	s := storetest.New(t)
	l := storetest.MustListing(t, s, "Los ding", 5)

	got, err := s.GetListing(context.Background(), l.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Categories)
	assert.Empty(t, got.Categories)
}

func TestUpdateListingStatus(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	l := storetest.MustListing(t, s, "Bank", 120)

	channel := "ocaso"
	require.NoError(t, s.UpdateListingStatus(ctx, l.ID, models.ListingSold, &channel))
	// A nil channel keeps the existing one.
	require.NoError(t, s.UpdateListingStatus(ctx, l.ID, models.ListingSold, nil))

	got, err := s.GetListing(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingSold, got.Status)
	require.NotNil(t, got.SaleChannel)
	assert.Equal(t, "ocaso", *got.SaleChannel)

	err = s.UpdateListingStatus(ctx, "missing", models.ListingPaused, nil)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestSearchAndCountListings(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	storetest.MustListing(t, s, "A", 10, storetest.WithCreatedAt(base))
	storetest.MustListing(t, s, "B", 20, storetest.WithCreatedAt(base.Add(time.Hour)), storetest.WithCategories(1))
	storetest.MustListing(t, s, "C", 30, storetest.WithCreatedAt(base.Add(2*time.Hour)), storetest.WithStatus(models.ListingDraft))

	q := store.ListingQuery{
		Where:   "l.status = ?",
		Args:    []any{"active"},
		OrderBy: "l.created_at DESC, l.id ASC",
		Limit:   10,
	}
	items, err := s.SearchListings(ctx, q)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "B", items[0].Title)
	assert.Equal(t, []int64{1}, items[0].Categories)
	assert.Equal(t, "A", items[1].Title)

	total, err := s.CountListings(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	q.Limit, q.Offset = 1, 1
	items, err = s.SearchListings(ctx, q)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "A", items[0].Title)

	q.Offset = 5
	items, err = s.SearchListings(ctx, q)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestSearchRejectsBadFragment(t *testing.T) {
	s := storetest.New(t)
	_, err := s.SearchListings(context.Background(), store.ListingQuery{Where: "l.nope = ?", Args: []any{1}, Limit: 1})
	require.Error(t, err)
	assert.Equal(t, domainerrors.CodeQuery, domainerrors.CodeOf(err))
}
