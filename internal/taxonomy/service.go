// Package taxonomy serves the two-level category tree: navigation reads,
// slug resolution and the admin mutations (create, toggle, reorder).
package taxonomy

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gosimple/slug"

	domainerrors "github.com/ocaso/ocaso-api/internal/errors"
	"github.com/ocaso/ocaso-api/internal/models"
	"github.com/ocaso/ocaso-api/internal/notify"
	"github.com/ocaso/ocaso-api/internal/store"
)

// Service is the category store.
type Service struct {
	store    *store.Store
	notifier notify.Notifier
	logger   *slog.Logger
}

// NewService creates a taxonomy service.
func NewService(s *store.Store, notifier notify.Notifier, logger *slog.Logger) *Service {
	return &Service{store: s, notifier: notifier, logger: logger}
}

// ListActiveTree returns active categories with their active subcategories.
// Errors are returned as-is; degrading to an empty tree is up to the caller.
func (s *Service) ListActiveTree(ctx context.Context) ([]models.CategoryNode, error) {
	return s.tree(ctx, true)
}

// ListFullTree returns every category and subcategory, inactive ones included.
func (s *Service) ListFullTree(ctx context.Context) ([]models.CategoryNode, error) {
	return s.tree(ctx, false)
}

func (s *Service) tree(ctx context.Context, activeOnly bool) ([]models.CategoryNode, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	subs, err := s.store.ListSubcategories(ctx)
	if err != nil {
		return nil, err
	}
	return BuildTree(cats, subs, activeOnly), nil
}

// ResolveCategoryBySlug turns a URL segment into a category.
func (s *Service) ResolveCategoryBySlug(ctx context.Context, categorySlug string) (*models.Category, error) {
	return s.store.GetCategoryBySlug(ctx, categorySlug)
}

// ResolveSubcategoryBySlug resolves a /:category/:subcategory path. A
// subcategory owned by another category is reported as not found.
func (s *Service) ResolveSubcategoryBySlug(ctx context.Context, categorySlug, subSlug string) (*models.Category, *models.Subcategory, error) {
	cat, err := s.store.GetCategoryBySlug(ctx, categorySlug)
	if err != nil {
		return nil, nil, err
	}
	sc, err := s.store.GetSubcategoryBySlug(ctx, subSlug)
	if err != nil {
		return nil, nil, err
	}
	if sc.CategoryID != cat.ID {
		return nil, nil, domainerrors.NotFoundf("subcategory %s not found in category %s", subSlug, categorySlug)
	}
	return cat, sc, nil
}

// ActiveNode returns an active category with its active subcategories.
// Inactive categories are not found.
func (s *Service) ActiveNode(ctx context.Context, categorySlug string) (*models.CategoryNode, error) {
	cat, err := s.store.GetCategoryBySlug(ctx, categorySlug)
	if err != nil {
		return nil, err
	}
	if !cat.IsActive {
		return nil, domainerrors.NotFoundf("category %s not found", categorySlug)
	}

	subs, err := s.store.ListSubcategoriesByCategory(ctx, cat.ID)
	if err != nil {
		return nil, err
	}
	active := make([]models.Subcategory, 0, len(subs))
	for _, sc := range subs {
		if sc.IsActive {
			active = append(active, sc)
		}
	}
	SortSubcategories(active)
	return &models.CategoryNode{Category: *cat, Subcategories: active}, nil
}

// SetCategoryActive toggles a category. Re-read to observe the new state.
func (s *Service) SetCategoryActive(ctx context.Context, id int64, active bool) error {
	if err := s.store.SetCategoryActive(ctx, id, active); err != nil {
		return err
	}
	s.notifier.CategoryChanged(ctx, id, 0)
	return nil
}

// SetSubcategoryActive toggles a subcategory.
func (s *Service) SetSubcategoryActive(ctx context.Context, id int64, active bool) error {
	if err := s.store.SetSubcategoryActive(ctx, id, active); err != nil {
		return err
	}
	s.notifySubcategory(ctx, id)
	return nil
}

// ReorderCategory sets a category's sort order to exactly sortOrder.
// Siblings keep theirs; equal values fall back to name order on read.
func (s *Service) ReorderCategory(ctx context.Context, id int64, sortOrder int) error {
	if sortOrder < 0 {
		return domainerrors.Validationf("sort order must be >= 0, got %d", sortOrder)
	}
	if err := s.store.SetCategorySortOrder(ctx, id, sortOrder); err != nil {
		return err
	}
	s.notifier.CategoryChanged(ctx, id, 0)
	return nil
}

// ReorderSubcategory sets a subcategory's sort order to exactly sortOrder.
func (s *Service) ReorderSubcategory(ctx context.Context, id int64, sortOrder int) error {
	if sortOrder < 0 {
		return domainerrors.Validationf("sort order must be >= 0, got %d", sortOrder)
	}
	if err := s.store.SetSubcategorySortOrder(ctx, id, sortOrder); err != nil {
		return err
	}
	s.notifySubcategory(ctx, id)
	return nil
}

func (s *Service) notifySubcategory(ctx context.Context, id int64) {
	sc, err := s.store.GetSubcategory(ctx, id)
	if err != nil {
		s.logger.Warn("could not resolve subcategory for invalidation", "subcategory_id", id, "error", err)
		s.notifier.CategoryChanged(ctx, 0, 0)
		return
	}
	s.notifier.CategoryChanged(ctx, sc.CategoryID, sc.ID)
}

// CreateCategory adds a top-level category. The slug is derived from the
// name when none is given; either way it is normalized.
func (s *Service) CreateCategory(ctx context.Context, input models.CreateCategoryInput) (*models.Category, error) {
	name, catSlug, err := normalizeNameSlug(input.Name, input.Slug)
	if err != nil {
		return nil, err
	}
	if input.SortOrder < 0 {
		return nil, domainerrors.Validationf("sort order must be >= 0, got %d", input.SortOrder)
	}

	if _, err := s.store.GetCategoryBySlug(ctx, catSlug); err == nil {
		return nil, domainerrors.Validationf("category slug %q is already in use", catSlug)
	} else if !domainerrors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	c := models.Category{Name: name, Slug: catSlug, SortOrder: input.SortOrder, IsActive: true}
	if err := s.store.CreateCategory(ctx, &c); err != nil {
		return nil, err
	}

	s.logger.Info("category created", "category_id", c.ID, "slug", c.Slug)
	s.notifier.CategoryChanged(ctx, c.ID, 0)
	return &c, nil
}

// CreateSubcategory adds a subcategory under an existing category.
func (s *Service) CreateSubcategory(ctx context.Context, categoryID int64, input models.CreateCategoryInput) (*models.Subcategory, error) {
	name, subSlug, err := normalizeNameSlug(input.Name, input.Slug)
	if err != nil {
		return nil, err
	}
	if input.SortOrder < 0 {
		return nil, domainerrors.Validationf("sort order must be >= 0, got %d", input.SortOrder)
	}

	if _, err := s.store.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetSubcategoryBySlug(ctx, subSlug); err == nil {
		return nil, domainerrors.Validationf("subcategory slug %q is already in use", subSlug)
	} else if !domainerrors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	sc := models.Subcategory{CategoryID: categoryID, Name: name, Slug: subSlug, SortOrder: input.SortOrder, IsActive: true}
	if err := s.store.CreateSubcategory(ctx, &sc); err != nil {
		return nil, err
	}

	s.logger.Info("subcategory created", "subcategory_id", sc.ID, "category_id", categoryID, "slug", sc.Slug)
	s.notifier.CategoryChanged(ctx, categoryID, sc.ID)
	return &sc, nil
}

// ValidateStored runs Validate over the full stored tree.
func (s *Service) ValidateStored(ctx context.Context) (ValidationReport, error) {
	nodes, err := s.ListFullTree(ctx)
	if err != nil {
		return ValidationReport{}, err
	}
	return Validate(nodes), nil
}

func normalizeNameSlug(name, rawSlug string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", domainerrors.Validation("name is required")
	}
	source := strings.TrimSpace(rawSlug)
	if source == "" {
		source = name
	}
	normalized := slug.Make(source)
	if normalized == "" {
		return "", "", domainerrors.Validationf("cannot derive a slug from %q", source)
	}
	return name, normalized, nil
}
