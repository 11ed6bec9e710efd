package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ocaso/ocaso-api/internal/database"
	domainerrors "github.com/ocaso/ocaso-api/internal/errors"
	"github.com/ocaso/ocaso-api/internal/models"
)

const categoryColumns = `id, name, slug, sort_order, is_active, created_at, updated_at`

const subcategoryColumns = `id, category_id, name, slug, sort_order, is_active, facets, created_at, updated_at`

func scanCategory(row scanner) (*models.Category, error) {
	var c models.Category
	if err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Slug,
		&c.SortOrder,
		&c.IsActive,
		timeScanner{&c.CreatedAt},
		timeScanner{&c.UpdatedAt},
	); err != nil {
		return nil, err
	}
	if c.Slug == "" {
		return nil, fmt.Errorf("category %d has an empty slug", c.ID)
	}
	return &c, nil
}

func scanSubcategory(row scanner) (*models.Subcategory, error) {
	var (
		sc     models.Subcategory
		facets sql.NullString
	)
	if err := row.Scan(
		&sc.ID,
		&sc.CategoryID,
		&sc.Name,
		&sc.Slug,
		&sc.SortOrder,
		&sc.IsActive,
		&facets,
		timeScanner{&sc.CreatedAt},
		timeScanner{&sc.UpdatedAt},
	); err != nil {
		return nil, err
	}
	if sc.Slug == "" {
		return nil, fmt.Errorf("subcategory %d has an empty slug", sc.ID)
	}
	if sc.CategoryID == 0 {
		return nil, fmt.Errorf("subcategory %d has no owning category", sc.ID)
	}
	if facets.Valid && facets.String != "" && facets.String != "null" {
		if err := json.Unmarshal([]byte(facets.String), &sc.Facets); err != nil {
			return nil, fmt.Errorf("subcategory %d facets: %w", sc.ID, err)
		}
	}
	return &sc, nil
}

func encodeFacets(facets []models.Facet) (sql.NullString, error) {
	if len(facets) == 0 {
		return sql.NullString{}, nil
	}
	raw, err := json.Marshal(facets)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

// ListCategories returns every category row, active or not, ordered by
// sort order, then name, then id.
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories ORDER BY sort_order ASC, name ASC, id ASC`)
	if err != nil {
		return nil, domainerrors.Query(err, "list categories")
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, domainerrors.Query(err, "scan category")
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerrors.Query(err, "list categories")
	}
	return out, nil
}

// ListSubcategories returns every subcategory row, active or not.
func (s *Store) ListSubcategories(ctx context.Context) ([]models.Subcategory, error) {
	return s.querySubcategories(ctx,
		`SELECT `+subcategoryColumns+` FROM subcategories ORDER BY sort_order ASC, name ASC, id ASC`)
}

// ListSubcategoriesByCategory returns the subcategories owned by categoryID.
func (s *Store) ListSubcategoriesByCategory(ctx context.Context, categoryID int64) ([]models.Subcategory, error) {
	return s.querySubcategories(ctx,
		`SELECT `+subcategoryColumns+` FROM subcategories WHERE category_id = ? ORDER BY sort_order ASC, name ASC, id ASC`,
		categoryID)
}

func (s *Store) querySubcategories(ctx context.Context, query string, args ...any) ([]models.Subcategory, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domainerrors.Query(err, "list subcategories")
	}
	defer rows.Close()

	var out []models.Subcategory
	for rows.Next() {
		sc, err := scanSubcategory(rows)
		if err != nil {
			return nil, domainerrors.Query(err, "scan subcategory")
		}
		out = append(out, *sc)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerrors.Query(err, "list subcategories")
	}
	return out, nil
}

// GetCategory returns the category with the given id.
func (s *Store) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerrors.NotFoundf("category %d not found", id)
	}
	if err != nil {
		return nil, domainerrors.Query(err, "get category")
	}
	return c, nil
}

// GetCategoryBySlug returns the category with the given slug.
func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = ?`, slug)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerrors.NotFoundf("category %q not found", slug)
	}
	if err != nil {
		return nil, domainerrors.Query(err, "get category by slug")
	}
	return c, nil
}

// GetSubcategory returns the subcategory with the given id.
func (s *Store) GetSubcategory(ctx context.Context, id int64) (*models.Subcategory, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+subcategoryColumns+` FROM subcategories WHERE id = ?`, id)
	sc, err := scanSubcategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerrors.NotFoundf("subcategory %d not found", id)
	}
	if err != nil {
		return nil, domainerrors.Query(err, "get subcategory")
	}
	return sc, nil
}

// GetSubcategoryBySlug returns the subcategory with the given slug.
func (s *Store) GetSubcategoryBySlug(ctx context.Context, slug string) (*models.Subcategory, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+subcategoryColumns+` FROM subcategories WHERE slug = ?`, slug)
	sc, err := scanSubcategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerrors.NotFoundf("subcategory %q not found", slug)
	}
	if err != nil {
		return nil, domainerrors.Query(err, "get subcategory by slug")
	}
	return sc, nil
}

// CreateCategory inserts c and sets its ID and timestamps.
func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	now := s.now().UTC()
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO categories (name, slug, sort_order, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.Name, c.Slug, c.SortOrder, c.IsActive, formatTime(now), formatTime(now))
	if err != nil {
		return domainerrors.Persistence(err, "create category")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domainerrors.Persistence(err, "read new category id")
	}
	c.ID, c.CreatedAt, c.UpdatedAt = id, now, now
	return nil
}

// CreateSubcategory inserts sc and sets its ID and timestamps.
func (s *Store) CreateSubcategory(ctx context.Context, sc *models.Subcategory) error {
	facets, err := encodeFacets(sc.Facets)
	if err != nil {
		return domainerrors.Persistence(err, "encode facets")
	}
	now := s.now().UTC()
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO subcategories (category_id, name, slug, sort_order, is_active, facets, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sc.CategoryID, sc.Name, sc.Slug, sc.SortOrder, sc.IsActive, facets, formatTime(now), formatTime(now))
	if err != nil {
		return domainerrors.Persistence(err, "create subcategory")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domainerrors.Persistence(err, "read new subcategory id")
	}
	sc.ID, sc.CreatedAt, sc.UpdatedAt = id, now, now
	return nil
}

// SetCategoryActive sets is_active on a category.
func (s *Store) SetCategoryActive(ctx context.Context, id int64, active bool) error {
	return s.updateColumn(ctx, "categories", "is_active", active, id)
}

// SetSubcategoryActive sets is_active on a subcategory.
func (s *Store) SetSubcategoryActive(ctx context.Context, id int64, active bool) error {
	return s.updateColumn(ctx, "subcategories", "is_active", active, id)
}

// SetCategorySortOrder sets sort_order on a category. Siblings are not renumbered.
func (s *Store) SetCategorySortOrder(ctx context.Context, id int64, sortOrder int) error {
	return s.updateColumn(ctx, "categories", "sort_order", sortOrder, id)
}

// SetSubcategorySortOrder sets sort_order on a subcategory. Siblings are not renumbered.
func (s *Store) SetSubcategorySortOrder(ctx context.Context, id int64, sortOrder int) error {
	return s.updateColumn(ctx, "subcategories", "sort_order", sortOrder, id)
}

// updateColumn updates one column of one row. table and column are always
// package constants, never caller input.
func (s *Store) updateColumn(ctx context.Context, table, column string, value any, id int64) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE `+table+` SET `+column+` = ?, updated_at = ? WHERE id = ?`,
		value, formatTime(s.now()), id)
	if err != nil {
		return domainerrors.Persistence(err, "update "+table)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domainerrors.Persistence(err, "update "+table)
	}
	if affected > 0 {
		return nil
	}

	// MySQL reports 0 affected rows when nothing changed; tell that apart from a missing row.
	var exists int
	err = s.q.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return domainerrors.NotFoundf("%s row %d not found", strings.TrimSuffix(table, "s"), id)
	}
	if err != nil {
		return domainerrors.Persistence(err, "update "+table)
	}
	return nil
}

// UpsertCategories inserts or updates level-1 rows keyed on slug.
func (s *Store) UpsertCategories(ctx context.Context, rows []models.CategoryUpsert) error {
	now := formatTime(s.now())
	return chunk(len(rows), batchSize, func(start, end int) error {
		batch := rows[start:end]
		values := make([]string, 0, len(batch))
		args := make([]any, 0, len(batch)*6)
		for _, r := range batch {
			values = append(values, "(?, ?, ?, ?, ?, ?)")
			args = append(args, r.Name, r.Slug, r.SortOrder, r.IsActive, now, now)
		}

		query := `INSERT INTO categories (name, slug, sort_order, is_active, created_at, updated_at) VALUES ` +
			strings.Join(values, ", ") + " " +
			s.upsertClause("slug", "name", "sort_order", "is_active", "updated_at")
		if _, err := s.q.ExecContext(ctx, query, args...); err != nil {
			return domainerrors.Persistence(err, "upsert categories")
		}
		return nil
	})
}

// UpsertSubcategories inserts or updates level-2 rows keyed on slug.
// An existing slug moves to the row's category.
func (s *Store) UpsertSubcategories(ctx context.Context, rows []models.SubcategoryUpsert) error {
	now := formatTime(s.now())
	return chunk(len(rows), batchSize, func(start, end int) error {
		batch := rows[start:end]
		values := make([]string, 0, len(batch))
		args := make([]any, 0, len(batch)*8)
		for _, r := range batch {
			facets, err := encodeFacets(r.Facets)
			if err != nil {
				return domainerrors.Persistence(err, "encode facets")
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args, r.CategoryID, r.Name, r.Slug, r.SortOrder, r.IsActive, facets, now, now)
		}

		query := `INSERT INTO subcategories (category_id, name, slug, sort_order, is_active, facets, created_at, updated_at) VALUES ` +
			strings.Join(values, ", ") + " " +
			s.upsertClause("slug", "category_id", "name", "sort_order", "is_active", "facets", "updated_at")
		if _, err := s.q.ExecContext(ctx, query, args...); err != nil {
			return domainerrors.Persistence(err, "upsert subcategories")
		}
		return nil
	})
}

// upsertClause renders the dialect's insert-or-update tail.
func (s *Store) upsertClause(key string, columns ...string) string {
	sets := make([]string, len(columns))
	for i, col := range columns {
		if s.dialect == database.MySQL {
			sets[i] = fmt.Sprintf("%s = VALUES(%s)", col, col)
		} else {
			sets[i] = fmt.Sprintf("%s = excluded.%s", col, col)
		}
	}
	if s.dialect == database.MySQL {
		return "ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
	}
	return "ON CONFLICT(" + key + ") DO UPDATE SET " + strings.Join(sets, ", ")
}

// CategoryIDsBySlug returns slug -> id for the given category slugs. Unknown
// slugs are simply absent from the map.
func (s *Store) CategoryIDsBySlug(ctx context.Context, slugs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(slugs))
	err := chunk(len(slugs), batchSize, func(start, end int) error {
		batch := slugs[start:end]
		args := make([]any, len(batch))
		for i, slug := range batch {
			args[i] = slug
		}

		rows, err := s.q.QueryContext(ctx,
			`SELECT id, slug FROM categories WHERE slug IN (`+placeholders(len(batch))+`)`, args...)
		if err != nil {
			return domainerrors.Query(err, "resolve category ids")
		}
		defer rows.Close()

		for rows.Next() {
			var (
				id   int64
				slug string
			)
			if err := rows.Scan(&id, &slug); err != nil {
				return domainerrors.Query(err, "scan category id")
			}
			out[slug] = id
		}
		if err := rows.Err(); err != nil {
			return domainerrors.Query(err, "resolve category ids")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
