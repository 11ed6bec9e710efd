package models

import "time"

// Category defines the struct for the 'categories' table.
type Category struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	SortOrder int       `json:"sortOrder" db:"sort_order"`
	IsActive  bool      `json:"isActive" db:"is_active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Subcategory defines the struct for the 'subcategories' table.
// Facets holds the third CSV level, which has no table of its own.
type Subcategory struct {
	ID         int64     `json:"id" db:"id"`
	CategoryID int64     `json:"categoryId" db:"category_id"`
	Name       string    `json:"name" db:"name"`
	Slug       string    `json:"slug" db:"slug"`
	SortOrder  int       `json:"sortOrder" db:"sort_order"`
	IsActive   bool      `json:"isActive" db:"is_active"`
	Facets     []Facet   `json:"facets,omitempty" db:"facets"` // Stored as JSON in DB
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// Facet is a level-3 taxonomy entry attached to a subcategory.
type Facet struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CategoryNode is a category with its subcategories nested, shaped for navigation.
type CategoryNode struct {
	Category
	Subcategories []Subcategory `json:"subcategories"`
}

// --- Write payloads ---

// CategoryUpsert is one level-1 row of an import batch, keyed by Slug.
type CategoryUpsert struct {
	Name      string
	Slug      string
	SortOrder int
	IsActive  bool
}

// SubcategoryUpsert is one level-2 row of an import batch, keyed by Slug.
type SubcategoryUpsert struct {
	CategoryID int64
	Name       string
	Slug       string
	SortOrder  int
	IsActive   bool
	Facets     []Facet
}

// --- API Input Structs ---

type CreateCategoryInput struct {
	Name      string `json:"name" binding:"required"`
	Slug      string `json:"slug"`
	SortOrder int    `json:"sortOrder" binding:"gte=0"`
}

type SetActiveInput struct {
	Active *bool `json:"active" binding:"required"`
}

type ReorderInput struct {
	SortOrder *int `json:"sortOrder" binding:"required,gte=0"`
}
