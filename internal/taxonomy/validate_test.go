package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocaso/ocaso-api/internal/models"
)

func node(name, slug string, subs ...models.Subcategory) models.CategoryNode {
	return models.CategoryNode{Category: models.Category{Name: name, Slug: slug}, Subcategories: subs}
}

func sub(name, slug string, facets ...models.Facet) models.Subcategory {
	return models.Subcategory{Name: name, Slug: slug, Facets: facets}
}

func TestValidateDefaults(t *testing.T) {
	t.Parallel()

	var nodes []models.CategoryNode
	for _, d := range Defaults {
		n := node(d.Name, d.Slug)
		for _, s := range d.Subs {
			n.Subcategories = append(n.Subcategories, sub(s.Name, s.Slug))
		}
		nodes = append(nodes, n)
	}

	report := Validate(nodes)
	assert.True(t, report.OK(), report.Errors)
	// "games" is both a category and a subcategory.
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], `"games"`)
}

func TestValidateErrors(t *testing.T) {
	t.Parallel()

	nodes := []models.CategoryNode{
		node("Auto", "auto",
			sub("Banden", "banden"),
			sub("Banden 2", "banden"),
			sub("", "leeg"),
		),
		node("Auto", "auto"),
		node("Geen slug", " "),
		node("Huis", "huis",
			sub("Meubels", "meubels", models.Facet{Name: "Stoelen", Slug: "stoelen"}, models.Facet{Name: "Stoel", Slug: "stoelen"}),
		),
	}

	report := Validate(nodes)
	assert.False(t, report.OK())
	assert.Contains(t, report.Errors, "duplicate slug in root > Auto: banden")
	assert.Contains(t, report.Errors, "empty name in root > Auto")
	assert.Contains(t, report.Errors, "duplicate slug in root: auto")
	assert.Contains(t, report.Errors, "empty slug in root (Geen slug)")
	assert.Contains(t, report.Errors, "duplicate slug in root > Huis > Meubels: stoelen")
}

func TestValidateEmptyTree(t *testing.T) {
	t.Parallel()
	report := Validate(nil)
	assert.True(t, report.OK())
	assert.Empty(t, report.Warnings)
}
