package taxonomy

import (
	"cmp"
	"slices"

	"github.com/ocaso/ocaso-api/internal/models"
)

// BuildTree nests flat subcategory rows under their categories. With
// activeOnly set, inactive categories are dropped together with all their
// subcategories, and inactive subcategories are dropped on their own.
// Both levels are ordered by sort order, then name, then id.
func BuildTree(cats []models.Category, subs []models.Subcategory, activeOnly bool) []models.CategoryNode {
	// 1. Keep the categories we are going to show, in display order.
	nodes := make([]models.CategoryNode, 0, len(cats))
	for _, c := range cats {
		if activeOnly && !c.IsActive {
			continue
		}
		nodes = append(nodes, models.CategoryNode{Category: c, Subcategories: []models.Subcategory{}})
	}
	slices.SortStableFunc(nodes, func(a, b models.CategoryNode) int {
		return compareNodes(a.SortOrder, b.SortOrder, a.Name, b.Name, a.ID, b.ID)
	})

	// 2. Index by id. Pointers into the slice, not copies.
	byID := make(map[int64]*models.CategoryNode, len(nodes))
	for i := range nodes {
		byID[nodes[i].ID] = &nodes[i]
	}

	// 3. Attach subcategories. A missing parent means it was filtered out
	// (or never existed), so the child is suppressed too.
	for _, sc := range subs {
		if activeOnly && !sc.IsActive {
			continue
		}
		if parent, ok := byID[sc.CategoryID]; ok {
			parent.Subcategories = append(parent.Subcategories, sc)
		}
	}

	// 4. Order each child list.
	for i := range nodes {
		SortSubcategories(nodes[i].Subcategories)
	}
	return nodes
}

// SortSubcategories orders subs in place by sort order, then name, then id.
func SortSubcategories(subs []models.Subcategory) {
	slices.SortStableFunc(subs, func(a, b models.Subcategory) int {
		return compareNodes(a.SortOrder, b.SortOrder, a.Name, b.Name, a.ID, b.ID)
	})
}

func compareNodes(sortA, sortB int, nameA, nameB string, idA, idB int64) int {
	if c := cmp.Compare(sortA, sortB); c != 0 {
		return c
	}
	if c := cmp.Compare(nameA, nameB); c != 0 {
		return c
	}
	return cmp.Compare(idA, idB)
}
