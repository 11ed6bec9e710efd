package taxonomy

import (
	"fmt"
	"strings"

	"github.com/ocaso/ocaso-api/internal/models"
)

// ValidationReport lists problems found in a taxonomy. Errors make the
// taxonomy unusable; warnings are tolerated but worth a look.
type ValidationReport struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// OK reports whether the taxonomy has no errors.
func (r ValidationReport) OK() bool {
	return len(r.Errors) == 0
}

type slugUse struct {
	slug string
	path string
}

// Validate checks a taxonomy tree, facets included as the third level.
//
// Errors: empty names, empty slugs, a slug used twice among siblings.
// Warnings: one slug used at several places in the tree (e.g. a category and
// a subcategory both called "games").
func Validate(nodes []models.CategoryNode) ValidationReport {
	report := ValidationReport{Errors: []string{}, Warnings: []string{}}
	var uses []slugUse

	check := func(scope string, seen map[string]bool, name, slug string) {
		if strings.TrimSpace(name) == "" {
			report.Errors = append(report.Errors, fmt.Sprintf("empty name in %s", scope))
		}
		if strings.TrimSpace(slug) == "" {
			report.Errors = append(report.Errors, fmt.Sprintf("empty slug in %s (%s)", scope, name))
			return
		}
		if seen[slug] {
			report.Errors = append(report.Errors, fmt.Sprintf("duplicate slug in %s: %s", scope, slug))
		}
		seen[slug] = true
	}

	rootSeen := map[string]bool{}
	for _, n := range nodes {
		check("root", rootSeen, n.Name, n.Slug)
		uses = append(uses, slugUse{n.Slug, n.Name})

		subSeen := map[string]bool{}
		subScope := "root > " + n.Name
		for _, sc := range n.Subcategories {
			check(subScope, subSeen, sc.Name, sc.Slug)
			subPath := n.Name + " > " + sc.Name
			uses = append(uses, slugUse{sc.Slug, subPath})

			facetSeen := map[string]bool{}
			for _, f := range sc.Facets {
				check(subScope+" > "+sc.Name, facetSeen, f.Name, f.Slug)
				uses = append(uses, slugUse{f.Slug, subPath + " > " + f.Name})
			}
		}
	}

	// Cross-level collisions, reported once per slug in first-seen order.
	paths := map[string][]string{}
	var order []string
	for _, u := range uses {
		if u.slug == "" {
			continue
		}
		if _, ok := paths[u.slug]; !ok {
			order = append(order, u.slug)
		}
		paths[u.slug] = append(paths[u.slug], u.path)
	}
	for _, slug := range order {
		if p := paths[slug]; len(p) > 1 {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("slug %q is used in %d places: %s", slug, len(p), strings.Join(p, "; ")))
		}
	}
	return report
}
