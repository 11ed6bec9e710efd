// Package importer loads the category taxonomy from an admin CSV upload.
//
// Columns: level-1 name, level-1 slug, level-2 name, level-2 slug, level-3
// name, level-3 slug, active flag, sort order. Level 1 becomes categories,
// level 2 subcategories, level 3 a facet list on the subcategory.
package importer

import (
	"context"
	"log/slog"

	"github.com/gosimple/slug"

	domainerrors "github.com/ocaso/ocaso-api/internal/errors"
	"github.com/ocaso/ocaso-api/internal/models"
	"github.com/ocaso/ocaso-api/internal/notify"
	"github.com/ocaso/ocaso-api/internal/store"
)

// ErrNoFile is returned when the upload carries no CSV.
var ErrNoFile = domainerrors.Validation("no file received")

// OrphanRow is a level-2 row skipped because its level-1 slug did not resolve.
type OrphanRow struct {
	Line       int    `json:"line"`
	ParentSlug string `json:"parentSlug"`
	Slug       string `json:"slug"`
}

// Report summarizes an import run.
type Report struct {
	Categories    int         `json:"categories"`
	Subcategories int         `json:"subcategories"`
	Facets        int         `json:"facets"`
	Orphans       []OrphanRow `json:"orphans"`
}

// Options configures an Importer.
type Options struct {
	// LogOrphans logs every skipped level-2 row at Warn.
	LogOrphans bool
}

// Importer upserts parsed CSV rows into the category store.
type Importer struct {
	store    *store.Store
	notifier notify.Notifier
	logger   *slog.Logger
	opts     Options
}

// New creates an Importer.
func New(s *store.Store, notifier notify.Notifier, logger *slog.Logger, opts Options) *Importer {
	return &Importer{store: s, notifier: notifier, logger: logger, opts: opts}
}

// plan is the normalized, deduplicated content of one upload.
type plan struct {
	categories []models.CategoryUpsert
	subs       []subRow
	orphans    []OrphanRow
}

type subRow struct {
	line       int
	parentSlug string
	upsert     models.SubcategoryUpsert
}

// Run imports csvText. Both levels are written in one transaction: any
// failure leaves the store untouched, and re-running the same file is a no-op.
func (im *Importer) Run(ctx context.Context, csvText string) (*Report, error) {
	p, err := buildPlan(ParseCSV(csvText))
	if err != nil {
		return nil, err
	}

	report := &Report{Orphans: []OrphanRow{}}
	err = im.store.WithTx(ctx, func(tx *store.Store) error {
		// 1. Level 1, then read back the ids.
		if len(p.categories) == 0 {
			return nil
		}
		if err := tx.UpsertCategories(ctx, p.categories); err != nil {
			return err
		}
		slugs := make([]string, len(p.categories))
		for i, c := range p.categories {
			slugs[i] = c.Slug
		}
		ids, err := tx.CategoryIDsBySlug(ctx, slugs)
		if err != nil {
			return err
		}
		report.Categories = len(p.categories)

		// 2. Level 2 under the resolved parents.
		subs := make([]models.SubcategoryUpsert, 0, len(p.subs))
		for _, sr := range p.subs {
			parentID, ok := ids[sr.parentSlug]
			if !ok {
				report.Orphans = append(report.Orphans, OrphanRow{Line: sr.line, ParentSlug: sr.parentSlug, Slug: sr.upsert.Slug})
				continue
			}
			sr.upsert.CategoryID = parentID
			subs = append(subs, sr.upsert)
			report.Facets += len(sr.upsert.Facets)
		}
		if len(subs) > 0 {
			if err := tx.UpsertSubcategories(ctx, subs); err != nil {
				return err
			}
		}
		report.Subcategories = len(subs)
		return nil
	})
	if err != nil {
		im.logger.Error("category import failed", "error", err)
		return nil, err
	}

	report.Orphans = append(p.orphans, report.Orphans...)
	if im.opts.LogOrphans {
		for _, o := range report.Orphans {
			im.logger.Warn("import skipped subcategory without parent",
				"line", o.Line,
				"slug", o.Slug,
				"parent_slug", o.ParentSlug,
			)
		}
	}

	im.logger.Info("category import finished",
		"categories", report.Categories,
		"subcategories", report.Subcategories,
		"facets", report.Facets,
		"orphans", len(report.Orphans),
	)
	if report.Categories > 0 {
		im.notifier.CategoryChanged(ctx, 0, 0)
	}
	return report, nil
}

// buildPlan validates and deduplicates rows. Levels 1 and 2 are keyed by slug
// with the last row winning; facets accumulate per subcategory in file order.
func buildPlan(rows []Row) (*plan, error) {
	p := &plan{}
	catIndex := map[string]int{}
	subIndex := map[string]int{}
	facetSeen := map[string]map[string]bool{}

	for _, r := range rows {
		// Rows without any level-1 data cannot be placed.
		if r.L1Name == "" && r.L1Slug == "" {
			if r.L2Slug != "" {
				p.orphans = append(p.orphans, OrphanRow{Line: r.Line, Slug: slug.Make(r.L2Slug)})
			}
			continue
		}

		l1Slug := slug.Make(r.L1Slug)
		if l1Slug == "" {
			return nil, domainerrors.Validationf("line %d: missing level-1 slug for %q", r.Line, r.L1Name)
		}
		if r.L1Name == "" {
			return nil, domainerrors.Validationf("line %d: missing level-1 name for %q", r.Line, l1Slug)
		}

		cat := models.CategoryUpsert{Name: r.L1Name, Slug: l1Slug, SortOrder: r.SortOrder, IsActive: r.Active}
		if i, ok := catIndex[l1Slug]; ok {
			p.categories[i] = cat
		} else {
			catIndex[l1Slug] = len(p.categories)
			p.categories = append(p.categories, cat)
		}

		if r.L2Slug == "" {
			continue
		}
		l2Slug := slug.Make(r.L2Slug)
		if l2Slug == "" {
			return nil, domainerrors.Validationf("line %d: invalid level-2 slug %q", r.Line, r.L2Slug)
		}
		if r.L2Name == "" {
			return nil, domainerrors.Validationf("line %d: missing level-2 name for %q", r.Line, l2Slug)
		}

		var facets []models.Facet
		if i, ok := subIndex[l2Slug]; ok {
			facets = p.subs[i].upsert.Facets
		}
		if r.L3Slug != "" {
			f := models.Facet{Name: r.L3Name, Slug: slug.Make(r.L3Slug)}
			if f.Name == "" {
				f.Name = r.L3Slug
			}
			if f.Slug != "" && !facetSeen[l2Slug][f.Slug] {
				if facetSeen[l2Slug] == nil {
					facetSeen[l2Slug] = map[string]bool{}
				}
				facetSeen[l2Slug][f.Slug] = true
				facets = append(facets, f)
			}
		}

		sr := subRow{
			line:       r.Line,
			parentSlug: l1Slug,
			upsert: models.SubcategoryUpsert{
				Name:      r.L2Name,
				Slug:      l2Slug,
				SortOrder: r.SortOrder,
				IsActive:  r.Active,
				Facets:    facets,
			},
		}
		if i, ok := subIndex[l2Slug]; ok {
			p.subs[i] = sr
		} else {
			subIndex[l2Slug] = len(p.subs)
			p.subs = append(p.subs, sr)
		}
	}

	return p, nil
}

// Preview groups rows into a tree without deduplicating them, so
// taxonomy.Validate can report duplicates the import would silently merge.
func Preview(rows []Row) []models.CategoryNode {
	var nodes []models.CategoryNode
	index := map[string]int{}
	subIndex := map[[2]string]int{}

	for _, r := range rows {
		l1Slug := slug.Make(r.L1Slug)
		i, ok := index[l1Slug]
		if !ok || l1Slug == "" {
			i = len(nodes)
			nodes = append(nodes, models.CategoryNode{
				Category:      models.Category{Name: r.L1Name, Slug: l1Slug},
				Subcategories: []models.Subcategory{},
			})
			if l1Slug != "" {
				index[l1Slug] = i
			}
		}
		if r.L2Slug == "" && r.L2Name == "" {
			continue
		}

		l2Slug := slug.Make(r.L2Slug)
		key := [2]string{l1Slug, l2Slug}
		j, ok := subIndex[key]
		// A repeated level-2 slug with a level-3 value is the next facet of
		// the same subcategory, not a duplicate.
		if !ok || r.L3Slug == "" || l2Slug == "" {
			j = len(nodes[i].Subcategories)
			nodes[i].Subcategories = append(nodes[i].Subcategories, models.Subcategory{Name: r.L2Name, Slug: l2Slug})
			subIndex[key] = j
		}
		if r.L3Slug != "" || r.L3Name != "" {
			sc := &nodes[i].Subcategories[j]
			sc.Facets = append(sc.Facets, models.Facet{Name: r.L3Name, Slug: slug.Make(r.L3Slug)})
		}
	}
	return nodes
}
