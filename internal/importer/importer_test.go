package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/ocaso/ocaso-api/internal/errors"
	"github.com/ocaso/ocaso-api/internal/logger"
	"github.com/ocaso/ocaso-api/internal/models"
	"github.com/ocaso/ocaso-api/internal/notify"
	"github.com/ocaso/ocaso-api/internal/store"
	"github.com/ocaso/ocaso-api/internal/store/storetest"
)

const sampleCSV = `l1_name,l1_slug,l2_name,l2_slug,l3_name,l3_slug,active,sort
Auto's,autos,Personenwagens,personenwagens,,,TRUE,1
Auto's,autos,Banden,banden,Winterbanden,winterbanden,TRUE,2
Auto's,autos,Banden,banden,Zomerbanden,zomerbanden,TRUE,2
Auto's,autos,Banden,banden,Winterbanden,winterbanden,TRUE,2
Huis,huis,Meubels,meubels,,,TRUE,0
Huis,huis,Oud,oud,,,FALSE,3
`

func newTestImporter(t *testing.T) (*Importer, *store.Store) {
	t.Helper()
	s := storetest.New(t)
	return New(s, notify.Noop{}, logger.Discard(), Options{LogOrphans: true}), s
}

func subSlugs(t *testing.T, s *store.Store) []string {
	t.Helper()
	subs, err := s.ListSubcategories(context.Background())
	require.NoError(t, err)
	out := make([]string, len(subs))
	for i, sc := range subs {
		out[i] = sc.Slug
	}
	return out
}

func TestRunImportsBothLevels(t *testing.T) {
	im, s := newTestImporter(t)
	ctx := context.Background()

	report, err := im.Run(ctx, sampleCSV)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Categories)
	assert.Equal(t, 4, report.Subcategories)
	assert.Equal(t, 2, report.Facets)
	assert.Empty(t, report.Orphans)

	autos, err := s.GetCategoryBySlug(ctx, "autos")
	require.NoError(t, err)
	assert.Equal(t, "Auto's", autos.Name)
	assert.True(t, autos.IsActive)

	// Last row for "huis" was inactive with sort 3.
	huis, err := s.GetCategoryBySlug(ctx, "huis")
	require.NoError(t, err)
	assert.False(t, huis.IsActive)
	assert.Equal(t, 3, huis.SortOrder)

	banden, err := s.GetSubcategoryBySlug(ctx, "banden")
	require.NoError(t, err)
	assert.Equal(t, autos.ID, banden.CategoryID)
	assert.Equal(t, []models.Facet{
		{Name: "Winterbanden", Slug: "winterbanden"},
		{Name: "Zomerbanden", Slug: "zomerbanden"},
	}, banden.Facets)

	oud, err := s.GetSubcategoryBySlug(ctx, "oud")
	require.NoError(t, err)
	assert.False(t, oud.IsActive)
}

func TestRunIsIdempotent(t *testing.T) {
	im, s := newTestImporter(t)
	ctx := context.Background()

	_, err := im.Run(ctx, sampleCSV)
	require.NoError(t, err)
	first, err := s.ListCategories(ctx)
	require.NoError(t, err)
	firstSubs := subSlugs(t, s)

	_, err = im.Run(ctx, sampleCSV)
	require.NoError(t, err)
	second, err := s.ListCategories(ctx)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Slug, second[i].Slug)
	}
	assert.ElementsMatch(t, firstSubs, subSlugs(t, s))
}

func TestRunSkipsOrphansAndContinues(t *testing.T) {
	im, s := newTestImporter(t)
	ctx := context.Background()

	csv := strings.Join([]string{
		"header",
		"Auto,auto,Banden,banden",
		",,Wees,wees",
		"Huis,huis,Meubels,meubels",
	}, "\n")

	report, err := im.Run(ctx, csv)
	require.NoError(t, err)
	require.Len(t, report.Orphans, 1)
	assert.Equal(t, OrphanRow{Line: 3, Slug: "wees"}, report.Orphans[0])
	assert.Equal(t, 2, report.Subcategories)
	assert.ElementsMatch(t, []string{"banden", "meubels"}, subSlugs(t, s))
}

func TestRunRejectsMissingSlugBeforeWriting(t *testing.T) {
	im, s := newTestImporter(t)
	ctx := context.Background()

	_, err := im.Run(ctx, "header\nAuto,auto\nHuis,,Meubels,meubels\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.Contains(t, err.Error(), "line 3")

	cats, err := s.ListCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, cats)
}

func TestRunRollsBackWhenLevelTwoFails(t *testing.T) {
	s, db := storetest.NewWithDB(t)
	im := New(s, notify.Noop{}, logger.Discard(), Options{})
	ctx := context.Background()

	_, err := db.ExecContext(ctx, "DROP TABLE subcategories")
	require.NoError(t, err)

	_, err = im.Run(ctx, sampleCSV)
	require.Error(t, err)
	assert.Equal(t, domainerrors.CodePersistence, domainerrors.CodeOf(err))

	cats, err := s.ListCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, cats, "level-1 rows must not survive a failed level-2 upsert")
}

func TestRunHeaderOnly(t *testing.T) {
	im, _ := newTestImporter(t)
	report, err := im.Run(context.Background(), "l1_name,l1_slug\n")
	require.NoError(t, err)
	assert.Zero(t, report.Categories)
	assert.NotNil(t, report.Orphans)
}

func TestSlugsAreNormalized(t *testing.T) {
	im, s := newTestImporter(t)
	ctx := context.Background()

	_, err := im.Run(ctx, "h\nTuin,Tuin Terras,BBQ,BBQ Buiten\n")
	require.NoError(t, err)

	_, err = s.GetCategoryBySlug(ctx, "tuin-terras")
	require.NoError(t, err)
	_, err = s.GetSubcategoryBySlug(ctx, "bbq-buiten")
	require.NoError(t, err)
}

func TestPreviewKeepsDuplicates(t *testing.T) {
	t.Parallel()

	rows := ParseCSV(strings.Join([]string{
		"header",
		"Auto,auto,Banden,banden,Winter,winter",
		"Auto,auto,Banden,banden,Zomer,zomer",
		"Auto,auto,Velgen,velgen",
		"Auto,auto,Velgen 2,velgen",
		"Huis,huis",
	}, "\n"))

	nodes := Preview(rows)
	require.Len(t, nodes, 2)
	require.Len(t, nodes[0].Subcategories, 3)
	assert.Len(t, nodes[0].Subcategories[0].Facets, 2)
	assert.Equal(t, "velgen", nodes[0].Subcategories[1].Slug)
	assert.Equal(t, "velgen", nodes[0].Subcategories[2].Slug)
	assert.Empty(t, nodes[1].Subcategories)
}

func TestBuildPlanKeepsSourceLines(t *testing.T) {
	t.Parallel()

	rows := ParseCSV(strings.Join([]string{
		"header",
		"Auto,auto,Banden,banden",
		"",
		"Auto,auto,Velgen,velgen",
		"Auto,auto,Banden,banden,Winter,winter",
	}, "\n"))

	p, err := buildPlan(rows)
	require.NoError(t, err)
	require.Len(t, p.subs, 2)

	// Last write wins, and so does its line.
	assert.Equal(t, "banden", p.subs[0].upsert.Slug)
	assert.Equal(t, 5, p.subs[0].line)
	assert.Equal(t, "velgen", p.subs[1].upsert.Slug)
	assert.Equal(t, 4, p.subs[1].line)
}
