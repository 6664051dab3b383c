package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/atomdocs/internal/model"
	"github.com/xxxsen/atomdocs/internal/storage"
)

func TestSortCategoriesStableByOrder(t *testing.T) {
	in := []model.Category{
		{ID: "a", Order: 2},
		{ID: "b", Order: 1},
		{ID: "c", Order: 2},
		{ID: "d", Order: 0},
		{ID: "e", Order: 1},
	}
	got := SortCategories(in)
	ids := make([]string, 0, len(got))
	for _, c := range got {
		ids = append(ids, c.ID)
	}
	require.Equal(t, []string{"d", "b", "e", "a", "c"}, ids)
	require.Equal(t, "a", in[0].ID)
}

func TestRecentPages(t *testing.T) {
	in := []model.Page{
		{ID: "old", UpdatedAt: "2023-01-01"},
		{ID: "bad", UpdatedAt: "not a date"},
		{ID: "new", UpdatedAt: "2024-06-01T10:00:00.000Z"},
		{ID: "mid", UpdatedAt: "2024-01-01T00:00:00Z"},
		{ID: "empty"},
	}
	got := RecentPages(in, 3)
	require.Len(t, got, 3)
	require.Equal(t, "new", got[0].ID)
	require.Equal(t, "mid", got[1].ID)
	require.Equal(t, "old", got[2].ID)

	all := RecentPages(in, 10)
	require.Len(t, all, 5)
	require.Equal(t, "bad", all[3].ID)
	require.Equal(t, "empty", all[4].ID)
}

func TestCategoryNameFallback(t *testing.T) {
	categories := []model.Category{{Slug: "guides", Name: "Guides"}}
	require.Equal(t, "Guides", CategoryName(categories, "guides"))
	require.Equal(t, "orphan", CategoryName(categories, "orphan"))
}

func TestOverview(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewSessionStore())
	pages := make([]model.Page, 0, 8)
	for i, day := range []string{"01", "02", "03", "04", "05", "06", "07", "08"} {
		pages = append(pages, model.Page{ID: "p" + day, Category: "guides", Order: i, UpdatedAt: "2024-01-" + day})
	}
	pages[7].Category = "missing"
	require.NoError(t, svc.Write(ctx, &model.SiteData{
		Pages:      pages,
		Categories: []model.Category{{ID: "c2", Slug: "api", Order: 2}, {ID: "c1", Slug: "guides", Name: "Guides", Order: 1}},
	}))

	overview, err := svc.Overview(ctx)
	require.NoError(t, err)
	require.Equal(t, "Atom Docs", overview.Title)
	require.True(t, overview.EditMode)
	require.Equal(t, 8, overview.PageCount)
	require.Equal(t, 2, overview.CategoryCount)
	require.Equal(t, "c1", overview.Categories[0].ID)
	require.Len(t, overview.RecentPages, 6)
	require.Equal(t, "p08", overview.RecentPages[0].ID)
	require.Equal(t, "missing", overview.RecentPages[0].CategoryName)
	require.Equal(t, "Guides", overview.RecentPages[1].CategoryName)
}

func TestListPagesFilters(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewSessionStore())
	require.NoError(t, svc.Write(ctx, &model.SiteData{
		Pages: []model.Page{
			{ID: "p1", Slug: "intro", Category: "guides", Tags: []string{"Start"}, Order: 2},
			{ID: "p2", Slug: "api", Category: "reference", Order: 1},
			{ID: "p3", Slug: "setup", Category: "guides", Tags: []string{"start", "install"}, Order: 1},
		},
	}))

	all, err := svc.ListPages(ctx, PageFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "p2", all[0].ID)

	guides, err := svc.ListPages(ctx, PageFilter{Category: "guides"})
	require.NoError(t, err)
	require.Len(t, guides, 2)
	require.Equal(t, "p3", guides[0].ID)
	require.Equal(t, "guides", guides[0].CategoryName)

	tagged, err := svc.ListPages(ctx, PageFilter{Tag: "start"})
	require.NoError(t, err)
	require.Len(t, tagged, 2)

	bySlug, err := svc.ListPages(ctx, PageFilter{Slug: "api"})
	require.NoError(t, err)
	require.Len(t, bySlug, 1)
	require.Equal(t, "p2", bySlug[0].ID)

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Empty(t, categories)
}
