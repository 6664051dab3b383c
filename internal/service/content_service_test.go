package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/atomdocs/internal/config"
	"github.com/xxxsen/atomdocs/internal/model"
	"github.com/xxxsen/atomdocs/internal/storage"
)

var fixedNow = time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, store storage.Store) *ContentService {
	t.Helper()
	svc := NewContentService(store, config.SiteConfig{Title: "Atom Docs", EditMode: true}, filepath.Join(t.TempDir(), "data.json"))
	svc.now = func() time.Time { return fixedNow }
	return svc
}

// backends covers both the read-modify-write path and the row level path.
func backends(t *testing.T) map[string]storage.Store {
	t.Helper()
	sqliteStore, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "docs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqliteStore.Close() })
	return map[string]storage.Store{
		"session": storage.NewSessionStore(),
		"file":    storage.NewFileStore(filepath.Join(t.TempDir(), "store.json")),
		"sqlite":  sqliteStore,
		"cached":  storage.WrapCache(storage.NewSessionStore(), 1, time.Minute),
	}
}

func TestSavePageUpsertsByID(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc := newTestService(t, store)

			_, err := svc.SavePage(ctx, model.Page{ID: "p1", Slug: "intro", Order: 1, UpdatedAt: "2024-01-01"})
			require.NoError(t, err)
			_, err = svc.SavePage(ctx, model.Page{ID: "p2", Slug: "setup", Order: 2})
			require.NoError(t, err)
			data, err := svc.Read(ctx)
			require.NoError(t, err)
			require.Len(t, data.Pages, 2)

			_, err = svc.SavePage(ctx, model.Page{ID: "p1", Slug: "intro", Order: 1, UpdatedAt: "2024-06-01"})
			require.NoError(t, err)
			data, err = svc.Read(ctx)
			require.NoError(t, err)
			require.Len(t, data.Pages, 2)
			count := 0
			for _, p := range data.Pages {
				if p.ID == "p1" {
					count++
					require.Equal(t, "2024-06-01", p.UpdatedAt)
				}
			}
			require.Equal(t, 1, count)
			require.Equal(t, "p1", data.Pages[0].ID)
		})
	}
}

func TestSavePageReplacesAllFields(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewSessionStore())
	_, err := svc.SavePage(ctx, model.Page{ID: "p1", Title: "Old", Tags: []string{"a", "b"}, Icon: "star", Content: "old body"})
	require.NoError(t, err)
	_, err = svc.SavePage(ctx, model.Page{ID: "p1", Title: "New"})
	require.NoError(t, err)
	data, err := svc.Read(ctx)
	require.NoError(t, err)
	require.Len(t, data.Pages, 1)
	require.Equal(t, "New", data.Pages[0].Title)
	require.Equal(t, []string{}, data.Pages[0].Tags)
	require.Empty(t, data.Pages[0].Icon)
	require.Empty(t, data.Pages[0].Content)
}

func TestSavePageFillsMissingFields(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewSessionStore())
	saved, err := svc.SavePage(ctx, model.Page{Title: "Untitled"})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	require.Equal(t, "2024-07-01T12:00:00Z", saved.CreatedAt)
	require.Equal(t, "2024-07-01T12:00:00Z", saved.UpdatedAt)
	require.Equal(t, []string{}, saved.Tags)

	kept, err := svc.SavePage(ctx, model.Page{ID: "p9", CreatedAt: "2020-01-01", UpdatedAt: "2021-01-01"})
	require.NoError(t, err)
	require.Equal(t, "2020-01-01", kept.CreatedAt)
	require.Equal(t, "2021-01-01", kept.UpdatedAt)

	category, err := svc.SaveCategory(ctx, model.Category{Name: "Guides"})
	require.NoError(t, err)
	require.NotEmpty(t, category.ID)
	require.Equal(t, "2024-07-01T12:00:00Z", category.CreatedAt)
}

func TestSaveCategoryUpsertsByID(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc := newTestService(t, store)
			_, err := svc.SaveCategory(ctx, model.Category{ID: "c1", Name: "Guides", Slug: "guides"})
			require.NoError(t, err)
			_, err = svc.SaveCategory(ctx, model.Category{ID: "c1", Name: "Tutorials", Slug: "guides", Order: 3})
			require.NoError(t, err)
			data, err := svc.Read(ctx)
			require.NoError(t, err)
			require.Len(t, data.Categories, 1)
			require.Equal(t, "Tutorials", data.Categories[0].Name)
			require.Equal(t, 3, data.Categories[0].Order)
		})
	}
}

func TestDeleteUnknownIDIsNoop(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc := newTestService(t, store)
			_, err := svc.SavePage(ctx, model.Page{ID: "p1"})
			require.NoError(t, err)
			_, err = svc.SaveCategory(ctx, model.Category{ID: "c1"})
			require.NoError(t, err)

			require.NoError(t, svc.DeletePage(ctx, "nope"))
			require.NoError(t, svc.DeleteCategory(ctx, "nope"))
			data, err := svc.Read(ctx)
			require.NoError(t, err)
			require.Len(t, data.Pages, 1)
			require.Len(t, data.Categories, 1)

			require.NoError(t, svc.DeletePage(ctx, "p1"))
			require.NoError(t, svc.DeleteCategory(ctx, "c1"))
			data, err = svc.Read(ctx)
			require.NoError(t, err)
			require.Empty(t, data.Pages)
			require.Empty(t, data.Categories)
		})
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc := newTestService(t, store)
			want := &model.SiteData{
				Pages: []model.Page{
					{ID: "p1", Title: "Intro", Slug: "intro", Category: "guides", Tags: []string{"a"}, Content: "hi", Order: 1, CreatedAt: "2024-01-01", UpdatedAt: "2024-01-02"},
				},
				Categories: []model.Category{
					{ID: "c1", Name: "Guides", Slug: "guides", IconColor: "blue", Order: 1, CreatedAt: "2024-01-01"},
				},
			}
			require.NoError(t, svc.Write(ctx, want))
			got, err := svc.Read(ctx)
			require.NoError(t, err)
			require.Equal(t, want, got)
		})
	}
}

func TestReorderKeepsOtherCollection(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewSessionStore())
	require.NoError(t, svc.Write(ctx, &model.SiteData{
		Pages:      []model.Page{{ID: "p1", Order: 1}, {ID: "p2", Order: 2}},
		Categories: []model.Category{{ID: "c1", Order: 1}, {ID: "c2", Order: 2}},
	}))

	require.NoError(t, svc.ReorderCategories(ctx, []model.Category{{ID: "c2", Order: 1}, {ID: "c1", Order: 2}}))
	data, err := svc.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, "c2", data.Categories[0].ID)
	require.Len(t, data.Pages, 2)

	require.NoError(t, svc.ReorderPages(ctx, []model.Page{{ID: "p2", Order: 1}}))
	data, err = svc.Read(ctx)
	require.NoError(t, err)
	require.Len(t, data.Pages, 1)
	require.Len(t, data.Categories, 2)
}

type brokenStore struct {
	storage.Store
	readErr  error
	writeErr error
}

func (b *brokenStore) Read(ctx context.Context) (*model.SiteData, error) {
	if b.readErr != nil {
		return nil, b.readErr
	}
	return b.Store.Read(ctx)
}

func (b *brokenStore) Write(ctx context.Context, data *model.SiteData) error {
	if b.writeErr != nil {
		return b.writeErr
	}
	return b.Store.Write(ctx, data)
}

func TestStoreErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("backend down")

	svc := newTestService(t, &brokenStore{Store: storage.NewSessionStore(), readErr: boom})
	_, err := svc.Read(ctx)
	require.ErrorIs(t, err, boom)
	_, err = svc.SavePage(ctx, model.Page{ID: "p1"})
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, svc.DeleteCategory(ctx, "c1"), boom)
	_, err = svc.Overview(ctx)
	require.ErrorIs(t, err, boom)

	svc = newTestService(t, &brokenStore{Store: storage.NewSessionStore(), writeErr: boom})
	require.ErrorIs(t, svc.Write(ctx, model.EmptySiteData()), boom)
	_, err = svc.SaveCategory(ctx, model.Category{ID: "c1"})
	require.ErrorIs(t, err, boom)
}

func TestInitialData(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewSessionStore())

	require.Equal(t, model.EmptySiteData(), svc.InitialData(ctx))

	require.NoError(t, os.WriteFile(svc.initialDataFile, []byte("{broken"), 0o644))
	require.Equal(t, model.EmptySiteData(), svc.InitialData(ctx))

	require.NoError(t, os.WriteFile(svc.initialDataFile, []byte(`{"categories":[{"id":"c1","name":"Guides","slug":"guides","order":1}]}`), 0o644))
	data := svc.InitialData(ctx)
	require.Len(t, data.Categories, 1)
	require.Equal(t, []model.Page{}, data.Pages)
}

func TestSeedIfEmpty(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, storage.NewSessionStore())

	seeded, err := svc.SeedIfEmpty(ctx)
	require.NoError(t, err)
	require.False(t, seeded)

	require.NoError(t, os.WriteFile(svc.initialDataFile, []byte(`{"pages":[{"id":"p1","title":"Welcome"}],"categories":[]}`), 0o644))
	seeded, err = svc.SeedIfEmpty(ctx)
	require.NoError(t, err)
	require.True(t, seeded)
	data, err := svc.Read(ctx)
	require.NoError(t, err)
	require.Len(t, data.Pages, 1)

	_, err = svc.SavePage(ctx, model.Page{ID: "p2"})
	require.NoError(t, err)
	seeded, err = svc.SeedIfEmpty(ctx)
	require.NoError(t, err)
	require.False(t, seeded)
	data, err = svc.Read(ctx)
	require.NoError(t, err)
	require.Len(t, data.Pages, 2)
}
