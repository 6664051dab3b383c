package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/atomdocs/internal/config"
	"github.com/xxxsen/atomdocs/internal/model"
	"github.com/xxxsen/atomdocs/internal/pkg/timeutil"
	"github.com/xxxsen/atomdocs/internal/storage"
)

// ContentService is the single writer in front of the storage backend.
// Mutations are serialised per process; across processes the last write
// wins.
type ContentService struct {
	store           storage.Store
	site            config.SiteConfig
	initialDataFile string
	mu              sync.Mutex
	now             func() time.Time
}

func NewContentService(store storage.Store, site config.SiteConfig, initialDataFile string) *ContentService {
	return &ContentService{
		store:           store,
		site:            site,
		initialDataFile: initialDataFile,
		now:             time.Now,
	}
}

func (s *ContentService) Site() config.SiteConfig {
	return s.site
}

func (s *ContentService) Read(ctx context.Context) (*model.SiteData, error) {
	data, err := s.store.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read %s store: %w", s.store.Type(), err)
	}
	return data.Normalize(), nil
}

// Write replaces everything. The body is stored as given apart from
// normalising nil collections.
func (s *ContentService) Write(ctx context.Context, data *model.SiteData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(ctx, data)
}

func (s *ContentService) SavePage(ctx context.Context, page model.Page) (*model.Page, error) {
	s.preparePage(&page)
	s.mu.Lock()
	defer s.mu.Unlock()
	if entities, ok := s.store.(storage.EntityStore); ok {
		if err := entities.UpsertPage(ctx, &page); err != nil {
			return nil, fmt.Errorf("upsert page: %w", err)
		}
	} else {
		data, err := s.Read(ctx)
		if err != nil {
			return nil, err
		}
		if idx := data.PageIndex(page.ID); idx >= 0 {
			data.Pages[idx] = page
		} else {
			data.Pages = append(data.Pages, page)
		}
		if err := s.write(ctx, data); err != nil {
			return nil, err
		}
	}
	logutil.GetLogger(ctx).Info("page saved", zap.String("id", page.ID), zap.String("slug", page.Slug))
	return &page, nil
}

func (s *ContentService) DeletePage(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entities, ok := s.store.(storage.EntityStore); ok {
		if err := entities.DeletePage(ctx, id); err != nil {
			return fmt.Errorf("delete page: %w", err)
		}
		logutil.GetLogger(ctx).Info("page deleted", zap.String("id", id))
		return nil
	}
	data, err := s.Read(ctx)
	if err != nil {
		return err
	}
	kept := make([]model.Page, 0, len(data.Pages))
	for _, p := range data.Pages {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(data.Pages) {
		return nil
	}
	data.Pages = kept
	if err := s.write(ctx, data); err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("page deleted", zap.String("id", id))
	return nil
}

func (s *ContentService) SaveCategory(ctx context.Context, category model.Category) (*model.Category, error) {
	s.prepareCategory(&category)
	s.mu.Lock()
	defer s.mu.Unlock()
	if entities, ok := s.store.(storage.EntityStore); ok {
		if err := entities.UpsertCategory(ctx, &category); err != nil {
			return nil, fmt.Errorf("upsert category: %w", err)
		}
	} else {
		data, err := s.Read(ctx)
		if err != nil {
			return nil, err
		}
		if idx := data.CategoryIndex(category.ID); idx >= 0 {
			data.Categories[idx] = category
		} else {
			data.Categories = append(data.Categories, category)
		}
		if err := s.write(ctx, data); err != nil {
			return nil, err
		}
	}
	logutil.GetLogger(ctx).Info("category saved", zap.String("id", category.ID), zap.String("slug", category.Slug))
	return &category, nil
}

func (s *ContentService) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entities, ok := s.store.(storage.EntityStore); ok {
		if err := entities.DeleteCategory(ctx, id); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		logutil.GetLogger(ctx).Info("category deleted", zap.String("id", id))
		return nil
	}
	data, err := s.Read(ctx)
	if err != nil {
		return err
	}
	kept := make([]model.Category, 0, len(data.Categories))
	for _, c := range data.Categories {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(data.Categories) {
		return nil
	}
	data.Categories = kept
	if err := s.write(ctx, data); err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("category deleted", zap.String("id", id))
	return nil
}

// ReorderPages replaces the page collection and leaves categories alone.
func (s *ContentService) ReorderPages(ctx context.Context, pages []model.Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.Read(ctx)
	if err != nil {
		return err
	}
	data.Pages = pages
	return s.write(ctx, data)
}

// ReorderCategories replaces the category collection and leaves pages alone.
func (s *ContentService) ReorderCategories(ctx context.Context, categories []model.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.Read(ctx)
	if err != nil {
		return err
	}
	data.Categories = categories
	return s.write(ctx, data)
}

// write expects s.mu to be held.
func (s *ContentService) write(ctx context.Context, data *model.SiteData) error {
	if err := s.store.Write(ctx, data.Normalize()); err != nil {
		return fmt.Errorf("write %s store: %w", s.store.Type(), err)
	}
	return nil
}

func (s *ContentService) preparePage(page *model.Page) {
	now := timeutil.Format(s.now())
	if page.ID == "" {
		page.ID = newID()
	}
	if page.Tags == nil {
		page.Tags = []string{}
	}
	if page.CreatedAt == "" {
		page.CreatedAt = now
	}
	if page.UpdatedAt == "" {
		page.UpdatedAt = now
	}
}

func (s *ContentService) prepareCategory(category *model.Category) {
	if category.ID == "" {
		category.ID = newID()
	}
	if category.CreatedAt == "" {
		category.CreatedAt = timeutil.Format(s.now())
	}
}
