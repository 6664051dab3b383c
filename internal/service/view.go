package service

import (
	"context"
	"sort"
	"strings"

	"github.com/xxxsen/atomdocs/internal/model"
	"github.com/xxxsen/atomdocs/internal/pkg/timeutil"
)

const recentPageLimit = 6

type PageSummary struct {
	model.Page
	CategoryName string `json:"category_name"`
}

type Overview struct {
	Title         string           `json:"title"`
	EditMode      bool             `json:"edit_mode"`
	PageCount     int              `json:"page_count"`
	CategoryCount int              `json:"category_count"`
	Categories    []model.Category `json:"categories"`
	RecentPages   []PageSummary    `json:"recent_pages"`
}

type PageFilter struct {
	Category string
	Tag      string
	Slug     string
}

// SortCategories orders by the order field ascending. Equal orders keep
// their stored sequence. The input is not modified.
func SortCategories(categories []model.Category) []model.Category {
	out := make([]model.Category, len(categories))
	copy(out, categories)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

func SortPages(pages []model.Page) []model.Page {
	out := make([]model.Page, len(pages))
	copy(out, pages)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

// RecentPages returns up to n pages, most recently updated first. Pages
// whose updatedAt cannot be parsed go last.
func RecentPages(pages []model.Page, n int) []model.Page {
	out := make([]model.Page, len(pages))
	copy(out, pages)
	sort.SliceStable(out, func(i, j int) bool {
		ti, okI := timeutil.Parse(out[i].UpdatedAt)
		tj, okJ := timeutil.Parse(out[j].UpdatedAt)
		switch {
		case okI && okJ:
			return ti.After(tj)
		case okI != okJ:
			return okI
		default:
			return out[i].UpdatedAt > out[j].UpdatedAt
		}
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// CategoryName resolves a page's category slug. Orphaned references fall
// back to the slug itself.
func CategoryName(categories []model.Category, slug string) string {
	for _, c := range categories {
		if c.Slug == slug {
			return c.Name
		}
	}
	return slug
}

func summarize(pages []model.Page, categories []model.Category) []PageSummary {
	out := make([]PageSummary, 0, len(pages))
	for _, p := range pages {
		out = append(out, PageSummary{Page: p, CategoryName: CategoryName(categories, p.Category)})
	}
	return out
}

func (s *ContentService) Overview(ctx context.Context) (*Overview, error) {
	data, err := s.Read(ctx)
	if err != nil {
		return nil, err
	}
	return &Overview{
		Title:         s.site.Title,
		EditMode:      s.site.EditMode,
		PageCount:     len(data.Pages),
		CategoryCount: len(data.Categories),
		Categories:    SortCategories(data.Categories),
		RecentPages:   summarize(RecentPages(data.Pages, recentPageLimit), data.Categories),
	}, nil
}

func (s *ContentService) ListCategories(ctx context.Context) ([]model.Category, error) {
	data, err := s.Read(ctx)
	if err != nil {
		return nil, err
	}
	return SortCategories(data.Categories), nil
}

func (s *ContentService) ListPages(ctx context.Context, filter PageFilter) ([]PageSummary, error) {
	data, err := s.Read(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]model.Page, 0, len(data.Pages))
	for _, p := range data.Pages {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Slug != "" && p.Slug != filter.Slug {
			continue
		}
		if filter.Tag != "" && !hasTag(p.Tags, filter.Tag) {
			continue
		}
		matched = append(matched, p)
	}
	return summarize(SortPages(matched), data.Categories), nil
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
