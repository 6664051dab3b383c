package service

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/atomdocs/internal/model"
	"github.com/xxxsen/atomdocs/internal/storage"
)

// InitialData loads the bundled seed file. A missing or unreadable file
// yields the empty structure; it never fails.
func (s *ContentService) InitialData(ctx context.Context) *model.SiteData {
	if s.initialDataFile == "" {
		return model.EmptySiteData()
	}
	data, err := storage.NewFileStore(s.initialDataFile).Read(ctx)
	if err != nil {
		logutil.GetLogger(ctx).Error("read initial data failed", zap.String("file", s.initialDataFile), zap.Error(err))
		return model.EmptySiteData()
	}
	return data
}

// SeedIfEmpty writes the initial data into the store when the store holds
// neither pages nor categories. It reports whether anything was written.
func (s *ContentService) SeedIfEmpty(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.Read(ctx)
	if err != nil {
		return false, err
	}
	if len(current.Pages) > 0 || len(current.Categories) > 0 {
		return false, nil
	}
	seed := s.InitialData(ctx)
	if len(seed.Pages) == 0 && len(seed.Categories) == 0 {
		return false, nil
	}
	if err := s.write(ctx, seed); err != nil {
		return false, err
	}
	logutil.GetLogger(ctx).Info("store seeded from initial data",
		zap.String("file", s.initialDataFile),
		zap.Int("pages", len(seed.Pages)),
		zap.Int("categories", len(seed.Categories)),
	)
	return true, nil
}
