package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/atomdocs/internal/config"
	"github.com/xxxsen/atomdocs/internal/handler"
	"github.com/xxxsen/atomdocs/internal/job"
	"github.com/xxxsen/atomdocs/internal/middleware"
	"github.com/xxxsen/atomdocs/internal/schedule"
	"github.com/xxxsen/atomdocs/internal/service"
	"github.com/xxxsen/atomdocs/internal/storage"
)

func runServer(cfg *config.Config) error {
	startedAt := time.Now()
	logger := logutil.GetLogger(context.Background())
	logger.Info("starting server",
		zap.Int("port", cfg.Port),
		zap.String("storage", cfg.Storage.Type),
		zap.Bool("edit_mode", cfg.Site.EditMode),
	)

	store, err := storage.New(cfg.Storage)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("close storage failed", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	content := service.NewContentService(store, cfg.Site, cfg.InitialDataFile)
	if cfg.Storage.SeedOnEmpty {
		if _, err := content.SeedIfEmpty(ctx); err != nil {
			return fmt.Errorf("seed storage: %w", err)
		}
	}

	if cfg.Snapshot.Enabled {
		scheduler := schedule.New()
		if err := scheduler.Add(job.NewSnapshotJob(content, cfg.Snapshot.Dir, cfg.Snapshot.Keep), cfg.Snapshot.Spec); err != nil {
			return fmt.Errorf("schedule snapshot: %w", err)
		}
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	deps := handler.RouterDeps{
		Data:       handler.NewDataHandler(content),
		Pages:      handler.NewPageHandler(content),
		Categories: handler.NewCategoryHandler(content),
		Site:       handler.NewSiteHandler(content),
	}
	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	engine, err := webapi.NewEngine(
		"/api",
		addr,
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logger.Info("http server listening", zap.String("addr", addr))

	errCh := make(chan error, 1)
	go func() {
		errCh <- engine.Run()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info("server stopping...", zap.Duration("uptime", time.Since(startedAt)))
	return nil
}
