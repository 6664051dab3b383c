package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/atomdocs/internal/model"
	"github.com/xxxsen/atomdocs/internal/storage"
)

func newImportCmd() *cobra.Command {
	var configPath, filePath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "replace stored content with a data.json file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if filePath == "" {
				return fmt.Errorf("--file is required")
			}
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(filePath)
			if err != nil {
				return fmt.Errorf("read %s: %w", filePath, err)
			}
			var data model.SiteData
			if err := json.Unmarshal(raw, &data); err != nil {
				return fmt.Errorf("decode %s: %w", filePath, err)
			}
			store, err := storage.New(cfg.Storage)
			if err != nil {
				return fmt.Errorf("init storage: %w", err)
			}
			defer store.Close()
			ctx := cmd.Context()
			if err := store.Write(ctx, data.Normalize()); err != nil {
				return fmt.Errorf("write %s store: %w", store.Type(), err)
			}
			logutil.GetLogger(ctx).Info("content imported",
				zap.String("file", filePath),
				zap.Int("pages", len(data.Pages)),
				zap.Int("categories", len(data.Categories)),
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	cmd.Flags().StringVar(&filePath, "file", "", "data file to import")
	return cmd
}

func newExportCmd() *cobra.Command {
	var configPath, filePath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "dump stored content as json",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			store, err := storage.New(cfg.Storage)
			if err != nil {
				return fmt.Errorf("init storage: %w", err)
			}
			defer store.Close()
			return exportContent(cmd.Context(), store, filePath, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	cmd.Flags().StringVar(&filePath, "file", "", "output file, stdout when empty")
	return cmd
}

func exportContent(ctx context.Context, store storage.Store, filePath string, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	data, err := store.Read(ctx)
	if err != nil {
		return fmt.Errorf("read %s store: %w", store.Type(), err)
	}
	raw, err := json.MarshalIndent(data.Normalize(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}
	raw = append(raw, '\n')
	if filePath == "" {
		_, err := stdout.Write(raw)
		return err
	}
	if err := atomic.WriteFile(filePath, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("write %s: %w", filePath, err)
	}
	return nil
}
