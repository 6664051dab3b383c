package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/xxxsen/atomdocs/internal/model"
)

const defaultDataFile = "data.json"

type fileConfig struct {
	Path string `json:"path"`
}

// fileStore keeps the site in one JSON document on local disk. Writes go
// through a temp file and rename so readers never see a torn file.
type fileStore struct {
	path string
}

func init() {
	Register("file", createFileStore)
}

func createFileStore(args interface{}) (Store, error) {
	cfg := &fileConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if cfg.Path == "" {
		cfg.Path = defaultDataFile
	}
	return NewFileStore(cfg.Path), nil
}

func NewFileStore(path string) Store {
	return &fileStore{path: filepath.Clean(path)}
}

func (s *fileStore) Type() string {
	return "file"
}

func (s *fileStore) Read(_ context.Context) (*model.SiteData, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.EmptySiteData(), nil
		}
		return nil, fmt.Errorf("read data file: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return model.EmptySiteData(), nil
	}
	return decodeSiteData(raw)
}

func (s *fileStore) Write(_ context.Context, data *model.SiteData) error {
	raw, err := encodeSiteData(data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("write data file: %w", err)
	}
	return nil
}

func (s *fileStore) Close() error {
	return nil
}
