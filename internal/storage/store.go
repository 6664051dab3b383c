package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xxxsen/atomdocs/internal/config"
	"github.com/xxxsen/atomdocs/internal/model"
)

// Store persists the whole site as one unit. A store that has nothing yet
// reads as the empty structure; every other failure is returned to the
// caller.
type Store interface {
	Type() string
	Read(ctx context.Context) (*model.SiteData, error)
	Write(ctx context.Context, data *model.SiteData) error
	Close() error
}

// EntityStore is implemented by backends that can update a single record
// without rewriting the whole collection. Semantics match the
// read-modify-write path: upsert by id, delete of an unknown id succeeds.
type EntityStore interface {
	UpsertPage(ctx context.Context, page *model.Page) error
	DeletePage(ctx context.Context, id string) error
	UpsertCategory(ctx context.Context, category *model.Category) error
	DeleteCategory(ctx context.Context, id string) error
}

type Factory func(args interface{}) (Store, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func Register(name string, factory Factory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registryMu.Lock()
	registry[key] = factory
	registryMu.Unlock()
}

// New builds the configured backend. It is meant to be called once at
// startup; the result is shared by every request.
func New(cfg config.StorageConfig) (Store, error) {
	key := strings.ToLower(strings.TrimSpace(cfg.Type))
	if key == "" {
		return nil, fmt.Errorf("storage.type is required")
	}
	registryMu.RLock()
	factory := registry[key]
	registryMu.RUnlock()
	if factory == nil {
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
	store, err := factory(cfg.Data)
	if err != nil {
		return nil, fmt.Errorf("init %s store: %w", key, err)
	}
	if cfg.CacheTTLSeconds > 0 {
		store = WrapCache(store, cfg.CacheSize, time.Duration(cfg.CacheTTLSeconds)*time.Second)
	}
	return store, nil
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode store config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode store config: %w", err)
	}
	return nil
}

func decodeSiteData(raw []byte) (*model.SiteData, error) {
	var data model.SiteData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode site data: %w", err)
	}
	return data.Normalize(), nil
}

func encodeSiteData(data *model.SiteData) ([]byte, error) {
	raw, err := json.MarshalIndent(data.Clone().Normalize(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode site data: %w", err)
	}
	return raw, nil
}
