package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/xxxsen/common/logger"
)

const (
	DefaultSiteTitle       = "Atom Docs"
	DefaultInitialDataFile = "data.json"
	DefaultSnapshotSpec    = "0 3 * * *"
	DefaultSnapshotKeep    = 7

	editState = "edit"
)

type Config struct {
	Port            int              `json:"port"`
	LogConfig       logger.LogConfig `json:"log_config"`
	Site            SiteConfig       `json:"site"`
	Storage         StorageConfig    `json:"storage"`
	InitialDataFile string           `json:"initial_data_file"`
	CORSAllowlist   []string         `json:"cors_allowlist"`
	Snapshot        SnapshotConfig   `json:"snapshot"`
}

// SiteConfig drives presentation only. EditMode toggles admin affordances
// in the UI and is not checked by the API.
type SiteConfig struct {
	Title    string `json:"title"`
	EditMode bool   `json:"edit_mode"`
}

type StorageConfig struct {
	Type            string      `json:"type"`
	Data            interface{} `json:"data"`
	CacheTTLSeconds int         `json:"cache_ttl_seconds"`
	CacheSize       int         `json:"cache_size"`
	SeedOnEmpty     bool        `json:"seed_on_empty"`
}

type SnapshotConfig struct {
	Enabled bool   `json:"enabled"`
	Spec    string `json:"spec"`
	Dir     string `json:"dir"`
	Keep    int    `json:"keep"`
}

// envOverrides lists the variables that win over the config file.
type envOverrides struct {
	AppState        string `env:"APP_STATE"`
	AppTitle        string `env:"APP_TITLE"`
	StorageType     string `env:"STORAGE_TYPE"`
	Port            int    `env:"PORT"`
	InitialDataFile string `env:"INITIAL_DATA_FILE"`
}

var storageTypes = map[string]struct{}{
	"postgres": {},
	"sqlite":   {},
	"file":     {},
	"redis":    {},
	"session":  {},
	"s3":       {},
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	// a missing .env is the normal case outside local development
	_ = godotenv.Load()
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := finalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	var ov envOverrides
	if err := env.Parse(&ov); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if ov.AppState != "" {
		cfg.Site.EditMode = strings.EqualFold(strings.TrimSpace(ov.AppState), editState)
	}
	if ov.AppTitle != "" {
		cfg.Site.Title = ov.AppTitle
	}
	if ov.StorageType != "" {
		cfg.Storage.Type = ov.StorageType
	}
	if ov.Port != 0 {
		cfg.Port = ov.Port
	}
	if ov.InitialDataFile != "" {
		cfg.InitialDataFile = ov.InitialDataFile
	}
	return nil
}

func finalize(cfg *Config) error {
	if cfg.Port == 0 {
		return fmt.Errorf("port is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Site.Title == "" {
		cfg.Site.Title = DefaultSiteTitle
	}
	if cfg.InitialDataFile == "" {
		cfg.InitialDataFile = DefaultInitialDataFile
	}
	cfg.Storage.Type = strings.ToLower(strings.TrimSpace(cfg.Storage.Type))
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "file"
	}
	if _, ok := storageTypes[cfg.Storage.Type]; !ok {
		return fmt.Errorf("storage.type must be one of postgres, sqlite, file, redis, session or s3")
	}
	if cfg.Storage.Data == nil {
		cfg.Storage.Data = map[string]interface{}{}
	}
	if cfg.Storage.CacheTTLSeconds < 0 {
		return fmt.Errorf("storage.cache_ttl_seconds must not be negative")
	}
	if cfg.Storage.CacheSize <= 0 {
		cfg.Storage.CacheSize = 1
	}
	if cfg.Snapshot.Enabled {
		if cfg.Snapshot.Dir == "" {
			return fmt.Errorf("snapshot.dir is required when snapshot is enabled")
		}
		if cfg.Snapshot.Spec == "" {
			cfg.Snapshot.Spec = DefaultSnapshotSpec
		}
		if cfg.Snapshot.Keep <= 0 {
			cfg.Snapshot.Keep = DefaultSnapshotKeep
		}
	}
	return nil
}
