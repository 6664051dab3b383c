package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const defaultSQLiteFile = "atomdocs.db"

type sqliteConfig struct {
	Path string `json:"path"`
}

func init() {
	Register("sqlite", createSQLiteStore)
}

func createSQLiteStore(args interface{}) (Store, error) {
	cfg := &sqliteConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if cfg.Path == "" {
		cfg.Path = defaultSQLiteFile
	}
	return OpenSQLite(cfg.Path)
}

// OpenSQLite opens (creating when needed) a sqlite database at path and
// applies the schema.
func OpenSQLite(path string) (Store, error) {
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open("sqlite", cleanPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// one connection serialises writers and keeps transactions simple
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	store, err := newSQLStore(db, "sqlite", sqlx.QUESTION)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}
