package storage

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type postgresConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

func init() {
	Register("postgres", createPostgresStore)
}

func createPostgresStore(args interface{}) (Store, error) {
	cfg := &postgresConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	db, err := openPostgres(cfg)
	if err != nil {
		return nil, err
	}
	store, err := newSQLStore(db, "postgres", sqlx.DOLLAR)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func openPostgres(cfg *postgresConfig) (*sql.DB, error) {
	dsn := cfg.DSN
	if dsn == "" {
		if cfg.Host == "" || cfg.DBName == "" {
			return nil, fmt.Errorf("postgres dsn or host/dbname is required")
		}
		if cfg.Port == 0 {
			cfg.Port = 5432
		}
		sslmode := cfg.SSLMode
		if sslmode == "" {
			sslmode = "disable"
		}
		dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, sslmode)
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
