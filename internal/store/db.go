package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/rojournal-dev/rojournal/internal/config"
)

// Open connects to Postgres with the configured pool settings.
func Open(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	if cfg.MaxIdleTime != "" {
		d, err := time.ParseDuration(cfg.MaxIdleTime)
		if err != nil {
			return nil, fmt.Errorf("parsing max_idle_time: %w", err)
		}
		db.SetConnMaxIdleTime(d)
	}

	return db, nil
}
