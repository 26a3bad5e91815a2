package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/scry-tutor/internal/config"
	"github.com/phrazzld/scry-tutor/internal/platform/memstore"
	"github.com/phrazzld/scry-tutor/internal/platform/postgres"
	"github.com/phrazzld/scry-tutor/internal/platform/redis"
	"github.com/phrazzld/scry-tutor/internal/platform/sqlite"
	"github.com/phrazzld/scry-tutor/internal/store"
)

// setupAppDatabase establishes a connection to Postgres and configures the
// connection pool.
func setupAppDatabase(ctx context.Context, cfg config.DatabaseConfig, l *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	l.Info("database connection established")
	return db, nil
}

// openKVStore opens the configured key-value backend. The returned closer
// is nil for backends without resources to release.
func openKVStore(ctx context.Context, cfg *config.Config, l *slog.Logger) (store.KeyValueStore, io.Closer, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		l.Warn("using in-memory store; users and sessions are lost on restart")
		return memstore.New(), nil, nil

	case config.BackendPostgres:
		db, err := setupAppDatabase(ctx, cfg.Database, l)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Migrate(ctx, db, "up", l); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return postgres.NewPostgresKVStore(db, l), db, nil

	case config.BackendSQLite:
		kv, err := sqlite.Open(ctx, cfg.Store.SQLitePath, l)
		if err != nil {
			return nil, nil, err
		}
		return kv, kv, nil

	case config.BackendRedis:
		kv, err := redis.Open(ctx, cfg.Store.RedisURL, l)
		if err != nil {
			return nil, nil, err
		}
		return kv, kv, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// runMigrations executes a goose command against the configured database.
func runMigrations(ctx context.Context, cfg *config.Config, l *slog.Logger, command string) error {
	if cfg.Store.Backend != config.BackendPostgres {
		return fmt.Errorf("migrations only apply to the postgres backend, got %q", cfg.Store.Backend)
	}

	db, err := setupAppDatabase(ctx, cfg.Database, l)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			l.Error("error closing database connection", "error", err)
		}
	}()

	return postgres.Migrate(ctx, db, command, l)
}
