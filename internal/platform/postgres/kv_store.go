package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-tutor/internal/platform/logger"
	"github.com/phrazzld/scry-tutor/internal/store"
)

const (
	getValueQuery = `SELECT value FROM kv_entries WHERE key = $1`
	setValueQuery = `
		INSERT INTO kv_entries (key, value, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = NOW()`
)

// PostgresKVStore implements store.KeyValueStore on the kv_entries table.
type PostgresKVStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresKVStore creates a key-value store over db. The schema must
// already be migrated.
func NewPostgresKVStore(db store.DBTX, l *slog.Logger) *PostgresKVStore {
	if l == nil {
		l = slog.Default()
	}
	return &PostgresKVStore{
		db:     db,
		logger: l.With(slog.String("component", "postgres_kv_store")),
	}
}

var _ store.KeyValueStore = (*PostgresKVStore)(nil)

// Get implements store.KeyValueStore.
func (s *PostgresKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, getValueQuery, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to read key",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return "", false, fmt.Errorf("get %s: %w", key, MapError(err))
	}
	return value, true, nil
}

// Set implements store.KeyValueStore.
func (s *PostgresKVStore) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, setValueQuery, key, value); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to write key",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return fmt.Errorf("set %s: %w", key, MapError(err))
	}
	return nil
}
