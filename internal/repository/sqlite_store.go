package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"stayauth/pkg/database"
)

// sqliteStore keeps session entries in the local session_entries table
type sqliteStore struct {
	db *database.SQLiteDB
}

// NewSQLiteStore creates a SQLite-backed session store
func NewSQLiteStore(db *database.SQLiteDB) SessionStore {
	return &sqliteStore{db: db}
}

func (s *sqliteStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.DB.QueryRowContext(ctx, `SELECT value FROM session_entries WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to get session entry %s: %w", key, err)
	}
	return value, nil
}

func (s *sqliteStore) SetMany(ctx context.Context, entries map[string]string) error {
	tx, err := s.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for key, value := range entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO session_entries (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, key, value)
		if err != nil {
			return fmt.Errorf("failed to set session entry %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session entries: %w", err)
	}
	return nil
}

func (s *sqliteStore) Delete(ctx context.Context, keys ...string) error {
	tx, err := s.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, key := range keys {
		if _, err := tx.ExecContext(ctx, `DELETE FROM session_entries WHERE key = ?`, key); err != nil {
			return fmt.Errorf("failed to delete session entry %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session delete: %w", err)
	}
	return nil
}

func (s *sqliteStore) Health(ctx context.Context) error {
	return s.db.Health(ctx)
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
