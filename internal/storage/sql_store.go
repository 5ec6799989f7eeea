package storage

import (
	"context"
	"database/sql"
	"fmt"

	"questbuddy/internal/database"
)

// SQLStore persists key-value entries in the kv_entries table, using the
// dialect layer so the on-device SQLite default, PostgreSQL and MySQL all
// work from the same queries.
type SQLStore struct {
	db *database.DB
}

// NewSQLStore creates a store backed by the given database
func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Get retrieves the value stored under key, reporting absence via the bool
func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	query := "SELECT entry_value FROM kv_entries WHERE entry_key = ?"
	var value string
	err := s.db.DB.QueryRowContext(ctx, s.db.Dialect.RewriteQuery(query), key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return value, true, nil
}

// Set writes the value under key, replacing any previous value
func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	query := s.db.Dialect.RewriteQuery(s.db.Dialect.UpsertEntryQuery())
	if _, err := s.db.DB.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

// Remove deletes the entry under key; removing an absent key is not an error
func (s *SQLStore) Remove(ctx context.Context, key string) error {
	query := "DELETE FROM kv_entries WHERE entry_key = ?"
	if _, err := s.db.DB.ExecContext(ctx, s.db.Dialect.RewriteQuery(query), key); err != nil {
		return fmt.Errorf("failed to remove key %s: %w", key, err)
	}
	return nil
}
