package store

import (
	"context"
	"database/sql"
	"errors"

	dbpkg "github.com/pdfmailer/internal/db"
)

// KVStore is a minimal key-value table on top of SQLite or PostgreSQL.
type KVStore struct {
	db      *sql.DB
	dialect dbpkg.Dialect
}

func NewKVStore(db *sql.DB, dialect dbpkg.Dialect) *KVStore {
	return &KVStore{db: db, dialect: dialect}
}

// Get returns the value stored under key. ok is false when the key is absent.
func (s *KVStore) Get(ctx context.Context, key string) (value []byte, ok bool, err error) {
	q := s.dialect.Rebind(`SELECT value FROM kv WHERE key = ?`)
	err = s.db.QueryRowContext(ctx, q, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Set inserts or replaces the value under key.
func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	q := s.dialect.Rebind(`
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`)
	_, err := s.db.ExecContext(ctx, q, key, value)
	return err
}

// Delete removes key. Deleting an absent key is not an error.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	q := s.dialect.Rebind(`DELETE FROM kv WHERE key = ?`)
	_, err := s.db.ExecContext(ctx, q, key)
	return err
}

// Ping verifies the underlying database connection.
func (s *KVStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
