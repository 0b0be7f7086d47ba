package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/hrdesk/internal/db"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("not found")

// Well-known keys. Per-screen filter and form keys come from the catalog.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUserID       = "user_id"

	// KeyCommandHistory holds the TUI command bar lines as a JSON array.
	KeyCommandHistory = "command_history"
)

// KVRepo is the client-side key-value store.
type KVRepo interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	Keys(ctx context.Context) ([]string, error)
}

// SQLiteKVRepo implements KVRepo over the kv_store table.
type SQLiteKVRepo struct {
	db db.DBTX
}

func NewSQLiteKVRepo(conn db.DBTX) *SQLiteKVRepo {
	return &SQLiteKVRepo{db: conn}
}

func (r *SQLiteKVRepo) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("key %q: %w", key, ErrNotFound)
		}
		return "", fmt.Errorf("reading key %q: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteKVRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, nowUTC())
	if err != nil {
		return fmt.Errorf("writing key %q: %w", key, err)
	}
	return nil
}

// Delete removes keys. Missing keys are not an error.
func (r *SQLiteKVRepo) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key); err != nil {
			return fmt.Errorf("deleting key %q: %w", key, err)
		}
	}
	return nil
}

func (r *SQLiteKVRepo) Keys(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key FROM kv_store ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// GetJSON decodes the JSON value stored at key into v.
func GetJSON(ctx context.Context, repo KVRepo, key string, v any) error {
	raw, err := repo.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decoding key %q: %w", key, err)
	}
	return nil
}

// SetJSON stores v at key as JSON.
func SetJSON(ctx context.Context, repo KVRepo, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding key %q: %w", key, err)
	}
	return repo.Set(ctx, key, string(data))
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
