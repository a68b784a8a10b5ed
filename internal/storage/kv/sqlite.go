package kv

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// keyPrefix matches the original storage namespace.
const keyPrefix = "vh_"

// SQLite persists the bucket in a single local file, one row per key.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the storage file and bootstraps the schema.
func NewSQLite(storagePath string) (*SQLite, error) {
	const op = "kv.NewSQLite"

	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS kv_store(
            key TEXT PRIMARY KEY,
            value TEXT NOT NULL
        );
    `)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &SQLite{db: db}, nil
}

// Get unmarshals the value under key into result.
func (s *SQLite) Get(key string, result any) (bool, error) {
	const op = "kv.Get"

	var raw string
	err := s.db.QueryRow(`SELECT value FROM kv_store WHERE key = ?`, keyPrefix+key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal([]byte(raw), result); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Set stores the JSON encoding of value under key.
func (s *SQLite) Set(key string, value any) error {
	const op = "kv.Set"

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	_, err = s.db.Exec(`
        INSERT INTO kv_store (key, value) VALUES (?, ?)
        ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		keyPrefix+key, string(raw))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Delete removes the key.
func (s *SQLite) Delete(key string) error {
	const op = "kv.Delete"

	if _, err := s.db.Exec(`DELETE FROM kv_store WHERE key = ?`, keyPrefix+key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Keys lists every stored key without the namespace prefix.
func (s *SQLite) Keys() ([]string, error) {
	const op = "kv.Keys"

	rows, err := s.db.Query(`SELECT key FROM kv_store`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		keys = append(keys, key[len(keyPrefix):])
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return keys, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}
