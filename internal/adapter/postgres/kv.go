package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"armonia/internal/domain"
)

// Get returns the value stored under key.
func (d *DB) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := d.sql.QueryRowContext(ctx, "SELECT value FROM kv_records WHERE key = $1", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

// Set upserts value under key in a single statement.
func (d *DB) Set(ctx context.Context, key, value string) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO kv_records (key, value, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, value, time.Now().UTC(),
	)
	return err
}

// Delete removes key.
func (d *DB) Delete(ctx context.Context, key string) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM kv_records WHERE key = $1", key)
	return err
}
