// Package metadata stores opaque values by key in the SQLite "metadata"
// table. The repository takes a dbx.DBTX, so the same code runs inside
// dbx.WithTx.
package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/KMDPriyashan/tripzy/internal/dbx"
)

const (
	getQuery = `SELECT value FROM metadata WHERE key = ?`
	setQuery = `INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	deletePrefixQuery = `DELETE FROM metadata WHERE key LIKE ? ESCAPE '\'`
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

var _ Repository = (*SQLiteRepository)(nil)

func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	switch err := r.db.QueryRowContext(ctx, getQuery, key).Scan(&value); {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("get metadata %q: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	if _, err := r.db.ExecContext(ctx, setQuery, key, value); err != nil {
		return fmt.Errorf("set metadata %q: %w", key, err)
	}
	return nil
}

// DeletePrefix treats prefix literally; LIKE wildcards in it are escaped.
func (r *SQLiteRepository) DeletePrefix(ctx context.Context, prefix string) error {
	if _, err := r.db.ExecContext(ctx, deletePrefixQuery, likeEscaper.Replace(prefix)+"%"); err != nil {
		return fmt.Errorf("delete metadata %q*: %w", prefix, err)
	}
	return nil
}
