package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// one connection so every statement sees the same in-memory database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT NOT NULL)`)
	require.NoError(t, err)
	return db
}

func rows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&n))
	return n
}

func insert(ctx context.Context, tx DBTX, k string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO kv(k, v) VALUES (?, 'x')`, k)
	return err
}

func TestWithTx(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name     string
		fn       func(ctx context.Context, tx DBTX) error
		wantErr  error
		wantRows int
	}{
		{
			name:     "commit",
			fn:       func(ctx context.Context, tx DBTX) error { return insert(ctx, tx, "a") },
			wantRows: 1,
		},
		{
			name: "rollback on error",
			fn: func(ctx context.Context, tx DBTX) error {
				if err := insert(ctx, tx, "a"); err != nil {
					return err
				}
				return boom
			},
			wantErr: boom,
		},
		{
			name: "statement error rolls back earlier writes",
			fn: func(ctx context.Context, tx DBTX) error {
				if err := insert(ctx, tx, "a"); err != nil {
					return err
				}
				return insert(ctx, tx, "a")
			},
			wantRows: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openDB(t)
			err := WithTx(context.Background(), db, nil, tt.fn)
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.wantRows == 0:
				require.Error(t, err)
			default:
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantRows, rows(t, db))
		})
	}
}

func TestWithTx_PanicRollsBackAndPropagates(t *testing.T) {
	db := openDB(t)

	require.PanicsWithValue(t, "kaput", func() {
		_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
			require.NoError(t, insert(ctx, tx, "a"))
			panic("kaput")
		})
	})
	assert.Equal(t, 0, rows(t, db))
}

func TestWithTx_BeginError(t *testing.T) {
	db := openDB(t)
	require.NoError(t, db.Close())

	called := false
	err := WithTx(context.Background(), db, nil, func(context.Context, DBTX) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin tx")
	assert.False(t, called)
}
