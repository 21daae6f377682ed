package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "tx.db"))
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	_, err = sqlDB.Exec("CREATE TABLE t (v TEXT)")
	require.NoError(t, err)
	return NewDB(sqlDB, zap.NewNop())
}

func count(t *testing.T, db *DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM t").Scan(&n))
	return n
}

func TestWithTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("commits", func(t *testing.T) {
		db := newTestDB(t)
		err := db.WithTransaction(ctx, func(ctx context.Context) error {
			require.NotNil(t, TxFromContext(ctx))
			_, err := ExecutorFor(ctx, db.DB).ExecContext(ctx, "INSERT INTO t (v) VALUES ('a')")
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, 1, count(t, db))
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db := newTestDB(t)
		boom := errors.New("boom")
		err := db.WithTransaction(ctx, func(ctx context.Context) error {
			_, err := ExecutorFor(ctx, db.DB).ExecContext(ctx, "INSERT INTO t (v) VALUES ('a')")
			require.NoError(t, err)
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 0, count(t, db))
	})

	t.Run("reuses an outer transaction", func(t *testing.T) {
		db := newTestDB(t)
		err := db.WithTransaction(ctx, func(outer context.Context) error {
			return db.WithTransaction(outer, func(inner context.Context) error {
				assert.Same(t, TxFromContext(outer), TxFromContext(inner))
				return nil
			})
		})
		require.NoError(t, err)
	})

	t.Run("executor without transaction is the db", func(t *testing.T) {
		db := newTestDB(t)
		assert.Equal(t, Executor(db.DB), ExecutorFor(ctx, db.DB))
	})
}
