package sqlite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/pagescrape/sqlite"
	"github.com/stretchr/testify/require"
)

func TestDB_Open(t *testing.T) {
	t.Parallel()

	t.Run("creates schema on first open", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(":memory:")
		err := db.Open()
		require.NoError(t, err)
		defer db.Close()

		var n int
		err = db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM scrape_records").Scan(&n)
		require.NoError(t, err)
		require.Zero(t, n)
	})

	t.Run("reopening keeps existing records", func(t *testing.T) {
		t.Parallel()

		dbPath := t.TempDir() + "/history.db"
		ctx := context.Background()

		db := sqlite.NewDB(dbPath)
		require.NoError(t, db.Open())
		_, err := db.ExecContext(ctx, `INSERT INTO scrape_records
			(id, client_id, url, mode, success, error_code, content_hash, bytes, duration_ms, created_at)
			VALUES ('r1', '', 'https://example.com', 'text', 1, '', '', 0, 0, '2026-01-01T00:00:00Z')`)
		require.NoError(t, err)
		require.NoError(t, db.Close())

		db = sqlite.NewDB(dbPath)
		require.NoError(t, db.Open())
		defer db.Close()

		var n int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM scrape_records").Scan(&n))
		require.Equal(t, 1, n)
	})

	t.Run("returns error for invalid path", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB("/nonexistent/path/db.sqlite")
		err := db.Open()
		require.Error(t, err)
	})

	t.Run("enables WAL mode for file-based databases", func(t *testing.T) {
		t.Parallel()

		dbPath := t.TempDir() + "/test.db"
		db := sqlite.NewDB(dbPath)
		err := db.Open()
		require.NoError(t, err)
		defer db.Close()

		ctx := context.Background()
		var journalMode string
		err = db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journalMode)
		require.NoError(t, err)
		require.Equal(t, "wal", journalMode)
	})
}
