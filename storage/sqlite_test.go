package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"yclients_sync/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(store.Close)
	return store
}

func sampleTable() *models.Table {
	tbl := models.NewTable("id", "name", "created", "meta")
	tbl.AppendRow([]any{int64(1), "a", time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC), map[string]any{"k": "v"}})
	tbl.AppendRow([]any{int64(2), "b", nil, nil})
	return tbl
}

func countRows(t *testing.T, store *SQLiteStore, table string) int {
	t.Helper()
	var n int
	if err := store.db.QueryRow(`SELECT COUNT(*) FROM "` + table + `"`).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

// Replacing twice with identical data leaves the same row count and schema
// as replacing once.
func TestSQLiteWrite_ReplaceIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Write(ctx, "clients", sampleTable(), ModeReplace); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := store.Write(ctx, "clients", sampleTable(), ModeReplace); err != nil {
		t.Fatalf("second write: %v", err)
	}

	if got := countRows(t, store, "clients"); got != 2 {
		t.Fatalf("expected 2 rows after repeated replace, got %d", got)
	}
}

func TestSQLiteWrite_AppendAccumulates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Write(ctx, "clients", sampleTable(), ModeAppend); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := store.Write(ctx, "clients", sampleTable(), ModeAppend); err != nil {
		t.Fatalf("second write: %v", err)
	}

	if got := countRows(t, store, "clients"); got != 4 {
		t.Fatalf("expected 4 rows after two appends, got %d", got)
	}
}

func TestSQLiteWrite_SkipsEmptyTable(t *testing.T) {
	store := newTestStore(t)

	empty := models.NewTable("id", "name")
	if err := store.Write(context.Background(), "clients", empty, ModeReplace); err != nil {
		t.Fatalf("empty write should be a no-op, got %v", err)
	}

	// The table was never created.
	var n int
	err := store.db.QueryRow(`SELECT COUNT(*) FROM "clients"`).Scan(&n)
	if err == nil {
		t.Fatal("expected missing table after skipped write")
	}
}
