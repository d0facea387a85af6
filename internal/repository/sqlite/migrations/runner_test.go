package migrations_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"

	"github.com/msomdec/cms/internal/repository/sqlite/migrations"
)

func openMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func countApplied(t *testing.T, db *sql.DB) int {
	t.Helper()
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count schema_migrations: %v", err)
	}
	return count
}

func TestRun_CreatesSchema(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, err := db.ExecContext(ctx,
		"INSERT INTO credentials (username, password_hash) VALUES (?, ?)", "alice", "hash",
	); err != nil {
		t.Fatalf("insert into credentials: %v", err)
	}
	if _, err := db.ExecContext(ctx,
		"INSERT INTO documents (name, content) VALUES (?, ?)", "a.txt", []byte("x"),
	); err != nil {
		t.Fatalf("insert into documents: %v", err)
	}
	if n := countApplied(t, db); n == 0 {
		t.Fatal("expected at least one migration recorded")
	}
}

func TestRun_Idempotent(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if n := countApplied(t, db); n != 1 {
		t.Fatalf("expected 1 migration record, got %d", n)
	}
}

func TestRunFS_AppliesInOrderAndOnlyOnce(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	fsys := fstest.MapFS{
		"002_fill.sql":   {Data: []byte("INSERT INTO t (v) VALUES ('second');")},
		"001_create.sql": {Data: []byte("CREATE TABLE t (v TEXT);")},
		"README.md":      {Data: []byte("not a migration")},
	}
	if err := migrations.RunFS(ctx, db, fsys); err != nil {
		t.Fatalf("RunFS: %v", err)
	}

	fsys["003_more.sql"] = &fstest.MapFile{Data: []byte("INSERT INTO t (v) VALUES ('third');")}
	if err := migrations.RunFS(ctx, db, fsys); err != nil {
		t.Fatalf("RunFS with new file: %v", err)
	}

	var rows int
	if err := db.QueryRow("SELECT COUNT(*) FROM t").Scan(&rows); err != nil {
		t.Fatalf("count t: %v", err)
	}
	if rows != 2 {
		t.Fatalf("expected 2 rows, got %d", rows)
	}
	if n := countApplied(t, db); n != 3 {
		t.Fatalf("expected 3 migration records, got %d", n)
	}
}

func TestRunFS_DetectsEditedMigration(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	fsys := fstest.MapFS{"001_create.sql": {Data: []byte("CREATE TABLE t (v TEXT);")}}
	if err := migrations.RunFS(ctx, db, fsys); err != nil {
		t.Fatalf("RunFS: %v", err)
	}

	fsys["001_create.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE t (v TEXT, w TEXT);")}
	err := migrations.RunFS(ctx, db, fsys)
	if !errors.Is(err, migrations.ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
}

func TestRunFS_FailedMigrationRollsBack(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	fsys := fstest.MapFS{"001_bad.sql": {Data: []byte("CREATE TABLE ok (v TEXT); THIS IS NOT SQL;")}}
	if err := migrations.RunFS(ctx, db, fsys); err == nil {
		t.Fatal("expected error for invalid sql")
	}
	if n := countApplied(t, db); n != 0 {
		t.Fatalf("expected no migration recorded, got %d", n)
	}
}
