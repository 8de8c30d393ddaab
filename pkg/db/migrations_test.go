package db

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInitializeDatabase(t *testing.T) {
	db := openTestDB(t)

	if err := InitializeDatabase(db); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	for _, table := range []string{"agents", "feedback"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}

	// Running again is a no-op.
	if err := InitializeDatabase(db); err != nil {
		t.Fatalf("second initialize: %v", err)
	}

	pending, err := NewMigrationManager(db).GetPendingMigrations()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("expected no pending migrations, got %d", len(pending))
	}
}

func TestMigrationsFromPath(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"002_second.sql": "CREATE TABLE second (id INTEGER);",
		"001_first.sql":  "CREATE TABLE first (id INTEGER);",
		"README.md":      "not a migration",
		"x_bad.sql":      "SELECT 1;",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	m := NewMigrationManagerFromPath(openTestDB(t), dir)
	available, err := m.GetAvailableMigrations()
	if err != nil {
		t.Fatal(err)
	}
	if len(available) != 2 || available[0].Name != "first" || available[1].Version != 2 {
		t.Fatalf("unexpected migrations: %+v", available)
	}

	if err := m.ApplyPendingMigrations(); err != nil {
		t.Fatalf("apply: %v", err)
	}
	applied, err := m.GetAppliedMigrations()
	if err != nil {
		t.Fatal(err)
	}
	if len(applied) != 2 {
		t.Errorf("expected 2 applied migrations, got %d", len(applied))
	}
}
