package migration

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testFS(scripts map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, content := range scripts {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return fsys
}

func TestCurrentVersion(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, testFS(nil))

	version, err := runner.CurrentVersion()
	if err != nil {
		t.Fatalf("CurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("fresh database version = %d, want 0", version)
	}
}

func TestScripts(t *testing.T) {
	t.Run("sorted by version", func(t *testing.T) {
		runner := NewRunner(setupTestDB(t), testFS(map[string]string{
			"002_second.sql": "CREATE TABLE b (id INTEGER);",
			"001_first.sql":  "CREATE TABLE a (id INTEGER);",
			"010_tenth.sql":  "CREATE TABLE c (id INTEGER);",
		}))

		scripts, err := runner.Scripts()
		if err != nil {
			t.Fatalf("Scripts failed: %v", err)
		}
		if len(scripts) != 3 {
			t.Fatalf("got %d scripts, want 3", len(scripts))
		}
		for i, want := range []int{1, 2, 10} {
			if scripts[i].Version != want {
				t.Errorf("scripts[%d].Version = %d, want %d", i, scripts[i].Version, want)
			}
		}
		if scripts[0].Name != "first" {
			t.Errorf("scripts[0].Name = %q, want %q", scripts[0].Name, "first")
		}
	})

	t.Run("invalid filename rejected", func(t *testing.T) {
		runner := NewRunner(setupTestDB(t), testFS(map[string]string{
			"nounderscore.sql": "SELECT 1;",
		}))
		if _, err := runner.Scripts(); err == nil {
			t.Error("expected error for filename without version prefix")
		}
	})

	t.Run("duplicate version rejected", func(t *testing.T) {
		runner := NewRunner(setupTestDB(t), testFS(map[string]string{
			"001_a.sql": "SELECT 1;",
			"001_b.sql": "SELECT 1;",
		}))
		if _, err := runner.Scripts(); err == nil {
			t.Error("expected error for duplicate migration version")
		}
	})

	t.Run("non-sql files ignored", func(t *testing.T) {
		runner := NewRunner(setupTestDB(t), testFS(map[string]string{
			"001_init.sql": "CREATE TABLE a (id INTEGER);",
			"README.md":    "not a migration",
		}))
		scripts, err := runner.Scripts()
		if err != nil {
			t.Fatalf("Scripts failed: %v", err)
		}
		if len(scripts) != 1 {
			t.Errorf("got %d scripts, want 1", len(scripts))
		}
	})
}

func TestApply(t *testing.T) {
	t.Run("applies pending scripts in order", func(t *testing.T) {
		db := setupTestDB(t)
		runner := NewRunner(db, testFS(map[string]string{
			"001_create.sql": "CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT);",
			"002_column.sql": "ALTER TABLE items ADD COLUMN note TEXT;",
		}))

		applied, err := runner.Apply(nil)
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if applied != 2 {
			t.Errorf("applied = %d, want 2", applied)
		}

		version, err := runner.CurrentVersion()
		if err != nil {
			t.Fatalf("CurrentVersion failed: %v", err)
		}
		if version != 2 {
			t.Errorf("version after apply = %d, want 2", version)
		}

		// The second script depends on the first, so a successful insert
		// into the altered table proves ordering.
		if _, err := db.Exec("INSERT INTO items (name, note) VALUES ('a', 'b')"); err != nil {
			t.Errorf("schema incomplete after apply: %v", err)
		}
	})

	t.Run("reapply is a no-op", func(t *testing.T) {
		db := setupTestDB(t)
		runner := NewRunner(db, testFS(map[string]string{
			"001_create.sql": "CREATE TABLE items (id INTEGER PRIMARY KEY);",
		}))

		if _, err := runner.Apply(nil); err != nil {
			t.Fatalf("first Apply failed: %v", err)
		}
		applied, err := runner.Apply(nil)
		if err != nil {
			t.Fatalf("second Apply failed: %v", err)
		}
		if applied != 0 {
			t.Errorf("second Apply applied %d scripts, want 0", applied)
		}
	})

	t.Run("failed script rolls back atomically", func(t *testing.T) {
		db := setupTestDB(t)
		runner := NewRunner(db, testFS(map[string]string{
			"001_good.sql": "CREATE TABLE good (id INTEGER);",
			"002_bad.sql":  "CREATE TABLE bad (id INTEGER); INVALID SQL HERE;",
		}))

		applied, err := runner.Apply(nil)
		if err == nil {
			t.Fatal("expected Apply to fail on invalid SQL")
		}
		if applied != 1 {
			t.Errorf("applied = %d, want 1 (only the good script)", applied)
		}

		var mErr *Error
		if !errors.As(err, &mErr) {
			t.Fatalf("error type = %T, want *migration.Error", err)
		}
		if mErr.Version != 2 || mErr.Name != "bad" {
			t.Errorf("error identifies version %d (%s), want 2 (bad)", mErr.Version, mErr.Name)
		}

		// Version stays at the last committed script.
		version, err := runner.CurrentVersion()
		if err != nil {
			t.Fatalf("CurrentVersion failed: %v", err)
		}
		if version != 1 {
			t.Errorf("version after failure = %d, want 1", version)
		}

		// Nothing from the failed script survives.
		var count int
		err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'bad'").Scan(&count)
		if err != nil {
			t.Fatalf("failed to inspect schema: %v", err)
		}
		if count != 0 {
			t.Error("table from rolled-back migration exists")
		}
	})

	t.Run("rejects database newer than scripts", func(t *testing.T) {
		db := setupTestDB(t)
		if _, err := db.Exec("CREATE TABLE schema_version (version INTEGER PRIMARY KEY)"); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (99)"); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		runner := NewRunner(db, testFS(map[string]string{
			"001_create.sql": "CREATE TABLE items (id INTEGER);",
		}))
		if _, err := runner.Apply(nil); err == nil {
			t.Error("expected Apply to reject a schema version newer than available scripts")
		}
	})
}

func TestValidate(t *testing.T) {
	db := setupTestDB(t)
	fsys := testFS(map[string]string{
		"001_create.sql": "CREATE TABLE items (id INTEGER);",
	})
	runner := NewRunner(db, fsys)

	if _, err := runner.Apply(nil); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if err := runner.Validate(); err != nil {
		t.Errorf("Validate failed on up-to-date schema: %v", err)
	}

	if _, err := db.Exec("UPDATE schema_version SET version = 42"); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if err := runner.Validate(); err == nil {
		t.Error("expected Validate to reject a newer stored version")
	}
}
