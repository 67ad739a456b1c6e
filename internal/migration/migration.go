package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
)

// Script is a single versioned schema migration, parsed from an
// NNN_name.sql file.
type Script struct {
	Version int
	Name    string
	SQL     string
}

// Error reports a migration script that failed to apply. The store is left
// at the last successfully committed version; startup must not proceed.
type Error struct {
	Version int
	Name    string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("migration %d (%s) failed: %v", e.Version, e.Name, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Runner applies versioned SQL scripts from a filesystem (normally an
// embedded one) against a database, tracking progress in a schema_version
// marker table.
type Runner struct {
	db   *sql.DB
	fsys fs.FS
}

func NewRunner(db *sql.DB, fsys fs.FS) *Runner {
	return &Runner{db: db, fsys: fsys}
}

func (r *Runner) ensureVersionTable() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)`)
	return err
}

// CurrentVersion reads the stored version marker. An absent marker means a
// fresh database and reports version 0.
func (r *Runner) CurrentVersion() (int, error) {
	if err := r.ensureVersionTable(); err != nil {
		return 0, fmt.Errorf("failed to ensure schema_version table: %w", err)
	}

	var version int
	err := r.db.QueryRow("SELECT version FROM schema_version").Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// Scripts reads and parses every NNN_name.sql file, sorted ascending by
// version. Duplicate versions are rejected.
func (r *Runner) Scripts() ([]Script, error) {
	entries, err := fs.ReadDir(r.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	var scripts []Script
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		parts := strings.SplitN(entry.Name(), "_", 2)
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid migration filename %q (expected NNN_name.sql)", entry.Name())
		}
		version, err := strconv.Atoi(parts[0])
		if err != nil || version < 1 {
			return nil, fmt.Errorf("invalid version in migration filename %q", entry.Name())
		}

		content, err := fs.ReadFile(r.fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}

		scripts = append(scripts, Script{
			Version: version,
			Name:    strings.TrimSuffix(parts[1], ".sql"),
			SQL:     string(content),
		})
	}

	sort.Slice(scripts, func(i, j int) bool { return scripts[i].Version < scripts[j].Version })

	for i := 1; i < len(scripts); i++ {
		if scripts[i].Version == scripts[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d", scripts[i].Version)
		}
	}
	return scripts, nil
}

// LatestVersion returns the highest script version available, 0 when there
// are no scripts.
func (r *Runner) LatestVersion() (int, error) {
	scripts, err := r.Scripts()
	if err != nil {
		return 0, err
	}
	if len(scripts) == 0 {
		return 0, nil
	}
	return scripts[len(scripts)-1].Version, nil
}

// Apply runs every pending script in ascending version order, each inside
// its own transaction with the version bump committed atomically alongside
// it. Re-running with no pending scripts is a no-op. Returns the number of
// scripts applied.
func (r *Runner) Apply(logf func(format string, args ...any)) (int, error) {
	if logf == nil {
		logf = func(string, ...any) {}
	}

	current, err := r.CurrentVersion()
	if err != nil {
		return 0, err
	}

	scripts, err := r.Scripts()
	if err != nil {
		return 0, err
	}
	if len(scripts) == 0 {
		logf("no migration scripts found")
		return 0, nil
	}

	latest := scripts[len(scripts)-1].Version
	if current > latest {
		return 0, fmt.Errorf("schema version %d is newer than supported version %d - upgrade the application", current, latest)
	}

	var pending []Script
	for _, s := range scripts {
		if s.Version > current {
			pending = append(pending, s)
		}
	}
	if len(pending) == 0 {
		logf("schema is up to date (version %d)", current)
		return 0, nil
	}

	logf("applying %d migration(s): version %d -> %d", len(pending), current, latest)

	applied := 0
	for _, script := range pending {
		if err := r.applyOne(script); err != nil {
			return applied, err
		}
		applied++
		logf("applied migration %d (%s)", script.Version, script.Name)
	}
	return applied, nil
}

func (r *Runner) applyOne(script Script) error {
	tx, err := r.db.Begin()
	if err != nil {
		return &Error{Version: script.Version, Name: script.Name, Err: err}
	}

	if _, err := tx.Exec(script.SQL); err != nil {
		_ = tx.Rollback()
		return &Error{Version: script.Version, Name: script.Name, Err: err}
	}

	// Version bump rides in the same transaction as the script.
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		_ = tx.Rollback()
		return &Error{Version: script.Version, Name: script.Name, Err: err}
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES ($1)", script.Version); err != nil {
		_ = tx.Rollback()
		return &Error{Version: script.Version, Name: script.Name, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &Error{Version: script.Version, Name: script.Name, Err: err}
	}
	return nil
}

// Validate checks that the stored version is not ahead of the scripts this
// build ships with.
func (r *Runner) Validate() error {
	current, err := r.CurrentVersion()
	if err != nil {
		return err
	}
	latest, err := r.LatestVersion()
	if err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("schema version %d is newer than supported version %d - upgrade the application", current, latest)
	}
	return nil
}
