package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/mharris/quotly/internal/constants"
	"github.com/mharris/quotly/internal/logging"
	"github.com/mharris/quotly/internal/migration"
	"github.com/mharris/quotly/internal/models"
	"github.com/mharris/quotly/internal/storage"
	"github.com/mharris/quotly/migrations"
)

// Store is the default Provider, backed by a single sqlite file under the
// config directory.
type Store struct {
	path string
	db   *sql.DB
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := s.open(); err != nil {
		return err
	}

	if err := s.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Seed the default template on first init only.
	if _, err := s.LoadTemplate(); errors.Is(err, storage.ErrTemplateNotFound) {
		if err := s.SaveTemplate(constants.DefaultTemplate()); err != nil {
			return fmt.Errorf("failed to seed default template: %w", err)
		}
	} else if err != nil {
		return err
	}

	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'quotly init' first")
	}

	if err := s.open(); err != nil {
		return err
	}

	runner, err := s.runner()
	if err != nil {
		return err
	}
	return runner.Validate()
}

func (s *Store) open() error {
	if s.db != nil {
		return nil
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	s.db = db
	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS), nil
}

func (s *Store) runMigrations() error {
	runner, err := s.runner()
	if err != nil {
		return err
	}
	_, err = runner.Apply(logging.Infof)
	return err
}

func (s *Store) SchemaVersion() (int, error) {
	runner, err := s.runner()
	if err != nil {
		return 0, err
	}
	return runner.CurrentVersion()
}

func (s *Store) LatestSchemaVersion() (int, error) {
	runner, err := s.runner()
	if err != nil {
		return 0, err
	}
	return runner.LatestVersion()
}

func (s *Store) LoadTemplate() (models.Template, error) {
	var version int
	var itemsJSON string
	err := s.db.QueryRow("SELECT version, items FROM template WHERE id = 1").Scan(&version, &itemsJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Template{}, storage.ErrTemplateNotFound
		}
		return models.Template{}, err
	}

	var items []models.TemplateItem
	if err := json.Unmarshal([]byte(itemsJSON), &items); err != nil {
		return models.Template{}, fmt.Errorf("failed to parse template items: %w", err)
	}
	return models.Template{Version: version, Items: items}, nil
}

func (s *Store) SaveTemplate(tmpl models.Template) error {
	itemsJSON, err := json.Marshal(tmpl.Items)
	if err != nil {
		return fmt.Errorf("failed to serialize template items: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO template (id, version, items) VALUES (1, ?, ?)",
		tmpl.Version, string(itemsJSON),
	)
	return err
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB exposes the raw connection for tests and the doctor command.
func (s *Store) GetDB() *sql.DB {
	return s.db
}
