package postgres

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	_ "github.com/lib/pq"

	"github.com/mharris/quotly/internal/constants"
	"github.com/mharris/quotly/internal/logging"
	"github.com/mharris/quotly/internal/migration"
	"github.com/mharris/quotly/internal/models"
	"github.com/mharris/quotly/internal/storage"
	"github.com/mharris/quotly/migrations"
)

// Store is the PostgreSQL Provider. It exists for users who keep their
// tracker on a home server; semantics are identical to the sqlite store.
type Store struct {
	connStr string
	db      *sql.DB
}

func NewStore(connStr string) *Store {
	return &Store{connStr: connStr}
}

func (s *Store) Init() error {
	if err := s.open(); err != nil {
		return err
	}

	if err := s.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

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
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
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
	subFS, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		return nil, fmt.Errorf("failed to access postgres migrations: %w", err)
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

	_, err = s.db.Exec(`
		INSERT INTO template (id, version, items) VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET version = EXCLUDED.version, items = EXCLUDED.items`,
		tmpl.Version, string(itemsJSON))
	return err
}

func (s *Store) GetConfigPath() string {
	return s.connStr
}

// GetDB exposes the raw connection for tests and the doctor command.
func (s *Store) GetDB() *sql.DB {
	return s.db
}
