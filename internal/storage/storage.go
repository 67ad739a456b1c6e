// Package storage defines the persistence contract for quotly. It owns no
// business rules: the quota service and template manager decide, the store
// persists. Two drivers implement Provider: sqlite (default, local file)
// and postgres.
package storage

import (
	"errors"
	"net/url"
	"strings"

	"github.com/mharris/quotly/internal/models"
)

// Sentinel errors surfaced by Provider implementations. The logic layer
// passes them through verbatim; nothing retries them.
var (
	// ErrDuplicateDay means a day row already exists for the date. The
	// service's EnsureDay prevents this, so seeing it indicates a bug.
	ErrDuplicateDay = errors.New("day already exists for date")

	// ErrDayNotFound is returned by reads for dates with no day row.
	ErrDayNotFound = errors.New("day not found")

	// ErrItemNotFound is returned when an item id does not belong to the
	// given day.
	ErrItemNotFound = errors.New("quota item not found")

	// ErrDayClosed rejects writes against a closed day. Implementations
	// must re-verify the open status inside the same transaction as the
	// write, not just before it.
	ErrDayClosed = errors.New("day is closed; reopen to edit")

	// ErrUnboundedRange rejects range listings without both bounds or
	// spanning more than the supported window.
	ErrUnboundedRange = errors.New("day range must be bounded")

	// ErrTemplateNotFound is returned before the template row is seeded.
	ErrTemplateNotFound = errors.New("template not found")
)

// Provider is the full persistence surface. Both the quota service and the
// template manager receive an explicit Provider handle; there is no ambient
// store, so tests instantiate isolated stores freely.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Schema
	SchemaVersion() (int, error)
	LatestSchemaVersion() (int, error)

	// Template
	LoadTemplate() (models.Template, error)
	SaveTemplate(models.Template) error

	// Days
	CreateDay(models.Day) (models.Day, error)
	GetDay(date string) (models.Day, error)
	SetDayStatus(dayID string, status models.DayStatus) (models.Day, error)
	ListDaysInRange(start, end string) ([]models.DaySummary, error)

	// Items
	UpdateItem(dayID, itemID string, completed bool, evidence, why string) (models.QuotaItem, error)

	// Utils
	GetConfigPath() string
}

// IsPostgres reports whether the config value looks like a PostgreSQL
// connection string rather than a sqlite file path.
func IsPostgres(config string) bool {
	return strings.HasPrefix(config, "postgres://") || strings.HasPrefix(config, "postgresql://")
}

// HasEmbeddedCredentials reports whether a connection string carries an
// inline password. Those are rejected at startup; the keyring or
// environment supplies credentials instead.
func HasEmbeddedCredentials(connStr string) bool {
	if u, err := url.Parse(connStr); err == nil && u.User != nil {
		if _, set := u.User.Password(); set {
			return true
		}
	}
	// DSN format: space-separated key=value pairs.
	for _, part := range strings.Fields(connStr) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 && strings.EqualFold(kv[0], "password") {
			return true
		}
	}
	return false
}
