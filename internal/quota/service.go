// Package quota implements the day lifecycle: snapshot-on-create, evidence
// validation, and the Open/Closed state machine. It reads and writes
// through a storage.Provider and holds no state of its own.
package quota

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mharris/quotly/internal/constants"
	"github.com/mharris/quotly/internal/logging"
	"github.com/mharris/quotly/internal/models"
	"github.com/mharris/quotly/internal/storage"
)

var (
	// ErrEmptyEvidence rejects completing an item without evidence text.
	ErrEmptyEvidence = errors.New("evidence is required to complete an item")

	// ErrConfirmationRequired rejects reopening a closed day without an
	// explicit confirmation from the caller.
	ErrConfirmationRequired = errors.New("reopening a closed day requires confirmation")
)

// Service is the only surface the CLI and TUI call for day mutations.
type Service struct {
	store storage.Provider
}

func New(store storage.Provider) *Service {
	return &Service{store: store}
}

// EnsureDay returns the day for the given date, creating it from the
// current template if absent. An existing day is returned unchanged: its
// snapshot is never refreshed, so template edits only reach future days.
func (s *Service) EnsureDay(date string) (models.Day, error) {
	if _, err := time.Parse(constants.DateFormat, date); err != nil {
		return models.Day{}, fmt.Errorf("invalid date %q: %w", date, err)
	}

	day, err := s.store.GetDay(date)
	if err == nil {
		return day, nil
	}
	if !errors.Is(err, storage.ErrDayNotFound) {
		return models.Day{}, err
	}

	tmpl, err := s.store.LoadTemplate()
	if err != nil {
		return models.Day{}, fmt.Errorf("failed to load template for new day: %w", err)
	}

	day = snapshotDay(date, tmpl)
	created, err := s.store.CreateDay(day)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateDay) {
			// EnsureDay is the only creator, so a duplicate here is a bug,
			// not a user condition.
			return models.Day{}, fmt.Errorf("internal error: %w", err)
		}
		return models.Day{}, err
	}

	logging.Info("created day", "date", date, "template_version", tmpl.Version, "items", len(created.Items))
	return created, nil
}

// snapshotDay value-copies the template into a fresh open day. The item
// why is seeded from the template's default why.
func snapshotDay(date string, tmpl models.Template) models.Day {
	day := models.Day{
		ID:              uuid.NewString(),
		Date:            date,
		Status:          models.DayStatusOpen,
		TemplateVersion: tmpl.Version,
		CreatedAt:       time.Now().UTC(),
	}
	for i, item := range tmpl.Items {
		day.Items = append(day.Items, models.QuotaItem{
			ID:         uuid.NewString(),
			DayID:      day.ID,
			Label:      item.Label,
			Why:        item.DefaultWhy,
			OrderIndex: i,
		})
	}
	return day
}

// GetDay is a read-only lookup; unlike EnsureDay it never creates.
func (s *Service) GetDay(date string) (models.Day, error) {
	return s.store.GetDay(date)
}

// ListDays returns bounded summaries for calendar views.
func (s *Service) ListDays(start, end string) ([]models.DaySummary, error) {
	return s.store.ListDaysInRange(start, end)
}

// ToggleItem completes an item. Evidence must be non-empty after trimming;
// the completion flag and evidence are persisted in one write, so there is
// no state, even transient, with completed set and evidence blank.
func (s *Service) ToggleItem(dayID, itemID, evidence, why string) (models.QuotaItem, error) {
	evidence = strings.TrimSpace(evidence)
	if evidence == "" {
		return models.QuotaItem{}, ErrEmptyEvidence
	}
	return s.store.UpdateItem(dayID, itemID, true, evidence, strings.TrimSpace(why))
}

// UncheckItem clears the completion flag along with evidence and why.
func (s *Service) UncheckItem(dayID, itemID string) (models.QuotaItem, error) {
	return s.store.UpdateItem(dayID, itemID, false, "", "")
}

// CloseDay transitions Open -> Closed. Closing an already-closed day is a
// no-op success so UI retries never surface errors, and close-time side
// effects do not re-run.
func (s *Service) CloseDay(date string) (models.Day, error) {
	day, err := s.store.GetDay(date)
	if err != nil {
		return models.Day{}, err
	}
	if day.Closed() {
		return day, nil
	}

	closed, err := s.store.SetDayStatus(day.ID, models.DayStatusClosed)
	if err != nil {
		return models.Day{}, err
	}
	logging.Info("closed day", "date", date)
	return closed, nil
}

// ReopenDay transitions Closed -> Open, but only with confirmed set.
// Reopening an already-open day is a no-op success, mirroring CloseDay.
func (s *Service) ReopenDay(date string, confirmed bool) (models.Day, error) {
	day, err := s.store.GetDay(date)
	if err != nil {
		return models.Day{}, err
	}
	if !day.Closed() {
		return day, nil
	}
	if !confirmed {
		return models.Day{}, ErrConfirmationRequired
	}

	reopened, err := s.store.SetDayStatus(day.ID, models.DayStatusOpen)
	if err != nil {
		return models.Day{}, err
	}
	logging.Info("reopened day", "date", date)
	return reopened, nil
}
