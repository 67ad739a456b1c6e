package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mharris/quotly/internal/models"
	"github.com/mharris/quotly/internal/storage"
)

func (s *Store) CreateDay(day models.Day) (models.Day, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return models.Day{}, err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRow("SELECT COUNT(*) FROM days WHERE date = ?", day.Date).Scan(&exists)
	if err != nil {
		return models.Day{}, err
	}
	if exists > 0 {
		return models.Day{}, fmt.Errorf("%w: %s", storage.ErrDuplicateDay, day.Date)
	}

	_, err = tx.Exec(
		"INSERT INTO days (id, date, status, template_version, created_at, closed_at) VALUES (?, ?, ?, ?, ?, NULL)",
		day.ID, day.Date, string(day.Status), day.TemplateVersion, day.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		// The UNIQUE constraint backstops the existence check above.
		if strings.Contains(err.Error(), "UNIQUE") {
			return models.Day{}, fmt.Errorf("%w: %s", storage.ErrDuplicateDay, day.Date)
		}
		return models.Day{}, err
	}

	stmt, err := tx.Prepare(
		"INSERT INTO quota_items (id, day_id, label, completed, evidence, why, order_index, completed_at) VALUES (?, ?, ?, 0, '', ?, ?, NULL)",
	)
	if err != nil {
		return models.Day{}, err
	}
	defer stmt.Close()

	for _, item := range day.Items {
		if _, err := stmt.Exec(item.ID, day.ID, item.Label, item.Why, item.OrderIndex); err != nil {
			return models.Day{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Day{}, err
	}
	return s.GetDay(day.Date)
}

func (s *Store) GetDay(date string) (models.Day, error) {
	row := s.db.QueryRow(
		"SELECT id, date, status, template_version, created_at, closed_at FROM days WHERE date = ?", date,
	)
	day, err := scanDay(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Day{}, fmt.Errorf("%w: %s", storage.ErrDayNotFound, date)
		}
		return models.Day{}, err
	}
	return s.attachItems(day)
}

func (s *Store) getDayByID(dayID string) (models.Day, error) {
	row := s.db.QueryRow(
		"SELECT id, date, status, template_version, created_at, closed_at FROM days WHERE id = ?", dayID,
	)
	day, err := scanDay(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Day{}, fmt.Errorf("%w: id %s", storage.ErrDayNotFound, dayID)
		}
		return models.Day{}, err
	}
	return s.attachItems(day)
}

func scanDay(row *sql.Row) (models.Day, error) {
	var d models.Day
	var status, createdAt string
	var closedAt sql.NullString

	if err := row.Scan(&d.ID, &d.Date, &status, &d.TemplateVersion, &createdAt, &closedAt); err != nil {
		return models.Day{}, err
	}

	d.Status = models.DayStatus(status)
	var err error
	d.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.Day{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if closedAt.Valid {
		t, err := time.Parse(time.RFC3339, closedAt.String)
		if err != nil {
			return models.Day{}, fmt.Errorf("failed to parse closed_at: %w", err)
		}
		d.ClosedAt = &t
	}
	return d, nil
}

func (s *Store) attachItems(day models.Day) (models.Day, error) {
	rows, err := s.db.Query(
		"SELECT id, day_id, label, completed, evidence, why, order_index, completed_at FROM quota_items WHERE day_id = ? ORDER BY order_index",
		day.ID,
	)
	if err != nil {
		return models.Day{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.QuotaItem
		var completedAt sql.NullString

		if err := rows.Scan(&item.ID, &item.DayID, &item.Label, &item.Completed, &item.Evidence, &item.Why, &item.OrderIndex, &completedAt); err != nil {
			return models.Day{}, err
		}
		if completedAt.Valid {
			t, err := time.Parse(time.RFC3339, completedAt.String)
			if err != nil {
				return models.Day{}, fmt.Errorf("failed to parse completed_at: %w", err)
			}
			item.CompletedAt = &t
		}
		day.Items = append(day.Items, item)
	}
	return day, rows.Err()
}

func (s *Store) SetDayStatus(dayID string, status models.DayStatus) (models.Day, error) {
	if status != models.DayStatusOpen && status != models.DayStatusClosed {
		return models.Day{}, fmt.Errorf("invalid day status %q", status)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.Day{}, err
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRow("SELECT status FROM days WHERE id = ?", dayID).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Day{}, fmt.Errorf("%w: id %s", storage.ErrDayNotFound, dayID)
		}
		return models.Day{}, err
	}

	switch status {
	case models.DayStatusClosed:
		now := time.Now().UTC().Format(time.RFC3339)
		if _, err := tx.Exec("UPDATE days SET status = ?, closed_at = ? WHERE id = ?", string(status), now, dayID); err != nil {
			return models.Day{}, err
		}
		// Incomplete items stay incomplete; any draft evidence they carry
		// is cleared in the same transaction as the status flip.
		if _, err := tx.Exec("UPDATE quota_items SET evidence = '', why = '' WHERE day_id = ? AND completed = 0", dayID); err != nil {
			return models.Day{}, err
		}
	case models.DayStatusOpen:
		if _, err := tx.Exec("UPDATE days SET status = ?, closed_at = NULL WHERE id = ?", string(status), dayID); err != nil {
			return models.Day{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Day{}, err
	}
	return s.getDayByID(dayID)
}

func (s *Store) ListDaysInRange(start, end string) ([]models.DaySummary, error) {
	if err := storage.ValidateRange(start, end); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT d.date, d.status,
		       COALESCE(SUM(CASE WHEN i.completed = 1 THEN 1 ELSE 0 END), 0),
		       COUNT(i.id)
		FROM days d
		LEFT JOIN quota_items i ON i.day_id = d.id
		WHERE d.date BETWEEN ? AND ?
		GROUP BY d.id
		ORDER BY d.date`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []models.DaySummary
	for rows.Next() {
		var sum models.DaySummary
		var status string
		if err := rows.Scan(&sum.Date, &status, &sum.DoneCount, &sum.ItemCount); err != nil {
			return nil, err
		}
		sum.Status = models.DayStatus(status)
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}
