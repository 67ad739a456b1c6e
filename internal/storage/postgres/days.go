package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/mharris/quotly/internal/models"
	"github.com/mharris/quotly/internal/storage"
)

// uniqueViolation is the PostgreSQL error code for constraint class 23505.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}

func (s *Store) CreateDay(day models.Day) (models.Day, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return models.Day{}, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO days (id, date, status, template_version, created_at, closed_at) VALUES ($1, $2, $3, $4, $5, NULL)",
		day.ID, day.Date, string(day.Status), day.TemplateVersion, day.CreatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Day{}, fmt.Errorf("%w: %s", storage.ErrDuplicateDay, day.Date)
		}
		return models.Day{}, err
	}

	stmt, err := tx.Prepare(
		"INSERT INTO quota_items (id, day_id, label, completed, evidence, why, order_index, completed_at) VALUES ($1, $2, $3, FALSE, '', $4, $5, NULL)",
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
		"SELECT id, date, status, template_version, created_at, closed_at FROM days WHERE date = $1", date,
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
		"SELECT id, date, status, template_version, created_at, closed_at FROM days WHERE id = $1", dayID,
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
	var status string
	var closedAt sql.NullTime

	if err := row.Scan(&d.ID, &d.Date, &status, &d.TemplateVersion, &d.CreatedAt, &closedAt); err != nil {
		return models.Day{}, err
	}

	d.Status = models.DayStatus(status)
	if closedAt.Valid {
		t := closedAt.Time
		d.ClosedAt = &t
	}
	return d, nil
}

func (s *Store) attachItems(day models.Day) (models.Day, error) {
	rows, err := s.db.Query(
		"SELECT id, day_id, label, completed, evidence, why, order_index, completed_at FROM quota_items WHERE day_id = $1 ORDER BY order_index",
		day.ID,
	)
	if err != nil {
		return models.Day{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.QuotaItem
		var completedAt sql.NullTime

		if err := rows.Scan(&item.ID, &item.DayID, &item.Label, &item.Completed, &item.Evidence, &item.Why, &item.OrderIndex, &completedAt); err != nil {
			return models.Day{}, err
		}
		if completedAt.Valid {
			t := completedAt.Time
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
	err = tx.QueryRow("SELECT status FROM days WHERE id = $1", dayID).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Day{}, fmt.Errorf("%w: id %s", storage.ErrDayNotFound, dayID)
		}
		return models.Day{}, err
	}

	switch status {
	case models.DayStatusClosed:
		if _, err := tx.Exec("UPDATE days SET status = $1, closed_at = $2 WHERE id = $3", string(status), time.Now().UTC(), dayID); err != nil {
			return models.Day{}, err
		}
		if _, err := tx.Exec("UPDATE quota_items SET evidence = '', why = '' WHERE day_id = $1 AND NOT completed", dayID); err != nil {
			return models.Day{}, err
		}
	case models.DayStatusOpen:
		if _, err := tx.Exec("UPDATE days SET status = $1, closed_at = NULL WHERE id = $2", string(status), dayID); err != nil {
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
		       COALESCE(SUM(CASE WHEN i.completed THEN 1 ELSE 0 END), 0),
		       COUNT(i.id)
		FROM days d
		LEFT JOIN quota_items i ON i.day_id = d.id
		WHERE d.date BETWEEN $1 AND $2
		GROUP BY d.id, d.date, d.status
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
