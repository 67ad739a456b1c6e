package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mharris/quotly/internal/models"
	"github.com/mharris/quotly/internal/storage"
)

// UpdateItem persists the completion flag together with evidence and why,
// re-verifying the owning day's open status inside the same statement.
func (s *Store) UpdateItem(dayID, itemID string, completed bool, evidence, why string) (models.QuotaItem, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return models.QuotaItem{}, err
	}
	defer tx.Rollback()

	var completedAt sql.NullTime
	if completed {
		completedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	}

	res, err := tx.Exec(`
		UPDATE quota_items
		SET completed = $1, evidence = $2, why = $3, completed_at = $4
		WHERE id = $5 AND day_id = $6
		  AND EXISTS (SELECT 1 FROM days WHERE id = $6 AND status = 'open')`,
		completed, evidence, why, completedAt, itemID, dayID)
	if err != nil {
		return models.QuotaItem{}, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return models.QuotaItem{}, err
	}
	if affected == 0 {
		var status string
		err := tx.QueryRow("SELECT status FROM days WHERE id = $1", dayID).Scan(&status)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return models.QuotaItem{}, fmt.Errorf("%w: id %s", storage.ErrDayNotFound, dayID)
		case err != nil:
			return models.QuotaItem{}, err
		case models.DayStatus(status) == models.DayStatusClosed:
			return models.QuotaItem{}, storage.ErrDayClosed
		default:
			return models.QuotaItem{}, fmt.Errorf("%w: %s", storage.ErrItemNotFound, itemID)
		}
	}

	var item models.QuotaItem
	var itemCompletedAt sql.NullTime
	err = tx.QueryRow(
		"SELECT id, day_id, label, completed, evidence, why, order_index, completed_at FROM quota_items WHERE id = $1 AND day_id = $2",
		itemID, dayID,
	).Scan(&item.ID, &item.DayID, &item.Label, &item.Completed, &item.Evidence, &item.Why, &item.OrderIndex, &itemCompletedAt)
	if err != nil {
		return models.QuotaItem{}, err
	}
	if itemCompletedAt.Valid {
		t := itemCompletedAt.Time
		item.CompletedAt = &t
	}

	if err := tx.Commit(); err != nil {
		return models.QuotaItem{}, err
	}
	return item, nil
}
