package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mharris/quotly/internal/models"
	"github.com/mharris/quotly/internal/storage"
)

// UpdateItem persists the completion flag together with evidence and why.
// The owning day's open status is a condition of the UPDATE itself, so a
// day closed between the caller's read and this write cannot be mutated.
func (s *Store) UpdateItem(dayID, itemID string, completed bool, evidence, why string) (models.QuotaItem, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return models.QuotaItem{}, err
	}
	defer tx.Rollback()

	var completedAt sql.NullString
	if completed {
		completedAt = sql.NullString{String: time.Now().UTC().Format(time.RFC3339), Valid: true}
	}

	res, err := tx.Exec(`
		UPDATE quota_items
		SET completed = ?, evidence = ?, why = ?, completed_at = ?
		WHERE id = ? AND day_id = ?
		  AND EXISTS (SELECT 1 FROM days WHERE id = ? AND status = 'open')`,
		completed, evidence, why, completedAt, itemID, dayID, dayID)
	if err != nil {
		return models.QuotaItem{}, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return models.QuotaItem{}, err
	}
	if affected == 0 {
		// Distinguish a closed day from a missing item.
		var status string
		err := tx.QueryRow("SELECT status FROM days WHERE id = ?", dayID).Scan(&status)
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

	item, err := scanItemTx(tx, dayID, itemID)
	if err != nil {
		return models.QuotaItem{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.QuotaItem{}, err
	}
	return item, nil
}

func scanItemTx(tx *sql.Tx, dayID, itemID string) (models.QuotaItem, error) {
	var item models.QuotaItem
	var completedAt sql.NullString

	err := tx.QueryRow(
		"SELECT id, day_id, label, completed, evidence, why, order_index, completed_at FROM quota_items WHERE id = ? AND day_id = ?",
		itemID, dayID,
	).Scan(&item.ID, &item.DayID, &item.Label, &item.Completed, &item.Evidence, &item.Why, &item.OrderIndex, &completedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.QuotaItem{}, fmt.Errorf("%w: %s", storage.ErrItemNotFound, itemID)
		}
		return models.QuotaItem{}, err
	}
	if completedAt.Valid {
		t, err := time.Parse(time.RFC3339, completedAt.String)
		if err != nil {
			return models.QuotaItem{}, fmt.Errorf("failed to parse completed_at: %w", err)
		}
		item.CompletedAt = &t
	}
	return item, nil
}
