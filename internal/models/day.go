package models

import "time"

type DayStatus string

const (
	DayStatusOpen   DayStatus = "open"
	DayStatusClosed DayStatus = "closed"
)

// QuotaItem is one slot of a day, snapshotted from the template when the
// day was created. Completed and Evidence move together: a completed item
// always carries non-empty evidence.
type QuotaItem struct {
	ID          string     `json:"id"`
	DayID       string     `json:"day_id"`
	Label       string     `json:"label"`
	Completed   bool       `json:"completed"`
	Evidence    string     `json:"evidence,omitempty"`
	Why         string     `json:"why,omitempty"`
	OrderIndex  int        `json:"order_index"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Day is one calendar day's quota record. Items are a value copy of the
// template as it stood at creation time; later template edits never reach
// an existing day.
type Day struct {
	ID              string      `json:"id"`
	Date            string      `json:"date"` // YYYY-MM-DD
	Status          DayStatus   `json:"status"`
	TemplateVersion int         `json:"template_version"`
	Items           []QuotaItem `json:"items"`
	CreatedAt       time.Time   `json:"created_at"`
	ClosedAt        *time.Time  `json:"closed_at,omitempty"`
}

func (d Day) Closed() bool {
	return d.Status == DayStatusClosed
}

// Item returns the item with the given id, nil when absent.
func (d Day) Item(id string) *QuotaItem {
	for i := range d.Items {
		if d.Items[i].ID == id {
			return &d.Items[i]
		}
	}
	return nil
}

// ItemByLabel returns the item with the given label, nil when absent.
func (d Day) ItemByLabel(label string) *QuotaItem {
	for i := range d.Items {
		if d.Items[i].Label == label {
			return &d.Items[i]
		}
	}
	return nil
}

// DaySummary is the aggregate row returned by range listings, enough for a
// calendar cell.
type DaySummary struct {
	Date      string    `json:"date"`
	Status    DayStatus `json:"status"`
	DoneCount int       `json:"done_count"`
	ItemCount int       `json:"item_count"`
}
