package models

import "testing"

func TestDayLookups(t *testing.T) {
	day := Day{
		ID:     "d1",
		Status: DayStatusOpen,
		Items: []QuotaItem{
			{ID: "i1", Label: "Progress"},
			{ID: "i2", Label: "Maintenance"},
		},
	}

	if day.Closed() {
		t.Error("open day reported closed")
	}

	if item := day.Item("i2"); item == nil || item.Label != "Maintenance" {
		t.Errorf("Item(i2) = %+v", item)
	}
	if day.Item("missing") != nil {
		t.Error("Item returned non-nil for unknown id")
	}

	if item := day.ItemByLabel("Progress"); item == nil || item.ID != "i1" {
		t.Errorf("ItemByLabel(Progress) = %+v", item)
	}
	if day.ItemByLabel("missing") != nil {
		t.Error("ItemByLabel returned non-nil for unknown label")
	}

	// Lookups return pointers into the day so callers can read fresh state.
	day.Item("i1").Completed = true
	if !day.Items[0].Completed {
		t.Error("Item returned a copy instead of a pointer")
	}
}

func TestTemplateClone(t *testing.T) {
	tmpl := Template{
		Version: 3,
		Items: []TemplateItem{
			{Label: "Progress"},
			{Label: "Maintenance"},
		},
	}

	clone := tmpl.Clone()
	clone.Items[0].Label = "Changed"
	clone.Items = append(clone.Items, TemplateItem{Label: "Extra"})

	if tmpl.Items[0].Label != "Progress" {
		t.Error("Clone aliases the original items")
	}
	if len(tmpl.Items) != 2 {
		t.Error("Clone growth leaked into the original")
	}

	if tmpl.IndexOf("Maintenance") != 1 {
		t.Errorf("IndexOf(Maintenance) = %d, want 1", tmpl.IndexOf("Maintenance"))
	}
	if tmpl.IndexOf("missing") != -1 {
		t.Errorf("IndexOf(missing) = %d, want -1", tmpl.IndexOf("missing"))
	}
}
