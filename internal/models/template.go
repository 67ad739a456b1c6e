package models

// TemplateItem is one slot in the quota template. The label doubles as the
// item identity within the template.
type TemplateItem struct {
	Label      string `json:"label"`
	DefaultWhy string `json:"default_why,omitempty"`
}

// Template is the single quota template that seeds new days. Version is
// bumped on every edit and recorded on each day snapshotted from it.
type Template struct {
	Version int            `json:"version"`
	Items   []TemplateItem `json:"items"`
}

// IndexOf returns the position of the item with the given label, -1 when
// absent.
func (t Template) IndexOf(label string) int {
	for i, item := range t.Items {
		if item.Label == label {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so edits never alias the stored template.
func (t Template) Clone() Template {
	items := make([]TemplateItem, len(t.Items))
	copy(items, t.Items)
	return Template{Version: t.Version, Items: items}
}
